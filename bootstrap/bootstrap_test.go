package bootstrap

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/xmlrpc/component"
	"github.com/kbukum/xmlrpc/config"
	"github.com/kbukum/xmlrpc/logger"
)

type testConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.events, ",")
}

type fakeComponent struct {
	name     string
	rec      *recorder
	startErr error
	status   component.HealthStatus
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.rec.add("start:" + f.name)
	return nil
}

func (f *fakeComponent) Stop(context.Context) error {
	f.rec.add("stop:" + f.name)
	return nil
}

func (f *fakeComponent) Health(context.Context) component.Health {
	status := f.status
	if status == "" {
		status = component.StatusHealthy
	}
	return component.Health{Name: f.name, Status: status}
}

func newTestApp(t *testing.T) *App[*testConfig] {
	t.Helper()
	app, err := NewApp(&testConfig{}, WithLogger(logger.Nop()), WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return app
}

func TestNewApp_AppliesDefaults(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "xmlrpc" || app.Cfg.Environment != "development" {
		t.Errorf("got name %q env %q", app.Name, app.Cfg.Environment)
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Environment: "moon"}}
	if _, err := NewApp(cfg, WithLogger(logger.Nop())); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestRunTask_Lifecycle(t *testing.T) {
	app := newTestApp(t)
	rec := &recorder{}
	for _, name := range []string{"a", "b"} {
		if err := app.RegisterComponent(&fakeComponent{name: name, rec: rec}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	app.OnStart(func(context.Context) error { rec.add("onstart"); return nil })
	app.OnStop(func(context.Context) error { rec.add("onstop"); return nil })

	err := app.RunTask(context.Background(), func(context.Context) error {
		rec.add("task")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "start:a,start:b,onstart,task,onstop,stop:b,stop:a"
	if got := rec.String(); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRunTask_TaskErrorWins(t *testing.T) {
	app := newTestApp(t)
	taskErr := errors.New("task failed")
	app.OnStop(func(context.Context) error { return errors.New("stop failed") })

	if err := app.RunTask(context.Background(), func(context.Context) error { return taskErr }); !errors.Is(err, taskErr) {
		t.Errorf("got %v, want task error", err)
	}
}

func TestRunTask_StartFailure(t *testing.T) {
	app := newTestApp(t)
	rec := &recorder{}
	_ = app.RegisterComponent(&fakeComponent{name: "ok", rec: rec})
	_ = app.RegisterComponent(&fakeComponent{name: "bad", rec: rec, startErr: errors.New("boom")})

	ran := false
	err := app.RunTask(context.Background(), func(context.Context) error { ran = true; return nil })
	if err == nil || !strings.Contains(err.Error(), "initialization failed") {
		t.Fatalf("got %v", err)
	}
	if ran {
		t.Error("task must not run after a failed start")
	}
	if got := rec.String(); got != "start:ok,stop:ok" {
		t.Errorf("got %s", got)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app := newTestApp(t)
	rec := &recorder{}
	_ = app.RegisterComponent(&fakeComponent{name: "srv", rec: rec})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if got := rec.String(); got != "start:srv,stop:srv" {
		t.Errorf("got %s", got)
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t)
	_ = app.RegisterComponent(&fakeComponent{name: "ok", rec: &recorder{}})
	_ = app.RegisterComponent(&fakeComponent{name: "sick", rec: &recorder{}, status: component.StatusUnhealthy})

	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "sick=unhealthy") {
		t.Errorf("got %v", err)
	}
}
