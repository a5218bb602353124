package component

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fake struct {
	name     string
	startErr error
	stopErr  error
	events   *[]string
}

func (f *fake) Name() string { return f.name }

func (f *fake) Start(context.Context) error {
	*f.events = append(*f.events, "start "+f.name)
	return f.startErr
}

func (f *fake) Stop(context.Context) error {
	*f.events = append(*f.events, "stop "+f.name)
	return f.stopErr
}

func (f *fake) Health(context.Context) Health {
	return Health{Name: f.name, Status: StatusHealthy}
}

func (f *fake) Describe() Description {
	return Description{Type: "fake", Details: f.name}
}

func TestRegistry_StartStopOrder(t *testing.T) {
	var events []string
	r := NewRegistry(nil)
	for _, name := range []string{"transport", "client", "server"} {
		if err := r.Register(&fake{name: name, events: &events}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"start transport", "start client", "start server", "stop server", "stop client", "stop transport"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("got %v, want %v", events, want)
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	var events []string
	r := NewRegistry(nil)
	_ = r.Register(&fake{name: "a", events: &events})
	if err := r.Register(&fake{name: "a", events: &events}); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestRegistry_StartFailureRollsBack(t *testing.T) {
	var events []string
	boom := errors.New("boom")
	r := NewRegistry(nil)
	_ = r.Register(&fake{name: "a", events: &events})
	_ = r.Register(&fake{name: "b", startErr: boom, events: &events})
	_ = r.Register(&fake{name: "c", events: &events})

	err := r.StartAll(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}
	want := []string{"start a", "start b", "stop a"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("got %v, want %v", events, want)
	}
}

func TestRegistry_StopErrorsJoined(t *testing.T) {
	var events []string
	boom := errors.New("boom")
	r := NewRegistry(nil)
	_ = r.Register(&fake{name: "a", stopErr: boom, events: &events})
	_ = r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); !errors.Is(err, boom) {
		t.Errorf("got %v, want boom", err)
	}
	// A second stop is a no-op.
	if err := r.StopAll(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRegistry_HealthAll(t *testing.T) {
	var events []string
	r := NewRegistry(nil)
	_ = r.Register(&fake{name: "a", events: &events})
	_ = r.Register(&fake{name: "b", events: &events})
	h := r.HealthAll(context.Background())
	if len(h) != 2 || h[0].Name != "a" || h[1].Status != StatusHealthy {
		t.Errorf("got %+v", h)
	}
}
