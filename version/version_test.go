package version

import (
	"strings"
	"testing"
	"time"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	return func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}
}

func TestGetVersionInfoDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "dev", "", ""

	info := GetVersionInfo()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
	if info.GoVersion == "" {
		t.Error("expected go version from build info")
	}
}

func TestGetVersionInfoLdflags(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "1.0.0", "abc1234", "2024-01-15T10:30:00Z"

	info := GetVersionInfo()
	if !info.IsRelease {
		t.Error("1.0.0 should be a release")
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected 'abc1234', got %q", info.GitCommit)
	}
	if !info.BuildDate.Equal(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("got build date %v", info.BuildDate)
	}
}

func TestGetVersionInfoDirtyVersion(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.0.0-dirty"

	if GetVersionInfo().IsRelease {
		t.Error("dirty version should not be a release")
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"version only", Info{Version: "dev"}, "dev"},
		{"with commit", Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{"dirty", Info{Version: "1.0.0", GitCommit: "abc1234", IsDirty: true}, "1.0.0-abc1234-dirty"},
		{
			"built",
			Info{Version: "1.0.0", BuildDate: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
			"1.0.0 (built 2024-01-15T10:30:00Z)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShortCommit(t *testing.T) {
	if got := shortCommit("0123456789abcdef"); got != "0123456" {
		t.Errorf("got %q", got)
	}
	if got := shortCommit("abc"); !strings.EqualFold(got, "abc") {
		t.Errorf("got %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.4.0"
	if got := UserAgent(); got != "xmlrpc-go/1.4.0" {
		t.Errorf("got %q, want %q", got, "xmlrpc-go/1.4.0")
	}
}
