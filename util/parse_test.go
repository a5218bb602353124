package util

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"10MB", 10 * 1024 * 1024},
		{"512KB", 512 * 1024},
		{"2GB", 2 * 1024 * 1024 * 1024},
		{"1024", 1024},
		{"64B", 64},
		{"  10MB  ", 10 * 1024 * 1024},
		{"10 mb", 10 * 1024 * 1024},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseSize(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseSize_Invalid(t *testing.T) {
	for _, in := range []string{"", "invalid", "MB", "-1KB", "1.5MB"} {
		if _, err := ParseSize(in); err == nil {
			t.Errorf("ParseSize(%q): expected error", in)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input  string
		prefix int
		want   string
	}{
		{"short", 10, "***"},
		{"exactly10!", 10, "***"},
		{"", 5, "***"},
		{"abcdef", 3, "abc***"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := MaskSecret(tc.input, tc.prefix); got != tc.want {
				t.Errorf("MaskSecret(%q, %d) = %q, want %q", tc.input, tc.prefix, got, tc.want)
			}
		})
	}
}

func TestMaskAuthorization(t *testing.T) {
	tests := map[string]string{
		"":                             "",
		"Basic dXNlcjpwYXNz":           "Basic ***",
		`Digest username="bob", x="y"`: "Digest ***",
		"token":                        "***",
	}
	for in, want := range tests {
		if got := MaskAuthorization(in); got != want {
			t.Errorf("MaskAuthorization(%q) = %q, want %q", in, got, want)
		}
	}
}
