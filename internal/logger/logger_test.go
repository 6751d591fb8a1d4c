package logger

import "testing"

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := New("debug", format)
		if err != nil {
			t.Fatalf("format %q: unexpected error: %v", format, err)
		}
		if !l.Core().Enabled(-1) {
			t.Errorf("format %q: expected debug to be enabled", format)
		}
	}

	if _, err := New("loud", "json"); err == nil {
		t.Error("expected an invalid level error")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Error("expected an invalid format error")
	}
}
