package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name      string
		rangeSpec string
		want      string
	}{
		{"express", "", "express"},
		{"express", "^4.0.0", "express@^4.0.0"},
	}
	for _, tt := range tests {
		if got := displayName(tt.name, tt.rangeSpec); got != tt.want {
			t.Errorf("displayName(%q, %q) = %q, want %q", tt.name, tt.rangeSpec, got, tt.want)
		}
	}
}

func TestRangeArg(t *testing.T) {
	if got := rangeArg([]string{"express"}); got != "" {
		t.Errorf("expected empty range, got %q", got)
	}
	if got := rangeArg([]string{"express", "^4.0.0"}); got != "^4.0.0" {
		t.Errorf("expected ^4.0.0, got %q", got)
	}
}

func TestOpenOutput(t *testing.T) {
	out, err := openOutput("")
	if err != nil {
		t.Fatalf("openOutput(\"\") failed: %v", err)
	}
	if out.(nopCloser).Writer != os.Stdout {
		t.Error("empty path should write to stdout")
	}
	if err := out.Close(); err != nil {
		t.Errorf("nopCloser.Close() = %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.json")
	f, err := openOutput(path)
	if err != nil {
		t.Fatalf("openOutput(%q) failed: %v", path, err)
	}
	if _, err := f.Write([]byte("data")); err != nil {
		t.Errorf("write failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.bytes); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
