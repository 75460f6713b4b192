package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	t.Parallel()

	safe := t.TempDir()

	t.Run("file inside is valid", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(safe, "export.csv")
		if err := ValidatePathWithinDirectory(path, safe); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("nested nonexistent file is valid", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(safe, "sub", "dir", "export.csv")
		if err := ValidatePathWithinDirectory(path, safe); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("traversal escapes", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(safe, "..", "outside.csv")
		if err := ValidatePathWithinDirectory(path, safe); err == nil {
			t.Error("traversal path accepted")
		}
	})

	t.Run("absolute path outside", func(t *testing.T) {
		t.Parallel()
		if err := ValidatePathWithinDirectory("/etc/passwd", safe); err == nil {
			t.Error("outside path accepted")
		}
	})
}

func TestValidateExportPath(t *testing.T) {
	t.Parallel()

	t.Run("temp dir allowed", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(os.TempDir(), "backup-1.db")
		if err := ValidateExportPath(path); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("root rejected", func(t *testing.T) {
		t.Parallel()
		if err := ValidateExportPath("/outside-everything.db"); err == nil {
			t.Error("path outside temp and cwd accepted")
		}
	})
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"backup-1234.db", "backup-1234.db"},
		{"a b/c", "a_b_c"},
		{"../../etc/passwd", "etc_passwd"},
		{"", "unknown"},
		{"///", "unknown"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
