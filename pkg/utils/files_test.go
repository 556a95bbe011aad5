package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetPathInfo(t *testing.T) {
	dir := t.TempDir()
	full, parent, err := GetPathInfo(filepath.Join(dir, "sub", "..", "prog.c"))
	if err != nil {
		t.Fatalf("GetPathInfo failed: %v", err)
	}
	if full != filepath.Join(dir, "prog.c") || parent != dir {
		t.Errorf("GetPathInfo = %q, %q", full, parent)
	}
}

func TestLoadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.txt")
	if err := os.WriteFile(path, []byte("a=1; a;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, name, err := LoadSource(path, nil)
	if err != nil || src != "a=1; a;\n" || name != path {
		t.Errorf("LoadSource(file) = %q, %q, %v", src, name, err)
	}

	src, name, err = LoadSource("", []string{"1+2;"})
	if err != nil || src != "1+2;" || name != "<arg>" {
		t.Errorf("LoadSource(inline) = %q, %q, %v", src, name, err)
	}

	errorCases := []struct {
		name string
		path string
		args []string
	}{
		{"Nothing", "", nil},
		{"Both", path, []string{"1;"}},
		{"Too Many", "", []string{"1;", "2;"}},
		{"Missing File", filepath.Join(dir, "missing.txt"), nil},
	}
	for _, tc := range errorCases {
		if _, _, err := LoadSource(tc.path, tc.args); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
