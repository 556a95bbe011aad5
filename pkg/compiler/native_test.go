package compiler

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// compileAndRunNative assembles the listing with the host C compiler, runs the
// binary and returns its exit status.
func compileAndRunNative(t *testing.T, src string) int {
	t.Helper()

	if runtime.GOOS != "linux" || runtime.GOARCH != "amd64" {
		t.Skipf("native test skipped on %s/%s", runtime.GOOS, runtime.GOARCH)
	}
	cc, err := exec.LookPath("cc")
	if err != nil {
		if cc, err = exec.LookPath("gcc"); err != nil {
			t.Skip("no C compiler on PATH")
		}
	}

	assembly, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", src, err)
	}

	dir := t.TempDir()
	sPath := filepath.Join(dir, "out.s")
	if err := os.WriteFile(sPath, []byte(assembly), 0644); err != nil {
		t.Fatalf("write asm: %v", err)
	}

	exePath := filepath.Join(dir, "a.out")
	if out, err := exec.Command(cc, "-o", exePath, sPath).CombinedOutput(); err != nil {
		t.Fatalf("%s failed: %v\n%s", cc, err, out)
	}

	err = exec.Command(exePath).Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.ExitCode()
	}
	t.Fatalf("program failed: %v", err)
	return -1
}

func TestNativeEndToEnd(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"0;", 0},
		{"42;", 42},
		{"1+2*3;", 7},
		{"(1+2)*3;", 9},
		{"a=3; b=5; a+b;", 8},
		{"1==1;", 1},
		{"1!=1;", 0},
		{"-5+8;", 3},
		{"2>1;", 1},
		{"2>=3;", 0},
		{"a=b=3; a*10+b;", 33},
		{"z=100/7; z;", 14},
	}

	for _, tt := range tests {
		if got := compileAndRunNative(t, tt.src); got != tt.want {
			t.Errorf("%q exited %d; want %d", tt.src, got, tt.want)
		}
	}
}
