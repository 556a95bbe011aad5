package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// LoadSource returns the program text for a tool invocation: the contents of
// path when it is set, otherwise the inline argument. name labels the source
// in output ("<arg>" for inline text).
func LoadSource(path string, args []string) (src string, name string, err error) {
	switch {
	case path != "" && len(args) > 0:
		return "", "", errors.New("give either -f or an inline program, not both")
	case path != "":
		fullPath, _, err := GetPathInfo(path)
		if err != nil {
			return "", "", err
		}
		data, err := os.ReadFile(fullPath)
		if err != nil {
			return "", "", fmt.Errorf("read source: %w", err)
		}
		return string(data), fullPath, nil
	case len(args) == 1:
		return args[0], "<arg>", nil
	case len(args) > 1:
		return "", "", fmt.Errorf("expected one inline program, got %d arguments", len(args))
	}
	return "", "", errors.New("no program given")
}
