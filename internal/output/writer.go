package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/robert-at-pretension-io/verilog-tbgen/internal/generator"
)

// ErrExists is returned when a target file exists and overwriting is disabled
var ErrExists = errors.New("file already exists")

// Write persists files under dir, creating it if needed, and returns the
// written paths in input order. Existing targets are checked before anything
// is written so a refused overwrite leaves the directory untouched.
func Write(dir string, files []generator.File, overwrite bool) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		if f.Name == "" || filepath.Base(f.Name) != f.Name {
			return nil, fmt.Errorf("invalid artifact name %q", f.Name)
		}
		path := filepath.Join(dir, f.Name)
		if !overwrite {
			if _, err := os.Stat(path); err == nil {
				return nil, fmt.Errorf("%s: %w", path, ErrExists)
			}
		}
		paths = append(paths, path)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	for i, f := range files {
		if err := writeFile(paths[i], f.Content, overwrite); err != nil {
			return paths[:i], err
		}
	}
	return paths, nil
}

// writeFile creates path exclusively unless overwrite is set, so a file that
// appeared after the pre-check is still refused.
func writeFile(path, content string, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
