package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// decodeFile parses a json5 file into dst. Missing and empty files are
// not errors, they just report found=false.
func decodeFile(path string, dst any) (found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json5.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	return true, nil
}

// localName derives the ".local" sibling of a config file, e.g.
// "config.json5" becomes "config.local.json5".
func localName(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

// ReadConfig reads `name` and, when present, merges `<name>.local.<ext>`
// over it field by field. Local files hold machine specific overrides
// and stay out of version control. Returns os.ErrNotExist when neither
// file exists.
func ReadConfig[T any](name string) (T, error) {
	var out T

	foundBase, err := decodeFile(name, &out)
	if err != nil {
		return out, err
	}

	var local T
	foundLocal, err := decodeFile(localName(name), &local)
	if err != nil {
		return out, err
	}
	if foundLocal {
		if err := mergo.Merge(&out, local, mergo.WithOverride); err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localName(name))
	}

	if !foundBase && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively walks from the working directory up toward the
// filesystem root and reads the first config matching `name`. Tests run
// from nested package directories, this lets them share the repo level
// config.
func ReadRecursively[T any](name string) (T, error) {
	var zero T

	dir, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(dir, name))
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return zero, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return zero, os.ErrNotExist
		}
		dir = parent
	}
}
