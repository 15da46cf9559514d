package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	upMarker             = "-- +goose Up"
	downMarker           = "-- +goose Down"
	statementBeginMarker = "-- +goose StatementBegin"
	statementEndMarker   = "-- +goose StatementEnd"
)

// ValidateDir checks filenames, unique versions and names, and that every
// file has an Up section before its Down section with balanced statement blocks.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	files, err := listMigrations(dir)
	if err != nil {
		return err
	}

	versions := map[int64]string{}
	names := map[string]string{}
	for _, f := range files {
		if prev, ok := versions[f.version]; ok {
			return fmt.Errorf("duplicate migration version %d in %q and %q", f.version, prev, f.filename)
		}
		versions[f.version] = f.filename
		if prev, ok := names[f.name]; ok {
			return fmt.Errorf("duplicate migration name %q in %q and %q", f.name, prev, f.filename)
		}
		names[f.name] = f.filename

		full := filepath.Join(dir, f.filename)
		b, err := os.ReadFile(full)
		if err != nil {
			return fmt.Errorf("read file %q: %w", full, err)
		}
		if err := validateBody(f.filename, string(b)); err != nil {
			return err
		}
	}

	return nil
}

func validateBody(name, txt string) error {
	up := strings.Index(txt, upMarker)
	if up < 0 {
		return fmt.Errorf("migration %q missing %q", name, upMarker)
	}
	down := strings.Index(txt, downMarker)
	if down < 0 {
		return fmt.Errorf("migration %q missing %q", name, downMarker)
	}
	if down < up {
		return fmt.Errorf("migration %q has Down before Up", name)
	}

	depth := 0
	for _, line := range strings.Split(txt, "\n") {
		switch strings.TrimSpace(line) {
		case statementBeginMarker:
			depth++
			if depth > 1 {
				return fmt.Errorf("migration %q nests StatementBegin", name)
			}
		case statementEndMarker:
			depth--
			if depth < 0 {
				return fmt.Errorf("migration %q has StatementEnd without StatementBegin", name)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("migration %q has an unterminated StatementBegin", name)
	}
	return nil
}
