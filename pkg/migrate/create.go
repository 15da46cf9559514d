package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)
	pathSegmentRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	now = time.Now
)

type createOptions struct {
	documentPath []string
}

// CreateOption tweaks the generated migration.
type CreateOption func(*createOptions)

// WithDocumentIndex scaffolds an expression index on a dotted path inside
// orders.document, e.g. "customer.email" or "paymentStatus".
func WithDocumentIndex(path string) CreateOption {
	return func(o *createOptions) {
		o.documentPath = strings.Split(strings.TrimSpace(path), ".")
	}
}

// CreateSQLMigration creates a goose SQL migration file:
//
//	<dir>/<YYYYMMDDHHMMSS>_<name>.sql
//
// The version always sorts after the newest existing migration and a name
// may only be used once.
func CreateSQLMigration(dir string, name string, opts ...CreateOption) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	if name == "" {
		return "", fmt.Errorf("name is required")
	}

	var o createOptions
	for _, opt := range opts {
		opt(&o)
	}

	safe := sanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	existing, err := listMigrations(dir)
	if err != nil {
		return "", err
	}
	for _, m := range existing {
		if m.name == safe {
			return "", fmt.Errorf("migration name %q already used by %s", safe, m.filename)
		}
	}

	body, err := render(safe, o)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	version := nextVersion(existing)
	fullpath := filepath.Join(dir, fmt.Sprintf("%d_%s.sql", version, safe))

	if err := os.WriteFile(fullpath, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}

	return fullpath, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

// nextVersion uses the current UTC timestamp unless an existing migration is
// at or past it, in which case it steps one second past the newest.
func nextVersion(existing []migrationFile) int64 {
	current, _ := strconv.ParseInt(now().UTC().Format(versionLayout), 10, 64)
	if len(existing) == 0 {
		return current
	}
	latest := existing[len(existing)-1].version
	if current > latest {
		return current
	}
	t, err := time.Parse(versionLayout, strconv.FormatInt(latest, 10))
	if err != nil {
		return latest + 1
	}
	next, _ := strconv.ParseInt(t.Add(time.Second).Format(versionLayout), 10, 64)
	return next
}

func render(safe string, o createOptions) (string, error) {
	if len(o.documentPath) == 0 {
		return fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- %s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %s
-- +goose StatementEnd
`, safe, safe), nil
	}

	for _, seg := range o.documentPath {
		if !pathSegmentRe.MatchString(seg) {
			return "", fmt.Errorf("invalid document path segment %q", seg)
		}
	}
	index := "idx_orders_document_" + sanitizeName(strings.Join(o.documentPath, "_"))
	path := strings.Join(o.documentPath, ",")

	return fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
CREATE INDEX IF NOT EXISTS %s ON orders ((document #>> '{%s}'));
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
DROP INDEX IF EXISTS %s;
-- +goose StatementEnd
`, index, path, index), nil
}
