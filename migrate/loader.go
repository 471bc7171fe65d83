package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Migration script files are named <version>_<name>.up.sql with an
// optional matching <version>_<name>.down.sql.
var scriptPattern = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

type scriptPair struct {
	version  int64
	name     string
	up       string
	down     string
	upFile   string
	downFile string
}

// LoadDir scans dir for paired migration script files and registers them
// in ascending version order. An up script without a matching down script
// is a valid irreversible migration; a down script without an up script,
// or a .sql file that does not follow the naming convention, fails with
// ErrInvalidMigrationFile.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	pairs := make(map[int64]*scriptPair)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		filename := entry.Name()

		match := scriptPattern.FindStringSubmatch(filename)
		if match == nil {
			return &ParseError{File: filename, Reason: "expected <version>_<name>.up.sql or <version>_<name>.down.sql"}
		}
		version, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil || version <= 0 {
			return &ParseError{File: filename, Reason: "version token must be a positive integer"}
		}
		name := match[2]

		content, err := os.ReadFile(filepath.Join(dir, filename))
		if err != nil {
			return fmt.Errorf("read migration file %s: %w", filename, err)
		}

		pair := pairs[version]
		if pair == nil {
			pair = &scriptPair{version: version, name: name}
			pairs[version] = pair
		} else if pair.name != name {
			return &ParseError{File: filename, Reason: fmt.Sprintf("name %q conflicts with %q for version %d", name, pair.name, version)}
		}

		switch match[3] {
		case "up":
			if pair.upFile != "" {
				return &ParseError{File: filename, Reason: fmt.Sprintf("duplicate up script for version %d (already have %s)", version, pair.upFile)}
			}
			pair.up = string(content)
			pair.upFile = filename
		case "down":
			if pair.downFile != "" {
				return &ParseError{File: filename, Reason: fmt.Sprintf("duplicate down script for version %d (already have %s)", version, pair.downFile)}
			}
			pair.down = string(content)
			pair.downFile = filename
		}
	}

	versions := make([]int64, 0, len(pairs))
	for v := range pairs {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })

	for _, v := range versions {
		pair := pairs[v]
		if pair.upFile == "" {
			return &ParseError{File: pair.downFile, Reason: "down script has no matching up script"}
		}
		if strings.TrimSpace(pair.up) == "" {
			return &ParseError{File: pair.upFile, Reason: "up script is empty"}
		}
		err := r.Register(Migration{
			Version: pair.version,
			Name:    pair.name,
			UpSQL:   pair.up,
			DownSQL: pair.down,
		})
		if err != nil {
			return fmt.Errorf("register %s: %w", pair.upFile, err)
		}
	}
	return nil
}
