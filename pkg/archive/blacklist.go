package archive

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	errs "redditsave/pkg/errors"
	"redditsave/pkg/storage"
)

// Blacklist is the set of post IDs never to fetch again. It only grows.
type Blacklist struct {
	path  string
	ids   map[string]struct{}
	added int
}

// LoadBlacklist reads the blacklist at path, creating an empty file when it
// does not exist. An empty path gives a blacklist that is never persisted.
func LoadBlacklist(path string) (*Blacklist, error) {
	b := &Blacklist{path: path, ids: make(map[string]struct{})}
	if path == "" {
		return b, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errs.Wrap(errs.ErrorTypeFilesystem, "cannot create blacklist directory", err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			return nil, errs.Wrap(errs.ErrorTypeFilesystem, fmt.Sprintf("cannot create blacklist %s", path), err)
		}
		return b, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeFilesystem, fmt.Sprintf("cannot read blacklist %s", path), err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if id := strings.TrimSpace(scanner.Text()); id != "" {
			b.ids[id] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeParsing, fmt.Sprintf("cannot parse blacklist %s", path), err)
	}

	return b, nil
}

// Path returns the backing file, empty for an in-memory blacklist
func (b *Blacklist) Path() string {
	return b.path
}

// Contains reports whether id is blacklisted
func (b *Blacklist) Contains(id string) bool {
	_, ok := b.ids[id]
	return ok
}

// Add blacklists id and reports whether it was new
func (b *Blacklist) Add(id string) bool {
	if b.Contains(id) {
		return false
	}
	b.ids[id] = struct{}{}
	b.added++
	return true
}

// Len returns the number of blacklisted IDs
func (b *Blacklist) Len() int {
	return len(b.ids)
}

// Added returns how many IDs were added since loading
func (b *Blacklist) Added() int {
	return b.added
}

// IDs returns the blacklisted IDs sorted ascending
func (b *Blacklist) IDs() []string {
	ids := make([]string, 0, len(b.ids))
	for id := range b.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Save rewrites the blacklist file, one ID per line in ascending order
func (b *Blacklist) Save() error {
	if b.path == "" {
		return nil
	}

	var buf bytes.Buffer
	for _, id := range b.IDs() {
		buf.WriteString(id)
		buf.WriteByte('\n')
	}

	if err := storage.WriteFile(b.path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to save blacklist: %w", err)
	}
	return nil
}
