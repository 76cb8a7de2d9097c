package filestore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

const (
	newsDir      = "news"
	playersDir   = "players"
	processedDir = "processed"
	failuresDir  = "failures"
	fileExt      = ".json"
)

var errInvalidKey = errors.New("invalid storage key")

// Store keeps every record as one JSON file under a root directory:
// news/<id>.json, players/<id>.json, processed/<id>.json markers and
// failures/<id>.json rejection counts.
type Store struct {
	root string
}

func Open(root string) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("data dir is required")
	}
	for _, dir := range []string{newsDir, playersDir, processedDir, failuresDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, errors.Wrapf(err, "create %s dir", dir)
		}
	}
	return &Store{root: root}, nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) path(dir, key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", errors.Wrapf(errInvalidKey, "%q", key)
	}
	return filepath.Join(s.root, dir, key+fileExt), nil
}

func (s *Store) readJSON(dir, key string, out any) (bool, error) {
	path, err := s.path(dir, key)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "read %s", path)
	}
	if err := sonic.ConfigStd.Unmarshal(data, out); err != nil {
		return false, errors.Wrapf(err, "decode %s", path)
	}
	return true, nil
}

func (s *Store) writeJSON(dir, key string, value any) error {
	path, err := s.path(dir, key)
	if err != nil {
		return err
	}
	data, err := sonic.ConfigStd.MarshalIndent(value, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	return writeFileAtomic(path, append(data, '\n'))
}

func (s *Store) exists(dir, key string) (bool, error) {
	path, err := s.path(dir, key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, errors.Wrapf(err, "stat %s", path)
	}
}

// keys lists record keys in a directory, sorted.
func (s *Store) keys(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, dir))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s dir", dir)
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}
		out = append(out, strings.TrimSuffix(name, fileExt))
	}
	sort.Strings(out)
	return out, nil
}

// writeFileAtomic writes to a temp file in the same directory, syncs it and
// renames it over path, so readers see either the old or the new content.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrap(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return errors.Wrapf(err, "rename into %s", path)
	}

	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
