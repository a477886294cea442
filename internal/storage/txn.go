package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/IshaanNene/NewsGoat/internal/corpus"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

// UpdateFunc transforms the current content of a collection file. Returning
// an error aborts the transaction and leaves the file untouched.
type UpdateFunc func(current *corpus.Collection) (*corpus.Collection, error)

// Update runs one load-modify-persist cycle on the collection stored at
// path. The file is locked exclusively for the whole cycle and replaced by
// rename, so readers see either the old or the new content.
func Update(path string, fn UpdateFunc) error {
	return UpdateFile(path, func(data []byte) ([]byte, error) {
		current, err := corpus.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		next, err := fn(current)
		if err != nil {
			return nil, err
		}
		return EncodeCollection(next)
	})
}

// UpdateFile is Update for raw file content. A missing file reads as empty.
func UpdateFile(path string, fn func(data []byte) ([]byte, error)) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &types.PersistenceError{Path: path, Op: "mkdir", Err: err}
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return &types.PersistenceError{Path: path, Op: "lock", Err: err}
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return &types.PersistenceError{Path: path, Op: "read", Err: err}
	}

	out, err := fn(data)
	if err != nil {
		var pe *types.PersistenceError
		if errors.As(err, &pe) {
			return err
		}
		return &types.PersistenceError{Path: path, Op: "update", Err: err}
	}

	return WriteFileAtomic(path, out)
}

// ReadCollection loads the collection at path under a shared lock. A
// missing file yields an empty collection.
func ReadCollection(path string) (*corpus.Collection, error) {
	lock := flock.New(path + ".lock")
	if _, err := os.Stat(filepath.Dir(path)); err == nil {
		if err := lock.RLock(); err != nil {
			return nil, &types.PersistenceError{Path: path, Op: "lock", Err: err}
		}
		defer lock.Unlock()
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return corpus.NewCollection(), nil
		}
		return nil, &types.PersistenceError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	c, err := corpus.Decode(f)
	if err != nil {
		return nil, &types.PersistenceError{Path: path, Op: "decode", Err: err}
	}
	return c, nil
}

// WriteFileAtomic writes data to a temp file next to path, syncs it and
// renames it over path.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &types.PersistenceError{Path: path, Op: "mkdir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return &types.PersistenceError{Path: path, Op: "create temp", Err: err}
	}
	tmpPath := tmp.Name()

	fail := func(op string, err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return &types.PersistenceError{Path: path, Op: op, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &types.PersistenceError{Path: path, Op: "close", Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &types.PersistenceError{Path: path, Op: "rename", Err: err}
	}
	return nil
}

// EncodeCollection renders c as indented JSON.
func EncodeCollection(c *corpus.Collection) ([]byte, error) {
	if c == nil {
		c = corpus.NewCollection()
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode collection: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("indent collection: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
