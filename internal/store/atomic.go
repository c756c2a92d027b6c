package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// atomicFile buffers writes into a temp file beside path and renames it into
// place on Commit.
type atomicFile struct {
	path string
	tmp  *os.File
	w    *bufio.Writer
}

func createAtomic(path string) (*atomicFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	return &atomicFile{path: path, tmp: tmp, w: bufio.NewWriterSize(tmp, 1<<16)}, nil
}

func (a *atomicFile) writeLine(s string) error {
	if _, err := a.w.WriteString(s); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	if err := a.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}
	return nil
}

// commit flushes, syncs, and renames the temp file to the final path. On
// failure the temp file is removed.
func (a *atomicFile) commit() error {
	if err := a.seal(); err != nil {
		return err
	}
	return a.publish()
}

// seal flushes, syncs, and closes the temp file without publishing it. On
// failure the temp file is removed.
func (a *atomicFile) seal() error {
	tmpName := a.tmp.Name()
	if err := a.w.Flush(); err != nil {
		a.tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := a.tmp.Sync(); err != nil {
		a.tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := a.tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	return nil
}

// publish renames a sealed temp file to the final path.
func (a *atomicFile) publish() error {
	tmpName := a.tmp.Name()
	if err := os.Rename(tmpName, a.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// abort discards the temp file.
func (a *atomicFile) abort() error {
	a.tmp.Close()
	if err := os.Remove(a.tmp.Name()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing temp file: %w", err)
	}
	return nil
}
