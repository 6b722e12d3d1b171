// Package storage provides the disk side of a browser session: the profile
// directory the browser runs in and persistence of files it produces.
package storage

import (
	"fmt"
	"os"
	"sync"
)

// Dir is a directory used by the browser, usually the user data dir. When
// the directory was allocated by Make (as opposed to being provided by the
// caller) Cleanup removes it.
type Dir struct {
	Dir string // path to the data storage directory

	remove      bool
	cleanupOnce sync.Once
}

// Make creates a temporary directory with the given pattern under tmpDir
// when dir is empty, otherwise it adopts dir without taking ownership.
// tmpDir defaults to the OS temp dir.
func (d *Dir) Make(tmpDir, dir string) error {
	if dir != "" {
		d.Dir = dir
		return nil
	}

	var err error
	if d.Dir, err = os.MkdirTemp(tmpDir, "browserbridge-*"); err != nil {
		return fmt.Errorf("making a temporary data directory: %w", err)
	}
	d.remove = true

	return nil
}

// Cleanup removes the directory if Make created it. It is safe to call
// multiple times; only the first call does the removal.
func (d *Dir) Cleanup() error {
	if !d.remove {
		return nil
	}
	var err error
	d.cleanupOnce.Do(func() {
		err = os.RemoveAll(d.Dir)
	})
	return err
}
