// Package atomicfs creates files that become visible at their destination
// path only once fully written. A crashed or failed save never leaves a
// torn trace artifact behind.
package atomicfs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

////////////////////////////////////////////////////////////////////////////////

// File writes to a temp file named "<base>.tmp-<random>" in the destination
// directory and renames it over the destination on Close.
type File struct {
	tmpfile *os.File
	dstpath string
	sync    bool
}

////////////////////////////////////////////////////////////////////////////////

type FileOption func(f *File) error

// WithSync fsyncs the temp file before the rename.
func WithSync() FileOption {
	return func(f *File) error {
		f.sync = true
		return nil
	}
}

// WithMode sets the destination file mode.
func WithMode(mode os.FileMode) FileOption {
	return func(f *File) error {
		return f.tmpfile.Chmod(mode)
	}
}

////////////////////////////////////////////////////////////////////////////////

const tmpsuffix = ".tmp-"

func Create(path string, opts ...FileOption) (f *File, err error) {
	path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to make tmp file name: %w", err)
	}
	dir, base := filepath.Split(path)

	tmpf, err := os.CreateTemp(dir, base+tmpsuffix)
	if err != nil {
		return nil, err
	}

	f = &File{tmpfile: tmpf, dstpath: path}
	defer func() {
		if err != nil {
			_ = f.Discard()
		}
	}()

	// Uncommitted temp files are removed when the File is collected.
	runtime.SetFinalizer(f, (*File).Discard)

	for _, opt := range opts {
		err = opt(f)
		if err != nil {
			return
		}
	}

	return f, nil
}

func (f *File) Write(data []byte) (int, error) {
	return f.tmpfile.Write(data)
}

// Discard abandons the file, removing the temp file. Safe to call after
// Close, where it is a no-op.
func (f *File) Discard() error {
	if f.tmpfile == nil {
		return nil
	}
	defer func() {
		f.tmpfile = nil
	}()

	err := f.tmpfile.Close()
	if err != nil {
		return err
	}

	return os.Remove(f.tmpfile.Name())
}

// Close commits the file to its destination path.
func (f *File) Close() (err error) {
	if f.tmpfile == nil {
		return fmt.Errorf("calling atomicfs.File.Close on already finished atomicfs.File")
	}
	defer func() {
		if err != nil {
			_ = f.Discard()
		} else {
			f.tmpfile = nil
		}
	}()

	if f.sync {
		err = f.tmpfile.Sync()
		if err != nil {
			return err
		}
	}

	err = f.tmpfile.Close()
	if err != nil {
		return err
	}

	return os.Rename(f.tmpfile.Name(), f.dstpath)
}

////////////////////////////////////////////////////////////////////////////////

var _ io.WriteCloser = (*File)(nil)

////////////////////////////////////////////////////////////////////////////////
