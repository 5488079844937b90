// Copyright © 2024 The ELPS authors

package lisp

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Reader abstracts a parser implementation so that it may be implemented in a
// separate package as an optional/swappable component.
type Reader interface {
	// Read the contents of r and return the sequence of LVals that it
	// contains.  The returned LVals are evaluated in order.
	Read(name string, r io.Reader) ([]*LVal, error)
}

// LocationReader is like Reader but assigns physical locations to the tokens
// from r.
type LocationReader interface {
	// ReadLocation the contents of r, associated with physical location loc,
	// and return the sequence of LVals that it contains.
	ReadLocation(name string, loc string, r io.Reader) ([]*LVal, error)
}

// SourceContext describes the source file containing the expression being
// evaluated when a library is asked for another source.
type SourceContext interface {
	// Name is the logical name of the current source.
	Name() string
	// Location is the physical location of the current source.
	Location() string
}

// SourceLibrary resolves and reads source files requested by load and slurp.
type SourceLibrary interface {
	// LoadSource returns the logical name, physical location and contents
	// of the source at loc.
	LoadSource(ctx SourceContext, loc string) (name string, location string, data []byte, err error)
}

// WritableLibrary is a SourceLibrary that also lets programs write files.
type WritableLibrary interface {
	SourceLibrary
	WriteSource(ctx SourceContext, loc string, data []byte) error
}

type sourceContext struct {
	name string
	loc  string
}

func (ctx *sourceContext) Name() string     { return ctx.name }
func (ctx *sourceContext) Location() string { return ctx.loc }

// ErrOutsideRoot is returned by RelativeFileSystemLibrary when a path
// resolves outside of its RootDir.
var ErrOutsideRoot = errors.New("path is outside of the library root directory")

// RelativeFileSystemLibrary resolves relative paths against the directory
// of the file currently being evaluated.  When RootDir is non-empty every
// resolved path must be contained in RootDir.
type RelativeFileSystemLibrary struct {
	RootDir string
}

var _ WritableLibrary = (*RelativeFileSystemLibrary)(nil)

func (lib *RelativeFileSystemLibrary) resolve(ctx SourceContext, loc string) (string, error) {
	if !filepath.IsAbs(loc) && ctx != nil {
		if cur := ctx.Location(); cur != "" {
			loc = filepath.Join(filepath.Dir(cur), loc)
		}
	}
	abs, err := filepath.Abs(loc)
	if err != nil {
		return "", err
	}
	if lib.RootDir == "" {
		return abs, nil
	}
	root, err := filepath.Abs(lib.RootDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, loc)
	}
	return abs, nil
}

// LoadSource implements SourceLibrary.
func (lib *RelativeFileSystemLibrary) LoadSource(ctx SourceContext, loc string) (string, string, []byte, error) {
	abs, err := lib.resolve(ctx, loc)
	if err != nil {
		return "", "", nil, err
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return "", "", nil, err
	}
	return filepath.Base(abs), abs, b, nil
}

// WriteSource implements WritableLibrary.  Existing files are truncated.
func (lib *RelativeFileSystemLibrary) WriteSource(ctx SourceContext, loc string, data []byte) error {
	abs, err := lib.resolve(ctx, loc)
	if err != nil {
		return err
	}
	return os.WriteFile(abs, data, 0644)
}

// FSLibrary reads sources from an fs.FS.  Paths are always interpreted
// relative to the root of FS so the library cannot escape it.
type FSLibrary struct {
	FS fs.FS
}

var _ SourceLibrary = (*FSLibrary)(nil)

// LoadSource implements SourceLibrary.
func (lib *FSLibrary) LoadSource(ctx SourceContext, loc string) (string, string, []byte, error) {
	if !fs.ValidPath(loc) {
		return "", "", nil, &fs.PathError{Op: "open", Path: loc, Err: fs.ErrInvalid}
	}
	b, err := fs.ReadFile(lib.FS, loc)
	if err != nil {
		return "", "", nil, err
	}
	return path.Base(loc), loc, b, nil
}
