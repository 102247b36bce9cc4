package pool

import (
	"os"
	"path/filepath"

	"github.com/buildbarn/bb-storage/pkg/util"
)

// PathCanonicaliser normalises a path into the canonical form used as
// the Registry's key. The same input must always produce the same
// output for the lifetime of the process, barring filesystem
// mutations outside this package's control.
//
// Canonicalisation does not detect hardlinks: two distinct canonical
// paths pointing at the same inode are treated as distinct files, and
// therefore get distinct Handlers.
type PathCanonicaliser interface {
	Canonicalize(path string) (string, error)
}

type osPathCanonicaliser struct{}

// NewOSPathCanonicaliser creates a PathCanonicaliser that resolves
// symlinks and collapses "." and ".." segments using the actual
// filesystem. Where the path exists, the whole thing is resolved.
// Where it does not (for example, a file that is about to be created
// for writing), the longest existing prefix is resolved and the
// non-existent suffix is appended verbatim.
func NewOSPathCanonicaliser() PathCanonicaliser {
	return osPathCanonicaliser{}
}

func (osPathCanonicaliser) Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", util.StatusWrapf(err, "Failed to make path %#v absolute", path)
	}
	return canonicalizeExistingPrefix(filepath.Clean(abs))
}

func canonicalizeExistingPrefix(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", util.StatusWrapf(err, "Failed to resolve symlinks in %#v", path)
	}

	parent := filepath.Dir(path)
	if parent == path {
		// Reached the root of the filesystem without finding an
		// existing component. Nothing left to resolve.
		return path, nil
	}
	resolvedParent, err := canonicalizeExistingPrefix(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(path)), nil
}
