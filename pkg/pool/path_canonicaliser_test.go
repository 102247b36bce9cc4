package pool_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/buildbarn/bb-fdpool/pkg/pool"

	"github.com/stretchr/testify/require"
)

func TestOSPathCanonicaliserResolvesSymlinksAndDotDot(t *testing.T) {
	dir := t.TempDir()
	realDir := filepath.Join(dir, "real")
	require.NoError(t, os.Mkdir(realDir, 0755))
	target := filepath.Join(realDir, "foo")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(realDir, link))

	canonicaliser := pool.NewOSPathCanonicaliser()

	wantCanonical, err := canonicaliser.Canonicalize(target)
	require.NoError(t, err)

	viaSymlink, err := canonicaliser.Canonicalize(filepath.Join(link, "foo"))
	require.NoError(t, err)
	require.Equal(t, wantCanonical, viaSymlink)

	viaDotDot, err := canonicaliser.Canonicalize(filepath.Join(realDir, "..", "real", "foo"))
	require.NoError(t, err)
	require.Equal(t, wantCanonical, viaDotDot)
}

// TestOSPathCanonicaliserIdempotence is the "Idempotence of
// canonicalisation" law from spec.md §8: canonicalising an
// already-canonical path is a no-op.
func TestOSPathCanonicaliserIdempotence(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "foo")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))

	canonicaliser := pool.NewOSPathCanonicaliser()

	once, err := canonicaliser.Canonicalize(target)
	require.NoError(t, err)
	twice, err := canonicaliser.Canonicalize(once)
	require.NoError(t, err)
	require.Equal(t, once, twice)
}

// TestOSPathCanonicaliserHandlesNonExistentSuffix covers the case
// described in spec.md §4.4: a path that does not exist yet (a file
// about to be created for writing) resolves its longest existing
// prefix and appends the rest verbatim.
func TestOSPathCanonicaliserHandlesNonExistentSuffix(t *testing.T) {
	dir := t.TempDir()
	realDir := filepath.Join(dir, "real")
	require.NoError(t, os.Mkdir(realDir, 0755))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(realDir, link))

	canonicaliser := pool.NewOSPathCanonicaliser()

	canonical, err := canonicaliser.Canonicalize(filepath.Join(link, "new-file"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(realDir, "new-file"), canonical)
}
