package pool_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/buildbarn/bb-fdpool/pkg/pool"

	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, limit int) *pool.Manager {
	manager, err := pool.NewManager(pool.Configuration{
		Limit:             limit,
		PathCanonicaliser: &fakePathCanonicaliser{aliases: map[string]string{}},
	})
	require.NoError(t, err)
	return manager
}

// TestHandlerModeFlipClosesAndReopens is scenario 1 from spec.md §8:
// acquiring a write Accessor then, after releasing it, a read
// Accessor must close the idle write descriptor and open a fresh read
// one rather than reuse it.
func TestHandlerModeFlipClosesAndReopens(t *testing.T) {
	manager := newTestManager(t, 4)
	trait := &fakeTrait{}

	handler, err := pool.GetHandler(manager, "/p", trait)
	require.NoError(t, err)
	defer handler.Release()

	writeAccessor, ok, err := handler.GetAccessor(pool.Write)
	require.NoError(t, err)
	require.True(t, ok)
	writeAccessor.Release()

	readAccessor, ok, err := handler.GetAccessor(pool.Read)
	require.NoError(t, err)
	require.True(t, ok)
	defer readAccessor.Release()

	opens, closes := trait.counts()
	require.Equal(t, 2, opens)
	require.Equal(t, 1, closes)
	require.Equal(t, 1, manager.Used())
}

// TestHandlerWriterBlocksTryReader is scenario 3: while a write
// Accessor is held, a concurrent TryRead must report the lock as
// contended rather than block.
func TestHandlerWriterBlocksTryReader(t *testing.T) {
	manager := newTestManager(t, 4)
	trait := &fakeTrait{}

	handler, err := pool.GetHandler(manager, "/p", trait)
	require.NoError(t, err)
	defer handler.Release()

	writeAccessor, ok, err := handler.GetAccessor(pool.Write)
	require.NoError(t, err)
	require.True(t, ok)
	defer writeAccessor.Release()

	_, ok, err = handler.GetAccessor(pool.TryRead)
	require.NoError(t, err)
	require.False(t, ok)
}

// TestHandlerReuseOfSerialisedReaders is the "Reuse" law: two
// getAccessor(Read) calls that are serialised (the first Accessor is
// released before the second is requested) must reuse the same idle
// descriptor rather than opening a second one.
func TestHandlerReuseOfSerialisedReaders(t *testing.T) {
	manager := newTestManager(t, 4)
	trait := &fakeTrait{}

	handler, err := pool.GetHandler(manager, "/p", trait)
	require.NoError(t, err)
	defer handler.Release()

	first, ok, err := handler.GetAccessor(pool.Read)
	require.NoError(t, err)
	require.True(t, ok)
	firstFD := first.GetDescriptor()
	first.Release()

	second, ok, err := handler.GetAccessor(pool.Read)
	require.NoError(t, err)
	require.True(t, ok)
	defer second.Release()

	require.Same(t, firstFD, second.GetDescriptor())
	opens, _ := trait.counts()
	require.Equal(t, 1, opens)
}

// TestHandlerConcurrentReadersGetDistinctDescriptors is the other half
// of the Reuse law: concurrent (unreleased) readers never share a
// descriptor.
func TestHandlerConcurrentReadersGetDistinctDescriptors(t *testing.T) {
	manager := newTestManager(t, 4)
	trait := &fakeTrait{}

	handler, err := pool.GetHandler(manager, "/p", trait)
	require.NoError(t, err)
	defer handler.Release()

	first, ok, err := handler.GetAccessor(pool.Read)
	require.NoError(t, err)
	require.True(t, ok)
	defer first.Release()

	second, ok, err := handler.GetAccessor(pool.Read)
	require.NoError(t, err)
	require.True(t, ok)
	defer second.Release()

	require.NotSame(t, first.GetDescriptor(), second.GetDescriptor())
	opens, _ := trait.counts()
	require.Equal(t, 2, opens)
}

// TestGetHandlerSharesInstanceAcrossCanonicalAliases is scenario 4:
// two paths that canonicalise to the same string must resolve to the
// same Handler instance.
func TestGetHandlerSharesInstanceAcrossCanonicalAliases(t *testing.T) {
	dir := t.TempDir()
	realDir := filepath.Join(dir, "real")
	require.NoError(t, os.Mkdir(realDir, 0755))
	target := filepath.Join(realDir, "foo")
	require.NoError(t, os.WriteFile(target, []byte("hello"), 0644))

	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(realDir, link))

	manager, err := pool.NewManager(pool.Configuration{Limit: 4})
	require.NoError(t, err)
	trait := &fakeTrait{}

	handlerDirect, err := pool.GetHandler(manager, target, trait)
	require.NoError(t, err)
	defer handlerDirect.Release()

	handlerViaSymlink, err := pool.GetHandler(manager, filepath.Join(link, "foo"), trait)
	require.NoError(t, err)
	defer handlerViaSymlink.Release()

	require.Same(t, handlerDirect, handlerViaSymlink)
}

// TestHandlerEvictionTargetsSpecificIdAmongMultipleIdle guards against
// evicting an arbitrary idle descriptor when a Handler has more than
// one idle at once (legal under the Reuse law for concurrent,
// unreleased readers). The Manager's eviction walk must be able to
// name exactly the id its policy selected and have only that one
// closed, even though a newer sibling idle descriptor sits on the
// same Handler.
func TestHandlerEvictionTargetsSpecificIdAmongMultipleIdle(t *testing.T) {
	manager := newTestManager(t, 2)
	trait := &fakeTrait{}

	handler, err := pool.GetHandler(manager, "/p", trait)
	require.NoError(t, err)
	defer handler.Release()

	older, ok, err := handler.GetAccessor(pool.Read)
	require.NoError(t, err)
	require.True(t, ok)
	olderFD := older.GetDescriptor()

	newer, ok, err := handler.GetAccessor(pool.Read)
	require.NoError(t, err)
	require.True(t, ok)
	newerFD := newer.GetDescriptor()

	older.Release()
	newer.Release()

	// /p's two idle descriptors fill the limit of 2, so opening a
	// third path must evict one of them. LRU order says the one
	// opened (and never re-used since) first goes first.
	otherHandler, err := pool.GetHandler(manager, "/q", trait)
	require.NoError(t, err)
	defer otherHandler.Release()

	accessor, ok, err := otherHandler.GetAccessor(pool.Read)
	require.NoError(t, err)
	require.True(t, ok)
	defer accessor.Release()

	require.True(t, olderFD.closed)
	require.False(t, newerFD.closed)
	require.Equal(t, 2, manager.Used())
}

// TestHandlerReleaseClosesIdleDescriptorsOnDestruction checks that
// dropping the last external reference to a Handler closes every
// descriptor that was still idle.
func TestHandlerReleaseClosesIdleDescriptorsOnDestruction(t *testing.T) {
	manager := newTestManager(t, 4)
	trait := &fakeTrait{}

	handler, err := pool.GetHandler(manager, "/p", trait)
	require.NoError(t, err)

	accessor, ok, err := handler.GetAccessor(pool.Read)
	require.NoError(t, err)
	require.True(t, ok)
	accessor.Release()

	handler.Release()

	_, closes := trait.counts()
	require.Equal(t, 1, closes)
	require.Equal(t, 0, manager.Used())
}
