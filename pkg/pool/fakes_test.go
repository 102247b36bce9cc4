package pool_test

import (
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// fakeDescriptor stands in for a real OS-level descriptor in tests.
// It records its own path and mode so tests can assert on what the
// pool actually opened, and whether it has been closed.
type fakeDescriptor struct {
	path   string
	write  bool
	closed bool
}

// fakeTrait is a hand-written pool.DescriptorTrait[*fakeDescriptor].
// A go.uber.org/mock-generated mock isn't available here (see
// DESIGN.md), so tests drive behaviour directly through this fake's
// fields instead of EXPECT()-style call recording.
type fakeTrait struct {
	mu         sync.Mutex
	openCount  int
	closeCount int
	failOpen   error
}

func (t *fakeTrait) Open(path string, write bool) (*fakeDescriptor, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failOpen != nil {
		return nil, t.failOpen
	}
	t.openCount++
	return &fakeDescriptor{path: path, write: write}, nil
}

func (t *fakeTrait) Close(fd *fakeDescriptor) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeCount++
	fd.closed = true
	return nil
}

func (t *fakeTrait) counts() (opens, closes int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.openCount, t.closeCount
}

// fakePathCanonicaliser is a deterministic, filesystem-free
// pool.PathCanonicaliser for tests that don't care about real symlink
// resolution: it just maps each input string through an explicit
// table, defaulting to the identity mapping.
type fakePathCanonicaliser struct {
	aliases map[string]string
}

func (c *fakePathCanonicaliser) Canonicalize(path string) (string, error) {
	if canonical, ok := c.aliases[path]; ok {
		return canonical, nil
	}
	return path, nil
}

var errFakeCanonicalisation = status.Error(codes.Internal, "fake canonicalisation failure")
