package pool

import (
	"github.com/google/uuid"
)

// DescriptorID uniquely identifies a DescriptorRecord for the lifetime
// of the underlying open descriptor. It is assigned by the Manager
// when a descriptor is opened, and is never reused.
type DescriptorID = uuid.UUID

// newDescriptorID mints a new, effectively unique DescriptorID. IDs are
// random rather than sequential, so that callers can never infer
// anything about open order from the value itself.
func newDescriptorID() DescriptorID {
	return uuid.Must(uuid.NewRandom())
}

// DescriptorTrait is the external capability that knows how to open
// and close descriptors of type T for a given path. Exactly one
// DescriptorTrait implementation is used per Handler; the Manager
// itself is generic over T only at the call sites that need to invoke
// this interface, never in its own stored state.
//
// Implementations must respect the write flag: when write is true, the
// file is created or truncated as appropriate; when false, it is
// opened read-only. Close must tolerate being called exactly once per
// successful Open, and must release all OS-level resources held by T.
//
// T is expected to be move-only: once handed to a caller, ownership of
// the value transfers with it. Implementations and callers in this
// module never retain a copy of T after passing it onward.
type DescriptorTrait[T any] interface {
	Open(path string, write bool) (T, error)
	Close(fd T) error
}
