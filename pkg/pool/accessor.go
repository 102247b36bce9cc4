package pool

import (
	"sync"
)

// Accessor is a short-lived, move-only capability that exposes one
// descriptor of type T together with whichever lock token on its
// Handler's file_rwlock was needed to obtain it. Callers use the
// descriptor through GetDescriptor, then call Release exactly once —
// directly on completion, or deferred — to hand the descriptor back
// to its Handler and release the lock.
//
// An Accessor must not be copied. There is intentionally no way to
// obtain a second Accessor for the same id: ownership of T transfers
// to whichever Accessor currently holds it, matching the move-only
// contract on DescriptorTrait.
type Accessor[T any] struct {
	once sync.Once

	handler  *Handler[T]
	id       DescriptorID
	fd       T
	readOnly bool
}

// GetDescriptor returns the underlying descriptor. It is only valid
// to use between vending and Release.
func (a *Accessor[T]) GetDescriptor() T {
	return a.fd
}

// IsReadOnly returns true iff this Accessor was vended for Read or
// TryRead.
func (a *Accessor[T]) IsReadOnly() bool {
	return a.readOnly
}

// Release returns the descriptor to the Handler's idle set and
// releases the lock token acquired when this Accessor was vended. It
// is safe to call more than once; only the first call has an effect,
// so that deferring Release alongside an explicit early Release is
// harmless.
func (a *Accessor[T]) Release() {
	a.once.Do(func() {
		a.handler.release(a.id, a.fd, a.readOnly)
	})
}
