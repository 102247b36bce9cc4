package pool

import (
	"sync"
)

// referenceCount is an int that panics on underflow or on being
// increased from zero, mirroring the pattern the reference repository
// uses to track ownership of its NFSv4 opened-file state. A Handler
// uses it instead of relying on garbage collection, because the
// destruction contract here ("closes its idle descriptors and leaves
// the registry the moment the last holder releases it") needs to fire
// deterministically, not whenever the collector gets around to it.
type referenceCount int

func (rc *referenceCount) increase() {
	if *rc <= 0 {
		panic("Attempted to increase zero reference count")
	}
	(*rc)++
}

func (rc *referenceCount) decrease() bool {
	if *rc <= 0 {
		panic("Attempted to decrease zero reference count")
	}
	(*rc)--
	return *rc == 0
}

// AccessMode selects how a caller wants to use a Handler's underlying
// file: for reading (shared) or writing (exclusive), and whether to
// block or fail fast when the lock is contended.
type AccessMode int

const (
	// Read blocks until a shared lock on the file can be acquired.
	Read AccessMode = iota
	// Write blocks until a unique lock on the file can be acquired.
	Write
	// TryRead acquires a shared lock only if doing so does not block.
	TryRead
	// TryWrite acquires a unique lock only if doing so does not block.
	TryWrite
)

func (m AccessMode) isWrite() bool {
	return m == Write || m == TryWrite
}

func (m AccessMode) isTry() bool {
	return m == TryRead || m == TryWrite
}

// handlerState tracks which kind of descriptor a Handler currently
// deals in, per the state machine in spec.md §4.2.
type handlerState int

const (
	handlerStateEmpty handlerState = iota
	handlerStateRead
	handlerStateWrite
)

// Handler coordinates every access to a single canonical path for a
// single descriptor type T. It owns the reader/writer lock over the
// logical file, a small cache of idle descriptors, and vends
// Accessors that hand descriptors out to callers one at a time.
//
// A Handler holds only a plain pointer back to its Manager, not a
// reference-counted one: the Manager outlives every Handler it has
// ever vended in every realistic embedding of this package, so there
// is no destruction race to guard against in practice. Accessors,
// conversely, hold a strong reference to their Handler via the
// release callback captured at vending time, which is what keeps the
// Handler alive for as long as any of its descriptors are checked
// out.
type Handler[T any] struct {
	manager *Manager
	path    string
	trait   DescriptorTrait[T]

	fileRWLock sync.RWMutex

	mu       sync.Mutex
	refCount referenceCount
	state    handlerState
	idle     map[DescriptorID]T
}

func newHandler[T any](m *Manager, path string, trait DescriptorTrait[T]) *Handler[T] {
	return &Handler[T]{
		manager: m,
		path:    path,
		trait:   trait,
		idle:    map[DescriptorID]T{},
	}
}

// isReadOnly returns true iff the Handler currently has only
// read-opened descriptors idle or checked out.
func (h *Handler[T]) isReadOnly() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state != handlerStateWrite
}

// GetAccessor vends an Accessor for this Handler's file in the given
// mode, implementing the algorithm from spec.md §4.2: acquire the
// file's reader/writer lock, flip mode (closing any idle descriptors
// of the wrong kind) if needed, reuse or open a descriptor, and hand
// it out wrapped with a release callback.
//
// For the Try* modes, a false second return value means the lock was
// contended; it is not an error.
func (h *Handler[T]) GetAccessor(mode AccessMode) (*Accessor[T], bool, error) {
	h.mu.Lock()

	if !h.tryLockFile(mode) {
		h.mu.Unlock()
		if mode.isTry() {
			return nil, false, nil
		}
		h.blockLockFile(mode)
		h.mu.Lock()
	}

	// acquireDescriptor releases h.mu internally before it returns,
	// whatever the outcome: it may need to call into the Manager, and
	// the Handler mutex must never be held across such a call (see
	// spec.md §5).
	id, fd, err := h.acquireDescriptor(mode)
	if err != nil {
		h.unlockFile(mode)
		return nil, false, err
	}

	h.manager.NotifyUsed(id)

	return &Accessor[T]{
		handler:  h,
		id:       id,
		fd:       fd,
		readOnly: !mode.isWrite(),
	}, true, nil
}

// tryLockFile attempts to acquire file_rwlock without blocking. It
// must be called with h.mu held, and leaves h.mu held on success.
func (h *Handler[T]) tryLockFile(mode AccessMode) bool {
	if mode.isWrite() {
		return h.fileRWLock.TryLock()
	}
	return h.fileRWLock.TryRLock()
}

// blockLockFile acquires file_rwlock, blocking as needed. h.mu must
// not be held while calling this, since the lock may be held for the
// lifetime of an Accessor.
func (h *Handler[T]) blockLockFile(mode AccessMode) {
	if mode.isWrite() {
		h.fileRWLock.Lock()
	} else {
		h.fileRWLock.RLock()
	}
}

func (h *Handler[T]) unlockFile(mode AccessMode) {
	if mode.isWrite() {
		h.fileRWLock.Unlock()
	} else {
		h.fileRWLock.RUnlock()
	}
}

// acquireDescriptor implements steps 3-6 of the vending algorithm. It
// must be called with h.mu held and file_rwlock already acquired in
// the appropriate mode. It always returns with h.mu released: the
// mode-flip close and the fallback open both call into the Manager,
// and per spec.md §5 the Handler mutex must never be held across such
// a call (the Manager's open path re-enters this Handler through
// request_close, which would deadlock against a mutex this same
// goroutine still held).
func (h *Handler[T]) acquireDescriptor(mode AccessMode) (DescriptorID, T, error) {
	write := mode.isWrite()
	wantState := handlerStateRead
	if write {
		wantState = handlerStateWrite
	}

	var toClose []idEntry[T]
	if h.state != handlerStateEmpty && h.state != wantState {
		// Mode flip: close every idle descriptor before opening one
		// in the new mode. The unique file_rwlock held for Write, or
		// the fact that a Read mode-flip can only happen when the
		// Handler was otherwise Empty of live accessors, guarantees
		// nothing currently idle is also checked out.
		for id, fd := range h.idle {
			toClose = append(toClose, idEntry[T]{id: id, value: fd})
			delete(h.idle, id)
		}
		h.state = handlerStateEmpty
	}

	var reuse *idEntry[T]
	for id, fd := range h.idle {
		delete(h.idle, id)
		reuse = &idEntry[T]{id: id, value: fd}
		break
	}
	h.mu.Unlock()

	for _, entry := range toClose {
		Close(h.manager, h.trait, entry.id, entry.value)
	}

	if reuse != nil {
		h.mu.Lock()
		h.state = wantState
		h.mu.Unlock()
		return reuse.id, reuse.value, nil
	}

	id, fd, err := Open(h.manager, h.trait, h.path, write, h.requestClose)
	if err != nil {
		var zero T
		return DescriptorID{}, zero, err
	}

	h.mu.Lock()
	h.state = wantState
	h.mu.Unlock()
	return id, fd, nil
}

// requestClose is passed to Manager.Open as this Handler's eviction
// callback, per the contract in spec.md §4.2 step 5. The Manager
// invokes it with the specific id of the descriptor it wants this
// Handler to give up; it must close exactly that id and no other,
// refusing (returning false) if that id is not currently idle (it is
// checked out, already closed, or belongs to a different Handler).
//
// This mirrors FileHandler::canBeClosed(FileId) in the original
// reference implementation: the Manager always names the id it wants,
// rather than leaving the Handler to pick an arbitrary idle victim —
// picking arbitrarily would let a Handler evict a sibling descriptor
// that was never the one the Manager's eviction policy selected.
func (h *Handler[T]) requestClose(id DescriptorID) bool {
	h.mu.Lock()
	fd, ok := h.idle[id]
	if !ok {
		h.mu.Unlock()
		return false
	}
	delete(h.idle, id)
	h.mu.Unlock()

	Close(h.manager, h.trait, id, fd)
	return true
}

type idEntry[T any] struct {
	id    DescriptorID
	value T
}

// release is called by an Accessor when it is dropped. The descriptor
// is parked back in idle (never closed here) and the file lock token
// is released.
func (h *Handler[T]) release(id DescriptorID, fd T, readOnly bool) {
	h.mu.Lock()
	h.idle[id] = fd
	h.mu.Unlock()

	mode := Read
	if !readOnly {
		mode = Write
	}
	h.unlockFile(mode)
}

// Release drops one external reference to this Handler. Once the last
// one is dropped, every idle descriptor is closed and the Handler is
// removed from the Manager's registry, atomically with respect to
// concurrent GetHandler calls for the same path.
func (h *Handler[T]) Release() {
	h.manager.lock.Lock()
	last := h.refCount.decrease()
	if last {
		h.manager.registry.remove(h.path)
	}
	h.manager.lock.Unlock()

	if !last {
		return
	}

	h.mu.Lock()
	idle := h.idle
	h.idle = map[DescriptorID]T{}
	h.state = handlerStateEmpty
	h.mu.Unlock()

	for id, fd := range idle {
		Close(h.manager, h.trait, id, fd)
	}
}
