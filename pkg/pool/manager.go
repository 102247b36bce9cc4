package pool

import (
	"sync"

	"github.com/buildbarn/bb-storage/pkg/clock"
	"github.com/buildbarn/bb-storage/pkg/util"
)

// Manager enforces the global cap on simultaneously open descriptors,
// mediates every open and close, and hands out Handlers keyed by
// canonical path. There is normally exactly one Manager per process.
//
// Manager itself holds no knowledge of any particular descriptor type
// T; Open, Close and GetHandler are package-level generic functions
// that take the relevant DescriptorTrait[T] as an argument, so that
// the bookkeeping table inside Manager never needs to store a T.
type Manager struct {
	limit             int
	policy            EvictionPolicy
	clock             clock.Clock
	pathCanonicaliser PathCanonicaliser
	errorLogger       util.ErrorLogger

	lock     sync.Mutex
	records  map[DescriptorID]*descriptorRecord
	pending  int
	registry *registry
}

type discardErrorLogger struct{}

func (discardErrorLogger) Log(err error) {}

// Limit returns the configured or discovered cap on the number of
// simultaneously open descriptors.
func (m *Manager) Limit() int {
	return m.limit
}

// Used returns the number of descriptors currently registered with
// the Manager, whether idle or held by a live Accessor. This is for
// diagnostics only; callers should not use it to make decisions, as
// it can change the moment it is observed.
func (m *Manager) Used() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.records)
}

// Available returns Limit() - Used(). For diagnostics only.
func (m *Manager) Available() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.limit - len(m.records)
}

// Open opens a new descriptor of type T for path, evicting an idle
// descriptor first if the cap has been reached. requestClose is
// generic over whichever id the Manager ends up asking about: it is
// not bound to the descriptor this particular call to Open produces.
// The Manager binds it to this call's own id once that id is known,
// and invokes the bound closure — without the Manager's mutex held —
// whenever it wants this exact descriptor given up for eviction.
// requestClose must return false if the id passed to it is not
// currently idle.
//
// On success, the returned DescriptorID must eventually be passed to
// exactly one call to Close with the same trait and fd.
func Open[T any](m *Manager, trait DescriptorTrait[T], path string, write bool, requestClose func(DescriptorID) bool) (DescriptorID, T, error) {
	var zero T
	if err := m.reserveSlot(); err != nil {
		return DescriptorID{}, zero, err
	}

	fd, err := trait.Open(path, write)
	if err != nil {
		m.releaseReservedSlot()
		return DescriptorID{}, zero, NewOpenFailedError(path, err)
	}

	id := newDescriptorID()
	m.lock.Lock()
	m.pending--
	m.records[id] = &descriptorRecord{
		id:           id,
		path:         path,
		isWrite:      write,
		lastUsed:     m.clock.Now(),
		useCount:     1,
		requestClose: func() bool { return requestClose(id) },
	}
	m.policy.NotifyOpenedFile(id)
	m.lock.Unlock()

	managerOpensTotal.Inc()
	managerDescriptorsUsed.Set(float64(m.Used()))
	return id, fd, nil
}

// Close releases the DescriptorRecord for id and closes fd through
// trait. It must be called exactly once per successful Open.
func Close[T any](m *Manager, trait DescriptorTrait[T], id DescriptorID, fd T) {
	m.lock.Lock()
	delete(m.records, id)
	m.policy.NotifyClosedFile(id)
	m.lock.Unlock()

	managerClosesTotal.Inc()
	managerDescriptorsUsed.Set(float64(m.Used()))

	if err := trait.Close(fd); err != nil {
		m.errorLogger.Log(util.StatusWrapf(err, "Failed to close file descriptor"))
	}
}

// NotifyUsed updates the record's last-used timestamp and use count,
// and lets the eviction policy reorder itself. It may be called from
// any goroutine.
func (m *Manager) NotifyUsed(id DescriptorID) {
	m.lock.Lock()
	defer m.lock.Unlock()
	record, ok := m.records[id]
	if !ok {
		return
	}
	now := m.clock.Now()
	if now.After(record.lastUsed) {
		record.lastUsed = now
	}
	record.useCount++
	m.policy.NotifyUsed(id)
}

// GetHandler canonicalises path and returns the Handler that
// coordinates access to it, creating one if none exists yet. Every
// call must be paired with a call to the returned Handler's Release()
// method once the caller is done with it.
//
// GetHandler fails with a TypeMismatch error if a Handler already
// exists for this canonical path but was created for a different
// descriptor type.
func GetHandler[T any](m *Manager, path string, trait DescriptorTrait[T]) (*Handler[T], error) {
	canonicalPath, err := m.pathCanonicaliser.Canonicalize(path)
	if err != nil {
		return nil, util.StatusWrapf(err, "Failed to canonicalize path %#v", path)
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if existing, ok := m.registry.get(canonicalPath); ok {
		handler, ok := existing.(*Handler[T])
		if !ok {
			return nil, NewTypeMismatchError(canonicalPath)
		}
		handler.refCount.increase()
		return handler, nil
	}

	handler := newHandler(m, canonicalPath, trait)
	handler.refCount = 1
	m.registry.install(canonicalPath, handler)
	return handler, nil
}

// registry removal on last Release is done by Handler.Release directly,
// since it already holds m.lock when the refcount hits zero.

// reserveSlot reserves a slot for an in-flight Open call, evicting
// idle descriptors through their owning Handlers until one is freed
// if the cap has already been reached. Eviction candidates are always
// asked outside of m.lock, per the callback contract documented on
// EvictionPolicy and descriptorRecord.requestClose.
func (m *Manager) reserveSlot() error {
	m.lock.Lock()
	for {
		if m.pending+len(m.records) < m.limit {
			m.pending++
			m.lock.Unlock()
			return nil
		}

		candidate, ok := m.policy.Oldest()
		if !ok {
			m.lock.Unlock()
			managerLimitReachedTotal.Inc()
			return ErrLimitReached
		}

		evicted := false
		for ok {
			requestClose := m.records[candidate].requestClose
			m.lock.Unlock()
			succeeded := requestClose()
			m.lock.Lock()
			if succeeded {
				evicted = true
				break
			}
			candidate, ok = m.policy.Next(candidate)
		}
		if evicted {
			managerEvictionsTotal.Inc()
			// Loop back around: re-check the cap rather than
			// assume the freed slot is still available, since a
			// concurrent Open may have claimed it first (see
			// DESIGN.md, Open Question (a)).
			continue
		}

		m.lock.Unlock()
		managerLimitReachedTotal.Inc()
		return ErrLimitReached
	}
}

// releaseReservedSlot gives back a slot reserved by reserveSlot whose
// Open ultimately failed.
func (m *Manager) releaseReservedSlot() {
	m.lock.Lock()
	m.pending--
	m.lock.Unlock()
}
