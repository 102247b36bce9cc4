package pool

// registry is a process-wide map from canonical path to the Handler
// that coordinates access to it. It lives inside the Manager and is
// only ever mutated while the Manager's mutex is held.
//
// Handlers are stored as `any` because the registry spans every
// descriptor type T instantiated by callers of GetHandler; the type
// parameter is recovered (or found not to match) with a type
// assertion at the call site, which is what lets GetHandler detect
// TypeMismatch without the registry itself being generic.
//
// The registry holds a non-owning reference: a Handler is owned by
// whoever is holding a *Handler[T] returned from GetHandler, and it is
// the caller's responsibility to call Release() when done (see
// handler.go). There is no Go-level weak pointer here — GC timing
// isn't a good fit for the deterministic "the handler disappears the
// moment its last holder releases it" contract the rest of this
// package relies on, so ownership is tracked with an explicit
// reference count instead.
type registry struct {
	handlers map[string]any
}

func newRegistry() *registry {
	return &registry{
		handlers: map[string]any{},
	}
}

// get returns the handler currently registered for path, if any.
func (r *registry) get(path string) (any, bool) {
	h, ok := r.handlers[path]
	return h, ok
}

// install registers a newly created handler for path. Must only be
// called while no handler is registered for that path.
func (r *registry) install(path string, handler any) {
	r.handlers[path] = handler
}

// remove clears the entry for path, whichever handler it holds. It is
// idempotent: removing a path that has no entry is a no-op.
func (r *registry) remove(path string) {
	delete(r.handlers, path)
}
