package router

import "sync"

// HandlerRef is an opaque weak handle into a Registry, returned by
// Register. The zero HandlerRef never resolves.
type HandlerRef uint64

// ObjectRef is the named-member-dispatch counterpart of HandlerRef.
type ObjectRef uint64

// Handler processes a request matched by a route and reports whether it
// produced a response.
type Handler interface {
	Handle(req *Request) bool
}

// MemberInvoker dispatches by a method name looked up at request time,
// standing in for the original's QObject meta-call invocation: a route
// names a member, and whatever object the registry currently resolves
// the reference to is asked to run it.
type MemberInvoker interface {
	InvokeMember(member string, req *Request) bool
}

// Registry holds the handlers and objects routes reference, by opaque
// token rather than by direct pointer. This is the Go stand-in for the
// original's QPointer weak references (spec §9 "Weak handler
// references"): Forget/ForgetObject simulate a handler being destroyed
// elsewhere, after which any route still holding that token resolves to
// "no match" instead of dereferencing a dangling pointer.
type Registry struct {
	mu          sync.Mutex
	nextHandler HandlerRef
	nextObject  ObjectRef
	handlers    map[HandlerRef]Handler
	objects     map[ObjectRef]MemberInvoker
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[HandlerRef]Handler),
		objects:  make(map[ObjectRef]MemberInvoker),
	}
}

// Register adds a handler and returns a weak reference to it.
func (r *Registry) Register(h Handler) HandlerRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextHandler++
	ref := r.nextHandler
	r.handlers[ref] = h
	return ref
}

// Forget removes a handler, as if it had been destroyed. Routes that
// reference it will behave as non-matching from this point on.
func (r *Registry) Forget(ref HandlerRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, ref)
}

func (r *Registry) resolve(ref HandlerRef) (Handler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handlers[ref]
	return h, ok
}

// RegisterObject adds a MemberInvoker and returns a weak reference to it.
func (r *Registry) RegisterObject(o MemberInvoker) ObjectRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextObject++
	ref := r.nextObject
	r.objects[ref] = o
	return ref
}

// ForgetObject removes a MemberInvoker, as if it had been destroyed.
func (r *Registry) ForgetObject(ref ObjectRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, ref)
}

func (r *Registry) resolveObject(ref ObjectRef) (MemberInvoker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.objects[ref]
	return o, ok
}
