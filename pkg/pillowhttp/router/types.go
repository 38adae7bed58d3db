// Package router implements the path-template route matcher (spec
// component C5): patterns with ":name" and "*name" placeholders compile
// to anchored regular expressions, and an incoming method+path is
// dispatched to the first route that matches it, in registration order.
package router

import "github.com/3E-972/pillow/pkg/pillowhttp/header"

// Responder lets a matched Handler or MemberInvoker write a response
// directly instead of returning a StaticResponse, mirroring the
// original's HttpRequest::writeResponse() called from inside a handler.
type Responder interface {
	WriteResponse(status int, headers *header.Collection, body []byte) error
}

// Request is the view of an incoming request Dispatch hands to a matched
// route's action. Params holds the route's captured segments keyed by
// parameter name. Responder is nil unless the caller of Dispatch supplied
// one; a Handler that wants to write its own response uses it directly
// and then returns true.
type Request struct {
	Method    string
	Path      string
	Params    map[string]string
	Responder Responder
}

// StaticResponse is a response synthesized directly by the router,
// either because a route serves fixed content or because Dispatch
// itself had to produce a 404/405.
type StaticResponse struct {
	Status  int
	Headers *header.Collection
	Body    []byte
}

// RouteAction is what a matched route does with a request: invoke a
// registered handler, invoke a named member on a registered object, or
// serve a pre-built static response.
type RouteAction interface {
	invoke(req *Request) (handled bool, resp *StaticResponse)
}

type handlerAction struct {
	registry *Registry
	ref      HandlerRef
}

func (a handlerAction) invoke(req *Request) (bool, *StaticResponse) {
	h, ok := a.registry.resolve(a.ref)
	if !ok {
		return false, nil
	}
	return h.Handle(req), nil
}

type namedMemberAction struct {
	registry *Registry
	ref      ObjectRef
	member   string
}

func (a namedMemberAction) invoke(req *Request) (bool, *StaticResponse) {
	o, ok := a.registry.resolveObject(a.ref)
	if !ok {
		return false, nil
	}
	return o.InvokeMember(a.member, req), nil
}

type staticAction struct {
	resp StaticResponse
}

func (a staticAction) invoke(_ *Request) (bool, *StaticResponse) {
	resp := a.resp
	return true, &resp
}
