package router

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/3E-972/pillow/pkg/pillowhttp/header"
)

// UnmatchedAction controls what Dispatch does when no route's path
// pattern matches the request at all.
type UnmatchedAction int

const (
	// Passthrough leaves the request unhandled, for a downstream handler
	// to try.
	Passthrough UnmatchedAction = iota
	// Return404 synthesizes a 404 response.
	Return404
)

// MethodMismatchAction controls what Dispatch does when at least one
// route's path matched but none of them allow the request's method.
type MethodMismatchAction int

const (
	// MismatchPassthrough leaves the request unhandled.
	MismatchPassthrough MethodMismatchAction = iota
	// Return405 synthesizes a 405 response with an Allow header.
	Return405
)

// Route is a single compiled entry: a method (empty means Any), its
// compiled path pattern and parameter names, and the action to run when
// it matches.
type Route struct {
	Method     string
	pattern    *regexp.Regexp
	paramNames []string
	action     RouteAction
}

// Router holds an ordered list of routes and the two error-path
// policies. The zero value (via NewRouter) defaults both policies to
// Passthrough, matching the original's default of letting requests fall
// through to whatever handler sits downstream.
type Router struct {
	registry             *Registry
	routes               []*Route
	UnmatchedAction      UnmatchedAction
	MethodMismatchAction MethodMismatchAction
}

// NewRouter returns an empty Router. A nil registry allocates a private
// one; share a Registry across routers only if routes are meant to
// reference each other's handlers.
func NewRouter(registry *Registry) *Router {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Router{registry: registry}
}

// Registry returns the router's handler/object registry.
func (rt *Router) Registry() *Registry { return rt.registry }

// AddHandlerRoute compiles path and registers a route that invokes
// handler through a weak reference held in the router's Registry. An
// empty method matches any request method.
func (rt *Router) AddHandlerRoute(method, path string, handler Handler) (HandlerRef, error) {
	pattern, names, err := compilePattern(path)
	if err != nil {
		return 0, err
	}
	ref := rt.registry.Register(handler)
	rt.routes = append(rt.routes, &Route{
		Method:     method,
		pattern:    pattern,
		paramNames: names,
		action:     handlerAction{registry: rt.registry, ref: ref},
	})
	return ref, nil
}

// AddNamedMemberRoute compiles path and registers a route that invokes a
// named member on whatever object the registry currently resolves
// object's reference to.
func (rt *Router) AddNamedMemberRoute(method, path string, object MemberInvoker, member string) (ObjectRef, error) {
	pattern, names, err := compilePattern(path)
	if err != nil {
		return 0, err
	}
	ref := rt.registry.RegisterObject(object)
	rt.routes = append(rt.routes, &Route{
		Method:     method,
		pattern:    pattern,
		paramNames: names,
		action:     namedMemberAction{registry: rt.registry, ref: ref, member: member},
	})
	return ref, nil
}

// AddStaticRoute compiles path and registers a route that always serves
// a fixed response, independent of any handler.
func (rt *Router) AddStaticRoute(method, path string, status int, headers *header.Collection, body []byte) error {
	pattern, names, err := compilePattern(path)
	if err != nil {
		return err
	}
	rt.routes = append(rt.routes, &Route{
		Method:     method,
		pattern:    pattern,
		paramNames: names,
		action:     staticAction{resp: StaticResponse{Status: status, Headers: headers, Body: body}},
	})
	return nil
}

// Dispatch matches method and rawPath against the registered routes in
// registration order (spec §4.5 "Dispatch algorithm"). rawPath is
// percent-decoded before matching; decode failure falls back to matching
// it verbatim rather than rejecting the request outright.
//
// It reports whether the request was handled, and when so, the response
// to write (nil if a matched handler wrote its own response directly
// through responder). responder may be nil for callers that only ever
// register static routes.
func (rt *Router) Dispatch(method, rawPath string, responder Responder) (handled bool, resp *StaticResponse) {
	path, err := url.QueryUnescape(rawPath)
	if err != nil {
		path = rawPath
	}

	var pathMatched []*Route
	for _, route := range rt.routes {
		m := route.pattern.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		pathMatched = append(pathMatched, route)

		if route.Method != "" && route.Method != method {
			continue
		}

		req := &Request{Method: method, Path: path, Params: make(map[string]string, len(route.paramNames)), Responder: responder}
		for i, name := range route.paramNames {
			if i+1 < len(m) {
				req.Params[name] = m[i+1]
			}
		}

		ok, staticResp := route.action.invoke(req)
		if !ok {
			// Dead weak reference (spec §4.5 "Handler liveness"): behave
			// as if this route hadn't matched and keep scanning.
			pathMatched = pathMatched[:len(pathMatched)-1]
			continue
		}
		return true, staticResp
	}

	if len(pathMatched) == 0 {
		if rt.UnmatchedAction == Return404 {
			return true, &StaticResponse{Status: 404}
		}
		return false, nil
	}

	if rt.MethodMismatchAction == Return405 {
		allowed := make([]string, 0, len(pathMatched))
		for _, route := range pathMatched {
			allowed = append(allowed, route.Method)
		}
		h := header.New(1)
		h.AddString("Allow", strings.Join(allowed, ", "))
		return true, &StaticResponse{Status: 405, Headers: h}
	}
	return false, nil
}
