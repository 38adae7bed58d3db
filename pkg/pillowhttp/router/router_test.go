package router

import (
	"testing"
)

type recordingHandler struct {
	lastParams map[string]string
	called     int
}

func (h *recordingHandler) Handle(req *Request) bool {
	h.called++
	h.lastParams = req.Params
	return true
}

func TestCompilePatternCaptureOrder(t *testing.T) {
	_, names, err := compilePattern("/users/:id/items/*rest")
	if err != nil {
		t.Fatalf("compilePattern: %v", err)
	}
	want := []string{"id", "rest"}
	if len(names) != len(want) {
		t.Fatalf("paramNames = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("paramNames[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestDispatchBindsParamsAndInvokes(t *testing.T) {
	rt := NewRouter(nil)
	h := &recordingHandler{}
	if _, err := rt.AddHandlerRoute("GET", "/users/:id/items/*rest", h); err != nil {
		t.Fatalf("AddHandlerRoute: %v", err)
	}

	handled, resp := rt.Dispatch("GET", "/users/42/items/a/b", nil)
	if !handled {
		t.Fatalf("expected request to be handled")
	}
	if resp != nil {
		t.Errorf("handler-backed route should not produce a StaticResponse, got %+v", resp)
	}
	if h.called != 1 {
		t.Fatalf("handler called %d times, want 1", h.called)
	}
	if h.lastParams["id"] != "42" || h.lastParams["rest"] != "a/b" {
		t.Errorf("params = %+v, want id=42 rest=a/b", h.lastParams)
	}
}

func TestDispatchMethodMismatchReturns405(t *testing.T) {
	rt := NewRouter(nil)
	rt.MethodMismatchAction = Return405
	h := &recordingHandler{}
	if _, err := rt.AddHandlerRoute("GET", "/users/:id/items/*rest", h); err != nil {
		t.Fatalf("AddHandlerRoute: %v", err)
	}

	handled, resp := rt.Dispatch("POST", "/users/42/items/a/b", nil)
	if !handled {
		t.Fatalf("expected a synthesized 405 response")
	}
	if resp == nil || resp.Status != 405 {
		t.Fatalf("resp = %+v, want status 405", resp)
	}
	allow, ok := resp.Headers.GetString("Allow")
	if !ok || allow != "GET" {
		t.Errorf("Allow header = %q, want GET", allow)
	}
	if h.called != 0 {
		t.Errorf("handler should not have been invoked on method mismatch")
	}
}

func TestDispatchUnmatchedPassthroughByDefault(t *testing.T) {
	rt := NewRouter(nil)
	handled, resp := rt.Dispatch("GET", "/nope", nil)
	if handled || resp != nil {
		t.Fatalf("expected passthrough (unhandled), got handled=%v resp=%+v", handled, resp)
	}
}

func TestDispatchUnmatchedReturns404(t *testing.T) {
	rt := NewRouter(nil)
	rt.UnmatchedAction = Return404
	handled, resp := rt.Dispatch("GET", "/nope", nil)
	if !handled || resp == nil || resp.Status != 404 {
		t.Fatalf("handled=%v resp=%+v, want handled 404", handled, resp)
	}
}

func TestDispatchDeadHandlerBehavesAsNonMatch(t *testing.T) {
	rt := NewRouter(nil)
	h1 := &recordingHandler{}
	h2 := &recordingHandler{}
	ref, err := rt.AddHandlerRoute("GET", "/ping", h1)
	if err != nil {
		t.Fatalf("AddHandlerRoute: %v", err)
	}
	if _, err := rt.AddHandlerRoute("GET", "/ping", h2); err != nil {
		t.Fatalf("AddHandlerRoute: %v", err)
	}

	rt.Registry().Forget(ref)

	handled, _ := rt.Dispatch("GET", "/ping", nil)
	if !handled {
		t.Fatalf("expected the second route to still handle the request")
	}
	if h1.called != 0 {
		t.Errorf("forgotten handler must not be invoked")
	}
	if h2.called != 1 {
		t.Errorf("live handler should have been invoked, called = %d", h2.called)
	}
}

func TestDispatchStaticRoute(t *testing.T) {
	rt := NewRouter(nil)
	if err := rt.AddStaticRoute("GET", "/health", 200, nil, []byte("ok")); err != nil {
		t.Fatalf("AddStaticRoute: %v", err)
	}

	handled, resp := rt.Dispatch("GET", "/health", nil)
	if !handled || resp == nil || resp.Status != 200 || string(resp.Body) != "ok" {
		t.Fatalf("handled=%v resp=%+v", handled, resp)
	}
}

func TestDispatchRegistrationOrderWins(t *testing.T) {
	rt := NewRouter(nil)
	first := &recordingHandler{}
	second := &recordingHandler{}
	if _, err := rt.AddHandlerRoute("", "/a", first); err != nil {
		t.Fatalf("AddHandlerRoute: %v", err)
	}
	if _, err := rt.AddHandlerRoute("", "/a", second); err != nil {
		t.Fatalf("AddHandlerRoute: %v", err)
	}

	rt.Dispatch("GET", "/a", nil)
	if first.called != 1 || second.called != 0 {
		t.Errorf("expected first-registered route to win: first=%d second=%d", first.called, second.called)
	}
}
