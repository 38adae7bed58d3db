package serverdemo

import (
	"context"
	"testing"
	"time"

	"github.com/3E-972/pillow/pkg/pillowhttp/client"
	"github.com/3E-972/pillow/pkg/pillowhttp/header"
	"github.com/3E-972/pillow/pkg/pillowhttp/router"
	"github.com/3E-972/pillow/pkg/pillowhttp/transport"
)

type pingHandler struct{}

func (pingHandler) Handle(req *router.Request) bool {
	h := header.New(1)
	h.AddString("Content-Type", "text/plain")
	req.Responder.WriteResponse(200, h, []byte("pong:"+req.Params["id"]))
	return true
}

// TestClientAgainstServerdemoOverPipeTransport drives a client.Client,
// backed by a PipeTransport, against a serverdemo connection handler
// fed the server half of the same in-memory pipe: the full C4+C5+C7+C8
// path end to end, with no real socket involved.
func TestClientAgainstServerdemoOverPipeTransport(t *testing.T) {
	rt := router.NewRouter(nil)
	if _, err := rt.AddHandlerRoute("GET", "/ping/:id", pingHandler{}); err != nil {
		t.Fatalf("AddHandlerRoute: %v", err)
	}
	srv := &Server{Router: rt}

	pt := transport.NewPipeTransport()
	serverConn := pt.Dial()
	go srv.handleConnection(serverConn)

	c := client.New(func() client.Transport { return pt })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.Request(ctx, "GET", "http://example.invalid/ping/7", nil, nil); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if c.StatusCode() != 200 {
		t.Fatalf("StatusCode = %d, want 200", c.StatusCode())
	}
	if string(c.Content()) != "pong:7" {
		t.Errorf("Content = %q, want pong:7", c.Content())
	}
}
