// Command pillowhttpd is a small demonstration server built on top of
// package router and package serverdemo: a couple of handler routes
// registered against an in-memory Registry, served over real TCP.
// Logging follows the teacher's bolt/core.App.Run: stdlib log.Printf at
// start/stop, plus the server's request-level failures through
// log.Default(); no logging library pulled in for a demo binary this
// small.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/3E-972/pillow/internal/serverdemo"
	"github.com/3E-972/pillow/pkg/pillowhttp/header"
	"github.com/3E-972/pillow/pkg/pillowhttp/router"
)

func main() {
	addr := flag.String("addr", ":8080", "address for the demo HTTP server")
	flag.Parse()

	srv := &serverdemo.Server{
		Router:       newDemoRouter(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Logger:       log.Default(),
	}

	errChan := make(chan error, 1)
	go func() {
		log.Printf("pillowhttpd: listening on %s", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Printf("pillowhttpd: server error: %v", err)
		os.Exit(1)
	case <-sigChan:
		log.Println("pillowhttpd: shutting down")
		if err := srv.Close(); err != nil {
			log.Printf("pillowhttpd: shutdown error: %v", err)
		}
		log.Println("pillowhttpd: stopped")
	}
}

type healthHandler struct{}

func (healthHandler) Handle(req *router.Request) bool {
	if req.Responder == nil {
		return false
	}
	req.Responder.WriteResponse(200, nil, []byte("ok"))
	return true
}

type echoHandler struct{}

func (echoHandler) Handle(req *router.Request) bool {
	if req.Responder == nil {
		return false
	}
	h := header.New(1)
	h.AddString("Content-Type", "text/plain")
	req.Responder.WriteResponse(200, h, []byte("id="+req.Params["id"]))
	return true
}

func newDemoRouter() *router.Router {
	rt := router.NewRouter(nil)
	rt.UnmatchedAction = router.Return404
	rt.MethodMismatchAction = router.Return405

	if _, err := rt.AddHandlerRoute("GET", "/health", healthHandler{}); err != nil {
		log.Fatalf("pillowhttpd: registering /health: %v", err)
	}
	if _, err := rt.AddHandlerRoute("GET", "/echo/:id", echoHandler{}); err != nil {
		log.Fatalf("pillowhttpd: registering /echo/:id: %v", err)
	}
	if err := rt.AddStaticRoute("GET", "/version", 200, nil, []byte("pillowhttp demo")); err != nil {
		log.Fatalf("pillowhttpd: registering /version: %v", err)
	}
	return rt
}
