// Command sample runs a small users API on the dispatch core.
//
// Run:
//
//	go run ./cmd/sample serve
//	go run ./cmd/sample serve -c config.yaml --pprof
//
// Print the generated document:
//
//	go run ./cmd/sample spec
//	go run ./cmd/sample spec --format openapi3 -o openapi.json
//
// Routes:
//
//	GET    /swagger       generated Swagger 2.0 document
//	GET    /health        health check
//	GET    /users         list users, optionally filtered by ?role=
//	POST   /users         create user
//	GET    /users/:id     get user
//	PUT    /users/:id     update user
//	DELETE /users/:id     delete user
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
