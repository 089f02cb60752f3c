// docsbackend is a fake microservice used to exercise the docs gateway locally.
// It serves an OpenAPI document on /api-docs and a health endpoint on /health.
//
// Usage:
//
//	go run ./scripts/docsbackend -port 8081 -name user-service
//	go run ./scripts/docsbackend -port 8085 -name payment-service -fail-after 30s
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"
)

type document struct {
	OpenAPI string                    `json:"openapi"`
	Info    map[string]string         `json:"info"`
	Servers []map[string]string       `json:"servers"`
	Paths   map[string]map[string]any `json:"paths"`
}

func newDocument(name, addr string) document {
	return document{
		OpenAPI: "3.0.1",
		Info: map[string]string{
			"title":   name,
			"version": "1.0.0",
		},
		Servers: []map[string]string{{"url": "http://localhost" + addr}},
		Paths: map[string]map[string]any{
			"/" + name + "/ping": {
				"get": map[string]any{
					"summary":   "Ping " + name,
					"responses": map[string]any{"200": map[string]string{"description": "OK"}},
				},
			},
		},
	}
}

func main() {
	var (
		port      = flag.Int("port", 8081, "port to listen on")
		name      = flag.String("name", "user-service", "service name reported in the document")
		fail      = flag.Bool("fail", false, "answer 500 on every docs request")
		failAfter = flag.Duration("fail-after", 0, "start failing docs requests after this duration")
	)
	flag.Parse()

	addr := fmt.Sprintf(":%d", *port)
	var failing atomic.Bool
	failing.Store(*fail)
	if *failAfter > 0 {
		time.AfterFunc(*failAfter, func() {
			log.Printf("%s: switching to failure mode", *name)
			failing.Store(true)
		})
	}

	body, err := json.Marshal(newDocument(*name, addr))
	if err != nil {
		log.Fatalf("encode document: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api-docs", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("request: method=%s path=%s from=%s", r.Method, r.URL.Path, r.RemoteAddr)
		if failing.Load() {
			http.Error(w, "docs unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	})

	// the gateway health checker probes this
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	log.Printf("starting %s on %s", *name, addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
