// Package main is a dev stand-in for the downstream webhook consumer: it
// accepts deliveries on /webhook, logs a body prefix, and answers 200.
package main

import (
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

func main() {
	listenOn := flag.String("listen-on", "0.0.0.0:9999", "HTTP listen address")
	flag.Parse()

	logger := log.New(os.Stdout, "[fakewebhook] ", log.LstdFlags)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Printf("read body: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		prefix := body
		if len(prefix) > 50 {
			prefix = prefix[:50]
		}
		logger.Printf("request body starts with: %s", prefix)
		logger.Printf("processed %d bytes in %v", len(body), time.Since(start))
		w.WriteHeader(http.StatusOK)
	})

	logger.Printf("fake webhook server started, listen on: %s", *listenOn)
	if err := http.ListenAndServe(*listenOn, mux); err != nil {
		logger.Fatalf("serve: %v", err)
	}
}
