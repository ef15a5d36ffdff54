// Package web is the inbound HTTP surface: the upstream webhook endpoint,
// a health probe, an index route, and the websocket fan-out.
package web

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gagliardetto/solana-go/rpc"

	"sol-dex-hub/internal/archive"
	"sol-dex-hub/internal/kv"
	"sol-dex-hub/internal/observability"
	"sol-dex-hub/internal/queue"
)

// maxBodyBytes caps inbound webhook bodies. The upstream ships large slot
// ranges after reconnects.
const maxBodyBytes = 300 << 20

// Options configures a Server. Store, Intake and Events are required; the
// rest is optional.
type Options struct {
	Store  kv.Store
	Intake *queue.Queue
	Events *queue.Queue

	// RPC serves the health probe's slot check. Skipped when nil.
	RPC *rpc.Client

	// DB is the optional archival store, pinged by the health probe.
	DB *archive.Pool

	// WSTicket authorizes websocket subscribers when non-empty.
	WSTicket string

	Metrics *observability.Metrics
	Logger  *log.Logger
}

// Server handles the inbound HTTP routes.
type Server struct {
	store    kv.Store
	intake   *queue.Queue
	events   *queue.Queue
	rpc      *rpc.Client
	db       *archive.Pool
	wsTicket string
	metrics  *observability.Metrics
	logger   *log.Logger

	ws wsState
}

// NewServer creates a Server from opts.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Server{
		store:    opts.Store,
		intake:   opts.Intake,
		events:   opts.Events,
		rpc:      opts.RPC,
		db:       opts.DB,
		wsTicket: opts.WSTicket,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}
}

// Handler returns the route table wrapped with request decompression.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /metrics", s.handleHealth)
	mux.HandleFunc("POST /sol_dex_stream", s.handleStream)
	mux.HandleFunc("GET /sol_dex_ws", s.handleWS)
	return s.decompress(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	io.WriteString(w, "Hello")
}

// handleStream accepts one webhook batch and queues its raw body. Probe
// pings are acknowledged and dropped; a full intake queue answers 503 so
// the upstream retries.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.logger.Printf("[web] read stream body: %v", err)
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	// real batches always carry the metadata block; anything else is the
	// upstream checking the connection
	if !bytes.Contains(body, []byte("metadata")) {
		s.logger.Printf("[web] discard probe body (%d bytes)", len(body))
		if s.metrics != nil {
			s.metrics.ProbesDiscarded.Inc()
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := s.intake.Push(r.Context(), string(body)); err != nil {
		if errors.Is(err, queue.ErrFull) {
			if s.metrics != nil {
				s.metrics.BatchesRejected.Inc()
			}
			writeError(w, http.StatusServiceUnavailable, "intake queue full")
			return
		}
		s.logger.Printf("[web] queue batch: %v", err)
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	if s.metrics != nil {
		s.metrics.BatchesAccepted.Inc()
	}
	w.WriteHeader(http.StatusOK)
}

// decompress unwraps compressed request bodies by Content-Encoding.
func (s *Server) decompress(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch strings.ToLower(r.Header.Get("Content-Encoding")) {
		case "", "identity":
			next.ServeHTTP(w, r)
			return
		case "gzip":
			zr, err := gzip.NewReader(r.Body)
			if err != nil {
				writeError(w, http.StatusBadRequest, "bad gzip body")
				return
			}
			r.Body = zr
		case "deflate":
			r.Body = flate.NewReader(r.Body)
		case "br":
			r.Body = io.NopCloser(brotli.NewReader(r.Body))
		default:
			writeError(w, http.StatusUnsupportedMediaType, "unsupported content encoding")
			return
		}
		r.Header.Del("Content-Encoding")
		r.Header.Del("Content-Length")
		r.ContentLength = -1
		next.ServeHTTP(w, r)
	})
}

type errorResp struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResp{Error: msg})
}
