package web

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"sol-dex-hub/internal/queue"
)

// wsPollInterval is the cadence at which a subscriber is fed from the
// events queue.
const wsPollInterval = 500 * time.Millisecond

// subscribeMessage starts the event feed for a connected client.
const subscribeMessage = "subscribe_dex_trades"

// wsState guards the single-subscriber slot.
type wsState struct {
	connected atomic.Bool
}

var upgrader = websocket.Upgrader{
	// the subscriber is a trusted internal consumer, not a browser
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS admits at most one live subscriber. After the client sends
// subscribeMessage, the server polls the events queue every 500ms, sends
// each non-empty snapshot as one JSON array, and trims it off once the
// write succeeded. A disconnect frees the slot.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.wsTicket != "" && r.URL.Query().Get("ticket") != s.wsTicket {
		writeError(w, http.StatusUnauthorized, "no auth websocket")
		return
	}
	if !s.ws.connected.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, "already have connected client")
		return
	}
	defer func() {
		s.ws.connected.Store(false)
		if s.metrics != nil {
			s.metrics.WSSubscriberConnected.Set(0)
		}
	}()
	if s.metrics != nil {
		s.metrics.WSSubscriberConnected.Set(1)
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("[web] ws upgrade: %v", err)
		return
	}
	defer conn.Close()
	s.logger.Printf("[web] ws client connected: %s", r.RemoteAddr)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			s.logger.Printf("[web] ws client %s gone before subscribing: %v", r.RemoteAddr, err)
			return
		}
		if strings.TrimSpace(string(msg)) == subscribeMessage {
			break
		}
	}

	s.streamEvents(r.Context(), conn, r.RemoteAddr)
	s.logger.Printf("[web] ws client disconnected: %s", r.RemoteAddr)
}

func (s *Server) streamEvents(ctx context.Context, conn *websocket.Conn, who string) {
	// a parallel read drain surfaces the disconnect; control frames are
	// handled inside ReadMessage
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			raws, err := s.events.Snapshot(ctx, queue.EventsBound)
			if err != nil {
				s.logger.Printf("[web] ws %s snapshot events: %v", who, err)
				continue
			}
			if len(raws) == 0 {
				continue
			}
			// the queued entries are JSON objects already; frame them
			// as one array without re-marshaling
			msg := "[" + strings.Join(raws, ",") + "]"
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				s.logger.Printf("[web] ws %s write: %v", who, err)
				return
			}
			if err := s.events.Trim(ctx, int64(len(raws))); err != nil {
				s.logger.Printf("[web] ws %s trim events: %v", who, err)
				return
			}
		}
	}
}
