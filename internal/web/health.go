package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
)

// healthResp reports liveness of every external dependency.
type healthResp struct {
	DBTest        int64  `json:"db_test"`
	LatestSolSlot uint64 `json:"latest_sol_slot"`
	RedisTest     string `json:"redis_test"`
}

// handleHealth exercises each dependency for real: a KV write/read round
// trip, a slot fetch from the Solana RPC, and a trivial query against the
// archival database when one is configured.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := healthResp{}

	if err := s.store.SetEx(ctx, "check_health", "ok", 10*time.Second); err != nil {
		s.logger.Printf("[web] health kv set: %v", err)
		writeError(w, http.StatusInternalServerError, "kv write failed")
		return
	}
	val, err := s.store.Get(ctx, "check_health")
	if err != nil {
		s.logger.Printf("[web] health kv get: %v", err)
		writeError(w, http.StatusInternalServerError, "kv read failed")
		return
	}
	resp.RedisTest = val

	if s.rpc != nil {
		slot, err := s.rpc.GetSlot(ctx, rpc.CommitmentProcessed)
		if err != nil {
			s.logger.Printf("[web] health rpc slot: %v", err)
			writeError(w, http.StatusInternalServerError, "rpc slot failed")
			return
		}
		resp.LatestSolSlot = slot
	}

	if s.db != nil {
		if err := s.db.QueryRow(ctx, "select 1").Scan(&resp.DBTest); err != nil {
			s.logger.Printf("[web] health db: %v", err)
			writeError(w, http.StatusInternalServerError, "db query failed")
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
