// Package api serves the indexer query surface over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"campaign-indexer/internal/domain"
	"campaign-indexer/internal/ingestion"
	"campaign-indexer/internal/observability"
	"campaign-indexer/internal/solana"
	"campaign-indexer/internal/storage"
)

// Pagination bounds for /transactions.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ServerOptions contains configuration for creating a Server.
type ServerOptions struct {
	Txs       storage.TransactionStore
	Events    storage.CampaignEventStore
	Watermark *ingestion.Watermark
	RPC       solana.RPCClient
	ProgramID string
	Logger    *log.Logger
}

// Server exposes indexed data and pipeline status.
type Server struct {
	txs       storage.TransactionStore
	events    storage.CampaignEventStore
	watermark *ingestion.Watermark
	rpc       solana.RPCClient
	programID string
	logger    *log.Logger
}

// NewServer creates the query API server.
func NewServer(opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Server{
		txs:       opts.Txs,
		events:    opts.Events,
		watermark: opts.Watermark,
		rpc:       opts.RPC,
		programID: opts.ProgramID,
		logger:    logger,
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /transactions", s.handleTransactions)
	mux.HandleFunc("GET /transaction/{signature}", s.handleTransaction)
	mux.HandleFunc("GET /transaction/{signature}/events", s.handleTransactionEvents)
	mux.Handle("GET /metrics", observability.Handler())

	return mux
}

// HealthResponse is the JSON response for the /health endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
	})
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Mode                 string `json:"mode"`
	ProgramID            string `json:"program_id"`
	LastIndexedSlot      int64  `json:"last_indexed_slot"`
	LatestBlockchainSlot *int64 `json:"latest_blockchain_slot,omitempty"`
	SlotsBehind          *int64 `json:"slots_behind,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Mode:            "websocket-program-scoped",
		ProgramID:       s.programID,
		LastIndexedSlot: s.watermark.Load(),
	}

	// Chain lag is best effort: a flaky RPC must not take /status down
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if current, err := s.rpc.GetSlot(ctx); err == nil {
		behind := current - resp.LastIndexedSlot
		if behind < 0 {
			behind = 0
		}
		resp.LatestBlockchainSlot = &current
		resp.SlotsBehind = &behind
	} else {
		s.logger.Printf("Status slot lookup failed: %v", err)
	}

	writeJSON(w, http.StatusOK, resp)
}

// TransactionResponse is the JSON shape of one indexed transaction.
type TransactionResponse struct {
	ID        int64  `json:"id"`
	Signature string `json:"signature"`
	Slot      int64  `json:"slot"`
	BlockTime *int64 `json:"block_time"`
	Success   bool   `json:"success"`
	Fee       *int64 `json:"fee"`
	IndexedAt string `json:"indexed_at"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.txs.GetRecent(r.Context(), limit, offset)
	if err != nil {
		s.logger.Printf("GetRecent failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to query transactions")
		return
	}
	if len(txs) == 0 {
		writeError(w, http.StatusNotFound, "no transactions found")
		return
	}

	writeJSON(w, http.StatusOK, transactionResponses(txs))
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	signature := r.PathValue("signature")

	txs, err := s.txs.GetBySignature(r.Context(), signature)
	if err != nil {
		s.logger.Printf("GetBySignature failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to query transaction")
		return
	}
	if len(txs) == 0 {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	writeJSON(w, http.StatusOK, transactionResponses(txs))
}

// EventResponse is the JSON shape of one decoded campaign event.
type EventResponse struct {
	ID          int64   `json:"id"`
	Signature   string  `json:"signature"`
	Slot        int64   `json:"slot"`
	EventType   string  `json:"event_type"`
	CampaignID  uint64  `json:"campaign_id"`
	UserPubkey  string  `json:"user_pubkey"`
	Amount      *int64  `json:"amount,omitempty"`
	GoalAmount  *int64  `json:"goal_amount,omitempty"`
	Deadline    *int64  `json:"deadline,omitempty"`
	MetadataURL *string `json:"metadata_url,omitempty"`
	IndexedAt   string  `json:"indexed_at"`
}

func (s *Server) handleTransactionEvents(w http.ResponseWriter, r *http.Request) {
	signature := r.PathValue("signature")

	events, err := s.events.GetBySignature(r.Context(), signature)
	if err != nil {
		s.logger.Printf("Events GetBySignature failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to query events")
		return
	}
	if len(events) == 0 {
		writeError(w, http.StatusNotFound, "no events found for transaction")
		return
	}

	resp := make([]EventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, EventResponse{
			ID:          e.ID,
			Signature:   e.Signature,
			Slot:        e.Slot,
			EventType:   e.EventType,
			CampaignID:  e.CampaignID,
			UserPubkey:  e.UserPubkey,
			Amount:      e.Amount,
			GoalAmount:  e.GoalAmount,
			Deadline:    e.Deadline,
			MetadataURL: e.MetadataURL,
			IndexedAt:   e.IndexedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func transactionResponses(txs []*domain.Transaction) []TransactionResponse {
	resp := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp = append(resp, TransactionResponse{
			ID:        tx.ID,
			Signature: tx.Signature,
			Slot:      tx.Slot,
			BlockTime: tx.BlockTime,
			Success:   tx.Success,
			Fee:       tx.Fee,
			IndexedAt: tx.IndexedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp
}

// parsePagination reads limit/offset query parameters. Limits are clamped to
// MaxLimit; negative values are rejected.
func parsePagination(r *http.Request) (limit, offset int64, err error) {
	limit = DefaultLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 1 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
	}

	return limit, offset, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
