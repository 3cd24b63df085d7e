package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"soba-backend/internal/domain"
	"soba-backend/internal/observability"
	"soba-backend/internal/solana"
	"soba-backend/internal/storage"
)

// statsCacheControl instructs CDN edges to serve snapshots for 30s and
// revalidate in the background for another 59s.
const statsCacheControl = "public, s-maxage=30, stale-while-revalidate=59"

// burnResponse is the wire shape of one burn record.
type burnResponse struct {
	TxHash    string  `json:"txHash"`
	Amount    float64 `json:"amount"`
	Timestamp int64   `json:"timestamp"`
	Sender    string  `json:"sender"`
}

// burnWalletResponse is the wire shape of the burn wallet snapshot.
type burnWalletResponse struct {
	Address   string  `json:"address"`
	Balance   float64 `json:"balance"`
	Timestamp int64   `json:"timestamp"`
}

// nextBurnResponse is the wire shape of the next burn projection.
type nextBurnResponse struct {
	NextBurnDate    int64   `json:"nextBurnDate"`
	EstimatedAmount float64 `json:"estimatedAmount"`
	LastBurnAmount  float64 `json:"lastBurnAmount"`
	LastBurnDate    int64   `json:"lastBurnDate"`
}

// tokenStatsResponse is the wire shape of a stats snapshot.
type tokenStatsResponse struct {
	Price             float64 `json:"price"`
	TotalSupply       float64 `json:"totalSupply"`
	CirculatingSupply float64 `json:"circulatingSupply"`
	BurnedTokens      float64 `json:"burnedTokens"`
	FounderBalance    float64 `json:"founderBalance"`
	Holders           int64   `json:"holders"`
	MarketCap         float64 `json:"marketCap"`
	TotalValue        float64 `json:"totalValue"`
	BurnedValue       float64 `json:"burnedValue"`
	FounderValue      float64 `json:"founderValue"`
	LastUpdated       int64   `json:"lastUpdated"`
	Cached            bool    `json:"cached"`
	CacheAge          int64   `json:"cacheAge,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "SOBA Backend API",
	})
}

func (s *Server) handleBurns(w http.ResponseWriter, r *http.Request) {
	if !s.checkToken(w, r) {
		return
	}

	limit := storage.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := s.burns.ListRecent(r.Context(), limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	resp := make([]burnResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, burnResponse{
			TxHash:    rec.TxHash,
			Amount:    rec.Amount,
			Timestamp: rec.Timestamp,
			Sender:    rec.Sender,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBurnWallet(w http.ResponseWriter, r *http.Request) {
	if !s.checkToken(w, r) {
		return
	}

	balance, err := s.stats.BurnWalletBalance(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, burnWalletResponse{
		Address:   s.burnWallet,
		Balance:   balance,
		Timestamp: s.now().Unix(),
	})
}

func (s *Server) handleNextBurn(w http.ResponseWriter, r *http.Request) {
	if !s.checkToken(w, r) {
		return
	}

	projection, err := s.stats.NextBurn(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nextBurnResponse{
		NextBurnDate:    projection.NextBurnDate,
		EstimatedAmount: projection.EstimatedAmount,
		LastBurnAmount:  projection.LastBurnAmount,
		LastBurnDate:    projection.LastBurnDate,
	})
}

func (s *Server) handleTrackBurns(w http.ResponseWriter, r *http.Request) {
	start := s.now()
	result, err := s.tracker.TrackOnce(r.Context())
	if err != nil {
		observability.RecordTrackRun("error", time.Since(start))
		s.internalError(w, r, err)
		return
	}
	observability.RecordTrackRun("success", result.Duration)
	observability.RecordBurnsIngested(result.New, result.Duplicates)

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Tracked %d new burns (%d already known)", result.New, result.Duplicates),
	})
}

func (s *Server) handleTokenStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.stats.Snapshot(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	observability.RecordSnapshotServed(snap.Cached)

	w.Header().Set("Cache-Control", statsCacheControl)
	writeJSON(w, http.StatusOK, statsToResponse(snap))
}

func statsToResponse(snap *domain.TokenStats) tokenStatsResponse {
	return tokenStatsResponse{
		Price:             snap.Price,
		TotalSupply:       snap.TotalSupply,
		CirculatingSupply: snap.CirculatingSupply,
		BurnedTokens:      snap.BurnedTokens,
		FounderBalance:    snap.FounderBalance,
		Holders:           snap.Holders,
		MarketCap:         snap.MarketCap,
		TotalValue:        snap.TotalValue,
		BurnedValue:       snap.BurnedValue,
		FounderValue:      snap.FounderValue,
		LastUpdated:       snap.LastUpdated,
		Cached:            snap.Cached,
		CacheAge:          snap.CacheAge,
	}
}

// checkToken validates the {tokenAddress} path segment and confirms it is
// the tracked mint. Writes the error response itself when validation fails.
func (s *Server) checkToken(w http.ResponseWriter, r *http.Request) bool {
	addr := r.PathValue("tokenAddress")
	if err := solana.ValidateAddress(addr); err != nil {
		writeError(w, http.StatusBadRequest, "invalid token address")
		return false
	}
	if addr != s.mint {
		writeError(w, http.StatusNotFound, "unknown token")
		return false
	}
	return true
}

// internalError logs the cause server-side and responds with a generic body.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Printf("Error handling %s %s: %v", r.Method, r.URL.Path, err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
