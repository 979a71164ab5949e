package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/holdfast-io/holdfast/internal/domain"
)

// ─── Tips (/v1/tips) ────────────────────────────────────────────────────────

// sendTipRequest is the body for POST /v1/tips. The actor header names the
// sender.
type sendTipRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

func (s *Server) handleSendTip(w http.ResponseWriter, r *http.Request) {
	var req sendTipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	receipt, err := s.svc.SendTip(r.Context(), actor(r), domain.Principal(req.To), req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// ─── Treasury (/v1/treasury) ────────────────────────────────────────────────

func (s *Server) handleTreasury(w http.ResponseWriter, r *http.Request) {
	treasury, err := s.svc.Treasury(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, treasury)
}

// withdrawRequest is the body for POST /v1/treasury/withdraw. Only the
// configured owner may call it.
type withdrawRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) handleWithdrawTreasury(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	treasury, err := s.svc.WithdrawTreasury(r.Context(), actor(r), req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, treasury)
}

// ─── Accounts (/v1/accounts) ────────────────────────────────────────────────

func (s *Server) handleAccountBalance(w http.ResponseWriter, r *http.Request) {
	p := domain.Principal(chi.URLParam(r, "principal"))

	balance, err := s.svc.BalanceOf(r.Context(), p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"principal": p,
		"balance":   balance,
	})
}

// depositRequest is the body for POST /v1/accounts/{principal}/deposit. It
// books an external inflow onto the named account.
type depositRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) handleAccountDeposit(w http.ResponseWriter, r *http.Request) {
	p := domain.Principal(chi.URLParam(r, "principal"))

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ref, err := s.svc.Deposit(r.Context(), p, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"ref":       ref,
		"principal": p,
		"amount":    req.Amount,
	})
}

func (s *Server) handleAccountHistory(w http.ResponseWriter, r *http.Request) {
	p := domain.Principal(chi.URLParam(r, "principal"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := s.svc.HistoryOf(r.Context(), p, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"principal": p,
		"entries":   entries,
	})
}
