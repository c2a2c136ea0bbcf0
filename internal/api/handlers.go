package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"cosmossdk.io/math"
	"github.com/go-chi/chi/v5"

	"github.com/hydro-labs/hydro-staking-engine/internal/engine"
	"github.com/hydro-labs/hydro-staking-engine/internal/types"
)

type stakeRequest struct {
	Staker string `json:"staker"`
	Amount string `json:"amount"`
}

type callerRequest struct {
	Caller string `json:"caller"`
}

type amountResponse struct {
	Amount string `json:"amount"`
}

type stateResponse struct {
	Owner       string `json:"owner"`
	Rate        string `json:"rate"`
	TotalStaked string `json:"total_staked"`
	Apy         string `json:"apy"`
	StakeActive bool   `json:"stake_active"`
}

type stakerResponse struct {
	Address       string              `json:"address"`
	Amount        string              `json:"amount"`
	RatePerMinute string              `json:"rate_per_minute"`
	Withdrawal    *withdrawalResponse `json:"withdrawal,omitempty"`
}

type withdrawalResponse struct {
	Amount    string `json:"amount"`
	ReleaseAt int64  `json:"release_at"`
}

func (s *Server) handleStake(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, ok := parseAmount(w, req.Amount)
	if !ok {
		return
	}

	if err := s.engine.Stake(r.Context(), req.Staker, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "staked"})
}

func (s *Server) handleWithdrawProfit(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, ok := parseAmount(w, req.Amount)
	if !ok {
		return
	}

	reward, err := s.engine.WithdrawProfit(r.Context(), req.Staker, amount)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, amountResponse{Amount: reward.String()})
}

func (s *Server) handleExit(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reward, err := s.engine.Exit(r.Context(), req.Caller)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, amountResponse{Amount: reward.String()})
}

func (s *Server) handleWithdrawFunds(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, ok := parseAmount(w, req.Amount)
	if !ok {
		return
	}

	if err := s.engine.WithdrawFunds(r.Context(), req.Staker, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "withdrawal requested"})
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	claimed, err := s.engine.ClaimHydro(r.Context(), req.Caller)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, amountResponse{Amount: claimed.String()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateResponse{
		Owner:       s.engine.Owner(),
		Rate:        s.engine.Rate().String(),
		TotalStaked: s.engine.TotalStaked().String(),
		Apy:         s.engine.APY().String(),
		StakeActive: s.engine.StakeActive(),
	})
}

func (s *Server) handleApy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"apy": s.engine.APY().String()})
}

func (s *Server) handleStaker(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	user, ok := s.engine.User(address)
	if !ok {
		writeError(w, http.StatusNotFound, types.ErrNotStaker)
		return
	}
	writeJSON(w, http.StatusOK, stakerResponseFromSnapshot(user))
}

func (s *Server) handleStakerRewards(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	reward, err := s.engine.CurrentRewards(address)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, amountResponse{Amount: reward.String()})
}

func (s *Server) handleSetStakeActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller string `json:"caller"`
		Active bool   `json:"active"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.engine.SetStakeActive(r.Context(), req.Caller, req.Active); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"stake_active": req.Active})
}

func (s *Server) handleSetRate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller string `json:"caller"`
		Rate   string `json:"rate"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	rate, ok := math.NewIntFromString(req.Rate)
	if !ok {
		writeError(w, http.StatusBadRequest, types.ErrRateOutOfRange)
		return
	}

	if err := s.engine.SetRate(r.Context(), req.Caller, rate); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"rate": rate.String()})
}

// handleSweep moves the engine account's full balance of a named token to the
// owner. Meant for recovering tokens sent to the engine by mistake.
func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller string `json:"caller"`
		Token  string `json:"token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	token, ok := s.tokens[req.Token]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown token %q", req.Token))
		return
	}

	swept, err := s.engine.SweepToken(r.Context(), req.Caller, token)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, amountResponse{Amount: swept.String()})
}

func (s *Server) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller   string `json:"caller"`
		NewOwner string `json:"new_owner"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.engine.TransferOwnership(r.Context(), req.Caller, req.NewOwner); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"owner": req.NewOwner})
}

func (s *Server) handleRenounceOwnership(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.engine.RenounceOwnership(r.Context(), req.Caller); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ownership renounced"})
}

func stakerResponseFromSnapshot(user engine.UserSnapshot) stakerResponse {
	resp := stakerResponse{
		Address:       user.Address,
		Amount:        user.Amount.String(),
		RatePerMinute: user.RatePerMinute.String(),
	}
	if user.Withdrawal.Pending {
		resp.Withdrawal = &withdrawalResponse{
			Amount:    user.Withdrawal.Amount.String(),
			ReleaseAt: user.Withdrawal.ReleaseAt.Unix(),
		}
	}
	return resp
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("malformed request body"))
		return false
	}
	return true
}

func parseAmount(w http.ResponseWriter, raw string) (math.Int, bool) {
	amount, ok := math.NewIntFromString(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, types.ErrInvalidAmount)
		return math.Int{}, false
	}
	return amount, true
}

// writeEngineError maps engine sentinels to HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, types.ErrInvalidAddress),
		errors.Is(err, types.ErrInvalidAmount),
		errors.Is(err, types.ErrAmountOutOfRange),
		errors.Is(err, types.ErrRateOutOfRange):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrNotOwner),
		errors.Is(err, types.ErrNoGatingToken):
		status = http.StatusForbidden
	case errors.Is(err, types.ErrNotStaker),
		errors.Is(err, types.ErrNoPendingRequest):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrPendingRequest),
		errors.Is(err, types.ErrRequestNotMatured),
		errors.Is(err, types.ErrStakingInactive),
		errors.Is(err, types.ErrInsufficientAmount),
		errors.Is(err, types.ErrReentrantCall):
		status = http.StatusConflict
	case errors.Is(err, types.ErrTransferFailed):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}
	writeError(w, status, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(body)
}
