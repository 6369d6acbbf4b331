package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

const maxBodyBytes = 1 << 20

type handlers struct {
	host *host.Host
}

type ContractInfo struct {
	Label   string `json:"label"`
	Address string `json:"address"`
}

// ExecuteRequest is the body of an execute call.
type ExecuteRequest struct {
	Sender string          `json:"sender"`
	Funds  types.Coins     `json:"funds"`
	Msg    json.RawMessage `json:"msg"`
}

type BlockResponse struct {
	Height uint64          `json:"height"`
	Time   types.Timestamp `json:"time"`
}

type MintRequest struct {
	Address string      `json:"address"`
	Coins   types.Coins `json:"coins"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Logger.Debug().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeContractError maps host and contract errors onto HTTP statuses.
// Anything the contract rejected is the caller's fault.
func writeContractError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, host.ErrUnknownContract):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, host.ErrUnsupported):
		writeError(w, http.StatusNotImplemented, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func readBody(w http.ResponseWriter, r *http.Request, out any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if raw, ok := out.(*json.RawMessage); ok {
		if !json.Valid(body) {
			return fmt.Errorf("body is not valid json")
		}
		*raw = body
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode body: %w", err)
	}
	return nil
}

// contract resolves the {contract} url param, which may be a label or an address.
func (a *handlers) contract(r *http.Request) string {
	param := chi.URLParam(r, "contract")
	if addr, ok := a.host.Address(param); ok {
		return addr
	}
	return param
}

func (a *handlers) listContracts(w http.ResponseWriter, r *http.Request) {
	labels := a.host.Contracts()
	out := make([]ContractInfo, 0, len(labels))
	for _, l := range labels {
		addr, _ := a.host.Address(l)
		out = append(out, ContractInfo{Label: l, Address: addr})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *handlers) query(w http.ResponseWriter, r *http.Request) {
	var msg json.RawMessage
	if err := readBody(w, r, &msg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := a.host.Query(r.Context(), a.contract(r), msg)
	if err != nil {
		writeContractError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, json.RawMessage(res))
}

func (a *handlers) execute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := readBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Sender == "" || len(req.Msg) == 0 {
		writeError(w, http.StatusBadRequest, "sender and msg are required")
		return
	}
	res, err := a.host.Execute(r.Context(), a.contract(r), req.Sender, req.Funds, req.Msg)
	if err != nil {
		writeContractError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *handlers) sudo(w http.ResponseWriter, r *http.Request) {
	var msg json.RawMessage
	if err := readBody(w, r, &msg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := a.host.Sudo(r.Context(), a.contract(r), msg)
	if err != nil {
		writeContractError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *handlers) reply(w http.ResponseWriter, r *http.Request) {
	var reply types.Reply
	if err := readBody(w, r, &reply); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := a.host.Reply(r.Context(), a.contract(r), reply)
	if err != nil {
		writeContractError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *handlers) block(w http.ResponseWriter, r *http.Request) {
	height, t := a.host.Block()
	writeJSON(w, http.StatusOK, BlockResponse{Height: height, Time: t})
}

// nextBlock advances one block interval, or ?seconds=N when given.
func (a *handlers) nextBlock(w http.ResponseWriter, r *http.Request) {
	if s := r.URL.Query().Get("seconds"); s != "" {
		secs, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "seconds must be a non-negative integer")
			return
		}
		a.host.AdvanceTime(time.Duration(secs) * time.Second)
	} else {
		a.host.NextBlock()
	}
	a.block(w, r)
}

func (a *handlers) balance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.host.Bank().Balance(chi.URLParam(r, "address"), chi.URLParam(r, "denom")))
}

func (a *handlers) mint(w http.ResponseWriter, r *http.Request) {
	var req MintRequest
	if err := readBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.host.API().AddrValidate(req.Address); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.host.Bank().Mint(req.Address, req.Coins...); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, req.Coins)
}
