package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// API is the local HTTP surface the wallet UI drives: it lists pending
// requests, submits user decisions and manages dapp connections. It is
// meant to be bound to localhost; there is no authentication layer.
type API struct {
	pending    *PendingRequestStore
	correlator *DecisionCorrelator
	sessions   *SessionRegistry
	lg         Logger
}

// NewAPI creates the API surface.
func NewAPI(pending *PendingRequestStore, correlator *DecisionCorrelator, sessions *SessionRegistry, lg Logger) *API {
	return &API{
		pending:    pending,
		correlator: correlator,
		sessions:   sessions,
		lg:         lg.NewSystem("api"),
	}
}

// RegisterRoutes attaches all endpoints to the mux.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/requests", a.handleListRequests)
	mux.HandleFunc("POST /v1/requests/{id}/decision", a.handleDecision)
	mux.HandleFunc("GET /v1/connections", a.handleListConnections)
	mux.HandleFunc("POST /v1/connections", a.handleNewConnection)
	mux.HandleFunc("DELETE /v1/connections", a.handleKillAllConnections)
	mux.HandleFunc("DELETE /v1/connections/{peerID}", a.handleKillConnection)
}

func (a *API) handleListRequests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.pending.List())
}

type decisionBody struct {
	Approved bool            `json:"approved"`
	Override json.RawMessage `json:"override,omitempty"`
	Message  string          `json:"message,omitempty"`
}

func (a *API) handleDecision(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var body decisionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid decision body")
		return
	}

	decision := Decision{Approved: body.Approved, Override: body.Override, Message: body.Message}
	if err := a.correlator.Resolve(r.Context(), id, decision); err != nil {
		if errors.Is(err, ErrUnknownRequest) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		a.lg.Error("failed to resolve decision", "requestID", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to resolve decision")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListConnections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.sessions.Connections())
}

type newConnectionBody struct {
	URI            string `json:"uri"`
	AutoSign       bool   `json:"auto_sign,omitempty"`
	OriginatedFrom string `json:"originated_from,omitempty"`
}

func (a *API) handleNewConnection(w http.ResponseWriter, r *http.Request) {
	var body newConnectionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid connection body")
		return
	}

	if err := a.sessions.NewSession(r.Context(), body.URI, body.AutoSign, body.OriginatedFrom); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (a *API) handleKillConnection(w http.ResponseWriter, r *http.Request) {
	a.sessions.KillSession(r.PathValue("peerID"))
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleKillAllConnections(w http.ResponseWriter, r *http.Request) {
	a.sessions.KillAllSessions()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing left to do.
		return
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}
