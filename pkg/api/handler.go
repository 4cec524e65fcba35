package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/hazyhaar/floorspeech/pkg/kit"
	"github.com/hazyhaar/floorspeech/pkg/match"
)

// maxBodyBytes bounds a POST body; Record issues run to a few MiB of text.
const maxBodyBytes = 32 << 20

// NewRouter returns an http.Handler with all floorspeech API routes.
func NewRouter(svc *Service) http.Handler {
	mux := http.NewServeMux()
	h := &handler{endpoints: svc.endpoints(), svc: svc}

	mux.HandleFunc("GET /v1/segment", methodNotAllowed)
	mux.HandleFunc("POST /v1/segment", h.handleDocuments(h.segment))
	mux.HandleFunc("GET /v1/attribute", methodNotAllowed)
	mux.HandleFunc("POST /v1/attribute", h.handleDocuments(h.attribute))
	mux.HandleFunc("GET /v1/resolve/{session}/{speaker}", h.handleResolve)
	mux.HandleFunc("GET /v1/sessions", h.handleSessions)
	mux.HandleFunc("GET /v1/health", h.handleHealth)
	if svc.Metrics != nil {
		mux.Handle("GET /metrics", svc.Metrics.Handler())
	}

	return cors(mux)
}

type handler struct {
	endpoints
	svc *Service
}

// --- segment / attribute ---

func (h *handler) handleDocuments(ep kit.Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req documentsReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		resp, err := ep(kit.WithTransport(r.Context(), kit.TransportHTTP), &req)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// --- resolve one speaker ---

func (h *handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	session, err := strconv.Atoi(r.PathValue("session"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "session must be an integer")
		return
	}
	resp, err := h.resolve(kit.WithTransport(r.Context(), kit.TransportHTTP), &resolveReq{
		Session: session,
		Speaker: r.PathValue("speaker"),
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- list sessions ---

func (h *handler) handleSessions(w http.ResponseWriter, r *http.Request) {
	resp, err := h.sessions(kit.WithTransport(r.Context(), kit.TransportHTTP), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status      string `json:"status"`
	Sessions    int    `json:"sessions"`
	Legislators int    `json:"legislators"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Sessions:    h.svc.Rosters.Count(),
		Legislators: h.svc.Rosters.TotalLegislators(),
	})
}

// --- helpers ---

func statusFor(err error) int {
	switch {
	case errors.Is(err, match.ErrNoRoster):
		return http.StatusNotFound
	case isClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
