package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/alternatefutures/akash-agent/tools"
)

// maxRequestBody bounds tool parameter payloads. Manifests are the largest
// expected input and stay well under this.
const maxRequestBody = 4 << 20

// Handler dispatches tool invocations to their registered operations.
type Handler struct {
	handlers map[string]tools.Handler
	names    []string
	log      *slog.Logger
}

func NewHandler(handlers map[string]tools.Handler, log *slog.Logger) *Handler {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Handler{
		handlers: handlers,
		names:    names,
		log:      log,
	}
}

// HandleListTools reports the available operation names.
func (h *Handler) HandleListTools(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"tools": h.names})
}

// HandleTool runs one named operation. Unknown names are a routing error
// (404); operation failures are reported in-band as {"error": message} so a
// caller never has to parse failure details out of a status line.
func (h *Handler) HandleTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	handler, ok := h.handlers[name]
	if !ok {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown tool: " + name})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
		return
	}

	result, err := handler(r.Context(), body)
	if err != nil {
		h.log.Warn("Tool invocation failed", "tool", name, "err", err)
		h.writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}
