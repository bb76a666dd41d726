package dataapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/instantcocoa/meshtrace/pkg/httputil"
)

// Handler exposes the dataapi service over HTTP.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler creates a new dataapi HTTP handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With("component", "handler"),
	}
}

// Register registers the routes on a traced mux.
func (h *Handler) Register(mux *httputil.Mux) {
	mux.Handle("/health", http.HandlerFunc(h.health))
	mux.Handle("/query", http.HandlerFunc(h.query))
	mux.Handle("/schema", http.HandlerFunc(h.schema))
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "dataapi",
	})
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	table := r.URL.Query().Get("table")
	if table == "" {
		table = "products"
	}

	limit := h.svc.store.Len()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.logger.WarnContext(ctx, "bad limit parameter", "limit", raw)
			httputil.BadRequest(w, "parameter 'limit' is not an integer")
			return
		}
		if n < 0 {
			httputil.BadRequest(w, "parameter 'limit' must not be negative")
			return
		}
		limit = n
	}

	result := h.svc.Query(ctx, table, limit)
	httputil.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) schema(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.svc.Schema(r.Context()))
}
