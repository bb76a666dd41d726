package backend

import (
	"log/slog"
	"net/http"

	"github.com/instantcocoa/meshtrace/pkg/httputil"
)

// Handler exposes the backend service over HTTP.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler creates a new backend HTTP handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With("component", "handler"),
	}
}

// Register registers the routes on a traced mux.
func (h *Handler) Register(mux *httputil.Mux) {
	mux.Handle("/health", http.HandlerFunc(h.health))
	mux.Handle("/data", http.HandlerFunc(h.data))
	mux.Handle("/compute", http.HandlerFunc(h.compute))
	mux.Handle("/schema", http.HandlerFunc(h.schema))
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "backend",
	})
}

func (h *Handler) data(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.FetchData(r.Context())
	if err != nil {
		httputil.DownstreamError(w, "dataapi unavailable")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) compute(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.svc.Compute(r.Context()))
}

func (h *Handler) schema(w http.ResponseWriter, r *http.Request) {
	raw, err := h.svc.Schema(r.Context())
	if err != nil {
		httputil.DownstreamError(w, "dataapi unavailable")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, raw)
}
