package frontend

import (
	"log/slog"
	"net/http"

	"github.com/instantcocoa/meshtrace/pkg/httputil"
)

// Handler exposes the frontend service over HTTP.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler creates a new frontend HTTP handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With("component", "handler"),
	}
}

// Register registers the routes on a traced mux.
func (h *Handler) Register(mux *httputil.Mux) {
	mux.Handle("/health", http.HandlerFunc(h.health))
	mux.Handle("/", http.HandlerFunc(h.index))
	mux.Handle("/work", http.HandlerFunc(h.work))
	mux.Handle("/data", http.HandlerFunc(h.data))
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	// "/" is the catch-all pattern; keep the baseline trace clean.
	if r.URL.Path != "/" {
		httputil.Error(w, http.StatusNotFound, "not found")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, h.svc.Index(r.Context()))
}

func (h *Handler) work(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Work(r.Context())
	if err != nil {
		httputil.DownstreamError(w, "backend unavailable")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) data(w http.ResponseWriter, r *http.Request) {
	raw, err := h.svc.Data(r.Context())
	if err != nil {
		httputil.DownstreamError(w, "backend unavailable")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, raw)
}
