package ai

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ssth/ssth-inventory/internal/platform/httpx"
)

// Handler exposes the AI client over HTTP.
type Handler struct {
	client      *Client
	logger      *slog.Logger
	requireUser func(http.Handler) http.Handler
}

// NewHandler builds Handler instance.
func NewHandler(client *Client, logger *slog.Logger, requireUser func(http.Handler) http.Handler) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{client: client, logger: logger, requireUser: requireUser}
}

// MountRoutes registers AI routes under /ai.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/ai", func(r chi.Router) {
		if h.requireUser != nil {
			r.Use(h.requireUser)
		}
		r.Post("/insights", h.insights)
		r.Post("/query", h.query)
	})
}

type queryRequest struct {
	Prompt  string `json:"prompt" validate:"required,max=8000"`
	Context string `json:"context" validate:"max=4000"`
}

type queryResponse struct {
	Content string `json:"content"`
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, queryResponse{Content: h.client.Query(r.Context(), req.Prompt, req.Context)})
}

func (h *Handler) insights(w http.ResponseWriter, r *http.Request) {
	var req InsightRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	insight := h.client.InventoryInsights(r.Context(), req)
	h.logger.InfoContext(r.Context(), "inventory insights generated",
		slog.Int("items", len(req.Items)), slog.String("provider", insight.Provider), slog.Bool("rule_based", insight.RuleBased))
	httpx.JSON(w, http.StatusOK, insight)
}
