package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"onepager/internal/domain"
	"onepager/internal/domain/models/onepager"
	"onepager/internal/domain/services"
	"onepager/internal/httputil"
	"onepager/internal/richtext"
)

// OnePagerHandler serves the editing session of the calling principal.
type OnePagerHandler struct {
	service services.OnePagerService
	logger  *slog.Logger
}

// NewOnePagerHandler creates a new one-pager handler
func NewOnePagerHandler(service services.OnePagerService, logger *slog.Logger) *OnePagerHandler {
	return &OnePagerHandler{
		service: service,
		logger:  logger,
	}
}

// updateBlockBody is the PATCH body for a block. A null title is rejected;
// an absent one is left unchanged.
type updateBlockBody struct {
	Title   httputil.OptionalString `json:"title"`
	Content *richtext.Node          `json:"content"`
}

// actionsResponse lists the refine actions offered for a block.
type actionsResponse struct {
	BlockID string   `json:"block_id"`
	Actions []string `json:"actions"`
}

// respondView writes the session view or maps err.
func (h *OnePagerHandler) respondView(w http.ResponseWriter, status int, view *onepager.View, err error) {
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, status, view)
}

// blockID reads the {id} path segment.
func blockID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		return "", fmt.Errorf("%w: block id is required", domain.ErrValidation)
	}
	return id, nil
}

// GetView returns the caller's document
// GET /api/onepager
func (h *OnePagerHandler) GetView(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context(), httputil.GetPrincipal(r))
	h.respondView(w, http.StatusOK, view, err)
}

// UpdateTitle sets the document title
// PATCH /api/onepager/title
func (h *OnePagerHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateTitleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.service.UpdateTitle(r.Context(), httputil.GetPrincipal(r), &req)
	h.respondView(w, http.StatusOK, view, err)
}

// Generate replaces the document with an AI draft
// POST /api/onepager/generate
func (h *OnePagerHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req services.GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.service.Generate(r.Context(), httputil.GetPrincipal(r), &req)
	h.respondView(w, http.StatusOK, view, err)
}

// ExportMarkdown downloads the stored document as Markdown
// GET /api/onepager/export.md
func (h *OnePagerHandler) ExportMarkdown(w http.ResponseWriter, r *http.Request) {
	md, err := h.service.ExportMarkdown(r.Context(), httputil.GetPrincipal(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondMarkdown(w, "one-pager.md", md)
}

// InsertAfter adds an empty block after {id}
// POST /api/onepager/blocks/{id}/after
func (h *OnePagerHandler) InsertAfter(w http.ResponseWriter, r *http.Request) {
	id, err := blockID(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.service.InsertAfter(r.Context(), httputil.GetPrincipal(r), id)
	h.respondView(w, http.StatusOK, view, err)
}

// DeleteBlock removes {id}
// DELETE /api/onepager/blocks/{id}
func (h *OnePagerHandler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	id, err := blockID(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.service.DeleteBlock(r.Context(), httputil.GetPrincipal(r), id)
	h.respondView(w, http.StatusOK, view, err)
}

// Reorder moves active_id to over_id's position
// POST /api/onepager/reorder
func (h *OnePagerHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req services.ReorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.service.Reorder(r.Context(), httputil.GetPrincipal(r), &req)
	h.respondView(w, http.StatusOK, view, err)
}

// UpdateBlock edits the title and/or content of {id}
// PATCH /api/onepager/blocks/{id}
func (h *OnePagerHandler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	id, err := blockID(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	var body updateBlockBody
	if err := decodeJSON(w, r, &body); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if body.Title.Present && !body.Title.Set() {
		handleError(w, h.logger, fmt.Errorf("%w: title cannot be null", domain.ErrValidation))
		return
	}

	req := services.UpdateBlockRequest{Title: body.Title.Value, Content: body.Content}
	view, err := h.service.UpdateBlock(r.Context(), httputil.GetPrincipal(r), id, &req)
	h.respondView(w, http.StatusOK, view, err)
}

// ListActions returns the refine actions for {id}
// GET /api/onepager/blocks/{id}/actions
func (h *OnePagerHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	id, err := blockID(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	actions, err := h.service.Actions(r.Context(), httputil.GetPrincipal(r), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, actionsResponse{BlockID: id, Actions: actions})
}

// RequestAction starts an AI refinement of {id}. The suggestion arrives
// in a later view.
// POST /api/onepager/blocks/{id}/actions
func (h *OnePagerHandler) RequestAction(w http.ResponseWriter, r *http.Request) {
	id, err := blockID(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	var req services.ActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.service.RequestAction(r.Context(), httputil.GetPrincipal(r), id, &req)
	h.respondView(w, http.StatusAccepted, view, err)
}

// AcceptSuggestion applies the suggestion on {id}
// POST /api/onepager/blocks/{id}/suggestion/accept
func (h *OnePagerHandler) AcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := blockID(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.service.Accept(r.Context(), httputil.GetPrincipal(r), id)
	h.respondView(w, http.StatusOK, view, err)
}

// RejectSuggestion discards the suggestion on {id}
// POST /api/onepager/blocks/{id}/suggestion/reject
func (h *OnePagerHandler) RejectSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := blockID(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.service.Reject(r.Context(), httputil.GetPrincipal(r), id)
	h.respondView(w, http.StatusOK, view, err)
}

// RunFollowUp starts the follow-up action offered on {id}
// POST /api/onepager/blocks/{id}/follow-up
func (h *OnePagerHandler) RunFollowUp(w http.ResponseWriter, r *http.Request) {
	id, err := blockID(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.service.RunFollowUp(r.Context(), httputil.GetPrincipal(r), id)
	h.respondView(w, http.StatusAccepted, view, err)
}

// DismissFollowUp drops the follow-up offer on {id}
// DELETE /api/onepager/blocks/{id}/follow-up
func (h *OnePagerHandler) DismissFollowUp(w http.ResponseWriter, r *http.Request) {
	id, err := blockID(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.service.DismissFollowUp(r.Context(), httputil.GetPrincipal(r), id)
	h.respondView(w, http.StatusOK, view, err)
}

// HealthCheck is a simple health check endpoint
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}
