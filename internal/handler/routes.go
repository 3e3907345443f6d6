package handler

import "net/http"

// RegisterRoutes mounts the one-pager API on mux (Go 1.22+ patterns).
// aiLimit wraps the endpoints that call the AI backend.
func RegisterRoutes(mux *http.ServeMux, h *OnePagerHandler, aiLimit func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /api/onepager", h.GetView)
	mux.HandleFunc("PATCH /api/onepager/title", h.UpdateTitle)
	mux.HandleFunc("POST /api/onepager/generate", aiLimit(h.Generate))
	mux.HandleFunc("GET /api/onepager/export.md", h.ExportMarkdown)
	mux.HandleFunc("POST /api/onepager/reorder", h.Reorder)

	// Block routes
	mux.HandleFunc("POST /api/onepager/blocks/{id}/after", h.InsertAfter)
	mux.HandleFunc("PATCH /api/onepager/blocks/{id}", h.UpdateBlock)
	mux.HandleFunc("DELETE /api/onepager/blocks/{id}", h.DeleteBlock)

	// AI actions and suggestions
	mux.HandleFunc("GET /api/onepager/blocks/{id}/actions", h.ListActions)
	mux.HandleFunc("POST /api/onepager/blocks/{id}/actions", aiLimit(h.RequestAction))
	mux.HandleFunc("POST /api/onepager/blocks/{id}/suggestion/accept", h.AcceptSuggestion)
	mux.HandleFunc("POST /api/onepager/blocks/{id}/suggestion/reject", h.RejectSuggestion)
	mux.HandleFunc("POST /api/onepager/blocks/{id}/follow-up", aiLimit(h.RunFollowUp))
	mux.HandleFunc("DELETE /api/onepager/blocks/{id}/follow-up", h.DismissFollowUp)
}
