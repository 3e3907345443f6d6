package services

import (
	"context"

	"onepager/internal/domain/models/onepager"
	"onepager/internal/richtext"
)

// UpdateTitleRequest sets the document title
type UpdateTitleRequest struct {
	Title string `json:"title"`
}

// GenerateRequest replaces every section with an AI draft for Title.
// An empty Title uses the current document title.
type GenerateRequest struct {
	Title string `json:"title"`
}

// ReorderRequest moves ActiveID to OverID's position
type ReorderRequest struct {
	ActiveID string `json:"active_id"`
	OverID   string `json:"over_id"`
}

// UpdateBlockRequest overwrites the fields that are set
type UpdateBlockRequest struct {
	Title   *string        `json:"title,omitempty"`
	Content *richtext.Node `json:"content,omitempty"`
}

// ActionRequest asks the AI to refine one field of a block
type ActionRequest struct {
	Action string         `json:"action"`
	Field  onepager.Field `json:"field"`
}

// OnePagerService is the editing session API. Every mutating call returns
// the view after the mutation; structurally invalid edits (touching the
// title block, deleting the last section, unknown anchors) leave the
// document unchanged and are not errors.
type OnePagerService interface {
	// View returns the current document view, loading it on first access
	View(ctx context.Context, p onepager.Principal) (*onepager.View, error)

	// UpdateTitle sets the title block's text
	UpdateTitle(ctx context.Context, p onepager.Principal, req *UpdateTitleRequest) (*onepager.View, error)

	// Generate replaces every non-title block with an AI draft. Synchronous.
	Generate(ctx context.Context, p onepager.Principal, req *GenerateRequest) (*onepager.View, error)

	// InsertAfter adds an empty block after blockID
	InsertAfter(ctx context.Context, p onepager.Principal, blockID string) (*onepager.View, error)

	// DeleteBlock removes a block and any suggestion attached to it
	DeleteBlock(ctx context.Context, p onepager.Principal, blockID string) (*onepager.View, error)

	// Reorder moves a block
	Reorder(ctx context.Context, p onepager.Principal, req *ReorderRequest) (*onepager.View, error)

	// UpdateBlock edits a block, discarding any pending suggestion first
	UpdateBlock(ctx context.Context, p onepager.Principal, blockID string, req *UpdateBlockRequest) (*onepager.View, error)

	// Actions lists the refine actions offered for a block
	Actions(ctx context.Context, p onepager.Principal, blockID string) ([]string, error)

	// RequestAction starts an AI refinement. Returns immediately; the
	// suggestion appears in a later view.
	RequestAction(ctx context.Context, p onepager.Principal, blockID string, req *ActionRequest) (*onepager.View, error)

	// Accept applies the block's suggestion
	Accept(ctx context.Context, p onepager.Principal, blockID string) (*onepager.View, error)

	// Reject discards the block's suggestion
	Reject(ctx context.Context, p onepager.Principal, blockID string) (*onepager.View, error)

	// RunFollowUp starts the offered follow-up action
	RunFollowUp(ctx context.Context, p onepager.Principal, blockID string) (*onepager.View, error)

	// DismissFollowUp drops the follow-up offer
	DismissFollowUp(ctx context.Context, p onepager.Principal, blockID string) (*onepager.View, error)

	// ExportMarkdown renders the stored document as Markdown
	ExportMarkdown(ctx context.Context, p onepager.Principal) (string, error)

	// Shutdown flushes pending saves and cancels in-flight AI calls
	Shutdown(ctx context.Context) error
}
