package services

import "context"

// Generator is the AI backend. Both calls are side-effect free from the
// caller's perspective; failures must not be applied to any document.
type Generator interface {
	// GenerateOnePager drafts a full set of sections from a title.
	GenerateOnePager(ctx context.Context, req *GenerateOnePagerRequest) (*GenerateOnePagerResponse, error)

	// Refine rewrites one field in the context of the whole document.
	Refine(ctx context.Context, req *RefineRequest) (*RefineResponse, error)
}

// LabeledValue is a section label paired with its flattened text.
type LabeledValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// GenerateOnePagerRequest asks for a whole document from a title.
type GenerateOnePagerRequest struct {
	Title string `json:"title"`
}

// GenerateOnePagerResponse maps 1:1 onto fresh blocks.
type GenerateOnePagerResponse struct {
	Fields []LabeledValue `json:"fields"`
}

// DocumentContext is the full document sent along with a refine request.
type DocumentContext struct {
	Title  string         `json:"title"`
	Fields []LabeledValue `json:"fields"`
}

// RefineRequest asks for a replacement of TargetField.
type RefineRequest struct {
	DocumentContext DocumentContext `json:"documentContext"`
	TargetField     LabeledValue    `json:"targetField"`
	SpecificAction  string          `json:"specificAction"`
}

// RefineResponse carries either RefinedText or, for summarize-type
// actions, Items (one bullet per entry).
type RefineResponse struct {
	RefinedText string   `json:"refinedText,omitempty"`
	Items       []string `json:"items,omitempty"`
}
