package onepager

import "onepager/internal/richtext"

// SuggestionState is the per-block AI proposal lifecycle.
type SuggestionState string

const (
	StateNone     SuggestionState = "none"
	StatePending  SuggestionState = "pending"
	StateProposed SuggestionState = "proposed"
)

// Suggestion is an AI-proposed replacement for one field of one block.
// Exactly one of Text/Content is meaningful, matching Field.
type Suggestion struct {
	BlockID string         `json:"block_id"`
	Field   Field          `json:"field"`
	Text    string         `json:"text,omitempty"`
	Content *richtext.Node `json:"content,omitempty"`
	Action  string         `json:"action"`
}

// FollowUpOffer is armed after accepting a long content suggestion and
// proposes a structural action on the same block.
type FollowUpOffer struct {
	BlockID string `json:"block_id"`
	Action  string `json:"action"`
}

// BlockView is a block as displayed: suggestion overlays are applied to the
// display fields, never to the stored block.
type BlockView struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Content    richtext.Node   `json:"content"`
	State      SuggestionState `json:"state"`
	Suggestion *Suggestion     `json:"suggestion,omitempty"`
	FollowUp   *FollowUpOffer  `json:"follow_up,omitempty"`
}

// DisplayBlock derives the displayed value of b under an optional suggestion.
func DisplayBlock(b Block, s *Suggestion) BlockView {
	view := BlockView{
		ID:      b.ID,
		Title:   b.Title,
		Content: b.Content,
		State:   StateNone,
	}
	if s == nil {
		return view
	}

	view.State = StateProposed
	view.Suggestion = s
	switch s.Field {
	case FieldTitle:
		view.Title = s.Text
	case FieldContent:
		if s.Content != nil {
			view.Content = *s.Content
		}
	}
	return view
}
