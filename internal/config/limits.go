package config

const (
	// MaxDocumentTitleLength is the maximum length for one-pager titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxDocumentTitleLength = 255

	// MaxBlockTitleLength is the maximum length for section titles.
	MaxBlockTitleLength = 255

	// MaxBlocks caps the number of blocks in one document, title included.
	// Generation responses longer than this are truncated.
	MaxBlocks = 50

	// MaxActionLength bounds free-text refine actions.
	MaxActionLength = 200

	// FollowUpThreshold is the flattened content length (in characters)
	// above which accepting a content suggestion arms a follow-up offer.
	FollowUpThreshold = 100
)
