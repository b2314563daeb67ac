package model

type DrawSource struct {
	Platform string `json:"platform"`
	PostURL  string `json:"post_url"`
	Required bool   `json:"required"`
}

type RunDrawRequest struct {
	// DrawID is optional. When given, the draw record must exist and be
	// pending; when empty a new draw is created from the other fields.
	DrawID string `json:"draw_id"`

	// Platform and PostURL describe a single-source draw. Sources allows
	// aggregating several posts, possibly across platforms.
	Platform string       `json:"platform"`
	PostURL  string       `json:"post_url"`
	Sources  []DrawSource `json:"sources"`

	WinnerCount     int `json:"winner_count"`
	SubstituteCount int `json:"substitute_count"`

	// Seed overrides the derived seed, for dispute reproduction.
	Seed string `json:"seed"`

	Filters   map[string]any `json:"filters"`
	Blacklist []string       `json:"blacklist"`
}

type DrawWinner struct {
	ParticipantID string `json:"participant_id"`
	MaskedHandle  string `json:"masked_handle"`
	Rank          int    `json:"rank"`
}

type RunDrawResponse struct {
	DrawID           string       `json:"draw_id"`
	Status           string       `json:"status"`
	Seed             string       `json:"seed"`
	VerificationHash string       `json:"verification_hash"`
	Winners          []DrawWinner `json:"winners"`
	Substitutes      []DrawWinner `json:"substitutes"`
	UnderFilled      bool         `json:"under_filled"`
	FailedPlatforms  []string     `json:"failed_platforms,omitempty"`
}

type GetMyDrawsRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type DrawSummary struct {
	DrawID          string       `json:"draw_id"`
	Status          string       `json:"status"`
	Sources         []DrawSource `json:"sources"`
	WinnerCount     int          `json:"winner_count"`
	SubstituteCount int          `json:"substitute_count"`
	CreatedAt       string       `json:"created_at"`
}

type GetMyDrawsResponse struct {
	Draws []DrawSummary `json:"draws"`
}

type GetVerificationRequest struct {
	DrawID           string `json:"draw_id"`
	VerificationHash string `json:"verification_hash"`
}

// GetVerificationResponse carries everything a third party needs to
// recompute the verification hash. Handles are masked, ids are stable
// hashes, no raw PII leaves the core.
type GetVerificationResponse struct {
	DrawID                 string       `json:"draw_id"`
	Seed                   string       `json:"seed"`
	VerificationHash       string       `json:"verification_hash"`
	OrderedEligiblePoolIDs []string     `json:"ordered_eligible_pool_ids"`
	Winners                []DrawWinner `json:"winners"`
	Substitutes            []DrawWinner `json:"substitutes"`
}
