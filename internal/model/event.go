package model

// DrawCompletedTopic receives one event per completed execution.
const DrawCompletedTopic = "draw-completed"

type DrawCompletedEvent struct {
	DrawID           string       `json:"draw_id"`
	OwnerID          string       `json:"owner_id"`
	VerificationHash string       `json:"verification_hash"`
	Winners          []DrawWinner `json:"winners"`
	Substitutes      []DrawWinner `json:"substitutes"`
	UnderFilled      bool         `json:"under_filled"`
}
