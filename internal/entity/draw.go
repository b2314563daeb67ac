package entity

import (
	"time"

	"github.com/drawlab/backend/pkg/enum"
)

type DrawStatus string

var (
	DrawPending   = enum.New(DrawStatus("pending"))
	DrawExecuting = enum.New(DrawStatus("executing"))
	DrawCompleted = enum.New(DrawStatus("completed"))
	DrawFailed    = enum.New(DrawStatus("failed"))
)

type DrawSource struct {
	Platform Platform `json:"platform"`
	PostURL  string   `json:"post_url"`

	// Required aborts the whole draw if this source cannot be fetched.
	// Non-required sources degrade to zero records on failure.
	Required bool `json:"required"`
}

type Draw struct {
	Base

	OwnerID string `gorm:"index"`
	Status  DrawStatus

	WinnerCount     int
	SubstituteCount int

	// Seed is an explicit seed supplied for dispute reproduction. When
	// empty, the seed is derived at execution time.
	Seed string

	Sources  Array[DrawSource]
	Settings Map
}

type DrawPick struct {
	ParticipantID string `json:"participant_id"`
	MaskedHandle  string `json:"masked_handle"`
	Rank          int    `json:"rank"`
	IsSubstitute  bool   `json:"is_substitute"`
}

type DrawExecution struct {
	Base

	DrawID string `gorm:"uniqueIndex"`
	Draw   Draw   `gorm:"foreignKey:DrawID"`

	Seed             string
	EligiblePool     Array[string]
	WinnerCount      int
	SubstituteCount  int
	Picks            Array[DrawPick]
	VerificationHash string `gorm:"index"`
	UnderFilled      bool
	ExecutedAt       time.Time
}
