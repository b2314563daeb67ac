package eligibility

import (
	"context"
	"fmt"

	"github.com/drawlab/backend/internal/domain/participant"
	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/pkg/enum"
	"github.com/drawlab/backend/pkg/errorx"
	"github.com/drawlab/backend/pkg/xcontext"
	"github.com/mitchellh/mapstructure"
)

type ReasonCode string

var (
	Blacklisted        = enum.New(ReasonCode("blacklisted"))
	MissingAction      = enum.New(ReasonCode("missing_action"))
	NotEnoughFollowers = enum.New(ReasonCode("not_enough_followers"))
	AccountTooYoung    = enum.New(ReasonCode("account_too_young"))
)

type Reason struct {
	Code   ReasonCode `json:"code"`
	Detail string     `json:"detail,omitempty"`
}

func (r Reason) String() string {
	if r.Detail == "" {
		return string(r.Code)
	}

	return fmt.Sprintf("%s(%s)", r.Code, r.Detail)
}

// Verdict is the immutable eligibility outcome of one participant for one
// draw snapshot. A participant with zero reasons is eligible.
type Verdict struct {
	ParticipantID string
	Reasons       []Reason
}

func (v Verdict) Eligible() bool {
	return len(v.Reasons) == 0
}

// Settings are the owner-configured eligibility requirements of a draw,
// stored as a loose map on the draw record.
type Settings struct {
	RequireLike    bool `mapstructure:"require_like" structs:"require_like"`
	RequireComment bool `mapstructure:"require_comment" structs:"require_comment"`
	RequireFollow  bool `mapstructure:"require_follow" structs:"require_follow"`
	RequireStory   bool `mapstructure:"require_story" structs:"require_story"`

	MinimumFollowers  int `mapstructure:"minimum_followers" structs:"minimum_followers"`
	MinimumAccountAge int `mapstructure:"minimum_account_age" structs:"minimum_account_age"`
}

func NewSettings(ctx context.Context, data map[string]any) (Settings, error) {
	settings := Settings{}
	if err := mapstructure.Decode(data, &settings); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot decode map to struct: %v", err)
		return Settings{}, errorx.Unknown
	}

	return settings, nil
}

// RequiredKinds returns the action kinds acquisition must fetch to decide
// these settings, always including likes and comments.
func (s Settings) RequiredKinds() []entity.ActionKind {
	kinds := []entity.ActionKind{entity.ActionLike, entity.ActionComment}
	if s.RequireFollow {
		kinds = append(kinds, entity.ActionFollow)
	}

	if s.RequireStory {
		kinds = append(kinds, entity.ActionStory)
	}

	return kinds
}

type Filter interface {
	// Check returns the disqualification reasons this filter adds for the
	// given participant. All filters run for every participant, so every
	// applicable reason is recorded.
	Check(ctx context.Context, p participant.Participant) []Reason
}

// Pipeline applies its filters in a fixed order: blacklist, required
// actions, account quality.
type Pipeline struct {
	filters []Filter
}

func NewPipeline(blacklist []string, settings Settings) *Pipeline {
	return &Pipeline{
		filters: []Filter{
			newBlacklistFilter(blacklist),
			&requiredActionsFilter{settings: settings},
			&accountQualityFilter{settings: settings},
		},
	}
}

// Apply computes the verdicts of all participants, in input order.
func (pl *Pipeline) Apply(ctx context.Context, participants []participant.Participant) []Verdict {
	verdicts := make([]Verdict, 0, len(participants))
	for _, p := range participants {
		verdict := Verdict{ParticipantID: p.ID}
		for _, f := range pl.filters {
			verdict.Reasons = append(verdict.Reasons, f.Check(ctx, p)...)
		}

		verdicts = append(verdicts, verdict)
	}

	return verdicts
}

// EligiblePool returns the participants with zero reasons, in the
// normalizer's output order.
func EligiblePool(participants []participant.Participant, verdicts []Verdict) []participant.Participant {
	pool := []participant.Participant{}
	for i, v := range verdicts {
		if v.Eligible() {
			pool = append(pool, participants[i])
		}
	}

	return pool
}

type blacklistFilter struct {
	banned map[string]struct{}
}

func newBlacklistFilter(blacklist []string) *blacklistFilter {
	banned := make(map[string]struct{}, len(blacklist))
	for _, handle := range blacklist {
		banned[entity.NormalizeHandle(handle)] = struct{}{}
	}

	return &blacklistFilter{banned: banned}
}

func (f *blacklistFilter) Check(ctx context.Context, p participant.Participant) []Reason {
	if _, ok := f.banned[entity.NormalizeHandle(p.Handle)]; ok {
		return []Reason{{Code: Blacklisted}}
	}

	return nil
}

type requiredActionsFilter struct {
	settings Settings
}

func (f *requiredActionsFilter) Check(ctx context.Context, p participant.Participant) []Reason {
	required := []struct {
		enabled bool
		kind    entity.ActionKind
	}{
		{f.settings.RequireLike, entity.ActionLike},
		{f.settings.RequireComment, entity.ActionComment},
		{f.settings.RequireFollow, entity.ActionFollow},
		{f.settings.RequireStory, entity.ActionStory},
	}

	var reasons []Reason
	for _, r := range required {
		if r.enabled && !p.Did(r.kind) {
			reasons = append(reasons, Reason{Code: MissingAction, Detail: string(r.kind)})
		}
	}

	return reasons
}

type accountQualityFilter struct {
	settings Settings
}

func (f *accountQualityFilter) Check(ctx context.Context, p participant.Participant) []Reason {
	var reasons []Reason
	if f.settings.MinimumFollowers > 0 && p.FollowerCount < f.settings.MinimumFollowers {
		reasons = append(reasons, Reason{
			Code:   NotEnoughFollowers,
			Detail: fmt.Sprintf("%d<%d", p.FollowerCount, f.settings.MinimumFollowers),
		})
	}

	if f.settings.MinimumAccountAge > 0 && p.AccountAgeDays < f.settings.MinimumAccountAge {
		reasons = append(reasons, Reason{
			Code:   AccountTooYoung,
			Detail: fmt.Sprintf("%dd<%dd", p.AccountAgeDays, f.settings.MinimumAccountAge),
		})
	}

	return reasons
}
