package participant

import (
	"github.com/drawlab/backend/internal/domain/acquisition"
	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/pkg/crypto"
	"golang.org/x/exp/slices"
)

// Participant is the canonical identity built from one or more raw
// engagement records of the same (platform, platform user id) pair.
type Participant struct {
	// ID is a stable hash of platform and platform user id, usable in
	// public payloads without exposing the identity.
	ID string

	Platform       entity.Platform
	PlatformUserID string
	Handle         string
	DisplayName    string

	Actions map[entity.ActionKind]bool

	MentionedHandles []string
	FollowerCount    int
	AccountAgeDays   int
}

// Did reports whether the given action was observed for this participant.
func (p Participant) Did(kind entity.ActionKind) bool {
	return p.Actions[kind]
}

// ID returns the stable participant id of a platform identity.
func ID(platform entity.Platform, platformUserID string) string {
	return crypto.SHA256([]byte(string(platform) + ":" + platformUserID))
}

// Normalize folds raw records into canonical participants. Records of the
// same identity are merged: actions are unioned, first-seen display name
// and metadata win, mentions are appended without duplicates. The output
// order is the first-seen order of the input.
func Normalize(records []acquisition.Record) []Participant {
	type key struct {
		platform entity.Platform
		userID   string
	}

	index := make(map[key]int)
	participants := []Participant{}

	for _, record := range records {
		k := key{platform: record.Platform, userID: record.UserID}
		i, seen := index[k]
		if !seen {
			participants = append(participants, Participant{
				ID:             ID(record.Platform, record.UserID),
				Platform:       record.Platform,
				PlatformUserID: record.UserID,
				Handle:         entity.NormalizeHandle(record.Handle),
				DisplayName:    record.DisplayName,
				Actions:        make(map[entity.ActionKind]bool),
				FollowerCount:  record.FollowerCount,
				AccountAgeDays: record.AccountAgeDays,
			})
			i = len(participants) - 1
			index[k] = i
		}

		p := &participants[i]
		p.Actions[record.Action] = true
		for _, mention := range record.Mentions {
			if !slices.Contains(p.MentionedHandles, mention) {
				p.MentionedHandles = append(p.MentionedHandles, mention)
			}
		}
	}

	return participants
}
