package participant

import (
	"testing"

	"github.com/drawlab/backend/internal/domain/acquisition"
	"github.com/drawlab/backend/internal/entity"
	"github.com/stretchr/testify/require"
)

func Test_Normalize_MergesSameIdentity(t *testing.T) {
	records := []acquisition.Record{
		{
			Platform:       entity.Instagram,
			UserID:         "u1",
			Handle:         "@Alice",
			DisplayName:    "Alice",
			Action:         entity.ActionLike,
			FollowerCount:  120,
			AccountAgeDays: 400,
		},
		{
			Platform:    entity.Instagram,
			UserID:      "u1",
			Handle:      "@Alice",
			DisplayName: "Alice Renamed",
			Action:      entity.ActionComment,
			CommentText: "count me in @bob",
			Mentions:    []string{"bob"},
		},
	}

	participants := Normalize(records)
	require.Len(t, participants, 1)

	p := participants[0]
	require.Equal(t, ID(entity.Instagram, "u1"), p.ID)
	require.Equal(t, "alice", p.Handle)
	require.Equal(t, "Alice", p.DisplayName)
	require.True(t, p.Did(entity.ActionLike))
	require.True(t, p.Did(entity.ActionComment))
	require.False(t, p.Did(entity.ActionFollow))
	require.Equal(t, []string{"bob"}, p.MentionedHandles)
	require.Equal(t, 120, p.FollowerCount)
	require.Equal(t, 400, p.AccountAgeDays)
}

func Test_Normalize_SameHandleDifferentPlatforms(t *testing.T) {
	records := []acquisition.Record{
		{Platform: entity.Instagram, UserID: "u1", Handle: "alice", Action: entity.ActionLike},
		{Platform: entity.TikTok, UserID: "u1", Handle: "alice", Action: entity.ActionLike},
	}

	participants := Normalize(records)
	require.Len(t, participants, 2)
	require.NotEqual(t, participants[0].ID, participants[1].ID)
}

func Test_Normalize_KeepsFirstSeenOrder(t *testing.T) {
	records := []acquisition.Record{
		{Platform: entity.Twitter, UserID: "u3", Handle: "carol", Action: entity.ActionLike},
		{Platform: entity.Twitter, UserID: "u1", Handle: "alice", Action: entity.ActionLike},
		{Platform: entity.Twitter, UserID: "u2", Handle: "bob", Action: entity.ActionLike},
		{Platform: entity.Twitter, UserID: "u1", Handle: "alice", Action: entity.ActionComment},
	}

	participants := Normalize(records)
	require.Len(t, participants, 3)
	require.Equal(t, "carol", participants[0].Handle)
	require.Equal(t, "alice", participants[1].Handle)
	require.Equal(t, "bob", participants[2].Handle)
}

func Test_Normalize_DedupsMentions(t *testing.T) {
	records := []acquisition.Record{
		{
			Platform: entity.Twitter, UserID: "u1", Handle: "alice",
			Action: entity.ActionComment, Mentions: []string{"bob", "carol"},
		},
		{
			Platform: entity.Twitter, UserID: "u1", Handle: "alice",
			Action: entity.ActionComment, Mentions: []string{"carol", "dave"},
		},
	}

	participants := Normalize(records)
	require.Len(t, participants, 1)
	require.Equal(t, []string{"bob", "carol", "dave"}, participants[0].MentionedHandles)
}

func Test_ID_Stable(t *testing.T) {
	require.Equal(t,
		ID(entity.Instagram, "u1"),
		ID(entity.Instagram, "u1"))
	require.NotEqual(t,
		ID(entity.Instagram, "u1"),
		ID(entity.Instagram, "u2"))
}
