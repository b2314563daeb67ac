package selection

import (
	"strconv"
	"strings"
	"time"

	"github.com/drawlab/backend/internal/domain/participant"
	"github.com/drawlab/backend/pkg/crypto"
	"github.com/drawlab/backend/pkg/errorx"
	"github.com/pkg/math"
	"golang.org/x/exp/slices"
)

type Pick struct {
	Participant  participant.Participant
	Rank         int
	IsSubstitute bool
}

type Result struct {
	Seed  string
	Picks []Pick

	// UnderFilled is set when the pool was smaller than the requested
	// winner and substitute counts, so fewer were selected.
	UnderFilled bool

	VerificationHash string
}

// DeriveSeed builds the default draw seed. It is deterministic in the draw
// id, the execution timestamp and the owner id, so a draw can be replayed
// for disputes.
func DeriveSeed(drawID, ownerID string, executedAt time.Time) string {
	payload := drawID + "|" + strconv.FormatInt(executedAt.Unix(), 10) + "|" + ownerID
	return crypto.SHA256([]byte(payload))
}

// Select draws winnerCount winners and substituteCount substitutes from the
// pool without replacement. The pool order is significant: the same seed
// and the same ordered pool always produce the same picks on any
// implementation, because the index stream is a sha256 chain over the seed
// rather than a language-specific generator.
func Select(
	drawID, seed string, pool []participant.Participant, winnerCount, substituteCount int,
) (*Result, error) {
	if winnerCount <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Winner count must be a positive number")
	}

	if substituteCount < 0 {
		return nil, errorx.New(errorx.BadRequest, "Substitute count must not be negative")
	}

	requested := winnerCount + substituteCount
	total := math.MinInt(requested, len(pool))

	remaining := slices.Clone(pool)
	picks := make([]Pick, 0, total)
	for i := 0; i < total; i++ {
		idx := chainIndex(seed, i, len(remaining))

		pick := Pick{Participant: remaining[idx]}
		if len(picks) < winnerCount {
			pick.Rank = len(picks) + 1
		} else {
			pick.IsSubstitute = true
			pick.Rank = len(picks) - winnerCount + 1
		}

		picks = append(picks, pick)
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}

	result := &Result{
		Seed:        seed,
		Picks:       picks,
		UnderFilled: requested > len(pool),
	}

	poolIDs := make([]string, 0, len(pool))
	for _, p := range pool {
		poolIDs = append(poolIDs, p.ID)
	}

	pickIDs := make([]string, 0, len(picks))
	for _, p := range picks {
		pickIDs = append(pickIDs, p.Participant.ID)
	}

	result.VerificationHash = VerificationHash(drawID, seed, poolIDs, pickIDs)
	return result, nil
}

// chainIndex returns the i-th selection index: the first eight bytes of
// sha256("<seed>:<i>") interpreted big-endian, reduced modulo the remaining
// pool size.
func chainIndex(seed string, i, remaining int) int {
	return int(crypto.SHA256Uint64([]byte(seed+":"+strconv.Itoa(i))) % uint64(remaining))
}

// VerificationHash digests the canonical order-sensitive serialization of a
// draw outcome. Anyone holding the seed and the ordered eligible pool ids
// can recompute it bit-exact.
func VerificationHash(drawID, seed string, poolIDs, pickIDs []string) string {
	payload := drawID + "|" + seed + "|" + strings.Join(poolIDs, ",") + "|" + strings.Join(pickIDs, ",")
	return crypto.SHA256([]byte(payload))
}
