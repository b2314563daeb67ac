package acquisition

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/drawlab/backend/config"
	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/pkg/api"
	"github.com/drawlab/backend/pkg/backoff"
	"github.com/drawlab/backend/pkg/errorx"
	"github.com/drawlab/backend/pkg/xcontext"
	"github.com/mitchellh/mapstructure"
)

// Patterns are mutually exclusive by path shape and tried in this order.
var instagramURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:www\.)?instagram\.com/p/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`^https?://(?:www\.)?instagram\.com/reel/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`^https?://(?:www\.)?instagram\.com/([A-Za-z0-9_.]+)/?$`),
}

var instagramMentionPattern = regexp.MustCompile(`@([A-Za-z0-9_.]+)`)

const instagramTimeLayout = "2006-01-02T15:04:05-0700"

type instagramAdapter struct {
	baseAdapter
}

func NewInstagramAdapter(cfg config.PlatformConfigs, policy backoff.Policy) *instagramAdapter {
	return &instagramAdapter{baseAdapter: newBaseAdapter(entity.Instagram, cfg, policy)}
}

func (a *instagramAdapter) ExtractResourceID(rawURL string) (string, error) {
	for _, pattern := range instagramURLPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
	}

	return "", errorx.New(errorx.InvalidURL, "Unrecognized instagram url %s", rawURL)
}

func (a *instagramAdapter) ExtractMentions(text string) []string {
	var mentions []string
	for _, m := range instagramMentionPattern.FindAllStringSubmatch(text, -1) {
		mentions = append(mentions, entity.NormalizeHandle(m[1]))
	}

	return mentions
}

func (a *instagramAdapter) FetchEngagement(
	ctx context.Context, resourceID string, kinds []entity.ActionKind, cursor string,
) ([]Record, string, error) {
	kindIdx, after, err := splitKindCursor(cursor, kinds)
	if err != nil {
		return nil, "", errorx.New(errorx.BadRequest, "Invalid cursor")
	}

	kind := kinds[kindIdx]
	records, next, err := a.fetchPage(ctx, resourceID, kind, after)
	if err != nil {
		return nil, "", err
	}

	return records, nextKindCursor(kindIdx, next, kinds), nil
}

type instagramUser struct {
	ID            string `mapstructure:"id"`
	Username      string `mapstructure:"username"`
	FullName      string `mapstructure:"full_name"`
	FollowerCount int    `mapstructure:"follower_count"`
}

type instagramComment struct {
	ID        string        `mapstructure:"id"`
	Text      string        `mapstructure:"text"`
	Timestamp string        `mapstructure:"timestamp"`
	From      instagramUser `mapstructure:"from"`
}

func (a *instagramAdapter) fetchPage(
	ctx context.Context, resourceID string, kind entity.ActionKind, after string,
) ([]Record, string, error) {
	var path string
	switch kind {
	case entity.ActionLike:
		path = fmt.Sprintf("/media/%s/likes", resourceID)
	case entity.ActionComment:
		path = fmt.Sprintf("/media/%s/comments", resourceID)
	case entity.ActionFollow:
		path = fmt.Sprintf("/accounts/%s/followers", resourceID)
	case entity.ActionStory:
		path = fmt.Sprintf("/media/%s/story_mentions", resourceID)
	default:
		return nil, "", nil
	}

	query := api.Parameter{"limit": fmt.Sprintf("%d", a.pageSize())}
	if after != "" {
		query["after"] = after
	}

	resp, err := a.get(ctx, resourceID, path, query)
	if err != nil {
		return nil, "", err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return nil, "", errorx.New(errorx.BadResponse, "Invalid instagram response format")
	}

	items, err := body.GetArray("data")
	if err != nil {
		return nil, "", errorx.New(errorx.BadResponse, "Missing data in instagram response")
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		record, err := a.toRecord(kind, item)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot parse instagram %s item: %v", kind, err)
			continue
		}

		records = append(records, record)
	}

	return records, instagramNextCursor(body), nil
}

func (a *instagramAdapter) toRecord(kind entity.ActionKind, item api.JSON) (Record, error) {
	if kind == entity.ActionComment {
		comment := instagramComment{}
		if err := mapstructure.Decode(map[string]any(item), &comment); err != nil {
			return Record{}, err
		}

		ts, _ := time.Parse(instagramTimeLayout, comment.Timestamp)
		return Record{
			Platform:      entity.Instagram,
			UserID:        comment.From.ID,
			Handle:        entity.NormalizeHandle(comment.From.Username),
			DisplayName:   comment.From.FullName,
			Action:        kind,
			CommentText:   comment.Text,
			Mentions:      a.ExtractMentions(comment.Text),
			FollowerCount: comment.From.FollowerCount,
			Timestamp:     ts,
		}, nil
	}

	user := instagramUser{}
	if err := mapstructure.Decode(map[string]any(item), &user); err != nil {
		return Record{}, err
	}

	return Record{
		Platform:      entity.Instagram,
		UserID:        user.ID,
		Handle:        entity.NormalizeHandle(user.Username),
		DisplayName:   user.FullName,
		Action:        kind,
		FollowerCount: user.FollowerCount,
	}, nil
}

func instagramNextCursor(body api.JSON) string {
	paging, err := body.GetJSON("paging")
	if err != nil {
		return ""
	}

	cursors, err := paging.GetJSON("cursors")
	if err != nil {
		return ""
	}

	return cursors.OptionalString("after", "")
}
