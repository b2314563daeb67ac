package acquisition

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/drawlab/backend/config"
	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/pkg/api"
	"github.com/drawlab/backend/pkg/backoff"
	"github.com/drawlab/backend/pkg/errorx"
	"github.com/drawlab/backend/pkg/xcontext"
	"github.com/mitchellh/mapstructure"
)

var facebookURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:www\.)?facebook\.com/[A-Za-z0-9.]+/posts/(\d+)`),
	regexp.MustCompile(`^https?://(?:www\.)?facebook\.com/photo\.php\?fbid=(\d+)`),
	regexp.MustCompile(`^https?://(?:www\.)?facebook\.com/permalink\.php\?story_fbid=(\d+)`),
	regexp.MustCompile(`^https?://(?:www\.)?facebook\.com/([A-Za-z0-9.]+)/?$`),
}

var facebookMentionPattern = regexp.MustCompile(`@([A-Za-z0-9.]+)`)

const facebookTimeLayout = "2006-01-02T15:04:05-0700"

type facebookAdapter struct {
	baseAdapter
}

func NewFacebookAdapter(cfg config.PlatformConfigs, policy backoff.Policy) *facebookAdapter {
	return &facebookAdapter{baseAdapter: newBaseAdapter(entity.Facebook, cfg, policy)}
}

func (a *facebookAdapter) ExtractResourceID(rawURL string) (string, error) {
	for _, pattern := range facebookURLPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
	}

	return "", errorx.New(errorx.InvalidURL, "Unrecognized facebook url %s", rawURL)
}

func (a *facebookAdapter) ExtractMentions(text string) []string {
	var mentions []string
	for _, m := range facebookMentionPattern.FindAllStringSubmatch(text, -1) {
		mentions = append(mentions, entity.NormalizeHandle(m[1]))
	}

	return mentions
}

func (a *facebookAdapter) FetchEngagement(
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

type facebookActor struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

type facebookComment struct {
	ID          string        `mapstructure:"id"`
	Message     string        `mapstructure:"message"`
	CreatedTime string        `mapstructure:"created_time"`
	From        facebookActor `mapstructure:"from"`
}

func (a *facebookAdapter) fetchPage(
	ctx context.Context, resourceID string, kind entity.ActionKind, after string,
) ([]Record, string, error) {
	var path string
	switch kind {
	case entity.ActionLike:
		path = fmt.Sprintf("/%s/reactions", resourceID)
	case entity.ActionComment:
		path = fmt.Sprintf("/%s/comments", resourceID)
	case entity.ActionShare:
		path = fmt.Sprintf("/%s/sharedposts", resourceID)
	case entity.ActionFollow:
		path = fmt.Sprintf("/%s/followers", resourceID)
	default:
		return nil, "", nil
	}

	query := api.Parameter{"limit": strconv.Itoa(a.pageSize())}
	if after != "" {
		query["after"] = after
	}

	resp, err := a.get(ctx, resourceID, path, query)
	if err != nil {
		return nil, "", err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return nil, "", errorx.New(errorx.BadResponse, "Invalid facebook response format")
	}

	items, err := body.GetArray("data")
	if err != nil {
		return nil, "", errorx.New(errorx.BadResponse, "Missing data in facebook response")
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		record, err := a.toRecord(kind, item)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot parse facebook %s item: %v", kind, err)
			continue
		}

		records = append(records, record)
	}

	next := ""
	if paging, err := body.GetJSON("paging"); err == nil {
		if cursors, err := paging.GetJSON("cursors"); err == nil {
			next = cursors.OptionalString("after", "")
		}
	}

	return records, next, nil
}

func (a *facebookAdapter) toRecord(kind entity.ActionKind, item api.JSON) (Record, error) {
	if kind == entity.ActionComment {
		comment := facebookComment{}
		if err := mapstructure.Decode(map[string]any(item), &comment); err != nil {
			return Record{}, err
		}

		ts, _ := time.Parse(facebookTimeLayout, comment.CreatedTime)
		return Record{
			Platform:    entity.Facebook,
			UserID:      comment.From.ID,
			Handle:      entity.NormalizeHandle(comment.From.Name),
			DisplayName: comment.From.Name,
			Action:      kind,
			CommentText: comment.Message,
			Mentions:    a.ExtractMentions(comment.Message),
			Timestamp:   ts,
		}, nil
	}

	actor := facebookActor{}
	if err := mapstructure.Decode(map[string]any(item), &actor); err != nil {
		return Record{}, err
	}

	return Record{
		Platform:    entity.Facebook,
		UserID:      actor.ID,
		Handle:      entity.NormalizeHandle(actor.Name),
		DisplayName: actor.Name,
		Action:      kind,
	}, nil
}
