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

var tiktokURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:www\.)?tiktok\.com/@[A-Za-z0-9_.]+/video/(\d+)`),
	regexp.MustCompile(`^https?://vm\.tiktok\.com/([A-Za-z0-9]+)`),
	regexp.MustCompile(`^https?://(?:www\.)?tiktok\.com/@([A-Za-z0-9_.]+)/?$`),
}

var tiktokMentionPattern = regexp.MustCompile(`@([A-Za-z0-9_.]+)`)

type tiktokAdapter struct {
	baseAdapter
}

func NewTikTokAdapter(cfg config.PlatformConfigs, policy backoff.Policy) *tiktokAdapter {
	return &tiktokAdapter{baseAdapter: newBaseAdapter(entity.TikTok, cfg, policy)}
}

func (a *tiktokAdapter) ExtractResourceID(rawURL string) (string, error) {
	for _, pattern := range tiktokURLPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
	}

	return "", errorx.New(errorx.InvalidURL, "Unrecognized tiktok url %s", rawURL)
}

func (a *tiktokAdapter) ExtractMentions(text string) []string {
	var mentions []string
	for _, m := range tiktokMentionPattern.FindAllStringSubmatch(text, -1) {
		mentions = append(mentions, entity.NormalizeHandle(m[1]))
	}

	return mentions
}

func (a *tiktokAdapter) FetchEngagement(
	ctx context.Context, resourceID string, kinds []entity.ActionKind, cursor string,
) ([]Record, string, error) {
	kindIdx, pageCursor, err := splitKindCursor(cursor, kinds)
	if err != nil {
		return nil, "", errorx.New(errorx.BadRequest, "Invalid cursor")
	}

	kind := kinds[kindIdx]
	records, next, err := a.fetchPage(ctx, resourceID, kind, pageCursor)
	if err != nil {
		return nil, "", err
	}

	return records, nextKindCursor(kindIdx, next, kinds), nil
}

type tiktokUser struct {
	OpenID        string `mapstructure:"open_id"`
	UniqueID      string `mapstructure:"unique_id"`
	Nickname      string `mapstructure:"nickname"`
	FollowerCount int    `mapstructure:"follower_count"`
}

type tiktokComment struct {
	ID         string     `mapstructure:"id"`
	Text       string     `mapstructure:"text"`
	CreateTime int64      `mapstructure:"create_time"`
	User       tiktokUser `mapstructure:"user"`
}

func (a *tiktokAdapter) fetchPage(
	ctx context.Context, resourceID string, kind entity.ActionKind, pageCursor string,
) ([]Record, string, error) {
	var path string
	switch kind {
	case entity.ActionLike:
		path = fmt.Sprintf("/video/%s/likes", resourceID)
	case entity.ActionComment:
		path = fmt.Sprintf("/video/%s/comments", resourceID)
	case entity.ActionFollow:
		path = fmt.Sprintf("/user/%s/followers", resourceID)
	default:
		return nil, "", nil
	}

	query := api.Parameter{"count": strconv.Itoa(a.pageSize())}
	if pageCursor != "" {
		query["cursor"] = pageCursor
	}

	resp, err := a.get(ctx, resourceID, path, query)
	if err != nil {
		return nil, "", err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return nil, "", errorx.New(errorx.BadResponse, "Invalid tiktok response format")
	}

	data, err := body.GetJSON("data")
	if err != nil {
		return nil, "", errorx.New(errorx.BadResponse, "Missing data in tiktok response")
	}

	itemsField := "users"
	if kind == entity.ActionComment {
		itemsField = "comments"
	}

	items, err := data.GetArray(itemsField)
	if err != nil {
		return nil, "", errorx.New(errorx.BadResponse, "Missing %s in tiktok response", itemsField)
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		record, err := a.toRecord(kind, item)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot parse tiktok %s item: %v", kind, err)
			continue
		}

		records = append(records, record)
	}

	next := ""
	if hasMore, err := data.GetBool("has_more"); err == nil && hasMore {
		next = strconv.Itoa(data.OptionalInt("cursor", 0))
	}

	return records, next, nil
}

func (a *tiktokAdapter) toRecord(kind entity.ActionKind, item api.JSON) (Record, error) {
	if kind == entity.ActionComment {
		comment := tiktokComment{}
		if err := mapstructure.Decode(map[string]any(item), &comment); err != nil {
			return Record{}, err
		}

		return Record{
			Platform:      entity.TikTok,
			UserID:        comment.User.OpenID,
			Handle:        entity.NormalizeHandle(comment.User.UniqueID),
			DisplayName:   comment.User.Nickname,
			Action:        kind,
			CommentText:   comment.Text,
			Mentions:      a.ExtractMentions(comment.Text),
			FollowerCount: comment.User.FollowerCount,
			Timestamp:     time.Unix(comment.CreateTime, 0),
		}, nil
	}

	user := tiktokUser{}
	if err := mapstructure.Decode(map[string]any(item), &user); err != nil {
		return Record{}, err
	}

	return Record{
		Platform:      entity.TikTok,
		UserID:        user.OpenID,
		Handle:        entity.NormalizeHandle(user.UniqueID),
		DisplayName:   user.Nickname,
		Action:        kind,
		FollowerCount: user.FollowerCount,
	}, nil
}
