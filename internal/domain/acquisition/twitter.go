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

var twitterURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:www\.)?(?:twitter|x)\.com/[A-Za-z0-9_]+/status/(\d+)`),
	regexp.MustCompile(`^https?://(?:www\.)?(?:twitter|x)\.com/([A-Za-z0-9_]+)/?$`),
}

var twitterMentionPattern = regexp.MustCompile(`\B@(\w+)`)

type twitterAdapter struct {
	baseAdapter
}

func NewTwitterAdapter(cfg config.PlatformConfigs, policy backoff.Policy) *twitterAdapter {
	return &twitterAdapter{baseAdapter: newBaseAdapter(entity.Twitter, cfg, policy)}
}

func (a *twitterAdapter) ExtractResourceID(rawURL string) (string, error) {
	for _, pattern := range twitterURLPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
	}

	return "", errorx.New(errorx.InvalidURL, "Unrecognized twitter url %s", rawURL)
}

func (a *twitterAdapter) ExtractMentions(text string) []string {
	var mentions []string
	for _, m := range twitterMentionPattern.FindAllStringSubmatch(text, -1) {
		mentions = append(mentions, entity.NormalizeHandle(m[1]))
	}

	return mentions
}

func (a *twitterAdapter) FetchEngagement(
	ctx context.Context, resourceID string, kinds []entity.ActionKind, cursor string,
) ([]Record, string, error) {
	kindIdx, nextToken, err := splitKindCursor(cursor, kinds)
	if err != nil {
		return nil, "", errorx.New(errorx.BadRequest, "Invalid cursor")
	}

	kind := kinds[kindIdx]
	records, next, err := a.fetchPage(ctx, resourceID, kind, nextToken)
	if err != nil {
		return nil, "", err
	}

	return records, nextKindCursor(kindIdx, next, kinds), nil
}

type twitterPublicMetrics struct {
	FollowersCount int `mapstructure:"followers_count"`
}

type twitterUser struct {
	ID            string               `mapstructure:"id"`
	Username      string               `mapstructure:"username"`
	Name          string               `mapstructure:"name"`
	CreatedAt     string               `mapstructure:"created_at"`
	PublicMetrics twitterPublicMetrics `mapstructure:"public_metrics"`
}

type twitterReply struct {
	ID       string      `mapstructure:"id"`
	Text     string      `mapstructure:"text"`
	Author   twitterUser `mapstructure:"author"`
	SentTime string      `mapstructure:"created_at"`
}

func (a *twitterAdapter) fetchPage(
	ctx context.Context, resourceID string, kind entity.ActionKind, nextToken string,
) ([]Record, string, error) {
	var path string
	switch kind {
	case entity.ActionLike:
		path = fmt.Sprintf("/tweets/%s/liking_users", resourceID)
	case entity.ActionComment:
		path = fmt.Sprintf("/tweets/%s/replies", resourceID)
	case entity.ActionShare:
		path = fmt.Sprintf("/tweets/%s/retweeted_by", resourceID)
	case entity.ActionFollow:
		path = fmt.Sprintf("/users/%s/followers", resourceID)
	default:
		return nil, "", nil
	}

	query := api.Parameter{
		"max_results": strconv.Itoa(a.pageSize()),
		"user.fields": "created_at,public_metrics",
	}
	if nextToken != "" {
		query["pagination_token"] = nextToken
	}

	resp, err := a.get(ctx, resourceID, path, query)
	if err != nil {
		return nil, "", err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return nil, "", errorx.New(errorx.BadResponse, "Invalid twitter response format")
	}

	items, err := body.GetArray("data")
	if err != nil {
		// Twitter omits the data field entirely for an empty page.
		return nil, "", nil
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		record, err := a.toRecord(kind, item)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot parse twitter %s item: %v", kind, err)
			continue
		}

		records = append(records, record)
	}

	next := ""
	if meta, err := body.GetJSON("meta"); err == nil {
		next = meta.OptionalString("next_token", "")
	}

	return records, next, nil
}

func (a *twitterAdapter) toRecord(kind entity.ActionKind, item api.JSON) (Record, error) {
	if kind == entity.ActionComment {
		reply := twitterReply{}
		if err := mapstructure.Decode(map[string]any(item), &reply); err != nil {
			return Record{}, err
		}

		ts, _ := time.Parse(time.RFC3339, reply.SentTime)
		return Record{
			Platform:       entity.Twitter,
			UserID:         reply.Author.ID,
			Handle:         entity.NormalizeHandle(reply.Author.Username),
			DisplayName:    reply.Author.Name,
			Action:         kind,
			CommentText:    reply.Text,
			Mentions:       a.ExtractMentions(reply.Text),
			FollowerCount:  reply.Author.PublicMetrics.FollowersCount,
			AccountAgeDays: accountAgeDays(reply.Author.CreatedAt),
			Timestamp:      ts,
		}, nil
	}

	user := twitterUser{}
	if err := mapstructure.Decode(map[string]any(item), &user); err != nil {
		return Record{}, err
	}

	return Record{
		Platform:       entity.Twitter,
		UserID:         user.ID,
		Handle:         entity.NormalizeHandle(user.Username),
		DisplayName:    user.Name,
		Action:         kind,
		FollowerCount:  user.PublicMetrics.FollowersCount,
		AccountAgeDays: accountAgeDays(user.CreatedAt),
	}, nil
}

func accountAgeDays(createdAt string) int {
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return 0
	}

	return int(time.Since(t).Hours() / 24)
}
