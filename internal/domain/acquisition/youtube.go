package acquisition

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/drawlab/backend/config"
	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/pkg/api"
	"github.com/drawlab/backend/pkg/backoff"
	"github.com/drawlab/backend/pkg/errorx"
	"github.com/drawlab/backend/pkg/xcontext"
	"github.com/mitchellh/mapstructure"
)

var youtubeURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/watch\?v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`^https?://youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/shorts/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/@([A-Za-z0-9_.-]+)/?$`),
}

// YouTube mentions are free text display names, possibly with spaces.
var youtubeMentionPattern = regexp.MustCompile(`@([A-Za-z0-9][A-Za-z0-9 ]*)`)

type youtubeAdapter struct {
	baseAdapter
}

func NewYouTubeAdapter(cfg config.PlatformConfigs, policy backoff.Policy) *youtubeAdapter {
	return &youtubeAdapter{baseAdapter: newBaseAdapter(entity.YouTube, cfg, policy)}
}

func (a *youtubeAdapter) ExtractResourceID(rawURL string) (string, error) {
	for _, pattern := range youtubeURLPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
	}

	return "", errorx.New(errorx.InvalidURL, "Unrecognized youtube url %s", rawURL)
}

func (a *youtubeAdapter) ExtractMentions(text string) []string {
	var mentions []string
	for _, m := range youtubeMentionPattern.FindAllStringSubmatch(text, -1) {
		mention := entity.NormalizeHandle(strings.TrimRight(m[1], " "))
		if mention != "" {
			mentions = append(mentions, mention)
		}
	}

	return mentions
}

func (a *youtubeAdapter) FetchEngagement(
	ctx context.Context, resourceID string, kinds []entity.ActionKind, cursor string,
) ([]Record, string, error) {
	kindIdx, pageToken, err := splitKindCursor(cursor, kinds)
	if err != nil {
		return nil, "", errorx.New(errorx.BadRequest, "Invalid cursor")
	}

	kind := kinds[kindIdx]
	records, next, err := a.fetchPage(ctx, resourceID, kind, pageToken)
	if err != nil {
		return nil, "", err
	}

	return records, nextKindCursor(kindIdx, next, kinds), nil
}

type youtubeCommentSnippet struct {
	AuthorDisplayName string `mapstructure:"authorDisplayName"`
	AuthorChannelID   struct {
		Value string `mapstructure:"value"`
	} `mapstructure:"authorChannelId"`
	TextDisplay string `mapstructure:"textDisplay"`
	PublishedAt string `mapstructure:"publishedAt"`
}

type youtubeSubscriber struct {
	ChannelID string `mapstructure:"channelId"`
	Title     string `mapstructure:"title"`
}

func (a *youtubeAdapter) fetchPage(
	ctx context.Context, resourceID string, kind entity.ActionKind, pageToken string,
) ([]Record, string, error) {
	var path string
	query := api.Parameter{
		"maxResults": strconv.Itoa(a.pageSize()),
		"part":       "snippet",
	}

	switch kind {
	case entity.ActionComment:
		path = "/commentThreads"
		query["videoId"] = resourceID
	case entity.ActionLike:
		path = "/videos/likes"
		query["videoId"] = resourceID
	case entity.ActionFollow:
		path = "/subscriptions"
		query["channelId"] = resourceID
	default:
		return nil, "", nil
	}

	if pageToken != "" {
		query["pageToken"] = pageToken
	}

	resp, err := a.get(ctx, resourceID, path, query)
	if err != nil {
		return nil, "", err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return nil, "", errorx.New(errorx.BadResponse, "Invalid youtube response format")
	}

	items, err := body.GetArray("items")
	if err != nil {
		return nil, "", errorx.New(errorx.BadResponse, "Missing items in youtube response")
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		record, err := a.toRecord(kind, item)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot parse youtube %s item: %v", kind, err)
			continue
		}

		records = append(records, record)
	}

	return records, body.OptionalString("nextPageToken", ""), nil
}

func (a *youtubeAdapter) toRecord(kind entity.ActionKind, item api.JSON) (Record, error) {
	snippet, err := item.GetJSON("snippet")
	if err != nil {
		return Record{}, err
	}

	if kind == entity.ActionComment {
		// Comment threads nest the top level comment under the thread
		// snippet.
		if topLevel, err := snippet.GetJSON("topLevelComment"); err == nil {
			snippet, err = topLevel.GetJSON("snippet")
			if err != nil {
				return Record{}, err
			}
		}

		comment := youtubeCommentSnippet{}
		if err := mapstructure.Decode(map[string]any(snippet), &comment); err != nil {
			return Record{}, err
		}

		ts, _ := time.Parse(time.RFC3339, comment.PublishedAt)
		return Record{
			Platform:    entity.YouTube,
			UserID:      comment.AuthorChannelID.Value,
			Handle:      entity.NormalizeHandle(comment.AuthorDisplayName),
			DisplayName: comment.AuthorDisplayName,
			Action:      kind,
			CommentText: comment.TextDisplay,
			Mentions:    a.ExtractMentions(comment.TextDisplay),
			Timestamp:   ts,
		}, nil
	}

	subscriber := youtubeSubscriber{}
	if err := mapstructure.Decode(map[string]any(snippet), &subscriber); err != nil {
		return Record{}, err
	}

	return Record{
		Platform:    entity.YouTube,
		UserID:      subscriber.ChannelID,
		Handle:      entity.NormalizeHandle(subscriber.Title),
		DisplayName: subscriber.Title,
		Action:      kind,
	}, nil
}
