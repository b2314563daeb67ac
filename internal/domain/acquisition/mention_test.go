package acquisition

import (
	"testing"

	"github.com/drawlab/backend/config"
	"github.com/drawlab/backend/pkg/backoff"
	"github.com/stretchr/testify/require"
)

func Test_ExtractMentions_Instagram(t *testing.T) {
	adapter := NewInstagramAdapter(config.PlatformConfigs{}, backoff.DefaultPolicy)

	mentions := adapter.ExtractMentions("count me in @Cool.User and @friend_two!")
	require.Equal(t, []string{"cool.user", "friend_two"}, mentions)

	require.Empty(t, adapter.ExtractMentions("no mentions here"))
}

func Test_ExtractMentions_Twitter(t *testing.T) {
	adapter := NewTwitterAdapter(config.PlatformConfigs{}, backoff.DefaultPolicy)

	mentions := adapter.ExtractMentions("great giveaway @Cool_User, tagging @Friend2")
	require.Equal(t, []string{"cool_user", "friend2"}, mentions)

	// An email address is not a mention.
	require.Empty(t, adapter.ExtractMentions("contact me at bob@example.com"))
}

func Test_ExtractMentions_YouTube(t *testing.T) {
	adapter := NewYouTubeAdapter(config.PlatformConfigs{}, backoff.DefaultPolicy)

	mentions := adapter.ExtractMentions("shoutout to @Cool Channel Name, great video")
	require.Equal(t, []string{"cool channel name"}, mentions)
}

func Test_ExtractMentions_Facebook(t *testing.T) {
	adapter := NewFacebookAdapter(config.PlatformConfigs{}, backoff.DefaultPolicy)

	mentions := adapter.ExtractMentions("tagging @cool.page here")
	require.Equal(t, []string{"cool.page"}, mentions)
}

func Test_ExtractMentions_TikTok(t *testing.T) {
	adapter := NewTikTokAdapter(config.PlatformConfigs{}, backoff.DefaultPolicy)

	mentions := adapter.ExtractMentions("@first @second.user join in")
	require.Equal(t, []string{"first", "second.user"}, mentions)
}
