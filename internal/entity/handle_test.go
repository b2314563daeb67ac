package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_NormalizeHandle(t *testing.T) {
	require.Equal(t, "baduser", NormalizeHandle(" @BadUser "))
	require.Equal(t, "baduser", NormalizeHandle("@@BadUser"))
	require.Equal(t, "user.name", NormalizeHandle("User.Name"))
	require.Equal(t, "", NormalizeHandle(" @ "))
}

func Test_NormalizeHandle_Idempotent(t *testing.T) {
	for _, handle := range []string{" @BadUser ", "@@X", "plain", "MiXeD"} {
		once := NormalizeHandle(handle)
		require.Equal(t, once, NormalizeHandle(once))
	}
}

func Test_MaskHandle(t *testing.T) {
	require.Equal(t, "b*****r", MaskHandle("baduser"))
	require.Equal(t, "a*c", MaskHandle("abc"))
	require.Equal(t, "**", MaskHandle("ab"))
	require.Equal(t, "*", MaskHandle("a"))
	require.Equal(t, "", MaskHandle(""))
}
