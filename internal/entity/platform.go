package entity

import "github.com/drawlab/backend/pkg/enum"

type Platform string

var (
	Instagram = enum.New(Platform("instagram"))
	TikTok    = enum.New(Platform("tiktok"))
	Twitter   = enum.New(Platform("twitter"))
	Facebook  = enum.New(Platform("facebook"))
	YouTube   = enum.New(Platform("youtube"))
)

type ActionKind string

var (
	ActionLike    = enum.New(ActionKind("like"))
	ActionComment = enum.New(ActionKind("comment"))
	ActionFollow  = enum.New(ActionKind("follow"))
	ActionShare   = enum.New(ActionKind("share"))
	ActionStory   = enum.New(ActionKind("story"))
)
