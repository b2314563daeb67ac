package model

type AddBlacklistRequest struct {
	Handles []string `json:"handles"`
}

type AddBlacklistResponse struct{}

type GetBlacklistRequest struct{}

type GetBlacklistResponse struct {
	Handles []string `json:"handles"`
}

type RemoveBlacklistRequest struct {
	Handle string `json:"handle"`
}

type RemoveBlacklistResponse struct{}
