package http

import (
	"time"

	"github.com/vovakirdan/wirechat-irc/internal/core"
	"github.com/vovakirdan/wirechat-irc/internal/store"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ChannelResponse represents a channel in API responses.
type ChannelResponse struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// ClientResponse represents a registered client in API responses.
type ClientResponse struct {
	Nick     string   `json:"nick"`
	Username string   `json:"username"`
	Realname string   `json:"realname"`
	Address  string   `json:"address"`
	Channels []string `json:"channels"`
}

// SessionEventResponse represents one journal row.
type SessionEventResponse struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Nick      string `json:"nick,omitempty"`
	Address   string `json:"address"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

// StatsResponse summarises the hub.
type StatsResponse struct {
	Sessions int `json:"sessions"`
	Clients  int `json:"clients"`
	Channels int `json:"channels"`
}

func channelResponse(v core.ChannelView) ChannelResponse {
	members := v.Members
	if members == nil {
		members = []string{}
	}
	return ChannelResponse{Name: v.Name, Members: members}
}

func clientResponse(v core.ClientView) ClientResponse {
	channels := v.Channels
	if channels == nil {
		channels = []string{}
	}
	return ClientResponse{
		Nick:     v.Nick,
		Username: v.Username,
		Realname: v.Realname,
		Address:  v.Address,
		Channels: channels,
	}
}

func sessionEventResponse(ev *store.SessionEvent) SessionEventResponse {
	return SessionEventResponse{
		ID:        ev.ID,
		SessionID: ev.SessionID,
		Kind:      string(ev.Kind),
		Nick:      ev.Nick,
		Address:   ev.Address,
		Detail:    ev.Detail,
		CreatedAt: ev.CreatedAt.Format(time.RFC3339),
	}
}

func statsResponse(s core.Stats) StatsResponse {
	return StatsResponse{Sessions: s.Sessions, Clients: s.Clients, Channels: s.Channels}
}
