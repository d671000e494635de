package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/core"
	"github.com/vovakirdan/wirechat-irc/internal/store"
)

// maxSessionsLimit caps ?limit= on the journal listing.
const maxSessionsLimit = 1000

// StatusHandlers serves read-only views of the hub and the session journal.
type StatusHandlers struct {
	hub     *core.Hub
	journal store.Journal
	log     *zerolog.Logger
}

// NewStatusHandlers creates status handlers.
func NewStatusHandlers(hub *core.Hub, journal store.Journal, logger *zerolog.Logger) *StatusHandlers {
	if journal == nil {
		journal = store.Discard
	}
	return &StatusHandlers{hub: hub, journal: journal, log: logger}
}

// ListChannels returns every live channel.
// GET /api/channels
func (h *StatusHandlers) ListChannels(c *gin.Context) {
	views := h.hub.Channels()
	response := make([]ChannelResponse, 0, len(views))
	for _, v := range views {
		response = append(response, channelResponse(v))
	}
	c.JSON(http.StatusOK, response)
}

// GetChannel returns one channel. The name must be URL-escaped (%23 for '#').
// GET /api/channels/:name
func (h *StatusHandlers) GetChannel(c *gin.Context) {
	view, ok := h.hub.Channel(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "channel not found"})
		return
	}
	c.JSON(http.StatusOK, channelResponse(view))
}

// ListClients returns every registered client.
// GET /api/clients
func (h *StatusHandlers) ListClients(c *gin.Context) {
	views := h.hub.Clients()
	response := make([]ClientResponse, 0, len(views))
	for _, v := range views {
		response = append(response, clientResponse(v))
	}
	c.JSON(http.StatusOK, response)
}

// GetClient returns one registered client by nickname.
// GET /api/clients/:nick
func (h *StatusHandlers) GetClient(c *gin.Context) {
	view, ok := h.hub.Client(c.Param("nick"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "client not found"})
		return
	}
	c.JSON(http.StatusOK, clientResponse(view))
}

// Stats returns live counters.
// GET /api/stats
func (h *StatusHandlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, statsResponse(h.hub.Stats()))
}

// ListSessions returns journal events, newest first.
// GET /api/sessions?nick=&session_id=&kind=&limit=
func (h *StatusHandlers) ListSessions(c *gin.Context) {
	filter := store.EventFilter{
		SessionID: c.Query("session_id"),
		Nick:      c.Query("nick"),
		Kind:      store.EventKind(c.Query("kind")),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxSessionsLimit {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	events, err := h.journal.ListEvents(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list session events")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]SessionEventResponse, 0, len(events))
	for _, ev := range events {
		response = append(response, sessionEventResponse(ev))
	}
	c.JSON(http.StatusOK, response)
}
