package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/live"
	"github.com/polkiloo/trattoria/internal/server/http/dto"
)

const defaultKeepAlive = 15 * time.Second

// LiveHandler serves the Server-Sent Events channel and presence listing.
type LiveHandler struct {
	facade    LiveFacade
	keepAlive time.Duration
}

// NewLiveHandler constructs LiveHandler.
func NewLiveHandler(facade LiveFacade, keepAlive time.Duration) *LiveHandler {
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	return &LiveHandler{facade: facade, keepAlive: keepAlive}
}

// Stream handles GET /api/events?module=<module>.
func (h *LiveHandler) Stream(c *gin.Context) {
	claims := CurrentClaims(c)
	ctx := c.Request.Context()

	session, err := h.facade.Connect(ctx, live.Admission{
		StaffID: claims.StaffID,
		Role:    claims.Role,
		Module:  model.Module(c.Query("module")),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	defer session.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	topics := make([]string, 0, len(session.Presence.Topics))
	for _, t := range session.Presence.Topics {
		topics = append(topics, string(t))
	}
	c.SSEvent("connected", dto.ConnectedResponse{
		ConnectionID: session.ID(),
		Module:       string(session.Presence.Module),
		Topics:       topics,
	})
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case evt, ok := <-session.Events():
			if !ok {
				return false
			}
			c.SSEvent(string(evt.Type), toEventResponse(evt))
			return true
		case <-ticker.C:
			_, err := io.WriteString(w, ": keep-alive\n\n")
			return err == nil
		}
	})
}

// Presence handles GET /api/presence.
func (h *LiveHandler) Presence(c *gin.Context) {
	list, counts := h.facade.Presence()
	c.JSON(http.StatusOK, toPresenceResponse(list, counts))
}
