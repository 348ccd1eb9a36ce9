package handlers

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/iov-one/block-explorer/pkg/logger"
	"github.com/iov-one/block-explorer/pkg/state"
	"github.com/labstack/echo/v4"
)

const liveWriteTimeout = 10 * time.Second

type LiveHandler struct {
	State    *state.Store
	Upgrader websocket.Upgrader
}

// e.GET("/live", h.Stream)
//
// Stream sends the summary of the current state, then one summary per state
// change, until the client disconnects.
func (h *LiveHandler) Stream(c echo.Context) error {
	conn, err := h.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already replied to the client.
		return nil
	}
	defer conn.Close()

	updates, unsubscribe := h.State.Subscribe()
	defer unsubscribe()

	// Reading is required to notice a closed connection.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log := logger.With("live")
	send := func(s state.State) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
		if err := conn.WriteJSON(s.Summary()); err != nil {
			log.Debug().Err(err).Msg("live subscriber gone")
			return false
		}
		return true
	}

	if !send(h.State.Snapshot()) {
		return nil
	}
	for {
		select {
		case <-closed:
			return nil
		case <-c.Request().Context().Done():
			return nil
		case s := <-updates:
			if !send(s) {
				return nil
			}
		}
	}
}
