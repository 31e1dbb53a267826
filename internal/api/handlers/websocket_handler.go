package handlers

import (
	"github.com/labstack/echo/v4"

	"travel-system/internal/infrastructure/websocket"
)

// WebSocketHandlers adapts the hub's upgrade gate to echo routing.
type WebSocketHandlers struct {
	wsHandler *websocket.Handler
}

func NewWebSocketHandlers(wsHandler *websocket.Handler) *WebSocketHandlers {
	return &WebSocketHandlers{
		wsHandler: wsHandler,
	}
}

func (h *WebSocketHandlers) HandleConnection(c echo.Context) error {
	h.wsHandler.HandleConnection(c.Response(), c.Request())
	return nil
}
