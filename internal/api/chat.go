package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	chatErrorMessage = "An error occurred while processing your chat request."
	wsWriteTimeout   = 10 * time.Second
)

var errInvalidJSON = errors.New("request body must be valid JSON")

type chatFrame struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// handleChat relays the body to the chat service without reshaping it.
func (h *Handler) handleChat(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if !json.Valid(body) {
		writeError(c, http.StatusBadRequest, "invalid payload", errInvalidJSON)
		return
	}

	reply, err := h.chat.Forward(c.Request.Context(), body)
	if err != nil {
		h.logger.Errorw("chat proxy failed", "error", err)
		writeError(c, http.StatusInternalServerError, chatErrorMessage, nil)
		return
	}

	if !json.Valid(reply) {
		c.JSON(http.StatusOK, string(reply))
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", reply)
}

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  32 * 1024,
		WriteBufferSize: 32 * 1024,
		CheckOrigin:     h.checkOrigin,
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	return slices.Contains(h.opts.AllowedOrigins, origin) || slices.Contains(h.opts.AllowedOrigins, "*")
}

// handleChatWebsocket answers each text frame with one reply or error frame.
func (h *Handler) handleChatWebsocket(c *gin.Context) {
	conn, err := h.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnf("chat websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if h.opts.MaxBodyBytes > 0 {
		conn.SetReadLimit(h.opts.MaxBodyBytes)
	}

	ctx := c.Request.Context()
	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				h.logger.Debugw("chat websocket closed", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		frame := chatFrame{Type: "reply"}
		if !json.Valid(payload) {
			frame = chatFrame{Type: "error", Message: errInvalidJSON.Error()}
		} else if reply, err := h.chat.Forward(ctx, payload); err != nil {
			h.logger.Errorw("chat websocket relay failed", "error", err)
			frame = chatFrame{Type: "error", Message: chatErrorMessage}
		} else if json.Valid(reply) {
			frame.Data = reply
		} else {
			quoted, _ := json.Marshal(string(reply))
			frame.Data = quoted
		}

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			h.logger.Warnw("chat websocket write failed", "error", err)
			return
		}
	}
}
