package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bentswoodworking/bents-api/internal/db"
	"github.com/bentswoodworking/bents-api/internal/llm"
	"github.com/bentswoodworking/bents-api/internal/models"
	"github.com/bentswoodworking/bents-api/internal/sessions"
)

var (
	errMissingUserID  = errors.New("userId is required")
	errMissingMessage = errors.New("message is required")
)

type saveSessionRequest struct {
	UserID      string           `json:"userId"`
	SessionData []models.Session `json:"sessionData"`
}

type syncSessionsRequest struct {
	SessionData []models.Session `json:"sessionData"`
}

type sessionMessageRequest struct {
	SessionID     string `json:"sessionId"`
	Message       string `json:"message"`
	SelectedIndex string `json:"selected_index"`
}

func (h *Handler) handleSaveSession(c *gin.Context) {
	var req saveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		writeError(c, http.StatusBadRequest, "invalid payload", errMissingUserID)
		return
	}
	if !h.authorize(c, userID) {
		return
	}

	record, err := h.sessions.SaveSessions(c.Request.Context(), userID, sessions.Clean(req.SessionData))
	if err != nil {
		h.logger.Errorw("save session failed", "user_id", userID, "error", err)
		writeError(c, http.StatusInternalServerError, "An error occurred while saving session data.", err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *Handler) handleGetSession(c *gin.Context) {
	list, err := h.loadSessions(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.logger.Errorw("get session failed", "user_id", c.Param("userId"), "error", err)
		writeError(c, http.StatusInternalServerError, "An error occurred while retrieving session data.", nil)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *Handler) handleListSessions(c *gin.Context) {
	list, err := h.loadSessions(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.logger.Errorw("list sessions failed", "user_id", c.Param("userId"), "error", err)
		writeError(c, http.StatusInternalServerError, "An error occurred while retrieving session data.", nil)
		return
	}

	c.JSON(http.StatusOK, sessions.Summaries(list))
}

func (h *Handler) handleNewSession(c *gin.Context) {
	userID := c.Param("userId")
	ctx := c.Request.Context()

	mgr, err := h.loadManager(ctx, userID)
	if err != nil {
		h.logger.Errorw("load sessions failed", "user_id", userID, "error", err)
		writeError(c, http.StatusInternalServerError, "An error occurred while retrieving session data.", nil)
		return
	}

	session := mgr.StartNew()
	if _, err := h.sessions.SaveSessions(ctx, userID, mgr.Sessions()); err != nil {
		h.logger.Errorw("persist new session failed", "user_id", userID, "error", err)
		writeError(c, http.StatusInternalServerError, "An error occurred while saving session data.", nil)
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *Handler) handleSyncSessions(c *gin.Context) {
	var req syncSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	userID := c.Param("userId")
	ctx := c.Request.Context()

	stored, err := h.loadSessions(ctx, userID)
	if err != nil {
		h.logger.Errorw("load sessions failed", "user_id", userID, "error", err)
		writeError(c, http.StatusInternalServerError, "An error occurred while retrieving session data.", nil)
		return
	}

	merged := sessions.Merge(stored, req.SessionData)
	if _, err := h.sessions.SaveSessions(ctx, userID, merged); err != nil {
		h.logger.Errorw("persist merged sessions failed", "user_id", userID, "error", err)
		writeError(c, http.StatusInternalServerError, "An error occurred while saving session data.", nil)
		return
	}

	c.JSON(http.StatusOK, merged)
}

// handleSessionMessage runs one chat exchange inside a session. Without a
// sessionId each call behaves like opening a new chat: the trailing session is
// reused only while it is empty, otherwise a new one is started and the LLM
// gets no history. Clients continuing a conversation must echo the sessionId
// from the previous reply.
func (h *Handler) handleSessionMessage(c *gin.Context) {
	var req sessionMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(c, http.StatusBadRequest, "invalid payload", errMissingMessage)
		return
	}

	userID := c.Param("userId")
	ctx := c.Request.Context()

	mgr, err := h.loadManager(ctx, userID)
	if err != nil {
		h.logger.Errorw("load sessions failed", "user_id", userID, "error", err)
		writeError(c, http.StatusInternalServerError, "An error occurred while retrieving session data.", nil)
		return
	}

	if req.SessionID == "" {
		mgr.Activate()
	} else if err := mgr.Select(req.SessionID); err != nil {
		writeError(c, http.StatusNotFound, "session not found", err)
		return
	}

	reply, err := h.chat.Chat(ctx, llm.ChatRequest{
		Message:       message,
		SelectedIndex: req.SelectedIndex,
		ChatHistory:   mgr.ChatHistory(),
	})
	if err != nil {
		h.logger.Errorw("session chat failed", "user_id", userID, "session_id", mgr.CurrentID(), "error", err)
		writeError(c, http.StatusInternalServerError, chatErrorMessage, nil)
		return
	}

	conv, err := mgr.Append(models.Conversation{
		Question:      message,
		Text:          reply.Response,
		InitialAnswer: reply.InitialAnswer,
		Video:         reply.VideoURLs(),
		VideoLinks:    reply.VideoLinks,
	})
	if err != nil {
		writeError(c, http.StatusNotFound, "session not found", err)
		return
	}

	if _, err := h.sessions.SaveSessions(ctx, userID, mgr.Sessions()); err != nil {
		h.logger.Errorw("persist session message failed", "user_id", userID, "error", err)
		writeError(c, http.StatusInternalServerError, "An error occurred while saving session data.", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": mgr.CurrentID(), "conversation": conv})
}

// loadSessions returns the stored list, or an empty one for a new user.
func (h *Handler) loadSessions(ctx context.Context, userID string) ([]models.Session, error) {
	record, err := h.sessions.LoadSessions(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return []models.Session{}, nil
		}
		return nil, err
	}

	list, err := record.Sessions()
	if err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			h.logger.Warnw("stored session data is not valid JSON; starting fresh", "user_id", userID)
			return []models.Session{}, nil
		}
		return nil, err
	}
	return sessions.Clean(list), nil
}

func (h *Handler) loadManager(ctx context.Context, userID string) (*sessions.Manager, error) {
	list, err := h.loadSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	var opts []sessions.Option
	if h.newSessionID != nil {
		opts = append(opts, sessions.WithIDGenerator(h.newSessionID))
	}
	if h.now != nil {
		opts = append(opts, sessions.WithClock(h.now))
	}
	return sessions.NewManager(list, opts...), nil
}
