package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bentswoodworking/bents-api/internal/auth"
	"github.com/bentswoodworking/bents-api/internal/db"
	"github.com/bentswoodworking/bents-api/internal/llm"
	"github.com/bentswoodworking/bents-api/internal/models"
)

// Catalog is the relational side of the API: products, contact messages,
// starter questions and the migrated vector metadata.
type Catalog interface {
	ListProducts(ctx context.Context, orderByTags bool) ([]models.Product, error)
	CreateProduct(ctx context.Context, in db.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, in db.ProductInput) error
	DeleteProduct(ctx context.Context, id string) error
	CreateContact(ctx context.Context, contact models.Contact) (*models.Contact, error)
	RandomQuestions(ctx context.Context, limit int) ([]models.Question, error)
	MigratedData(ctx context.Context) ([]map[string]any, error)
}

type ChatClient interface {
	Forward(ctx context.Context, body []byte) ([]byte, error)
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatReply, error)
}

type Dependencies struct {
	Auth     *auth.Service
	Catalog  Catalog
	Sessions db.SessionStore
	Chat     ChatClient
}

type Options struct {
	AllowedOrigins []string
	AuthRequired   bool
	MaxBodyBytes   int64
}

type Handler struct {
	authService *auth.Service
	catalog     Catalog
	sessions    db.SessionStore
	chat        ChatClient
	opts        Options
	logger      *zap.SugaredLogger

	newSessionID func() string
	now          func() time.Time
}

func NewHandler(deps Dependencies, opts Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		authService: deps.Auth,
		catalog:     deps.Catalog,
		sessions:    deps.Sessions,
		chat:        deps.Chat,
		opts:        opts,
		logger:      logger.Sugar(),
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.handleRoot)
	router.GET("/test", h.handleTest)
	router.GET("/test-cors", h.handleTestCORS)
	router.GET("/health", h.handleHealth)

	router.POST("/contact", h.handleContact)
	router.POST("/chat", h.handleChat)
	router.GET("/ws/chat", h.handleChatWebsocket)

	router.GET("/documents", h.handleListDocuments)
	router.POST("/add_document", h.handleAddDocument)
	router.POST("/delete_document", h.handleDeleteDocument)
	router.POST("/update_document", h.handleUpdateDocument)

	apiGroup := router.Group("/api")
	apiGroup.GET("/random-questions", h.handleRandomQuestions)
	apiGroup.GET("/products", h.handleProducts)
	apiGroup.GET("/users", h.handleUsers)
	apiGroup.GET("/migrated-data", h.handleMigratedData)

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", h.handleRegister)
	authGroup.POST("/login", h.handleLogin)

	apiGroup.POST("/save-session", h.handleSaveSession)
	apiGroup.GET("/get-session/:userId", h.requireUserParam(), h.handleGetSession)

	sessionGroup := apiGroup.Group("/sessions/:userId", h.requireUserParam())
	sessionGroup.GET("", h.handleListSessions)
	sessionGroup.POST("/new", h.handleNewSession)
	sessionGroup.POST("/sync", h.handleSyncSessions)
	sessionGroup.POST("/messages", h.handleSessionMessage)
}

func (h *Handler) handleRoot(c *gin.Context) {
	c.String(http.StatusOK, "Server is running")
}

func (h *Handler) handleTest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Server is working"})
}

func (h *Handler) handleTestCORS(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "CORS is working"})
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

var (
	errMissingToken = errors.New("authorization bearer token is required")
	errForbidden    = errors.New("token does not belong to this user")
)

// requireUserParam guards routes whose :userId must match the caller.
func (h *Handler) requireUserParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.authorize(c, c.Param("userId")) {
			c.Abort()
			return
		}
		c.Next()
	}
}

// authorize checks the bearer token against userID when auth is enforced,
// writing the error response itself on failure.
func (h *Handler) authorize(c *gin.Context, userID string) bool {
	if !h.opts.AuthRequired {
		return true
	}

	token := parseAuthorizationToken(c.GetHeader("Authorization"))
	if token == "" {
		writeError(c, http.StatusUnauthorized, "Unauthorized", errMissingToken)
		return false
	}

	claims, err := h.authService.VerifyToken(token)
	if err != nil {
		writeError(c, http.StatusUnauthorized, "Unauthorized", auth.ErrInvalidToken)
		return false
	}

	if claims.Subject != userID {
		writeError(c, http.StatusForbidden, "Forbidden", errForbidden)
		return false
	}

	c.Set(contextUserIDKey, claims.Subject)
	return true
}

// contextUserIDKey holds the verified token subject for the request logger.
const contextUserIDKey = "userID"

func parseAuthorizationToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}

	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}

	return ""
}

func writeError(c *gin.Context, status int, message string, err error) {
	body := gin.H{"message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	c.JSON(status, body)
}
