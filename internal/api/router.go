package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with logging, recovery and body limits.
func NewRouter(handler *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(requestLogger(logger), recovery(logger), bodyLimit(handler.opts.MaxBodyBytes))
	handler.RegisterRoutes(router)

	return router
}

// WithCORS wraps the engine with the browser origin allow-list.
func WithCORS(next http.Handler, allowedOrigins []string) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	})(next)
}
