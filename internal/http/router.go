package http

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"copilot-context/internal/service"
)

// RouterOptions agrupa los ajustes opcionales del router.
type RouterOptions struct {
	MaxBodyBytes int64
	RateLimiter  service.RateLimiter

	// TrustedProxies son IPs/CIDRs cuyo X-Forwarded-For se acepta. Vacío: se usa siempre la IP del peer.
	TrustedProxies []string
}

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	contextH *ContextHandler,
	healthH *HealthHandler,
	opts RouterOptions,
) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	// Middlewares basicos: request id, logging, recovery y JSON content-type.
	r.Use(requestIDMiddleware(), zapLoggerMiddleware(logger), recoveryMiddleware(logger), jsonContentTypeMiddleware())

	r.GET("/healthz", healthH.Health)

	hook := r.Group("")
	hook.Use(bodyLimitMiddleware(opts.MaxBodyBytes))
	if opts.RateLimiter != nil {
		hook.Use(rateLimitMiddleware(opts.RateLimiter))
	}
	// Any: los métodos distintos de POST deben llegar al handler para responder 405.
	hook.Any("/", contextH.HandleContext)
	hook.Any("/api", contextH.HandleContext)

	return r, nil
}
