package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ncobase/issues/config"
	"github.com/ncobase/issues/ctxutil"
	"github.com/ncobase/issues/logging/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewEngine builds the gin engine with middleware and routes.
func NewEngine(h *Handler, cfg *config.Config, logger *logger.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	if cfg.Observes != nil && cfg.Observes.Tracer != nil && cfg.Observes.Tracer.Endpoint != "" {
		engine.Use(otelgin.Middleware(cfg.AppName))
	}
	engine.Use(Trace(), Logger(logger))
	if cfg.Server != nil {
		engine.Use(CORS(cfg.Server.CORS))
	}

	h.RegisterRoutes(engine)
	return engine
}

// Trace propagates the X-Trace-ID header, generating one when absent.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		traceID := c.GetHeader(ctxutil.TraceIDHeader)
		if traceID != "" {
			ctx = ctxutil.SetTraceID(ctx, traceID)
		} else {
			ctx, traceID = ctxutil.EnsureTraceID(ctx)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Header(ctxutil.TraceIDHeader, traceID)
		c.Next()
	}
}

// Logger logs one entry per request.
func Logger(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info(c.Request.Context(), "HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"ip", c.ClientIP(),
		)
	}
}

// CORS allows the configured origins; "*" allows any origin.
func CORS(conf *config.CORS) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", ctxutil.TraceIDHeader},
		ExposeHeaders:    []string{ctxutil.TraceIDHeader},
		MaxAge:           12 * time.Hour,
		AllowAllOrigins:  true,
		AllowCredentials: false,
	}
	if conf != nil && len(conf.AllowOrigins) > 0 && !slices.Contains(conf.AllowOrigins, "*") {
		cc.AllowAllOrigins = false
		cc.AllowOrigins = conf.AllowOrigins
		cc.AllowCredentials = conf.AllowCredentials
	}
	return cors.New(cc)
}
