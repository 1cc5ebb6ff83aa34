package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vietcart/logistics/internal/domain/shared"
)

const actorKey = "actor"

// ActorMiddleware extracts the verified identity the API gateway attached
// to the request. This service never authenticates; it trusts the
// gateway-set headers and only enforces authorization.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := shared.Actor{
			UserID: c.GetHeader("X-User-ID"),
			Role:   shared.Role(c.GetHeader("X-User-Role")),
			ShopID: c.GetHeader("X-Shop-ID"),
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func actorFrom(c *gin.Context) shared.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(shared.Actor); ok {
			return a
		}
	}
	return shared.Actor{}
}

// RequireRole rejects requests whose actor lacks any of the given roles.
// Admin passes everywhere.
func RequireRole(roles ...shared.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		if actor.IsAdmin() {
			c.Next()
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		respondError(c, shared.ErrForbidden("access this resource"), actor.Role == shared.RoleCustomer || actor.Role == shared.RoleShipper)
	}
}

// WebhookRateLimit throttles the carrier callback surface. One shared
// limiter is enough: the protection is against a runaway carrier retry
// storm, not per-client fairness.
func WebhookRateLimit(perSecond float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			respondError(c, shared.NewError(shared.KindRateLimited, "webhook rate limit exceeded"), false)
			return
		}
		c.Next()
	}
}

// RequestLogger logs each request at debug with route, status, and actor
// role.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("role", string(actorFrom(c).Role)))
	}
}
