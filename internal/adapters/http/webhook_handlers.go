package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/domain/shared"
)

// carrierWebhook ingests one provider callback. The raw body is passed
// through untouched because the signature covers the exact bytes sent.
// Carriers retry on non-2xx, so only errors that a retry could fix return
// one; bad payloads and bad signatures are acknowledged with their status
// and never retried into a storm.
func (h *Handlers) carrierWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		respondValidation(c, false, "body", "unreadable payload")
		return
	}
	signature := c.GetHeader("X-Signature")
	if signature == "" {
		signature = c.GetHeader("X-Hub-Signature")
	}

	providerCode := c.Param("provider")
	if err := h.facade.HandleWebhook(c.Request.Context(), providerCode, payload, signature); err != nil {
		h.logger.Warn("webhook rejected",
			zap.String("provider", providerCode),
			zap.String("kind", string(shared.KindOf(err))),
			zap.Error(err))
		respondError(c, err, false)
		return
	}
	respond(c, http.StatusOK, gin.H{"received": true})
}
