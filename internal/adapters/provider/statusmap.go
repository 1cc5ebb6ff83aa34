package provider

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
)

// unmarshalWebhook decodes a webhook body, translating malformed JSON into
// a validation error so handlers answer 400 rather than 500.
func unmarshalWebhook(payload []byte, dst interface{}) error {
	if err := json.Unmarshal(payload, dst); err != nil {
		return shared.WrapError(shared.KindValidation, err, "malformed webhook payload")
	}
	return nil
}

// normalizeStatus translates one carrier's raw status token through its
// static mapping. Unknown tokens degrade to created and are logged, never
// rejected; webhooks keep flowing when a carrier adds tokens before we do.
func normalizeStatus(mapping map[string]shipping.UnifiedStatus, code, token string, logger *zap.Logger) shipping.UnifiedStatus {
	if s, ok := mapping[token]; ok {
		return s
	}
	logger.Warn("unknown provider status token",
		zap.String("provider", code),
		zap.String("token", token))
	return shipping.StatusCreated
}
