package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/vietcart/logistics/internal/domain/shared"
)

// SignPayload computes the hex HMAC-SHA256 of a webhook payload. Carriers
// sign the raw body bytes as delivered; no re-serialization happens here.
func SignPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook signature in constant time. Any
// mismatch, including an empty signature, yields INVALID_SIGNATURE.
func VerifySignature(secret string, payload []byte, signature string) error {
	expected := SignPayload(secret, payload)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return shared.NewError(shared.KindInvalidSignature, "webhook signature mismatch")
	}
	return nil
}
