package render

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// SignatureHeader carries the webhook body signature.
const SignatureHeader = "X-Webhook-Signature"

// Sign computes the hex HMAC-SHA256 of body under secret, with the scheme
// prefix used on the wire.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook body against its signature header using a
// constant-time comparison.
func VerifySignature(secret, body []byte, header string) error {
	if header == "" {
		return fmt.Errorf("missing webhook signature")
	}
	provided := strings.TrimPrefix(header, "sha256=")

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(provided), []byte(expected)) {
		return fmt.Errorf("webhook signature mismatch")
	}
	return nil
}
