package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// ValidSignature checks the X-Exl-Signature value Alma attaches to webhook
// posts: base64(HMAC-SHA256(body, shared secret)). Comparison is constant
// time.
func ValidSignature(body []byte, secret, received string) bool {
	if secret == "" || received == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(received))
}
