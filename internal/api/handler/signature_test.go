package handler_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/wrlc/alma-item-checks/internal/api/handler"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestValidSignature(t *testing.T) {
	body := []byte(`{"item":{"item_data":{"barcode":"31234X"}}}`)
	secret := "shhh"

	if !handler.ValidSignature(body, secret, sign(body, secret)) {
		t.Fatal("correct signature rejected")
	}
	if handler.ValidSignature(body, secret, sign(body, "wrong-secret")) {
		t.Fatal("signature from wrong secret accepted")
	}
	if handler.ValidSignature([]byte("tampered"), secret, sign(body, secret)) {
		t.Fatal("signature for different body accepted")
	}
	if handler.ValidSignature(body, secret, "") {
		t.Fatal("missing signature accepted")
	}
	if handler.ValidSignature(body, "", sign(body, "")) {
		t.Fatal("empty secret must always reject")
	}
}
