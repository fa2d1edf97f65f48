package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHMACVerifier_ValidSignature(t *testing.T) {
	v := NewHMACVerifier("whsec_test")
	body := []byte(`{"id":"wh-1","type":"charge:confirmed"}`)

	assert.True(t, v.Verify(body, signBody("whsec_test", body)))
}

func TestHMACVerifier_WrongSecret(t *testing.T) {
	v := NewHMACVerifier("whsec_test")
	body := []byte(`{"id":"wh-1"}`)

	assert.False(t, v.Verify(body, signBody("whsec_other", body)))
}

func TestHMACVerifier_TamperedBody(t *testing.T) {
	v := NewHMACVerifier("whsec_test")
	sig := signBody("whsec_test", []byte(`{"amount":"10.00"}`))

	assert.False(t, v.Verify([]byte(`{"amount":"9999.00"}`), sig))
}

func TestHMACVerifier_NonHexSignature(t *testing.T) {
	v := NewHMACVerifier("whsec_test")

	assert.False(t, v.Verify([]byte(`{}`), "not-hex!!"))
	assert.False(t, v.Verify([]byte(`{}`), ""))
}

func TestSimulatedVerifier(t *testing.T) {
	v := NewSimulatedVerifier()

	assert.True(t, v.Verify([]byte(`{}`), "anything"))
	assert.False(t, v.Verify([]byte(`{}`), ""))
}
