package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureAcceptsValidRequest(t *testing.T) {
	t.Parallel()

	secret := "8f742231b10e8888abcd99yyyzzz85a5"
	body := []byte(`{"type":"event_callback"}`)
	ts := strconv.FormatInt(time.Now().Unix(), 10)

	require.NoError(t, VerifySignature(secret, ts, sign(secret, ts, body), body))
}

func TestVerifySignatureRejectsTamperedBody(t *testing.T) {
	t.Parallel()

	secret := "secret"
	body := []byte(`{"a":1}`)
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := sign(secret, ts, body)

	err := VerifySignature(secret, ts, sig, []byte(`{"a":2}`))
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	body := []byte(`{}`)
	ts := strconv.FormatInt(time.Now().Unix(), 10)

	err := VerifySignature("right-secret", ts, sign("wrong-secret", ts, body), body)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifySignatureRejectsStaleTimestamp(t *testing.T) {
	t.Parallel()

	secret := "secret"
	body := []byte(`{}`)
	ts := strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10)

	err := VerifySignature(secret, ts, sign(secret, ts, body), body)
	assert.ErrorIs(t, err, ErrStaleTimestamp)
}

func TestVerifySignatureRejectsGarbageTimestamp(t *testing.T) {
	t.Parallel()

	err := VerifySignature("secret", "not-a-number", "v0=abc", []byte(`{}`))
	assert.ErrorIs(t, err, ErrStaleTimestamp)
}
