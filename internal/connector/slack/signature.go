package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	ErrBadSignature   = errors.New("slack signature mismatch")
	ErrStaleTimestamp = errors.New("slack request timestamp outside allowed window")
)

// signatureWindow rejects replayed requests.
const signatureWindow = 5 * time.Minute

// VerifySignature checks a request against Slack's v0 signing scheme:
// hex(HMAC-SHA256(secret, "v0:{timestamp}:{body}")) prefixed with "v0=".
func VerifySignature(secret, timestamp, signature string, body []byte) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrStaleTimestamp
	}
	age := time.Since(time.Unix(ts, 0))
	if age > signatureWindow || age < -signatureWindow {
		return ErrStaleTimestamp
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}
	return nil
}
