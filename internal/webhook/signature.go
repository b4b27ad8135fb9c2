// Package webhook verifies and parses inbound payment-processor webhooks.
// Signatures use HMAC-SHA256 over "{timestamp}.{body}" carried in a
// "t=<unix>,v1=<hex>" header, with a bounded timestamp tolerance to prevent
// replay of captured deliveries.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/triplegarycodes/vyral-test-sub000/internal/domain"
)

// DefaultTolerance is the maximum accepted age of a signed payload.
const DefaultTolerance = 5 * time.Minute

// SignatureHeader is the HTTP header carrying the payload signature.
const SignatureHeader = "Vyral-Signature"

// VerifySignature checks the signature header against the raw body using the
// shared secret. It returns domain.ErrSignatureInvalid on any mismatch,
// malformed header, or expired timestamp; the body must not be parsed before
// this succeeds.
func VerifySignature(body []byte, header, secret string, now time.Time, tolerance time.Duration) error {
	timestamp, signature, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	age := now.Unix() - timestamp
	if age < 0 {
		age = -age
	}
	if time.Duration(age)*time.Second > tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", domain.ErrSignatureInvalid)
	}

	expected := ComputeSignature(timestamp, body, secret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("%w: signature mismatch", domain.ErrSignatureInvalid)
	}

	return nil
}

// ComputeSignature computes the hex HMAC-SHA256 over "{timestamp}.{payload}".
func ComputeSignature(timestamp int64, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeaderValue renders the header for a timestamp and payload. Used by
// tests and by the processor twin in local development.
func SignatureHeaderValue(timestamp int64, payload []byte, secret string) string {
	return fmt.Sprintf("t=%d,v1=%s", timestamp, ComputeSignature(timestamp, payload, secret))
}

// parseSignatureHeader extracts the timestamp and v1 signature from a
// "t=<unix>,v1=<hex>" header value.
func parseSignatureHeader(header string) (int64, string, error) {
	if header == "" {
		return 0, "", fmt.Errorf("%w: missing signature header", domain.ErrSignatureInvalid)
	}

	var timestamp int64
	var signature string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, "", fmt.Errorf("%w: malformed timestamp", domain.ErrSignatureInvalid)
			}
			timestamp = ts
		case "v1":
			signature = value
		}
	}

	if timestamp == 0 || signature == "" {
		return 0, "", fmt.Errorf("%w: malformed signature header", domain.ErrSignatureInvalid)
	}

	return timestamp, signature, nil
}

// ParseEvent decodes a verified payload into an Event. Call only after
// VerifySignature has succeeded.
func ParseEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook event: %w", err)
	}
	if event.ID == "" || event.Type == "" {
		return nil, fmt.Errorf("webhook event missing id or type")
	}
	return &event, nil
}
