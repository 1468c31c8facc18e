// Package webhook implements the push-based webhook receiver: an
// HTTP handler that verifies an HMAC-SHA256 signature when a secret
// is registered for the source, buffers verified events in a bounded
// ring, and exposes them as a finite ingest.Adapter.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// SignatureHeaders are the request header names this receiver checks
// for a signature, in the order they are tried. The first header
// present on the request wins.
var SignatureHeaders = []string{
	"X-Hub-Signature-256",
	"X-Datadog-Signature",
	"X-Slack-Signature",
	"X-PagerDuty-Signature",
	"X-Webhook-Signature",
}

// signatureFromHeader extracts the hex digest from a signature header
// value, stripping an optional "sha256=" prefix.
func signatureFromHeader(value string) string {
	return strings.TrimPrefix(value, "sha256=")
}

// canonicalJSON re-marshals an arbitrary JSON payload with every
// object's keys sorted, which is what encoding/json already does for
// a decoded map[string]interface{} - decoding and re-encoding is
// sufficient to canonicalize.
func canonicalJSON(body []byte) ([]byte, error) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// verifySignature reports whether signature (hex-encoded, with an
// optional "sha256=" prefix already stripped by the caller) matches
// the HMAC-SHA256 of body under secret. Comparison is constant-time.
func verifySignature(secret []byte, body []byte, signature string) bool {
	want, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	got := mac.Sum(nil)

	return hmac.Equal(want, got)
}
