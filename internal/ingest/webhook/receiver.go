package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/corelens/rca-engine/internal/events"
	"github.com/corelens/rca-engine/internal/logging"
	"github.com/corelens/rca-engine/internal/rcaconst"
)

// Receiver accepts webhook POSTs, verifies them against a per-source
// HMAC secret when one is registered, and buffers the resulting
// records for later draining through Adapter.
type Receiver struct {
	mu      sync.RWMutex
	secrets map[string][]byte
	buffer  *ringBuffer
	logger  *logging.Logger
}

// NewReceiver builds a Receiver whose ring buffer holds up to
// capacity accepted events. A capacity <= 0 falls back to
// rcaconst.WebhookRingBufferSize.
func NewReceiver(capacity int) *Receiver {
	return &Receiver{
		secrets: make(map[string][]byte),
		buffer:  newRingBuffer(capacity),
		logger:  logging.GetLogger("ingest.webhook"),
	}
}

// RegisterSecret associates an HMAC secret with a webhook source.
// Requests for a source with no registered secret are accepted
// without signature verification.
func (r *Receiver) RegisterSecret(source string, secret []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.secrets[source] = secret
}

func (r *Receiver) secretFor(source string) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	secret, ok := r.secrets[source]
	return secret, ok
}

// Handler returns the http.HandlerFunc to mount at a path carrying a
// "source" wildcard segment, e.g. "POST /webhook/{source}".
func (r *Receiver) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		source := req.PathValue("source")
		if source == "" {
			http.Error(w, "missing webhook source", http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(io.LimitReader(req.Body, int64(rcaconst.MaxFileSize)))
		if err != nil {
			r.logger.Warn("webhook %s: failed reading body: %v", source, err)
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		verified := false
		if secret, ok := r.secretFor(source); ok {
			sig := r.extractSignature(req)
			if sig == "" {
				http.Error(w, "missing signature", http.StatusUnauthorized)
				return
			}
			canon, err := canonicalJSON(body)
			if err != nil {
				http.Error(w, "invalid JSON body", http.StatusBadRequest)
				return
			}
			if !verifySignature(secret, canon, sig) {
				r.logger.Warn("webhook %s: signature verification failed", source)
				http.Error(w, "invalid signature", http.StatusUnauthorized)
				return
			}
			verified = true
		}

		var payload events.RawRecord
		if err := json.Unmarshal(body, &payload); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		if payload == nil {
			payload = events.RawRecord{}
		}
		payload["webhook_source"] = source
		payload["webhook_verified"] = verified
		r.buffer.Push(payload)

		w.WriteHeader(http.StatusAccepted)
	}
}

func (r *Receiver) extractSignature(req *http.Request) string {
	for _, header := range SignatureHeaders {
		if v := req.Header.Get(header); v != "" {
			return signatureFromHeader(v)
		}
	}
	return ""
}

// Buffered reports how many accepted events (verified, or from a
// source with no registered secret) are currently queued.
func (r *Receiver) Buffered() int {
	return r.buffer.Len()
}
