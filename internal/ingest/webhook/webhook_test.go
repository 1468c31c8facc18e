package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signBody(t *testing.T, secret []byte, body []byte) string {
	t.Helper()
	canon, err := canonicalJSON(body)
	require.NoError(t, err)
	mac := hmac.New(sha256.New, secret)
	mac.Write(canon)
	return hex.EncodeToString(mac.Sum(nil))
}

func newTestMux(r *Receiver) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook/{source}", r.Handler())
	return mux
}

func TestReceiver_AcceptsUnsignedWhenNoSecretRegistered(t *testing.T) {
	r := NewReceiver(10)
	mux := newTestMux(r)

	body := []byte(`{"alert": "disk full"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook/datadog", bytes.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, r.Buffered())

	rec, ok := r.buffer.Pop()
	require.True(t, ok)
	assert.Equal(t, false, rec["webhook_verified"])
	assert.Equal(t, "datadog", rec["webhook_source"])
}

func TestReceiver_VerifiesValidSignatureWithPrefix(t *testing.T) {
	secret := []byte("s3cr3t")
	r := NewReceiver(10)
	r.RegisterSecret("datadog", secret)
	mux := newTestMux(r)

	body := []byte(`{"alert": "disk full"}`)
	sig := signBody(t, secret, body)

	req := httptest.NewRequest(http.MethodPost, "/webhook/datadog", bytes.NewReader(body))
	req.Header.Set("X-Datadog-Signature", "sha256="+sig)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	rec, ok := r.buffer.Pop()
	require.True(t, ok)
	assert.Equal(t, true, rec["webhook_verified"])
}

func TestReceiver_VerifiesValidSignatureBareHex(t *testing.T) {
	secret := []byte("s3cr3t")
	r := NewReceiver(10)
	r.RegisterSecret("slack", secret)
	mux := newTestMux(r)

	body := []byte(`{"text": "incident"}`)
	sig := signBody(t, secret, body)

	req := httptest.NewRequest(http.MethodPost, "/webhook/slack", bytes.NewReader(body))
	req.Header.Set("X-Slack-Signature", sig)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestReceiver_RejectsWrongSignature(t *testing.T) {
	r := NewReceiver(10)
	r.RegisterSecret("pagerduty", []byte("right-secret"))
	mux := newTestMux(r)

	body := []byte(`{"incident": "P1"}`)
	sig := signBody(t, []byte("wrong-secret"), body)

	req := httptest.NewRequest(http.MethodPost, "/webhook/pagerduty", bytes.NewReader(body))
	req.Header.Set("X-PagerDuty-Signature", "sha256="+sig)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, r.Buffered())
}

func TestReceiver_RejectsMissingSignatureWhenSecretRegistered(t *testing.T) {
	r := NewReceiver(10)
	r.RegisterSecret("generic", []byte("secret"))
	mux := newTestMux(r)

	req := httptest.NewRequest(http.MethodPost, "/webhook/generic", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReceiver_SignatureIsOrderInsensitiveAcrossKeyOrdering(t *testing.T) {
	secret := []byte("order-secret")
	r := NewReceiver(10)
	r.RegisterSecret("hub", secret)
	mux := newTestMux(r)

	canonicalBody := []byte(`{"a":1,"b":2}`)
	sig := signBody(t, secret, canonicalBody)

	reorderedBody := []byte(`{"b":2,"a":1}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook/hub", bytes.NewReader(reorderedBody))
	req.Header.Set("X-Hub-Signature-256", "sha256="+sig)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestRingBuffer_DropsOldestFractionOnOverflow(t *testing.T) {
	rb := newRingBuffer(10)
	for i := 0; i < 10; i++ {
		rb.Push(map[string]interface{}{"n": i})
	}
	require.Equal(t, 10, rb.Len())

	rb.Push(map[string]interface{}{"n": 10})
	assert.Equal(t, 10, rb.Len())

	first, ok := rb.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, first["n"])
}

func TestAdapter_DrainsWhateverIsCurrentlyBuffered(t *testing.T) {
	r := NewReceiver(10)
	r.buffer.Push(map[string]interface{}{"message": "one"})
	r.buffer.Push(map[string]interface{}{"message": "two"})

	a := NewAdapter(r)
	rec, ok, err := a.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "one", rec["message"])

	rec, ok, err = a.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two", rec["message"])

	_, ok, err = a.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReceiver_RejectsNonJSONBody(t *testing.T) {
	r := NewReceiver(10)
	mux := newTestMux(r)

	req := httptest.NewRequest(http.MethodPost, "/webhook/generic", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCanonicalJSON_SortsKeysRecursively(t *testing.T) {
	in := []byte(`{"b":1,"a":{"d":2,"c":3}}`)
	out, err := canonicalJSON(in)
	require.NoError(t, err)

	var roundTrip map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &roundTrip))
	assert.Equal(t, string(out), `{"a":{"c":3,"d":2},"b":1}`)
}
