package firecrawl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-api-key", WithBaseURL(srv.URL))
}

func TestExtract_ObjectData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/extract", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var req ExtractRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"https://x.com/a"}, req.URLs)
		assert.Contains(t, req.Prompt, "extract")

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true,"data":{"name":"Spin Master","about":"DJ"}}`))
	})

	resp, err := c.Extract(context.Background(), ExtractRequest{
		URLs:   []string{"https://x.com/a"},
		Prompt: "extract the vendor fields",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Spin Master", resp.Data["name"])
}

func TestExtract_ArrayDataNormalized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true,"data":[{"urls":["https://x.com/a","https://x.com/b"]}]}`))
	})

	resp, err := c.Extract(context.Background(), ExtractRequest{URLs: []string{"https://listing.com"}, Prompt: "p"})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	urls, ok := resp.Data["urls"].([]any)
	require.True(t, ok)
	assert.Len(t, urls, 2)
}

func TestExtract_EmptyData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":false,"error":"extraction failed"}`))
	})

	resp, err := c.Extract(context.Background(), ExtractRequest{URLs: []string{"https://x.com/a"}, Prompt: "p"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "extraction failed", resp.Error)
	assert.Nil(t, resp.Data)
}

func TestExtract_PaymentRequired(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":"insufficient credits"}`))
	})

	_, err := c.Extract(context.Background(), ExtractRequest{URLs: []string{"https://x.com/a"}, Prompt: "p"})
	require.Error(t, err)
	assert.True(t, IsPaymentRequired(err))
	assert.True(t, IsAPIError(err))
}

func TestExtract_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal server error"}`))
	})

	_, err := c.Extract(context.Background(), ExtractRequest{URLs: []string{"https://x.com/a"}, Prompt: "p"})
	require.Error(t, err)
	assert.False(t, IsPaymentRequired(err))
	assert.True(t, IsAPIError(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.StatusCode)
}

func TestExtract_TransportErrorIsNotAPIError(t *testing.T) {
	// Point at a closed server to force a connection failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := NewClient("key", WithBaseURL(srv.URL))

	_, err := c.Extract(context.Background(), ExtractRequest{URLs: []string{"https://x.com/a"}, Prompt: "p"})
	require.Error(t, err)
	assert.False(t, IsAPIError(err))
}

func TestIsPaymentRequired_WrappedError(t *testing.T) {
	err := eris.Wrap(&APIError{StatusCode: 402, Body: "quota"}, "scrape listing")
	assert.True(t, IsPaymentRequired(err))

	assert.False(t, IsPaymentRequired(eris.New("boom")))
	assert.False(t, IsPaymentRequired(nil))
}
