package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reverie-dev/reverie/internal/data/db"
	"github.com/reverie-dev/reverie/internal/reasoning"
)

func newTestHandler(t *testing.T, opts ...ServerOption) http.Handler {
	t.Helper()
	return NewServer(reasoning.DefaultTagTable(), opts...).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func createStream(t *testing.T, h http.Handler) string {
	t.Helper()
	w, resp := doJSON(t, h, http.MethodPost, "/v1/streams", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id, ok := resp["stream_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, id)
	return id
}

func feed(t *testing.T, h http.Handler, id, fragment string) {
	t.Helper()
	w, _ := doJSON(t, h, http.MethodPost, "/v1/streams/"+id+"/fragments", feedRequest{Fragment: fragment})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestServer_Health(t *testing.T) {
	h := newTestHandler(t)

	w, resp := doJSON(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp["status"])
}

func TestServer_StreamLifecycle(t *testing.T) {
	h := newTestHandler(t)
	id := createStream(t, h)

	feed(t, h, id, "<think>weigh the ")
	feed(t, h, id, "options</think>Go with B.")

	w, resp := doJSON(t, h, http.MethodGet, "/v1/streams/"+id+"/blocks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	blocks, ok := resp["blocks"].([]any)
	require.True(t, ok)
	require.Len(t, blocks, 2)

	first := blocks[0].(map[string]any)
	assert.Equal(t, "reasoning", first["kind"])
	assert.Equal(t, "weigh the options", first["content"])
	assert.Equal(t, true, first["done"])

	second := blocks[1].(map[string]any)
	assert.Equal(t, "plain", second["kind"])
	assert.Equal(t, "Go with B.", second["content"])

	w, resp = doJSON(t, h, http.MethodPost, "/v1/streams/"+id+"/finish", nil)
	require.Equal(t, http.StatusOK, w.Code)
	markup, ok := resp["markup"].(string)
	require.True(t, ok)
	assert.Contains(t, markup, `<details type="reasoning" done="true"`)
	assert.Contains(t, markup, "> weigh the options")
	assert.Contains(t, markup, "Go with B.")

	// The stream is gone once finished.
	w, _ = doJSON(t, h, http.MethodGet, "/v1/streams/"+id+"/blocks", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_SplitTagAcrossFragments(t *testing.T) {
	h := newTestHandler(t)
	id := createStream(t, h)

	feed(t, h, id, "<thi")
	feed(t, h, id, "nking>abc</thinking>done")

	w, resp := doJSON(t, h, http.MethodGet, "/v1/streams/"+id+"/blocks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	blocks := resp["blocks"].([]any)
	require.Len(t, blocks, 2)
	assert.Equal(t, "abc", blocks[0].(map[string]any)["content"])
	assert.Equal(t, "done", blocks[1].(map[string]any)["content"])
}

func TestServer_CancelClosesOpenReasoning(t *testing.T) {
	h := newTestHandler(t)
	id := createStream(t, h)

	feed(t, h, id, "<think>never finished")

	w, resp := doJSON(t, h, http.MethodDelete, "/v1/streams/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	blocks := resp["blocks"].([]any)
	require.Len(t, blocks, 1)

	b := blocks[0].(map[string]any)
	assert.Equal(t, "reasoning", b["kind"])
	assert.Equal(t, "never finished", b["content"])
	assert.Equal(t, true, b["done"])

	w, _ = doJSON(t, h, http.MethodDelete, "/v1/streams/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_MarkupWhileStreaming(t *testing.T) {
	h := newTestHandler(t)
	id := createStream(t, h)

	feed(t, h, id, "<think>still going")

	w, resp := doJSON(t, h, http.MethodGet, "/v1/streams/"+id+"/markup", nil)
	require.Equal(t, http.StatusOK, w.Code)
	markup := resp["markup"].(string)
	assert.Contains(t, markup, `done="false"`)
	assert.Contains(t, markup, "Thinking…")
}

func TestServer_UnknownStream(t *testing.T) {
	h := newTestHandler(t)

	w, _ := doJSON(t, h, http.MethodPost, "/v1/streams/no-such-id/fragments", feedRequest{Fragment: "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_InvalidFragmentBody(t *testing.T) {
	h := newTestHandler(t)
	id := createStream(t, h)

	req := httptest.NewRequest(http.MethodPost, "/v1/streams/"+id+"/fragments", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_FinishArchivesBlocks(t *testing.T) {
	store, err := db.NewStreamStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	h := newTestHandler(t, WithArchive(store))
	id := createStream(t, h)

	feed(t, h, id, "<think>hmm</think>answer")
	w, _ := doJSON(t, h, http.MethodPost, "/v1/streams/"+id+"/finish", nil)
	require.Equal(t, http.StatusOK, w.Code)

	records, err := store.BlocksForStream(id)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "reasoning", records[0].Kind)
	assert.Equal(t, "answer", records[1].Content)
}

func TestServer_ConcurrentStreamsIsolated(t *testing.T) {
	h := newTestHandler(t)

	ids := make([]string, 3)
	for i := range ids {
		ids[i] = createStream(t, h)
	}
	for i, id := range ids {
		feed(t, h, id, fmt.Sprintf("stream %d text", i))
	}

	for i, id := range ids {
		w, resp := doJSON(t, h, http.MethodGet, "/v1/streams/"+id+"/blocks", nil)
		require.Equal(t, http.StatusOK, w.Code)
		blocks := resp["blocks"].([]any)
		require.Len(t, blocks, 1)
		assert.Equal(t, fmt.Sprintf("stream %d text", i), blocks[0].(map[string]any)["content"])
	}
}
