package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	service, err := youtube.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return NewYouTubeClientWithService(service, 50)
}

func TestClient_Search(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "lofi beats", r.URL.Query().Get("q"))
		assert.Equal(t, "video", r.URL.Query().Get("type"))
		assert.Equal(t, "50", r.URL.Query().Get("maxResults"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":{"kind":"youtube#video","videoId":"id1"},"snippet":{"title":"Rock &amp; Roll","channelTitle":"Chan","thumbnails":{"medium":{"url":"m1.jpg"}}}},
			{"id":{"kind":"youtube#video","videoId":"id2"},"snippet":{"title":"Two","channelTitle":"Chan"}}
		]}`))
	})
	c := newTestClient(t, mux)

	resp, err := c.Search(context.Background(), "lofi beats")
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.JSONEq(t, `{"kind":"youtube#video","videoId":"id1"}`, string(resp.Items[0].ID))
	assert.Equal(t, "Rock &amp; Roll", resp.Items[0].Snippet.Title)
	assert.Equal(t, "m1.jpg", resp.Items[0].Snippet.Thumbnails.Primary())
	assert.NotEmpty(t, resp.Items[0].Raw)
}

func TestClient_Search_MissingItems(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind":"youtube#searchListResponse"}`))
	})
	c := newTestClient(t, mux)

	resp, err := c.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Nil(t, resp.Items)
}

func TestClient_Search_ProviderError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"quotaExceeded"}}`))
	})
	c := newTestClient(t, mux)

	resp, err := c.Search(context.Background(), "q")
	require.Error(t, err)
	assert.Nil(t, resp)
}

func TestClient_FetchDetails_Batches(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/videos", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "contentDetails", r.URL.Query().Get("part"))
		ids := strings.Split(r.URL.Query().Get("id"), ",")
		items := make([]map[string]interface{}, 0, len(ids))
		for _, id := range ids {
			items = append(items, map[string]interface{}{
				"id":             id,
				"contentDetails": map[string]string{"duration": "PT1M"},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": items})
	})
	c := newTestClient(t, mux)

	ids := make([]string, 0, 60)
	for i := 0; i < 60; i++ {
		ids = append(ids, fmt.Sprintf("vid%02d", i))
	}
	items := c.FetchDetails(context.Background(), ids)
	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, items, 60)
	assert.Equal(t, "PT1M", items[0].ContentDetails.Duration)
	assert.JSONEq(t, `"`+ids[0]+`"`, string(items[0].ID))
}

func TestClient_FetchDetails_EmptyAndFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/videos", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := newTestClient(t, mux)

	assert.Empty(t, c.FetchDetails(context.Background(), nil))

	items := c.FetchDetails(context.Background(), []string{"a", "b"})
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
