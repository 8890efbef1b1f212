package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, categoryCalls *int32) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/videos"):
			if r.URL.Query().Get("id") != "dQw4w9WgXcQ" {
				_, _ = w.Write([]byte(`{"items":[]}`))
				return
			}
			_, _ = w.Write([]byte(`{"items":[{"id":"dQw4w9WgXcQ",
				"snippet":{"title":"Never Gonna Give You Up","categoryId":"10"},
				"contentDetails":{"duration":"PT3M33S"},
				"statistics":{"viewCount":"1500000000"}}]}`))
		case strings.HasSuffix(r.URL.Path, "/videoCategories"):
			atomic.AddInt32(categoryCalls, 1)
			_, _ = w.Write([]byte(`{"items":[{"id":"10","snippet":{"title":"Music"}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "test-key",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c
}

func TestFetchVideo(t *testing.T) {
	var calls int32
	c := newTestClient(t, &calls)
	ctx := context.Background()

	v, err := c.FetchVideo(ctx, "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Never Gonna Give You Up", v.Snippet.Title)
	assert.Equal(t, "PT3M33S", v.ContentDetails.Duration)
	assert.Equal(t, uint64(1500000000), v.Statistics.ViewCount)

	_, err = c.FetchVideo(ctx, "nope")
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestCategoryNameIsCached(t *testing.T) {
	var calls int32
	c := newTestClient(t, &calls)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		name, err := c.CategoryName(ctx, "10")
		require.NoError(t, err)
		assert.Equal(t, "Music", name)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewClientNeedsKey(t *testing.T) {
	_, err := NewClient(context.Background(), "")
	assert.Error(t, err)
}
