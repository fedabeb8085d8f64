package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ottawa-housing/config"
	"ottawa-housing/utils"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		RedditBaseURL:  baseURL,
		RedditUser:     "ottawaagent",
		UserAgent:      "test-agent",
		PageLimit:      2,
		MaxRetries:     3,
		RateLimitMs:    0,
		MaxConcurrency: 1,
		MaxRetryAfter:  50 * time.Millisecond,
		ProxyProbeURL:  "http://probe.invalid/ip",
	}
}

func listingJSON(after string, ids ...string) string {
	children := make([]map[string]any, 0, len(ids))
	for i, id := range ids {
		children = append(children, map[string]any{
			"data": map[string]any{
				"id":          id,
				"title":       "The Ottawa Real Estate Market: Week In Review",
				"subreddit":   "ottawa",
				"selftext":    "***Freehold***",
				"created_utc": 1714752000.0 + float64(i),
			},
		})
	}
	body, _ := json.Marshal(map[string]any{
		"data": map[string]any{"after": after, "children": children},
	})
	return string(body)
}

func TestFetchPostsFollowsCursor(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/user/ottawaagent/submitted.json", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))

		switch r.URL.Query().Get("after") {
		case "":
			fmt.Fprint(w, listingJSON("t3_b", "a", "b"))
		case "t3_b":
			fmt.Fprint(w, listingJSON("", "c"))
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("after"))
		}
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewNopLogger()).WithBackoff(time.Millisecond)
	posts, err := c.FetchPosts(context.Background())
	require.NoError(t, err)

	require.Len(t, posts, 3)
	assert.Equal(t, "a", posts[0].ID)
	assert.Equal(t, "c", posts[2].ID)
	assert.Equal(t, "2024-05-03", posts[0].PostDate())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchPostsRetriesRateLimitAndForbidden(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.Header().Set("Retry-After", "120")
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusForbidden)
		default:
			fmt.Fprint(w, listingJSON("", "a"))
		}
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewNopLogger()).WithBackoff(time.Millisecond)
	start := time.Now()
	posts, err := c.FetchPosts(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Less(t, time.Since(start), 5*time.Second, "Retry-After is capped")
}

func TestFetchPostsGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewNopLogger()).WithBackoff(time.Millisecond)
	_, err := c.FetchPosts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestFetchPostsRetriesOtherStatuses(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			http.NotFound(w, r)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			fmt.Fprint(w, listingJSON("", "a"))
		}
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewNopLogger()).WithBackoff(time.Millisecond)
	posts, err := c.FetchPosts(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchPostsGivesUpOnPersistentNotFound(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewNopLogger()).WithBackoff(time.Millisecond)
	_, err := c.FetchPosts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchPostsStopsOnRepeatedCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingJSON("t3_loop", "a"))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewNopLogger()).WithBackoff(time.Millisecond)
	posts, err := c.FetchPosts(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestRetryAfterParsing(t *testing.T) {
	c := &Client{maxRetryAfter: time.Minute}
	assert.Equal(t, 30*time.Second, c.retryAfter("30"))
	assert.Equal(t, time.Minute, c.retryAfter(""))
	assert.Equal(t, time.Minute, c.retryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
	assert.Equal(t, time.Minute, c.retryAfter("600"))
}

func TestVerifyProxy(t *testing.T) {
	var sawAuth atomic.Bool
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.Header.Get("Proxy-Authorization"), "Basic ") {
			sawAuth.Store(true)
		}
		assert.Equal(t, "probe.invalid", r.URL.Host)
		fmt.Fprint(w, `{"origin": "203.0.113.7"}`)
	}))
	defer proxy.Close()

	u, err := url.Parse(proxy.URL)
	require.NoError(t, err)

	cfg := testConfig("http://unused")
	cfg.ProxyHost = u.Hostname()
	cfg.ProxyPort = u.Port()
	cfg.ProxyUsername = "user"
	cfg.ProxyPassword = "secret"

	c := New(cfg, utils.NewNopLogger())
	require.NoError(t, c.VerifyProxy(context.Background()))
	assert.True(t, sawAuth.Load())
}

func TestVerifyProxyNoop(t *testing.T) {
	c := New(testConfig("http://unused"), utils.NewNopLogger())
	assert.NoError(t, c.VerifyProxy(context.Background()))
}
