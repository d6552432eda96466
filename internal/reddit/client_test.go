package reddit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"post_scheduler/internal/domain"
)

type fakeReddit struct {
	t *testing.T

	mu          sync.Mutex
	submissions []map[string]string
	uploads     []map[string]string
	tokenCalls  atomic.Int32
	flairCalls  atomic.Int32

	submitErrors  [][]any
	flairFailures int32
	rejectToken   bool
}

func (f *fakeReddit) handler(uploadURL string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		assert.True(f.t, ok)
		assert.Equal(f.t, "client-id", user)
		assert.Equal(f.t, "client-secret", pass)
		assert.Equal(f.t, "test-agent", r.Header.Get("User-Agent"))
		assert.NoError(f.t, r.ParseForm())
		assert.Equal(f.t, "password", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		if f.rejectToken || r.PostForm.Get("password") != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	})

	mux.HandleFunc("POST /api/submit", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NoError(f.t, r.ParseForm())
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		f.mu.Lock()
		f.submissions = append(f.submissions, form)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{"json": map[string]any{
			"errors": f.submitErrors,
			"data":   map[string]any{"name": "t3_abc", "url": "https://reddit.com/r/x/abc"},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("POST /api/media/asset.json", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(f.t, r.ParseForm())
		assert.Equal(f.t, "cat.png", r.PostForm.Get("filepath"))
		assert.Equal(f.t, "image/png", r.PostForm.Get("mimetype"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"args":{"action":"`+uploadURL+`","fields":[`+
			`{"name":"key","value":"rte_images/abc.png"},{"name":"policy","value":"p"}]},`+
			`"asset":{"asset_id":"abc"}}`)
	})

	mux.HandleFunc("POST /lease", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(f.t, r.Header.Get("Authorization"), "lease upload must not carry the api token")
		assert.NoError(f.t, r.ParseMultipartForm(1<<20))
		file, hdr, err := r.FormFile("file")
		if !assert.NoError(f.t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(file)

		f.mu.Lock()
		f.uploads = append(f.uploads, map[string]string{
			"key":      r.FormValue("key"),
			"policy":   r.FormValue("policy"),
			"filename": hdr.Filename,
			"data":     string(data),
		})
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("GET /r/{sub}/api/link_flair_v2", func(w http.ResponseWriter, r *http.Request) {
		n := f.flairCalls.Add(1)
		if n <= f.flairFailures {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		if r.PathValue("sub") == "private" {
			http.Error(w, `{"message": "Forbidden", "error": 403}`, http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":"f1","text":"News","type":"text"},{"id":"f2","text":"Meta"}]`)
	})

	return mux
}

func newTestClient(t *testing.T, fake *fakeReddit) *Client {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.handler(srv.URL+"/lease").ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(Config{
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
		Username:       "alice",
		Password:       "hunter2",
		UserAgent:      "test-agent",
		BaseURL:        srv.URL,
		TokenURL:       srv.URL + "/api/v1/access_token",
		Timeout:        5 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}, logger)
}

func TestClient_Verify(t *testing.T) {
	fake := &fakeReddit{t: t}
	client := newTestClient(t, fake)

	require.NoError(t, client.Verify(context.Background()))
	require.NoError(t, client.Verify(context.Background()))
	assert.Equal(t, int32(1), fake.tokenCalls.Load(), "token is reused")
}

func TestClient_VerifyRejected(t *testing.T) {
	fake := &fakeReddit{t: t, rejectToken: true}
	client := newTestClient(t, fake)

	err := client.Verify(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authenticate as alice")
}

func TestClient_SubmitLinkToSubreddit(t *testing.T) {
	fake := &fakeReddit{t: t}
	client := newTestClient(t, fake)

	err := client.SubmitLinkToSubreddit(context.Background(), "golang", "Go 2", "https://go.dev", "flair-1")
	require.NoError(t, err)

	require.Len(t, fake.submissions, 1)
	got := fake.submissions[0]
	assert.Equal(t, "json", got["api_type"])
	assert.Equal(t, "link", got["kind"])
	assert.Equal(t, "golang", got["sr"])
	assert.Equal(t, "Go 2", got["title"])
	assert.Equal(t, "https://go.dev", got["url"])
	assert.Equal(t, "flair-1", got["flair_id"])
}

func TestClient_SubmitTextToProfile(t *testing.T) {
	fake := &fakeReddit{t: t}
	client := newTestClient(t, fake)

	require.NoError(t, client.SubmitTextToProfile(context.Background(), "hello", "body text"))

	require.Len(t, fake.submissions, 1)
	got := fake.submissions[0]
	assert.Equal(t, "self", got["kind"])
	assert.Equal(t, "u_alice", got["sr"])
	assert.Equal(t, "body text", got["text"])
	_, hasFlair := got["flair_id"]
	assert.False(t, hasFlair)
}

func TestClient_SubmitTextToSubreddit_OmitsEmptyFlair(t *testing.T) {
	fake := &fakeReddit{t: t}
	client := newTestClient(t, fake)

	require.NoError(t, client.SubmitTextToSubreddit(context.Background(), "golang", "t", "b", ""))
	_, hasFlair := fake.submissions[0]["flair_id"]
	assert.False(t, hasFlair)
}

func TestClient_SubmitImageToSubreddit(t *testing.T) {
	fake := &fakeReddit{t: t}
	client := newTestClient(t, fake)

	img := Image{Filename: "cat.png", MIMEType: "image/png", Body: strings.NewReader("PNGDATA")}
	require.NoError(t, client.SubmitImageToSubreddit(context.Background(), "aww", "cat", img, ""))

	require.Len(t, fake.uploads, 1)
	assert.Equal(t, "rte_images/abc.png", fake.uploads[0]["key"])
	assert.Equal(t, "p", fake.uploads[0]["policy"])
	assert.Equal(t, "PNGDATA", fake.uploads[0]["data"])

	require.Len(t, fake.submissions, 1)
	got := fake.submissions[0]
	assert.Equal(t, "image", got["kind"])
	assert.True(t, strings.HasSuffix(got["url"], "/lease/rte_images/abc.png"), got["url"])
}

func TestClient_SubmitErrorsAreVerbatim(t *testing.T) {
	fake := &fakeReddit{t: t, submitErrors: [][]any{
		{"SUBREDDIT_NOEXIST", "Hmm, that community doesn't exist. Try checking the spelling.", "sr"},
	}}
	client := newTestClient(t, fake)

	err := client.SubmitLinkToSubreddit(context.Background(), "nope", "t", "https://x", "")
	require.Error(t, err)
	assert.Equal(t,
		"SUBREDDIT_NOEXIST: 'Hmm, that community doesn't exist. Try checking the spelling.' on field 'sr'",
		err.Error(),
	)

	var apiErrs APIErrors
	require.ErrorAs(t, err, &apiErrs)
	assert.Equal(t, "SUBREDDIT_NOEXIST", apiErrs[0].Code)
}

func TestClient_LinkFlairs(t *testing.T) {
	fake := &fakeReddit{t: t}
	client := newTestClient(t, fake)

	flairs, err := client.LinkFlairs(context.Background(), "golang")
	require.NoError(t, err)
	assert.Equal(t, []domain.Flair{{ID: "f1", Text: "News"}, {ID: "f2", Text: "Meta"}}, flairs)
}

func TestClient_LinkFlairsRetries(t *testing.T) {
	fake := &fakeReddit{t: t, flairFailures: 2}
	client := newTestClient(t, fake)

	flairs, err := client.LinkFlairs(context.Background(), "golang")
	require.NoError(t, err)
	assert.Len(t, flairs, 2)
	assert.Equal(t, int32(3), fake.flairCalls.Load())
}

func TestClient_LinkFlairsStatusError(t *testing.T) {
	fake := &fakeReddit{t: t}
	client := newTestClient(t, fake)

	_, err := client.LinkFlairs(context.Background(), "private")
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, int32(3), fake.flairCalls.Load())
}

func TestCalculateBackoff(t *testing.T) {
	c := &Client{initialBackoff: time.Second, maxBackoff: 5 * time.Second}

	assert.Equal(t, time.Second, c.calculateBackoff(1))
	assert.Equal(t, 2*time.Second, c.calculateBackoff(2))
	assert.Equal(t, 4*time.Second, c.calculateBackoff(3))
	assert.Equal(t, 5*time.Second, c.calculateBackoff(4))
}
