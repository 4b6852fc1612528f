package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tizendotnet/netcore-jenkins/internal/models"
)

type fakeFeed struct {
	t        *testing.T
	state    models.FeedState
	failOn   map[string]int
	mu       sync.Mutex
	deleted  []string
	apiKeys  []string
	stateErr int
}

func (f *fakeFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.apiKeys = append(f.apiKeys, r.Header.Get("X-NuGet-ApiKey"))
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/F/feed/api/v2/feed-state":
		if f.stateErr != 0 {
			http.Error(w, "nope", f.stateErr)
			return
		}
		assert.Equal(f.t, "application/json; charset=utf-8", r.Header.Get("Content-Type"))
		_ = json.NewEncoder(w).Encode(f.state)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/F/feed/api/v2/package/"):
		assert.Equal(f.t, "true", r.URL.Query().Get("hardDelete"))
		version := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		if code, ok := f.failOn[version]; ok {
			http.Error(w, "locked", code)
			return
		}
		f.mu.Lock()
		f.deleted = append(f.deleted, version)
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	default:
		http.NotFound(w, r)
	}
}

func newFakeFeed(t *testing.T, versions []string) (*fakeFeed, *httptest.Server) {
	f := &fakeFeed{
		t: t,
		state: models.FeedState{Packages: []models.FeedPackage{
			{ID: "Other", Versions: []string{"9.9.9-preview1-00001"}},
			{ID: "Tizen.NET", Versions: versions},
		}},
		failOn: map[string]int{},
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func previewVersions(n int) []string {
	var out []string
	for i := 1; i <= n; i++ {
		out = append(out, fmt.Sprintf("4.0.0-preview1-%05d", i))
	}
	return out
}

func TestPrune_DeletesBeyondKeep(t *testing.T) {
	f, srv := newFakeFeed(t, previewVersions(5))
	p := NewPruner(NewClient(srv.URL+"/F/feed/", "key-1", srv.Client(), nil), 2, false, nil)

	summary, err := p.Prune(context.Background(), "tizen.net")
	require.NoError(t, err)

	assert.Equal(t, &Summary{Versions: 5, Scheduled: 3, Deleted: 3}, summary)
	sort.Strings(f.deleted)
	assert.Equal(t, []string{"4.0.0-preview1-00001", "4.0.0-preview1-00002", "4.0.0-preview1-00003"}, f.deleted)
	for _, k := range f.apiKeys {
		assert.Equal(t, "key-1", k)
	}
}

func TestPrune_CountsFailures(t *testing.T) {
	f, srv := newFakeFeed(t, previewVersions(4))
	f.failOn["4.0.0-preview1-00001"] = http.StatusConflict
	p := NewPruner(NewClient(srv.URL+"/F/feed", "key", srv.Client(), nil), 2, false, nil)

	summary, err := p.Prune(context.Background(), "Tizen.NET")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Deleted)
	assert.Equal(t, 1, summary.Failed)
}

func TestPrune_DryRun(t *testing.T) {
	f, srv := newFakeFeed(t, previewVersions(4))
	p := NewPruner(NewClient(srv.URL+"/F/feed", "key", srv.Client(), nil), 1, true, nil)

	summary, err := p.Prune(context.Background(), "Tizen.NET")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Scheduled)
	assert.Zero(t, summary.Deleted)
	assert.Empty(t, f.deleted)
}

func TestPrune_PackageMissing(t *testing.T) {
	_, srv := newFakeFeed(t, nil)
	p := NewPruner(NewClient(srv.URL+"/F/feed", "key", srv.Client(), nil), 1, false, nil)

	_, err := p.Prune(context.Background(), "Missing.Package")
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestPrune_FeedStateError(t *testing.T) {
	f, srv := newFakeFeed(t, nil)
	f.stateErr = http.StatusUnauthorized
	p := NewPruner(NewClient(srv.URL+"/F/feed", "bad", srv.Client(), nil), 1, false, nil)

	_, err := p.Prune(context.Background(), "Tizen.NET")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 401")
}

func TestNewPrunerFromMetadata(t *testing.T) {
	_, err := NewPrunerFromMetadata(&models.PushMetadata{}, "k", 1, false, nil)
	assert.Error(t, err)

	meta := &models.PushMetadata{Payload: models.PackagePayload{FeedUrl: "https://example.com/F/feed"}}
	_, err = NewPrunerFromMetadata(meta, "k", 1, false, nil)
	assert.Error(t, err)

	meta.Payload.PackageIdentifier = "Tizen.NET"
	p, err := NewPrunerFromMetadata(meta, "k", 1, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/F/feed", p.client.feedURL)
}
