// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"type":"string"}`), 0o644))

	f := FileFetcher{Root: dir}
	data, err := f.Fetch(context.Background(), "a.json")
	require.NoError(t, err)
	assert.Equal(t, `{"type":"string"}`, string(data))

	data, err = FileFetcher{}.Fetch(context.Background(), "file://"+filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"type":"string"}`, string(data))

	_, err = f.Fetch(context.Background(), "missing.json")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Fetch(ctx, "a.json")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.json":
			assert.Contains(t, r.Header.Get("Accept"), "application/schema+json")
			w.Write([]byte(`{"type":"integer"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := &HTTPFetcher{Client: srv.Client()}
	data, err := f.Fetch(context.Background(), srv.URL+"/a.json")
	require.NoError(t, err)
	assert.Equal(t, `{"type":"integer"}`, string(data))

	_, err = f.Fetch(context.Background(), srv.URL+"/b.json")
	assert.ErrorContains(t, err, "404")
}

func TestHTTPFetcherSharesRequests(t *testing.T) {
	var requests atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			close(started)
		}
		<-release
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	f := &HTTPFetcher{Client: srv.Client()}
	const n = 5
	results := make([][]byte, n)
	var wg sync.WaitGroup
	fetch := func(i int) {
		defer wg.Done()
		data, err := f.Fetch(context.Background(), srv.URL+"/s.json")
		assert.NoError(t, err)
		results[i] = data
	}
	wg.Add(1)
	go fetch(0)
	<-started
	for i := 1; i < n; i++ {
		wg.Add(1)
		go fetch(i)
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), requests.Load())
	for _, r := range results {
		assert.Equal(t, "{}", string(r))
	}
	// Callers do not share the returned slice.
	results[0][0] = 'x'
	assert.Equal(t, "{}", string(results[1]))
}

func TestMultiFetcher(t *testing.T) {
	local := MapFetcher{"a.json": []byte("local")}
	remote := FetcherFunc(func(ctx context.Context, location string) ([]byte, error) {
		return []byte("remote " + location), nil
	})

	m := MultiFetcher{File: local, HTTP: remote}
	data, err := m.Fetch(context.Background(), "a.json")
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))

	data, err = m.Fetch(context.Background(), "https://example.com/a.json")
	require.NoError(t, err)
	assert.Equal(t, "remote https://example.com/a.json", string(data))

	_, err = MultiFetcher{File: local}.Fetch(context.Background(), "http://example.com/a.json")
	assert.ErrorContains(t, err, "remote documents are not allowed")

	_, err = MultiFetcher{HTTP: remote}.Fetch(context.Background(), "a.json")
	assert.ErrorContains(t, err, "local documents are not allowed")

	_, err = local.Fetch(context.Background(), "b.json")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "defs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "root.json"),
		[]byte(`{"properties":{"id":{"$ref":"defs/id.yaml#/definitions/ID"}}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "defs", "id.yaml"),
		[]byte("definitions:\n  ID:\n    type: string\n    format: uuid\n"), 0o644))

	s, err := Load(context.Background(), filepath.Join(dir, "root.json"), nil)
	require.NoError(t, err)
	id, err := s.Property("id").ActualSchema()
	require.NoError(t, err)
	assert.Equal(t, "uuid", id.Format)
}
