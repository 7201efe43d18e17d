// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"
)

// A Fetcher returns the contents of the schema document at location,
// a file path or an http(s) URL.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// FetcherFunc adapts a function to a [Fetcher].
type FetcherFunc func(ctx context.Context, location string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, location string) ([]byte, error) {
	return f(ctx, location)
}

// FileFetcher reads documents from the file system.
// Relative locations are interpreted relative to Root, or to the current
// directory if Root is empty.
type FileFetcher struct {
	Root string
}

func (f FileFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := strings.TrimPrefix(location, "file://")
	if f.Root != "" && !filepath.IsAbs(p) {
		p = filepath.Join(f.Root, p)
	}
	return os.ReadFile(p)
}

// HTTPFetcher fetches documents over HTTP.
// Concurrent fetches of the same URL share one request.
type HTTPFetcher struct {
	// Client is used for requests. If nil, http.DefaultClient is used.
	Client *http.Client

	group singleflight.Group
}

// maxDocumentSize bounds the size of a fetched document.
const maxDocumentSize = 32 << 20

func (f *HTTPFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	v, err, _ := f.group.Do(location, func() (any, error) {
		return f.get(ctx, location)
	})
	if err != nil {
		return nil, err
	}
	// The result may be shared with other callers.
	return append([]byte(nil), v.([]byte)...), nil
}

func (f *HTTPFetcher) get(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/schema+json, application/json, application/yaml;q=0.9, */*;q=0.5")
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
}

// MapFetcher serves documents from memory, keyed by location.
type MapFetcher map[string][]byte

func (m MapFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	data, ok := m[location]
	if !ok {
		return nil, fmt.Errorf("%s: %w", location, fs.ErrNotExist)
	}
	return data, nil
}

// MultiFetcher dispatches http and https URLs to HTTP and everything
// else to File. A nil HTTP rejects remote locations.
type MultiFetcher struct {
	File Fetcher
	HTTP Fetcher
}

func (m MultiFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if u, err := url.Parse(location); err == nil && isRemote(u) {
		if m.HTTP == nil {
			return nil, fmt.Errorf("remote documents are not allowed")
		}
		return m.HTTP.Fetch(ctx, location)
	}
	if m.File == nil {
		return nil, fmt.Errorf("local documents are not allowed")
	}
	return m.File.Fetch(ctx, location)
}

// DefaultFetcher returns a fetcher that reads files relative to the
// current directory and fetches http(s) URLs with http.DefaultClient.
func DefaultFetcher() Fetcher {
	return MultiFetcher{File: FileFetcher{}, HTTP: &HTTPFetcher{}}
}
