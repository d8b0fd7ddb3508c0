package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/manifesto/internal/cache"
)

// Source reads artifact files by their relative name
type Source interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Location() string
}

// HTTPSource reads artifacts below a base URL
type HTTPSource struct {
	base    *url.URL
	fetcher *Fetcher
	version string
}

// NewHTTPSource creates a source rooted at baseURL. A non-empty version is
// appended to every request as the v query parameter.
func NewHTTPSource(baseURL string, fetcher *Fetcher, version string) (*HTTPSource, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported source scheme %q", base.Scheme)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return &HTTPSource{base: base, fetcher: fetcher, version: version}, nil
}

// URL returns the request URL for an artifact name
func (s *HTTPSource) URL(name string) (string, error) {
	ref, err := url.Parse(name)
	if err != nil {
		return "", fmt.Errorf("parse artifact name %q: %w", name, err)
	}
	u := s.base.ResolveReference(ref)
	if s.version != "" {
		q := u.Query()
		q.Set("v", s.version)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (s *HTTPSource) Read(ctx context.Context, name string) ([]byte, error) {
	u, err := s.URL(name)
	if err != nil {
		return nil, err
	}
	result, err := s.fetcher.FetchWithRetry(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return result.Body, nil
}

func (s *HTTPSource) Location() string {
	return s.base.String()
}

// DirSource reads artifacts from a local directory
type DirSource struct {
	root string
}

func NewDirSource(root string) *DirSource {
	return &DirSource{root: root}
}

func (s *DirSource) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel := filepath.FromSlash(strings.TrimPrefix(name, "./"))
	if !filepath.IsLocal(rel) {
		return nil, fmt.Errorf("%s: path escapes source directory", name)
	}

	data, err := os.ReadFile(filepath.Join(s.root, rel))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return data, nil
}

func (s *DirSource) Location() string {
	return s.root
}

// NewSource picks an HTTPSource for http(s) locations and a DirSource
// otherwise.
func NewSource(location string, fetcher *Fetcher, version string) (Source, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, fetcher, version)
	}
	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("open source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", location)
	}
	return NewDirSource(location), nil
}

// CachedSource keeps successful reads of another source in a cache
type CachedSource struct {
	source  Source
	cache   cache.Cache
	ttl     time.Duration
	version string
}

func NewCachedSource(source Source, c cache.Cache, ttl time.Duration, version string) *CachedSource {
	return &CachedSource{source: source, cache: c, ttl: ttl, version: version}
}

func (s *CachedSource) Read(ctx context.Context, name string) ([]byte, error) {
	key := cache.CacheKey(s.source.Location(), name, s.version)
	if data, ok := s.cache.Get(key); ok {
		return data, nil
	}

	data, err := s.source.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(key, data, s.ttl)
	return data, nil
}

func (s *CachedSource) Location() string {
	return s.source.Location()
}
