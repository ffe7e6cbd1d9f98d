package config

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultFetchTimeout = 10 * time.Second

// Source identifies where properties are loaded from: a local file or a remote URL.
type Source struct {
	path string
	url  *url.URL
}

// FileSource returns a Source for a local file path.
func FileSource(path string) Source {
	return Source{path: path}
}

// ParseSource interprets raw as a URL when it carries a scheme, otherwise as a local path.
// Single-letter schemes are treated as Windows drive letters.
func ParseSource(raw string) Source {
	u, err := url.Parse(raw)
	if err != nil || len(u.Scheme) < 2 {
		return FileSource(raw)
	}

	if strings.EqualFold(u.Scheme, "file") {
		p := u.Path
		if p == "" {
			p = u.Opaque
		}
		// file:///C:/dir/.jline.rc
		if len(p) > 2 && p[0] == '/' && p[2] == ':' {
			p = p[1:]
		}
		return FileSource(filepath.FromSlash(p))
	}

	return Source{url: u}
}

// Local reports whether the source is a file on the local filesystem.
func (s Source) Local() bool {
	return s.url == nil
}

// Path returns the local file path, or "" for remote sources.
func (s Source) Path() string {
	return s.path
}

// URL returns the remote location, or nil for local sources.
func (s Source) URL() *url.URL {
	return s.url
}

func (s Source) String() string {
	if s.url != nil {
		return s.url.String()
	}
	return s.path
}

// Opener opens a configuration source as a byte stream.
type Opener interface {
	Open(src Source) (io.ReadCloser, error)
}

type defaultOpener struct {
	client *http.Client
}

// NewOpener returns an Opener reading local files from disk and http(s) sources with client.
// A nil client gets a default with a bounded timeout.
func NewOpener(client *http.Client) Opener {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &defaultOpener{client: client}
}

func (o *defaultOpener) Open(src Source) (io.ReadCloser, error) {
	if src.Local() {
		return os.Open(src.Path())
	}

	switch strings.ToLower(src.url.Scheme) {
	case "http", "https":
		resp, err := o.client.Get(src.url.String())
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", src, err)
		}
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("%w: %s returned %s", ErrSourceUnavailable, src, resp.Status)
		}
		return resp.Body, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, src.url.Scheme)
	}
}
