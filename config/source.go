package config

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// A source wraps a local or remote configuration stream.
type source struct {
	io.ReadCloser
	url *url.URL
}

// Returns the location of this source.
func (s *source) Location() string {
	return s.url.String()
}

// Returns true if the source is fetched over http/https.
func (s *source) IsRemote() bool {
	return s.url.Scheme == "http" || s.url.Scheme == "https"
}

// Get the lower-cased file extension of the source path.
func (s *source) Ext() string {
	if s.IsRemote() {
		return strings.ToLower(path.Ext(s.url.Path))
	}
	return strings.ToLower(filepath.Ext(s.url.Path))
}

// Open a configuration source. Locations without a scheme (or with the file
// scheme) are opened from the local filesystem; http/https locations are
// fetched with a GET request. The caller must close the returned source.
func openSource(location string) (*source, error) {
	u, err := url.Parse(location)
	if err != nil || (u.Scheme != "" && len(u.Scheme) == 1) {
		// Windows drive letters parse as a one-letter scheme.
		u = &url.URL{Path: location}
	}

	var reader io.ReadCloser
	switch u.Scheme {
	case "", "file":
		reader, err = os.Open(filepath.Clean(u.Path))
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", location, err)
		}
	case "http", "https":
		resp, err := http.Get(u.String())
		if err != nil {
			return nil, fmt.Errorf("config: could not fetch %q: %w", u, err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("config: could not fetch %q: status %d", u, resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrUnsupportedFormat, u.Scheme)
	}

	return &source{ReadCloser: reader, url: u}, nil
}
