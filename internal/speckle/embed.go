package speckle

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tinytelemetry/carbondash/internal/model"
)

// NormalizeServer turns a user-supplied server address into a base URL.
// Bare hosts such as "speckle.xyz" default to https.
func NormalizeServer(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("server address is empty")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server address: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server address %q has no host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// EmbedURL builds the viewer embed address for a commit on base.
func EmbedURL(base *url.URL, ref model.CommitRef) string {
	if base == nil || ref.StreamID == "" || ref.CommitID == "" {
		return ""
	}
	return fmt.Sprintf("%s://%s/embed?stream=%s&commit=%s",
		base.Scheme, base.Host,
		url.QueryEscape(ref.StreamID), url.QueryEscape(ref.CommitID))
}
