// Package objectstore resolves object keys stored on rows into public URLs
// served by the hosted object storage.
package objectstore

import (
	"fmt"
	"net/url"
	"strings"
)

// Resolver turns (bucket, key) pairs into public object URLs.
type Resolver interface {
	PublicURL(bucket, key string) string
}

// PublicResolver builds URLs of the form {base}/storage/v1/object/public/{bucket}/{key}.
type PublicResolver struct {
	base *url.URL
}

var _ Resolver = (*PublicResolver)(nil)

// NewPublicResolver parses the storage base URL.
// PRE: rawBase is an absolute http(s) URL
// POST: returns an error for relative or non-http URLs
func NewPublicResolver(rawBase string) (*PublicResolver, error) {
	u, err := url.Parse(strings.TrimRight(rawBase, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid storage URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid storage URL %q: must be absolute http(s)", rawBase)
	}
	return &PublicResolver{base: u}, nil
}

// PublicURL returns the public URL for key in bucket.
// An empty key yields "". Keys that are already absolute URLs are returned unchanged.
func (r *PublicResolver) PublicURL(bucket, key string) string {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return ""
	}
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	segments := append([]string{"storage", "v1", "object", "public", bucket}, strings.Split(key, "/")...)
	return r.base.JoinPath(segments...).String()
}

// Origin returns scheme://host of the storage service for the content security policy.
func (r *PublicResolver) Origin() string {
	return r.base.Scheme + "://" + r.base.Host
}

// StaticResolver serves objects from a local path prefix. It backs development mode
// where no hosted storage is configured.
type StaticResolver struct {
	Prefix string
}

var _ Resolver = StaticResolver{}

// PublicURL returns {Prefix}/{bucket}/{key}, or "" for an empty key.
func (r StaticResolver) PublicURL(bucket, key string) string {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return ""
	}
	return strings.TrimRight(r.Prefix, "/") + "/" + url.PathEscape(bucket) + "/" + escapeKey(key)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
