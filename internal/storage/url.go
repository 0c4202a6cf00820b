package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// urlMapper converts between object keys and their public URLs.
type urlMapper struct {
	base string
}

func newURLMapper(publicBaseURL, bucket, region string) urlMapper {
	base := strings.TrimRight(publicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return urlMapper{base: base}
}

func (u urlMapper) PublicURL(key string) string {
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return u.base + "/" + strings.Join(parts, "/")
}

func (u urlMapper) KeyFromURL(rawURL string) (string, error) {
	rest, ok := strings.CutPrefix(rawURL, u.base+"/")
	if !ok || rest == "" {
		return "", ErrForeignURL
	}
	key, err := url.PathUnescape(rest)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrForeignURL, err)
	}
	return key, nil
}
