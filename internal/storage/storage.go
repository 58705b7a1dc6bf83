// Package storage writes item images to blob storage and builds their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"
)

const (
	ProviderS3     = "s3"
	ProviderGCS    = "gcs"
	ProviderMemory = "memory"
)

// ErrObjectNotFound is returned by Get when the key does not exist.
var ErrObjectNotFound = errors.New("storage: object not found")

// Store is a bucket-scoped blob store.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	// URL returns the public URL of key.
	URL(key string) string
}

var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// ContentType maps an image file extension to its MIME type. Unknown
// extensions map to image/<ext>.
func ContentType(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "image/" + ext
}

// ItemImageKey returns the object key for an item image uploaded at now. The
// item code always stays a single key segment.
func ItemImageKey(itemCode, filename string, now time.Time) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	return fmt.Sprintf("items/%s/%d.%s", KeySegment(itemCode), now.UnixMilli(), ext)
}

// KeySegment replaces every rune other than letters, combining marks, digits,
// '-', '_' and '.' with '_'.
func KeySegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, s)
}

// ThumbnailKey returns the key of the thumbnail derived from an image key.
func ThumbnailKey(key string) string {
	dir, file := path.Split(key)
	name := strings.TrimSuffix(file, path.Ext(file))
	return dir + "thumbnails/" + name + ".jpg"
}

// PublicURL joins base and the path-escaped key. base may contain an
// {objectKey} placeholder.
func PublicURL(base, key string) string {
	key = escapeKey(key)
	base = strings.TrimSpace(base)
	if base == "" {
		return key
	}
	if strings.Contains(base, "{objectKey}") {
		return strings.ReplaceAll(base, "{objectKey}", key)
	}
	return strings.TrimRight(base, "/") + "/" + key
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
