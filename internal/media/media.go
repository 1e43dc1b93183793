// Package media abstracts the external media host that stores uploaded files.
package media

import (
	"context"
	"io"
	"net/url"
	"path"
	"strings"
)

// UploadResult describes a stored object at the media host.
type UploadResult struct {
	// URL is the stable public URL of the stored object.
	URL string
	// FileName is the original client-side file name.
	FileName string
	// PublicID is the host-side identifier used for later deletion.
	PublicID string
}

// Store is the media delegate contract. Implementations upload binary
// content and destroy previously stored objects by their public ID.
type Store interface {
	Upload(ctx context.Context, r io.Reader, folder, fileName string) (*UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

// PublicIDFromURL derives the media host's public identifier from a stored
// delivery URL. Cloudinary delivery URLs look like
//
//	https://res.cloudinary.com/<cloud>/image/upload/v123/<folder>/<id>.<ext>
//
// The public ID is everything after the upload/version segments with the
// extension stripped. Returns "" when the URL does not match that shape.
func PublicIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	uploadIdx := -1
	for i, seg := range segments {
		if seg == "upload" {
			uploadIdx = i
			break
		}
	}
	if uploadIdx < 0 || uploadIdx == len(segments)-1 {
		return ""
	}

	rest := segments[uploadIdx+1:]
	// Skip the optional version segment (v followed by digits).
	if len(rest) > 1 && isVersionSegment(rest[0]) {
		rest = rest[1:]
	}

	id := strings.Join(rest, "/")
	if ext := path.Ext(id); ext != "" {
		id = strings.TrimSuffix(id, ext)
	}
	return id
}

func isVersionSegment(seg string) bool {
	if len(seg) < 2 || seg[0] != 'v' {
		return false
	}
	for _, r := range seg[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
