// Package models defines the canonical client-side data models for the
// CloudShare API. Wire-format tolerance lives in package normalize; everything
// in this package is already in canonical shape.
package models

import (
	"fmt"
	"strings"
)

// Category classifies a file by its MIME content type. It drives icon and
// thumbnail selection.
type Category string

const (
	CategoryImage    Category = "image"
	CategoryVideo    Category = "video"
	CategoryDocument Category = "document"
	CategoryOther    Category = "other"
)

// File is the canonical client-side file record.
type File struct {
	// ID is the stable server-assigned identifier. An empty ID means the
	// record could not be identified on the wire and must be treated as
	// invalid by the caller.
	ID string `json:"id"`

	Name        string `json:"name"`
	ContentType string `json:"contentType"`

	// Size is the file size in bytes, never negative.
	Size int64 `json:"size"`

	// UploadDate is formatted as YYYY-MM-DD.
	UploadDate string `json:"uploadDate"`

	// UploadDateEstimated marks records whose upload date was missing or
	// unparseable on the wire. The date then defaults to the day the record
	// was normalized, so consumers can tell an estimated date from a real one.
	UploadDateEstimated bool `json:"uploadDateEstimated,omitempty"`

	// BlobURL is the direct-access URL, empty when the server did not
	// provide one.
	BlobURL string `json:"blobUrl,omitempty"`

	// Thumbnail equals BlobURL for images, otherwise a per-category
	// placeholder.
	Thumbnail string `json:"thumbnail,omitempty"`

	IsShared   bool     `json:"isShared"`
	ShareCount int      `json:"shareCount"`
	Downloads  int      `json:"downloads"`
	Tags       []string `json:"tags"`
	UserID     string   `json:"userId"`
}

// FileCategory maps a MIME content type to its category.
func FileCategory(contentType string) Category {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return CategoryImage
	case strings.HasPrefix(contentType, "video/"):
		return CategoryVideo
	case contentType == "application/pdf":
		return CategoryDocument
	default:
		return CategoryOther
	}
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count in human-readable 1024-based units,
// e.g. 1536 -> "1.5 KB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d Bytes", bytes)
	}
	return fmt.Sprintf("%s %s", trimZeros(fmt.Sprintf("%.2f", size)), sizeUnits[unit])
}

func trimZeros(s string) string {
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
