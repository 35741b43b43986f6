// Package normalize converts raw CloudShare wire payloads into canonical
// models. The backend has accumulated several schema revisions (fileId vs id,
// fileName vs name, and so on); this package is the only place aware of those
// variants. Normalization is total: any field it cannot determine degrades to
// a type-appropriate zero value rather than failing the whole record.
package normalize

import (
	"time"

	"github.com/cloudshare/cloudshare-go/models"
)

// Placeholder thumbnails per file category, used when no direct image URL is
// available.
const (
	thumbnailImage    = "https://via.placeholder.com/300x200/4A90E2/FFFFFF?text=Image"
	thumbnailVideo    = "https://via.placeholder.com/300x200/50E3C2/FFFFFF?text=Video"
	thumbnailDocument = "https://via.placeholder.com/300x200/9013FE/FFFFFF?text=Document"
)

// stubbed in tests
var timeNow = time.Now

// File converts a raw wire file record into the canonical model.
//
// Per-field rules, in priority order: current-schema key, then legacy key,
// then zero value. A record missing both id keys normalizes to an empty ID;
// callers must treat such a record as invalid. A missing or unparseable
// upload date becomes today's date with UploadDateEstimated set, so the
// substitution stays observable.
//
// File is idempotent: normalizing an already-normalized record (via AsRaw)
// yields the same record.
func File(raw RawFile) models.File {
	f := models.File{
		ID:          firstNonEmpty(raw.FileID, raw.LegacyID),
		Name:        firstNonEmpty(raw.FileName, raw.LegacyName),
		ContentType: firstNonEmpty(raw.ContentType, raw.LegacyType),
		BlobURL:     raw.BlobURL,
		IsShared:    raw.IsShared,
		ShareCount:  raw.ShareCount,
		Downloads:   raw.Downloads,
		UserID:      raw.UserID,
	}

	// A present current-schema size always wins, even when zero; the legacy
	// key is consulted only when the current one is absent entirely.
	switch {
	case raw.FileSize != nil:
		f.Size = *raw.FileSize
	case raw.LegacySize != nil:
		f.Size = *raw.LegacySize
	}
	if f.Size < 0 {
		f.Size = 0
	}

	if f.ShareCount < 0 {
		f.ShareCount = 0
	}
	if f.Downloads < 0 {
		f.Downloads = 0
	}

	f.Tags = make([]string, 0, len(raw.Tags))
	f.Tags = append(f.Tags, raw.Tags...)

	f.UploadDate, f.UploadDateEstimated = normalizeDate(raw)
	f.Thumbnail = thumbnailFor(f.ContentType, f.BlobURL)

	return f
}

// Files normalizes a whole listing.
func Files(raw []RawFile) []models.File {
	out := make([]models.File, len(raw))
	for i, r := range raw {
		out[i] = File(r)
	}
	return out
}

func normalizeDate(raw RawFile) (date string, estimated bool) {
	if raw.UploadDate.Known() {
		return raw.UploadDate.Time.Format(time.DateOnly), raw.UploadDateEstimated
	}
	if raw.CreatedAt.Known() {
		return raw.CreatedAt.Time.Format(time.DateOnly), raw.UploadDateEstimated
	}
	return timeNow().Format(time.DateOnly), true
}

func thumbnailFor(contentType, blobURL string) string {
	category := models.FileCategory(contentType)
	if category == models.CategoryImage && blobURL != "" {
		return blobURL
	}
	switch category {
	case models.CategoryImage:
		return thumbnailImage
	case models.CategoryVideo:
		return thumbnailVideo
	default:
		return thumbnailDocument
	}
}

// ShareLink converts a raw wire share link into the canonical model,
// tolerating both the createdAt/expiresAt and createdDate/expiryDate key
// generations.
func ShareLink(raw RawShareLink) models.ShareLink {
	l := models.ShareLink{
		LinkID:      raw.LinkID,
		FileID:      raw.FileID,
		UserID:      raw.UserID,
		IsRevoked:   raw.IsRevoked,
		AccessCount: raw.AccessCount,
		ShareURL:    raw.ShareURL,
	}
	if l.AccessCount < 0 {
		l.AccessCount = 0
	}
	if raw.CreatedAt.Known() {
		l.CreatedDate = raw.CreatedAt.Time
	} else if raw.CreatedDate.Known() {
		l.CreatedDate = raw.CreatedDate.Time
	}
	if raw.ExpiresAt.Known() {
		l.ExpiryDate = raw.ExpiresAt.Time
	} else if raw.ExpiryDate.Known() {
		l.ExpiryDate = raw.ExpiryDate.Time
	}
	return l
}

// ShareLinks normalizes a listing of share links.
func ShareLinks(raw []RawShareLink) []models.ShareLink {
	out := make([]models.ShareLink, len(raw))
	for i, r := range raw {
		out[i] = ShareLink(r)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
