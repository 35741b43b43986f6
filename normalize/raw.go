package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/cloudshare/cloudshare-go/models"
)

// FlexDate decodes the date representations seen across backend revisions:
// RFC 3339 timestamps, bare YYYY-MM-DD dates, and unix epochs (seconds or
// milliseconds). Anything else decodes to the unknown state instead of
// erroring, matching the total-normalization contract.
type FlexDate struct {
	Time  time.Time
	Valid bool
}

// Known reports whether a usable date was decoded.
func (d FlexDate) Known() bool { return d.Valid && !d.Time.IsZero() }

func (d *FlexDate) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}

	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return nil
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
			if t, err := time.Parse(layout, str); err == nil {
				d.Time, d.Valid = t, true
				return nil
			}
		}
		return nil
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		// Epochs past ~2001-09 in milliseconds exceed 1e12.
		if n >= 1e12 {
			d.Time = time.UnixMilli(n).UTC()
		} else {
			d.Time = time.Unix(n, 0).UTC()
		}
		d.Valid = true
	}
	return nil
}

func (d FlexDate) MarshalJSON() ([]byte, error) {
	if !d.Known() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(time.RFC3339))
}

// RawFile is the tolerant wire shape of a backend file record. Current-schema
// keys and their legacy fallbacks are kept side by side; Normalize picks the
// winner.
type RawFile struct {
	FileID   string `json:"fileId"`
	LegacyID string `json:"id"`

	FileName   string `json:"fileName"`
	LegacyName string `json:"name"`

	ContentType string `json:"contentType"`
	LegacyType  string `json:"type"`

	FileSize   *int64 `json:"fileSize"`
	LegacySize *int64 `json:"size"`

	BlobURL string `json:"blobUrl"`

	UploadDate FlexDate `json:"uploadDate"`
	CreatedAt  FlexDate `json:"createdAt"`

	// UploadDateEstimated never comes from the server; it round-trips the
	// client-side sentinel so re-normalization stays idempotent.
	UploadDateEstimated bool `json:"uploadDateEstimated"`

	IsShared   bool     `json:"isShared"`
	ShareCount int      `json:"shareCount"`
	Downloads  int      `json:"downloads"`
	Tags       []string `json:"tags"`
	UserID     string   `json:"userId"`
	Status     string   `json:"status"`
}

// AsRaw reprojects a canonical file back into the wire shape, using
// current-schema keys only. Mainly useful for round-trip testing and for
// feeding already-normalized records through File again.
func AsRaw(f models.File) RawFile {
	raw := RawFile{
		FileID:              f.ID,
		FileName:            f.Name,
		ContentType:         f.ContentType,
		BlobURL:             f.BlobURL,
		UploadDateEstimated: f.UploadDateEstimated,
		IsShared:            f.IsShared,
		ShareCount:          f.ShareCount,
		Downloads:           f.Downloads,
		Tags:                f.Tags,
		UserID:              f.UserID,
	}
	if f.Size > 0 {
		size := f.Size
		raw.FileSize = &size
	}
	if t, err := time.Parse(time.DateOnly, f.UploadDate); err == nil {
		raw.UploadDate = FlexDate{Time: t, Valid: true}
	}
	return raw
}

// RawShareLink is the tolerant wire shape of a share link record.
type RawShareLink struct {
	LinkID string `json:"linkId"`
	FileID string `json:"fileId"`
	UserID string `json:"userId"`

	CreatedAt   FlexDate `json:"createdAt"`
	CreatedDate FlexDate `json:"createdDate"`

	ExpiresAt  FlexDate `json:"expiresAt"`
	ExpiryDate FlexDate `json:"expiryDate"`

	IsRevoked   bool   `json:"isRevoked"`
	AccessCount int64  `json:"accessCount"`
	ShareURL    string `json:"shareUrl"`
}
