package models

import "time"

// ShareStatus is the derived lifecycle state of a share link.
type ShareStatus string

const (
	ShareStatusActive  ShareStatus = "active"
	ShareStatusExpired ShareStatus = "expired"
	ShareStatusRevoked ShareStatus = "revoked"
)

// ShareLink is a public, optionally expiring link to a single file.
// Many share links may exist per file.
type ShareLink struct {
	LinkID string `json:"linkId"`
	FileID string `json:"fileId"`

	// UserID identifies the issuer.
	UserID string `json:"userId"`

	CreatedDate time.Time `json:"createdDate"`

	// ExpiryDate is the moment the link stops working. The zero value means
	// the link never expires.
	ExpiryDate time.Time `json:"expiryDate,omitzero"`

	// IsRevoked is one-way: once true it never goes back.
	IsRevoked bool `json:"isRevoked"`

	// AccessCount is maintained by the server and never decreases.
	AccessCount int64 `json:"accessCount"`

	// ShareURL is present only on creation responses or when re-fetched.
	ShareURL string `json:"shareUrl,omitempty"`
}

// Status derives the link state at the given moment. Revocation takes
// precedence over expiry.
func (l ShareLink) Status(now time.Time) ShareStatus {
	if l.IsRevoked {
		return ShareStatusRevoked
	}
	if !l.ExpiryDate.IsZero() && !l.ExpiryDate.After(now) {
		return ShareStatusExpired
	}
	return ShareStatusActive
}

// SharedFile is the result of resolving a public share link.
type SharedFile struct {
	File        File      `json:"file"`
	ShareLink   ShareLink `json:"shareLink"`
	DownloadURL string    `json:"downloadUrl"`
}
