// Package api implements the typed CloudShare REST client. Queries are
// served through the tag-invalidating cache; mutations invalidate the cached
// queries they affect and the affected queries refetch. File-returning
// responses pass through package normalize before they are cached or
// returned.
package api

import (
	"context"
	"io"

	"github.com/cloudshare/cloudshare-go/models"
)

// Client is the full CloudShare API surface.
//
// Contract:
//   - Every operation except ResolveShareLink attaches the current bearer
//     token when one is present.
//   - Register and Login persist the returned credentials into the session
//     store as a side effect of completing successfully.
//   - Any unauthorized response clears the session store and the cache
//     before the error is surfaced; the call is not retried.
//
// All methods honor context cancellation.
type Client interface {
	// Register creates an account and signs the client in.
	Register(ctx context.Context, email, password string) (models.User, error)

	// Login signs the client in.
	Login(ctx context.Context, email, password string) (models.User, error)

	// Logout clears the persisted session and all cached data. Purely
	// client-side; the server keeps no session state beyond the token.
	Logout(ctx context.Context) error

	// Profile returns the authenticated user's profile.
	Profile(ctx context.Context) (models.User, error)

	// ListFiles returns all files owned by the authenticated user.
	ListFiles(ctx context.Context) ([]models.File, error)

	// GetFile returns one file by id.
	GetFile(ctx context.Context, id string) (models.File, error)

	// UploadFile uploads size bytes from r as a multipart request and
	// returns the stored file record.
	UploadFile(ctx context.Context, name, contentType string, size int64, r io.Reader) (models.File, error)

	// DeleteFile removes a file.
	DeleteFile(ctx context.Context, id string) error

	// CreateShareLink issues a public link for the file, expiring after
	// expirationDays. Zero means the link never expires.
	CreateShareLink(ctx context.Context, fileID string, expirationDays int) (models.ShareLink, error)

	// RevokeShareLink permanently disables a link.
	RevokeShareLink(ctx context.Context, linkID string) error

	// ShareLinks lists all links issued for one file.
	ShareLinks(ctx context.Context, fileID string) ([]models.ShareLink, error)

	// ResolveShareLink resolves a public link to its file. Works without a
	// token; this is the endpoint anonymous visitors hit.
	ResolveShareLink(ctx context.Context, linkID string) (models.SharedFile, error)

	// Close releases transport resources.
	Close() error
}
