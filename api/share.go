package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cloudshare/cloudshare-go/cache"
	"github.com/cloudshare/cloudshare-go/models"
	"github.com/cloudshare/cloudshare-go/normalize"
)

type createShareLinkRequest struct {
	ExpirationDays int `json:"expirationDays,omitempty"`
}

type shareLinksResponse struct {
	ShareLinks []normalize.RawShareLink `json:"shareLinks"`
}

type resolveShareResponse struct {
	File        normalize.RawFile      `json:"file"`
	ShareLink   normalize.RawShareLink `json:"shareLink"`
	DownloadURL string                 `json:"downloadUrl"`
}

// CreateShareLink issues a public link for fileID and invalidates every
// cached share-link query. expirationDays of zero means the link never
// expires.
func (c *HTTPClient) CreateShareLink(ctx context.Context, fileID string, expirationDays int) (models.ShareLink, error) {
	var raw normalize.RawShareLink
	path := "/files/" + url.PathEscape(fileID) + "/share"
	err := c.doJSON(ctx, http.MethodPost, path, createShareLinkRequest{ExpirationDays: expirationDays}, &raw, withAuth)
	if err != nil {
		return models.ShareLink{}, err
	}

	link := normalize.ShareLink(raw)
	if link.ShareURL == "" && c.shareBaseURL != "" {
		link.ShareURL = c.shareBaseURL + "/share/" + url.PathEscape(link.LinkID)
	}

	c.log.Info(ctx, "share link created", "fileId", fileID, "linkId", link.LinkID)
	c.cache.Invalidate(cache.Tag{Kind: cache.KindShareLink})
	return link, nil
}

// RevokeShareLink disables the link for good and invalidates every cached
// share-link query.
func (c *HTTPClient) RevokeShareLink(ctx context.Context, linkID string) error {
	var resp messageResponse
	path := "/share/" + url.PathEscape(linkID) + "/revoke"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &resp, withAuth); err != nil {
		return err
	}

	c.log.Info(ctx, "share link revoked", "linkId", linkID)
	c.cache.Invalidate(cache.Tag{Kind: cache.KindShareLink})
	return nil
}

// ShareLinks lists the links issued for one file, cached under
// ShareLink:<fileId>.
func (c *HTTPClient) ShareLinks(ctx context.Context, fileID string) ([]models.ShareLink, error) {
	key := cache.Key{Op: "getShareLinksByFileId", Arg: fileID}
	tags := []cache.Tag{{Kind: cache.KindShareLink, ID: fileID}}
	return cache.Do(ctx, c.cache, key, tags, func(ctx context.Context) ([]models.ShareLink, error) {
		var resp shareLinksResponse
		path := "/files/" + url.PathEscape(fileID) + "/share-links"
		if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp, withAuth); err != nil {
			return nil, err
		}
		return normalize.ShareLinks(resp.ShareLinks), nil
	})
}

// ResolveShareLink resolves a public link. No token is attached even when
// one is present, so the call succeeds for anonymous visitors and its result
// never depends on who is signed in.
func (c *HTTPClient) ResolveShareLink(ctx context.Context, linkID string) (models.SharedFile, error) {
	key := cache.Key{Op: "getFileByShareLink", Arg: linkID}
	tags := []cache.Tag{{Kind: cache.KindShareLink, ID: linkID}}
	return cache.Do(ctx, c.cache, key, tags, func(ctx context.Context) (models.SharedFile, error) {
		var resp resolveShareResponse
		if err := c.doJSON(ctx, http.MethodGet, "/share/"+url.PathEscape(linkID), nil, &resp, noAuth); err != nil {
			return models.SharedFile{}, err
		}
		return models.SharedFile{
			File:        normalize.File(resp.File),
			ShareLink:   normalize.ShareLink(resp.ShareLink),
			DownloadURL: resp.DownloadURL,
		}, nil
	})
}
