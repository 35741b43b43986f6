// Package upload manages the client-side upload queue: validation before any
// network traffic, sequential uploads, and a simulated progress ramp for each
// pending item.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cloudshare/cloudshare-go/api"
	"github.com/cloudshare/cloudshare-go/logging"
	"github.com/cloudshare/cloudshare-go/models"
	"github.com/cloudshare/cloudshare-go/notify"
)

// MaxFileSize is the client-side upload cap. Oversized files are rejected
// before any request is sent.
const MaxFileSize = 100 * 1024 * 1024 // 100MB

// allowedTypes is the fixed upload allow-list.
var allowedTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"video/mp4":       {},
	"video/quicktime": {},
	"application/pdf": {},
}

// ValidationError reports a file rejected client-side. It never reaches the
// network layer.
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("upload: %s: %s", e.Name, e.Reason)
}

// Item is one pending upload. It exists only until the upload succeeds or
// the item is removed; nothing about it is persisted.
type Item struct {
	// ID is generated locally, not server-assigned.
	ID          string
	Name        string
	ContentType string
	Size        int64

	// Progress runs 0-100 and never decreases during one upload.
	Progress int

	// data is buffered at Add so a failed item can be retried with its full
	// content; the MaxFileSize cap bounds the buffer.
	data  []byte
	order int
}

// Queue validates, holds, and uploads pending files one at a time.
type Queue struct {
	client   api.Client
	notifier notify.Notifier
	log      logging.Logger

	mu    sync.Mutex
	items map[string]*Item
	next  int

	// OnProgress, when set, observes every progress change. Called without
	// the queue lock held.
	OnProgress func(id string, progress int)
}

func NewQueue(client api.Client, notifier notify.Notifier, log logging.Logger) *Queue {
	if notifier == nil {
		notifier = notify.Discard
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Queue{
		client:   client,
		notifier: notifier,
		log:      log,
		items:    make(map[string]*Item),
	}
}

// Add validates the file and queues it. A file already queued with the same
// name and size is not queued twice; the existing item is returned instead.
func (q *Queue) Add(name, contentType string, size int64, r io.Reader) (*Item, error) {
	if size > MaxFileSize {
		err := &ValidationError{Name: name, Reason: fmt.Sprintf("file exceeds 100MB limit (%d bytes)", size)}
		q.notifier.Notify(notify.LevelError, err.Error())
		return nil, err
	}
	if _, ok := allowedTypes[contentType]; !ok {
		err := &ValidationError{Name: name, Reason: fmt.Sprintf("file type not supported: %s", contentType)}
		q.notifier.Notify(notify.LevelError, err.Error())
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("upload: reading %s: %w", name, err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for _, existing := range q.items {
		if existing.Name == name && existing.Size == size {
			return existing, nil
		}
	}

	item := &Item{
		ID:          uuid.NewString(),
		Name:        name,
		ContentType: contentType,
		Size:        size,
		data:        data,
		order:       q.next,
	}
	q.next++
	q.items[item.ID] = item
	return item, nil
}

// Remove drops a pending item.
func (q *Queue) Remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.items, id)
}

// Items returns a snapshot of the pending items in insertion order.
func (q *Queue) Items() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Item, 0, len(q.items))
	for _, item := range q.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].order < out[j].order })
	return out
}

// stubbed in tests
var rampDelay = 100 * time.Millisecond

// UploadAll uploads the pending items strictly one at a time, in insertion
// order. Each item's progress ramps 0, 30, 60, 90 before the request and
// jumps to 100 on success; successful items leave the queue. A failed item
// stays queued, is reported through the notifier, and does not stop the
// remaining uploads. Only context cancellation aborts the run.
func (q *Queue) UploadAll(ctx context.Context) ([]models.File, error) {
	pending := q.Items()
	uploaded := make([]models.File, 0, len(pending))

	for _, snapshot := range pending {
		q.mu.Lock()
		item, ok := q.items[snapshot.ID]
		q.mu.Unlock()
		if !ok {
			// removed while a previous item was uploading
			continue
		}

		if err := q.ramp(ctx, item); err != nil {
			return uploaded, err
		}

		// A fresh reader per attempt: a failed item stays queued and must
		// resend its full content on the next run.
		file, err := q.client.UploadFile(ctx, item.Name, item.ContentType, item.Size, bytes.NewReader(item.data))
		if err != nil {
			if ctx.Err() != nil {
				return uploaded, ctx.Err()
			}
			q.log.Error(ctx, "upload failed", "name", item.Name, "error", err)
			q.notifier.Notify(notify.LevelError, fmt.Sprintf("Failed to upload %s: %s", item.Name, err))
			continue
		}

		q.setProgress(item, 100)
		q.Remove(item.ID)
		uploaded = append(uploaded, file)
		q.notifier.Notify(notify.LevelSuccess, fmt.Sprintf("Uploaded %s", item.Name))
	}

	return uploaded, nil
}

// ramp advances the item's simulated progress to 90 in fixed steps before
// the real request goes out.
func (q *Queue) ramp(ctx context.Context, item *Item) error {
	for _, p := range []int{0, 30, 60, 90} {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rampDelay):
		}
		q.setProgress(item, p)
	}
	return nil
}

func (q *Queue) setProgress(item *Item, progress int) {
	q.mu.Lock()
	if progress > item.Progress {
		item.Progress = progress
	}
	q.mu.Unlock()

	if q.OnProgress != nil {
		q.OnProgress(item.ID, progress)
	}
}
