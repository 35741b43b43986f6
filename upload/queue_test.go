package upload

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudshare/cloudshare-go/api"
	"github.com/cloudshare/cloudshare-go/models"
	"github.com/cloudshare/cloudshare-go/notify"
)

func fastRamp(t *testing.T) {
	t.Helper()
	orig := rampDelay
	rampDelay = time.Millisecond
	t.Cleanup(func() { rampDelay = orig })
}

// fakeClient records UploadFile calls and their bodies; every other operation
// is unused by the queue.
type fakeClient struct {
	mu       sync.Mutex
	uploads  []string
	sent     []string
	failWith error
}

var _ api.Client = (*fakeClient)(nil)

func (f *fakeClient) UploadFile(ctx context.Context, name, contentType string, size int64, r io.Reader) (models.File, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return models.File{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, string(body))
	if f.failWith != nil {
		return models.File{}, f.failWith
	}
	f.uploads = append(f.uploads, name)
	return models.File{ID: "id-" + name, Name: name, ContentType: contentType, Size: size}, nil
}

func (f *fakeClient) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}

func (f *fakeClient) bodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func (f *fakeClient) setFail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = err
}

func (f *fakeClient) Register(context.Context, string, string) (models.User, error) {
	return models.User{}, nil
}
func (f *fakeClient) Login(context.Context, string, string) (models.User, error) {
	return models.User{}, nil
}
func (f *fakeClient) Logout(context.Context) error                     { return nil }
func (f *fakeClient) Profile(context.Context) (models.User, error)     { return models.User{}, nil }
func (f *fakeClient) ListFiles(context.Context) ([]models.File, error) { return nil, nil }
func (f *fakeClient) GetFile(context.Context, string) (models.File, error) {
	return models.File{}, nil
}
func (f *fakeClient) DeleteFile(context.Context, string) error { return nil }
func (f *fakeClient) CreateShareLink(context.Context, string, int) (models.ShareLink, error) {
	return models.ShareLink{}, nil
}
func (f *fakeClient) RevokeShareLink(context.Context, string) error { return nil }
func (f *fakeClient) ShareLinks(context.Context, string) ([]models.ShareLink, error) {
	return nil, nil
}
func (f *fakeClient) ResolveShareLink(context.Context, string) (models.SharedFile, error) {
	return models.SharedFile{}, nil
}
func (f *fakeClient) Close() error { return nil }

func TestAdd_RejectsOversizedFileBeforeAnyNetworkCall(t *testing.T) {
	client := &fakeClient{}
	q := NewQueue(client, notify.Discard, nil)

	const size150MB = 150 * 1024 * 1024
	item, err := q.Add("huge.mp4", "video/mp4", size150MB, strings.NewReader(""))

	require.Error(t, err)
	assert.Nil(t, item)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "100MB", "error must reference the limit")

	assert.Empty(t, q.Items())
	assert.Empty(t, client.calls(), "validation failures must never reach the network layer")
}

func TestAdd_RejectsUnsupportedType(t *testing.T) {
	client := &fakeClient{}
	q := NewQueue(client, notify.Discard, nil)

	_, err := q.Add("tool.exe", "application/x-msdownload", 10, strings.NewReader(""))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, client.calls())
}

func TestAdd_SkipsDuplicateNameAndSize(t *testing.T) {
	q := NewQueue(&fakeClient{}, notify.Discard, nil)

	first, err := q.Add("cat.jpg", "image/jpeg", 100, strings.NewReader("a"))
	require.NoError(t, err)
	second, err := q.Add("cat.jpg", "image/jpeg", 100, strings.NewReader("b"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same name+size must not queue twice")
	assert.Len(t, q.Items(), 1)
}

func TestUploadAll_SequentialInInsertionOrder(t *testing.T) {
	fastRamp(t)
	client := &fakeClient{}
	q := NewQueue(client, notify.Discard, nil)

	names := []string{"a.jpg", "b.jpg", "c.jpg"}
	for _, name := range names {
		_, err := q.Add(name, "image/jpeg", 10, strings.NewReader("x"))
		require.NoError(t, err)
	}

	uploaded, err := q.UploadAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, names, client.calls(), "uploads must run one at a time in insertion order")
	require.Len(t, uploaded, 3)
	assert.Empty(t, q.Items(), "successful items leave the queue")
}

func TestUploadAll_ProgressRampIsMonotonic(t *testing.T) {
	fastRamp(t)
	q := NewQueue(&fakeClient{}, notify.Discard, nil)

	var mu sync.Mutex
	progress := make(map[string][]int)
	q.OnProgress = func(id string, p int) {
		mu.Lock()
		progress[id] = append(progress[id], p)
		mu.Unlock()
	}

	item, err := q.Add("a.jpg", "image/jpeg", 10, strings.NewReader("x"))
	require.NoError(t, err)

	_, err = q.UploadAll(context.Background())
	require.NoError(t, err)

	seen := progress[item.ID]
	require.NotEmpty(t, seen)
	assert.Equal(t, []int{0, 30, 60, 90, 100}, seen)
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i], seen[i-1], "progress must never decrease")
	}
}

func TestUploadAll_FailedItemStaysQueuedAndDoesNotAbort(t *testing.T) {
	fastRamp(t)
	client := &fakeClient{failWith: errors.New("backend down")}
	bus := notify.NewBus()
	alerts, cancel := bus.Subscribe(8)
	defer cancel()

	q := NewQueue(client, bus, nil)

	_, err := q.Add("a.jpg", "image/jpeg", 10, strings.NewReader("x"))
	require.NoError(t, err)
	_, err = q.Add("b.jpg", "image/jpeg", 20, strings.NewReader("y"))
	require.NoError(t, err)

	uploaded, err := q.UploadAll(context.Background())
	require.NoError(t, err, "per-item failures must not abort the run")
	assert.Empty(t, uploaded)
	assert.Len(t, q.Items(), 2, "failed items stay queued")

	select {
	case alert := <-alerts:
		assert.Equal(t, notify.LevelError, alert.Level)
		assert.Contains(t, alert.Message, "a.jpg")
	default:
		t.Fatal("expected an error alert for the failed upload")
	}
}

func TestUploadAll_RetryResendsFullContent(t *testing.T) {
	fastRamp(t)
	client := &fakeClient{failWith: errors.New("backend down")}
	q := NewQueue(client, notify.Discard, nil)

	_, err := q.Add("doc.pdf", "application/pdf", 7, strings.NewReader("content"))
	require.NoError(t, err)

	uploaded, err := q.UploadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, uploaded)
	require.Len(t, q.Items(), 1, "failed item stays queued")

	client.setFail(nil)
	uploaded, err = q.UploadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, uploaded, 1)

	sent := client.bodies()
	require.Len(t, sent, 2)
	assert.Equal(t, "content", sent[1], "a retried item must resend its full content")
}

func TestUploadAll_ContextCancellationAborts(t *testing.T) {
	fastRamp(t)
	q := NewQueue(&fakeClient{}, notify.Discard, nil)

	_, err := q.Add("a.jpg", "image/jpeg", 10, strings.NewReader("x"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = q.UploadAll(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, q.Items(), 1)
}
