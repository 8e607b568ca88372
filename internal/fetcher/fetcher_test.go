package fetcher

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smd-project/smd/internal/sources"
	"github.com/smd-project/smd/internal/store"
	"github.com/smd-project/smd/internal/ui"
)

type mockSource struct {
	imagesFunc  func(ctx context.Context, chapterURL string) ([]string, error)
	resolveFunc func(ctx context.Context, ref string) (string, error)
}

func (m *mockSource) Name() string { return "mock" }
func (m *mockSource) Lang() string { return "en" }

func (m *mockSource) Search(ctx context.Context, query string) ([]sources.Result, error) {
	return nil, nil
}

func (m *mockSource) Chapters(ctx context.Context, mangaURL string) ([]sources.Result, error) {
	return nil, nil
}

func (m *mockSource) Images(ctx context.Context, chapterURL string) ([]string, error) {
	if m.imagesFunc != nil {
		return m.imagesFunc(ctx, chapterURL)
	}
	return nil, nil
}

func (m *mockSource) ResolveImage(ctx context.Context, ref string) (string, error) {
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, ref)
	}
	return ref, nil
}

type recordedProgress struct {
	updates int
	done    bool
}

func (r *recordedProgress) Update(done, total int, bytes int64) { r.updates++ }
func (r *recordedProgress) MarkDone()                          { r.done = true }

func createTestPNG() []byte {
	// Minimal 1x1 transparent PNG
	var buf bytes.Buffer
	buf.Write([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	buf.Write([]byte{
		0x00, 0x00, 0x00, 0x0D,
		0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x01,
		0x08, 0x00, 0x00, 0x00, 0x00,
		0x3A, 0x7E, 0x9B, 0x55,
	})
	buf.Write([]byte{
		0x00, 0x00, 0x00, 0x0A,
		0x49, 0x44, 0x41, 0x54,
		0x08, 0xD7, 0x63, 0x60, 0x00, 0x00, 0x00, 0x02, 0x00, 0x01,
		0xE2, 0x21, 0xBC, 0x33,
	})
	buf.Write([]byte{
		0x00, 0x00, 0x00, 0x00,
		0x49, 0x45, 0x4E, 0x44,
		0xAE, 0x42, 0x60, 0x82,
	})
	return buf.Bytes()
}

func newTestFetcher() (*Fetcher, *ui.Stats) {
	stats := &ui.Stats{}
	return New(&http.Client{}, ui.NewLogger(false), stats), stats
}

func imageServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	png := createTestPNG()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		_, _ = w.Write(png)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchFreshChapter(t *testing.T) {
	var hits atomic.Int64
	srv := imageServer(t, &hits)

	dir := t.TempDir()
	ch := store.NewChapter(dir, "ch1", "http://site/ch1")
	assert.NoError(t, ch.Save())

	src := &mockSource{
		imagesFunc: func(ctx context.Context, chapterURL string) ([]string, error) {
			return []string{srv.URL + "/1", srv.URL + "/2", srv.URL + "/3"}, nil
		},
	}

	f, stats := newTestFetcher()
	ph := &recordedProgress{}
	assert.NoError(t, f.Fetch(context.Background(), src, ch, ph))

	assert.Equal(t, 3, ch.Current)
	assert.True(t, ch.Complete())
	assert.Equal(t, int64(3), hits.Load())
	assert.True(t, ph.done)
	assert.Equal(t, int64(3), stats.TotalImages.Load())
	assert.Equal(t, int64(1), stats.TotalChapters.Load())

	for _, name := range []string{"1.png", "2.png", "3.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	// the persisted document reflects the finished state
	loaded, err := store.LoadChapter(dir)
	assert.NoError(t, err)
	assert.True(t, loaded.Complete())
}

func TestFetchZeroPadsNames(t *testing.T) {
	srv := imageServer(t, nil)

	dir := t.TempDir()
	ch := store.NewChapter(dir, "ch1", "http://site/ch1")
	assert.NoError(t, ch.Save())

	refs := make([]string, 12)
	for i := range refs {
		refs[i] = srv.URL
	}
	src := &mockSource{
		imagesFunc: func(ctx context.Context, chapterURL string) ([]string, error) {
			return refs, nil
		},
	}

	f, _ := newTestFetcher()
	assert.NoError(t, f.Fetch(context.Background(), src, ch, nil))

	_, err := os.Stat(filepath.Join(dir, "01.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "12.png"))
	assert.NoError(t, err)
}

func TestFetchResumesAtCursor(t *testing.T) {
	var hits atomic.Int64
	srv := imageServer(t, &hits)

	dir := t.TempDir()
	ch := store.NewChapter(dir, "ch1", "http://site/ch1")
	ch.Images = []string{srv.URL + "/1", srv.URL + "/2", srv.URL + "/3", srv.URL + "/4"}
	ch.Current = 2
	assert.NoError(t, ch.Save())

	f, _ := newTestFetcher()
	assert.NoError(t, f.Fetch(context.Background(), &mockSource{}, ch, nil))

	// only the two images past the cursor were downloaded
	assert.Equal(t, int64(2), hits.Load())
	assert.True(t, ch.Complete())

	_, err := os.Stat(filepath.Join(dir, "3.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "4.png"))
	assert.NoError(t, err)
}

func TestFetchOverwritesFileAheadOfCursor(t *testing.T) {
	var hits atomic.Int64
	srv := imageServer(t, &hits)

	// A crash between writing an image and persisting the cursor leaves
	// the file on disk while the cursor still points at it. Resuming
	// must refetch that one image and overwrite the partial file.
	dir := t.TempDir()
	ch := store.NewChapter(dir, "ch1", "http://site/ch1")
	ch.Images = []string{srv.URL + "/1", srv.URL + "/2", srv.URL + "/3"}
	ch.Current = 1
	assert.NoError(t, ch.Save())

	stale := []byte{0x89, 0x50, 0x4E, 0x47, 0x00} // truncated write
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "2.png"), stale, 0644))

	f, _ := newTestFetcher()
	assert.NoError(t, f.Fetch(context.Background(), &mockSource{}, ch, nil))

	assert.Equal(t, int64(2), hits.Load())
	assert.True(t, ch.Complete())

	got, err := os.ReadFile(filepath.Join(dir, "2.png"))
	assert.NoError(t, err)
	assert.Equal(t, createTestPNG(), got)

	_, err = os.Stat(filepath.Join(dir, "3.png"))
	assert.NoError(t, err)
}

func TestFetchCompleteChapterIsNoOp(t *testing.T) {
	var hits atomic.Int64
	srv := imageServer(t, &hits)

	dir := t.TempDir()
	ch := store.NewChapter(dir, "ch1", "http://site/ch1")
	ch.Images = []string{srv.URL + "/1"}
	ch.Current = 1
	assert.NoError(t, ch.Save())

	f, _ := newTestFetcher()
	ph := &recordedProgress{}
	assert.NoError(t, f.Fetch(context.Background(), &mockSource{}, ch, ph))

	assert.Equal(t, int64(0), hits.Load())
	assert.True(t, ph.done)
}

func TestFetchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	ch := store.NewChapter(dir, "ch1", "http://site/ch1")
	ch.Images = []string{srv.URL + "/1"}
	ch.Current = 0
	assert.NoError(t, ch.Save())

	f, _ := newTestFetcher()
	err := f.Fetch(context.Background(), &mockSource{}, ch, nil)
	assert.ErrorIs(t, err, ErrTransport)

	// the cursor did not move
	loaded, lerr := store.LoadChapter(dir)
	assert.NoError(t, lerr)
	assert.Equal(t, 0, loaded.Current)
}

func TestFetchCancelledContext(t *testing.T) {
	srv := imageServer(t, nil)

	dir := t.TempDir()
	ch := store.NewChapter(dir, "ch1", "http://site/ch1")
	ch.Images = []string{srv.URL + "/1"}
	ch.Current = 0
	assert.NoError(t, ch.Save())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f, _ := newTestFetcher()
	err := f.Fetch(ctx, &mockSource{}, ch, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectExt(t *testing.T) {
	assert.Equal(t, ".png", detectExt(createTestPNG()))
	assert.Equal(t, ".jpg", detectExt([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}))
	assert.Equal(t, ".gif", detectExt([]byte("GIF89a\x01\x00\x01\x00")))
	assert.Equal(t, "", detectExt([]byte("not an image")))
}
