// Package fetcher drives the resumable per-chapter download loop: it
// resolves the image list once, then downloads image by image,
// persisting the chapter document after every file so a crash never
// loses more than the single in-flight image.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/smd-project/smd/internal/sources"
	"github.com/smd-project/smd/internal/store"
	"github.com/smd-project/smd/internal/ui"
)

// ErrTransport marks an image fetch that kept failing after the retry
// bound was exhausted. It aborts the current chapter without touching
// already-persisted progress.
var ErrTransport = errors.New("transport failed")

// maxAttempts bounds the per-image retry loop. Historical variants of
// this tool disagreed on the bound; three attempts with linear backoff
// is the policy here.
const maxAttempts = 3

// Progress receives per-image download updates.
type Progress interface {
	Update(done, total int, bytes int64)
	MarkDone()
}

type Fetcher struct {
	client *http.Client
	log    *ui.Logger
	stats  *ui.Stats
}

func New(client *http.Client, log *ui.Logger, stats *ui.Stats) *Fetcher {
	return &Fetcher{client: client, log: log, stats: stats}
}

// Fetch downloads the missing images of a chapter through the given
// source. A complete chapter is a no-op; a chapter with an unresolved
// image list gets the list first. Each image file is written before
// the cursor advance is persisted, in that order, so the document on
// disk never points past a missing file.
func (f *Fetcher) Fetch(ctx context.Context, src sources.Source, ch *store.Chapter, ph Progress) error {
	if ch.Complete() {
		f.log.Infof("Skipping chapter '%s': already downloaded\n", ch)
		if ph != nil {
			ph.MarkDone()
		}
		return nil
	}

	if ch.Current == -1 {
		f.log.Infof("Getting image list for chapter '%s' ...\n", ch)
		images, err := src.Images(ctx, ch.URL)
		if err != nil {
			return fmt.Errorf("image list for '%s': %w", ch, err)
		}
		ch.Images = images
		ch.Current = 0
		if err := ch.Save(); err != nil {
			return err
		}
	}

	total := len(ch.Images)
	width := len(strconv.Itoa(total))
	var bytes int64

	if ph != nil {
		ph.Update(ch.Current, total, 0)
	}

	for i := ch.Current; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		imageURL, err := src.ResolveImage(ctx, ch.Images[i])
		if err != nil {
			return fmt.Errorf("image %d/%d of '%s': %w", i+1, total, ch, err)
		}

		data, err := f.download(ctx, imageURL, ch.URL)
		if err != nil {
			return fmt.Errorf("image %d/%d of '%s': %w", i+1, total, ch, err)
		}

		name := fmt.Sprintf("%0*d%s", width, i+1, detectExt(data))
		if err := os.WriteFile(filepath.Join(ch.Path, name), data, 0644); err != nil {
			return err
		}

		ch.Current = i + 1
		if err := ch.Save(); err != nil {
			return err
		}

		bytes += int64(len(data))
		if ph != nil {
			ph.Update(ch.Current, total, bytes)
		}
		if f.stats != nil {
			f.stats.TotalImages.Add(1)
			f.stats.TotalBytes.Add(int64(len(data)))
		}
	}

	if ph != nil {
		ph.MarkDone()
	}
	if f.stats != nil {
		f.stats.TotalChapters.Add(1)
	}

	return nil
}

// download fetches one image with the bounded retry policy; exhausting
// the bound promotes the failure to ErrTransport.
func (f *Fetcher) download(ctx context.Context, url, referer string) ([]byte, error) {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var data []byte
		data, err = f.downloadOnce(ctx, url, referer)
		if err == nil {
			return data, nil
		}
		f.log.Debugf("attempt %d/%d for %s failed: %v\n", attempt, maxAttempts, url, err)

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}

	return nil, fmt.Errorf("%w: %s: %v", ErrTransport, url, err)
}

func (f *Fetcher) downloadOnce(ctx context.Context, url, referer string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Referer", referer)
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// detectExt sniffs the image format from the file content; the URL is
// not trusted to carry a usable extension.
func detectExt(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	default:
		return ""
	}
}
