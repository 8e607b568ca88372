package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/smd-project/smd/internal/ui"
)

// MangaReader downloads from www.mangareader.net.
type MangaReader struct {
	site
}

func NewMangaReader(client *http.Client, log *ui.Logger) *MangaReader {
	return &MangaReader{site{
		name:    "mangareader",
		lang:    "en",
		baseURL: "https://www.mangareader.net",
		client:  client,
		log:     log,
	}}
}

// Search hits the plain-text suggestion endpoint, one pipe-delimited
// record per line.
func (s *MangaReader) Search(ctx context.Context, query string) ([]Result, error) {
	target := fmt.Sprintf("%s/actions/search/?q=%s&limit=100",
		s.baseURL, url.QueryEscape(query))
	body, err := s.fetchBody(ctx, target)
	if err != nil {
		return nil, err
	}

	var out []Result
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) != 6 {
			s.log.Warnf("%s: unknown search line format: %s\n", s.name, line)
			continue
		}
		out = append(out, Result{
			Title: fields[2],
			URL:   s.baseURL + fields[len(fields)-2],
		})
	}

	return out, nil
}

func (s *MangaReader) Chapters(ctx context.Context, mangaURL string) ([]Result, error) {
	doc, err := s.fetchDOM(ctx, mangaURL)
	if err != nil {
		return nil, err
	}

	var out []Result
	doc.Find("table#listing a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		out = append(out, Result{Title: text(a), URL: s.baseURL + href})
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no chapters found at %s", s.name, mangaURL)
	}

	// The listing is already oldest first.
	return out, nil
}

func (s *MangaReader) Images(ctx context.Context, chapterURL string) ([]string, error) {
	doc, err := s.fetchDOM(ctx, chapterURL)
	if err != nil {
		return nil, err
	}

	var out []string
	doc.Find("select#pageMenu option").Each(func(_ int, opt *goquery.Selection) {
		if v, ok := opt.Attr("value"); ok {
			out = append(out, s.baseURL+v)
		}
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no image pages found at %s", s.name, chapterURL)
	}

	return out, nil
}

func (s *MangaReader) ResolveImage(ctx context.Context, ref string) (string, error) {
	doc, err := s.fetchDOM(ctx, ref)
	if err != nil {
		return "", err
	}

	src, ok := doc.Find("img#img").First().Attr("src")
	if !ok {
		return "", fmt.Errorf("%s: no image found at %s", s.name, ref)
	}

	return src, nil
}
