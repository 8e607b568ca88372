package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/smd-project/smd/internal/ui"
)

// HeavenManga downloads from heavenmanga.com.
type HeavenManga struct {
	site
}

func NewHeavenManga(client *http.Client, log *ui.Logger) *HeavenManga {
	return &HeavenManga{site{
		name:    "heavenmanga",
		lang:    "es",
		baseURL: "http://heavenmanga.com",
		client:  client,
		log:     log,
	}}
}

// Search queries the site. The site rejects queries shorter than four
// characters.
func (s *HeavenManga) Search(ctx context.Context, query string) ([]Result, error) {
	target := s.baseURL + "/buscar/" + url.QueryEscape(query) + ".html"
	doc, err := s.fetchDOM(ctx, target)
	if err != nil {
		return nil, err
	}

	var out []Result
	doc.Find("div.cont_manga a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		out = append(out, Result{
			Title: text(a.Find("header")),
			URL:   resolveURL(s.baseURL, href),
		})
	})

	return out, nil
}

func (s *HeavenManga) Chapters(ctx context.Context, mangaURL string) ([]Result, error) {
	doc, err := s.fetchDOM(ctx, mangaURL)
	if err != nil {
		return nil, err
	}

	var out []Result
	doc.Find("ul#holder a").Each(func(_ int, a *goquery.Selection) {
		title, _ := a.Attr("title")
		href, _ := a.Attr("href")
		out = append(out, Result{Title: title, URL: resolveURL(mangaURL, href)})
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no chapters found at %s", s.name, mangaURL)
	}

	return reverse(out), nil
}

// Images follows the chapter page to the full-list reader page, which
// carries the page select.
func (s *HeavenManga) Images(ctx context.Context, chapterURL string) ([]string, error) {
	doc, err := s.fetchDOM(ctx, chapterURL)
	if err != nil {
		return nil, err
	}

	readerURL, ok := doc.Find("a#l").First().Attr("href")
	if !ok {
		return nil, fmt.Errorf("%s: no reader link at %s", s.name, chapterURL)
	}
	readerURL = resolveURL(chapterURL, readerURL)

	doc, err = s.fetchDOM(ctx, readerURL)
	if err != nil {
		return nil, err
	}

	var out []string
	doc.Find("select").First().Find("option").Each(func(_ int, opt *goquery.Selection) {
		if v, ok := opt.Attr("value"); ok {
			out = append(out, resolveURL(readerURL, v))
		}
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no image pages found at %s", s.name, chapterURL)
	}

	return out, nil
}

func (s *HeavenManga) ResolveImage(ctx context.Context, ref string) (string, error) {
	doc, err := s.fetchDOM(ctx, ref)
	if err != nil {
		return "", err
	}

	src, ok := doc.Find("img#p").First().Attr("src")
	if !ok {
		return "", fmt.Errorf("%s: no image found at %s", s.name, ref)
	}

	return src, nil
}
