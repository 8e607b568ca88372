package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/smd-project/smd/internal/ui"
)

// MangaHere downloads from www.mangahere.cc.
type MangaHere struct {
	site
}

func NewMangaHere(client *http.Client, log *ui.Logger) *MangaHere {
	return &MangaHere{site{
		name:    "mangahere",
		lang:    "en",
		baseURL: "http://www.mangahere.cc",
		client:  client,
		log:     log,
	}}
}

// Search hits the suggestion endpoint, which answers with parallel
// title and protocol-relative URL lists.
func (s *MangaHere) Search(ctx context.Context, query string) ([]Result, error) {
	var payload struct {
		Suggestions []string `json:"suggestions"`
		Data        []string `json:"data"`
	}

	target := s.baseURL + "/ajax/search.php?query=" + url.QueryEscape(query)
	if err := s.fetchJSON(ctx, target, &payload); err != nil {
		return nil, err
	}

	var out []Result
	for i, title := range payload.Suggestions {
		if i >= len(payload.Data) {
			break
		}
		out = append(out, Result{Title: title, URL: resolveURL(s.baseURL, payload.Data[i])})
	}

	return out, nil
}

func (s *MangaHere) Chapters(ctx context.Context, mangaURL string) ([]Result, error) {
	doc, err := s.fetchDOM(ctx, mangaURL)
	if err != nil {
		return nil, err
	}

	var out []Result
	doc.Find("div.detail_list ul a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		out = append(out, Result{Title: text(a), URL: resolveURL(mangaURL, href)})
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no chapters found at %s", s.name, mangaURL)
	}

	return reverse(out), nil
}

func (s *MangaHere) Images(ctx context.Context, chapterURL string) ([]string, error) {
	doc, err := s.fetchDOM(ctx, chapterURL)
	if err != nil {
		return nil, err
	}

	var out []string
	doc.Find("select.wid60").First().Find("option").Each(func(_ int, opt *goquery.Selection) {
		if text(opt) == "Featured" {
			return
		}
		if v, ok := opt.Attr("value"); ok {
			out = append(out, resolveURL(chapterURL, v))
		}
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no image pages found at %s", s.name, chapterURL)
	}

	return out, nil
}

func (s *MangaHere) ResolveImage(ctx context.Context, ref string) (string, error) {
	doc, err := s.fetchDOM(ctx, ref)
	if err != nil {
		return "", err
	}

	src, ok := doc.Find("img#image").First().Attr("src")
	if !ok {
		return "", fmt.Errorf("%s: no image found at %s", s.name, ref)
	}

	return src, nil
}
