package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/smd-project/smd/internal/ui"
)

// MangaDoor downloads from mangadoor.com.
type MangaDoor struct {
	site
}

func NewMangaDoor(client *http.Client, log *ui.Logger) *MangaDoor {
	return &MangaDoor{site{
		name:    "mangadoor",
		lang:    "es",
		baseURL: "http://mangadoor.com",
		client:  client,
		log:     log,
	}}
}

func (s *MangaDoor) Search(ctx context.Context, query string) ([]Result, error) {
	var payload struct {
		Suggestions []struct {
			Value string `json:"value"`
			Data  string `json:"data"`
		} `json:"suggestions"`
	}

	target := s.baseURL + "/search/?query=" + url.QueryEscape(query)
	if err := s.fetchJSON(ctx, target, &payload); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(payload.Suggestions))
	for _, sugg := range payload.Suggestions {
		out = append(out, Result{
			Title: sugg.Value,
			URL:   s.baseURL + "/manga/" + sugg.Data,
		})
	}

	return out, nil
}

func (s *MangaDoor) Chapters(ctx context.Context, mangaURL string) ([]Result, error) {
	doc, err := s.fetchDOM(ctx, mangaURL)
	if err != nil {
		return nil, err
	}

	var out []Result
	doc.Find("ul.chapters a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		out = append(out, Result{Title: text(a), URL: resolveURL(mangaURL, href)})
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no chapters found at %s", s.name, mangaURL)
	}

	return reverse(out), nil
}

func (s *MangaDoor) Images(ctx context.Context, chapterURL string) ([]string, error) {
	doc, err := s.fetchDOM(ctx, chapterURL)
	if err != nil {
		return nil, err
	}

	var out []string
	doc.Find("select#page-list option").Each(func(_ int, opt *goquery.Selection) {
		if v, ok := opt.Attr("value"); ok {
			out = append(out, chapterURL+"/"+v)
		}
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no image pages found at %s", s.name, chapterURL)
	}

	return out, nil
}

func (s *MangaDoor) ResolveImage(ctx context.Context, ref string) (string, error) {
	doc, err := s.fetchDOM(ctx, ref)
	if err != nil {
		return "", err
	}

	src, ok := doc.Find("div#ppp img").First().Attr("src")
	if !ok {
		return "", fmt.Errorf("%s: no image found at %s", s.name, ref)
	}

	return src, nil
}
