package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/smd-project/smd/internal/ui"
)

// MangaAll downloads from mangaall.net.
type MangaAll struct {
	site
}

// pageTotalRe extracts the page count the reader script embeds.
var pageTotalRe = regexp.MustCompile(`var _page_total = '([0-9]+)';`)

func NewMangaAll(client *http.Client, log *ui.Logger) *MangaAll {
	return &MangaAll{site{
		name:    "mangaall",
		lang:    "en",
		baseURL: "http://mangaall.net",
		client:  client,
		log:     log,
	}}
}

func (s *MangaAll) Search(ctx context.Context, query string) ([]Result, error) {
	target := s.baseURL + "/search/?q=" + url.QueryEscape(query)
	doc, err := s.fetchDOM(ctx, target)
	if err != nil {
		return nil, err
	}

	// Only the first result page; the site paginates the rest.
	var out []Result
	doc.Find("div.mainpage-manga div.media-body a").Each(func(_ int, a *goquery.Selection) {
		title, _ := a.Attr("title")
		href, _ := a.Attr("href")
		out = append(out, Result{Title: title, URL: resolveURL(s.baseURL, href)})
	})

	return out, nil
}

func (s *MangaAll) Chapters(ctx context.Context, mangaURL string) ([]Result, error) {
	doc, err := s.fetchDOM(ctx, mangaURL)
	if err != nil {
		return nil, err
	}

	var out []Result
	doc.Find("section#examples a").Each(func(_ int, a *goquery.Selection) {
		title, _ := a.Attr("title")
		href, _ := a.Attr("href")
		out = append(out, Result{Title: title, URL: resolveURL(mangaURL, href)})
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no chapters found at %s", s.name, mangaURL)
	}

	return reverse(out), nil
}

// Images derives the page URLs from the page total the reader script
// declares; pages are ?page=1..N on the chapter URL.
func (s *MangaAll) Images(ctx context.Context, chapterURL string) ([]string, error) {
	doc, err := s.fetchDOM(ctx, chapterURL)
	if err != nil {
		return nil, err
	}

	// The reader script declares the total more than once; the last
	// declaration is the effective one.
	total := 0
	doc.Find("script").Each(func(_ int, script *goquery.Selection) {
		matches := pageTotalRe.FindAllStringSubmatch(script.Text(), -1)
		if len(matches) > 0 {
			total, _ = strconv.Atoi(matches[len(matches)-1][1])
		}
	})
	if total == 0 {
		return nil, fmt.Errorf("%s: no image pages found at %s", s.name, chapterURL)
	}

	out := make([]string, 0, total)
	for n := 1; n <= total; n++ {
		out = append(out, fmt.Sprintf("%s?page=%d", chapterURL, n))
	}

	return out, nil
}

func (s *MangaAll) ResolveImage(ctx context.Context, ref string) (string, error) {
	doc, err := s.fetchDOM(ctx, ref)
	if err != nil {
		return "", err
	}

	src, ok := doc.Find("div.each-page img").First().Attr("src")
	if !ok {
		return "", fmt.Errorf("%s: no image found at %s", s.name, ref)
	}

	return src, nil
}
