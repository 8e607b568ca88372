package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/smd-project/smd/internal/ui"
)

// NineManga downloads from the ninemanga.com mirrors, one per language
// subdomain.
type NineManga struct {
	site
}

// NewNineManga builds the adapter for one mirror; mirror is the
// subdomain (en, es, ru, de, it, br). The br mirror serves Portuguese.
func NewNineManga(mirror string, client *http.Client, log *ui.Logger) *NineManga {
	lang := mirror
	if mirror == "br" {
		lang = "pt"
	}
	return &NineManga{site{
		name:    "ninemanga-" + mirror,
		lang:    lang,
		baseURL: fmt.Sprintf("http://%s.ninemanga.com", mirror),
		client:  client,
		log:     log,
	}}
}

func (s *NineManga) Search(ctx context.Context, query string) ([]Result, error) {
	doc, err := s.fetchDOM(ctx, s.baseURL+"/search/?wd="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}

	results := scrapeBooknames(doc, s.baseURL)

	// Only the few result pages the site links directly.
	var pages []string
	doc.Find("ul.pagelist a").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			pages = append(pages, resolveURL(s.baseURL, href))
		}
	})
	if len(pages) > 2 {
		for _, page := range pages[1 : len(pages)-1] {
			doc, err := s.fetchDOM(ctx, page)
			if err != nil {
				return nil, err
			}
			results = append(results, scrapeBooknames(doc, s.baseURL)...)
		}
	}

	return results, nil
}

func scrapeBooknames(doc *goquery.Document, base string) []Result {
	var out []Result
	doc.Find("ul.direlist a.bookname").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		out = append(out, Result{Title: text(a), URL: resolveURL(base, href)})
	})
	return out
}

func (s *NineManga) Chapters(ctx context.Context, mangaURL string) ([]Result, error) {
	doc, err := s.fetchDOM(ctx, mangaURL)
	if err != nil {
		return nil, err
	}

	// Adult-content warning interstitial links the real chapter list.
	if warn := doc.Find("div.warning a").First(); warn.Length() > 0 {
		if href, ok := warn.Attr("href"); ok {
			if doc, err = s.fetchDOM(ctx, resolveURL(mangaURL, href)); err != nil {
				return nil, err
			}
		}
	}

	var out []Result
	doc.Find("div.silde a.chapter_list_a").Each(func(_ int, a *goquery.Selection) {
		title, _ := a.Attr("title")
		href, _ := a.Attr("href")
		out = append(out, Result{Title: title, URL: resolveURL(mangaURL, href)})
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no chapters found at %s", s.name, mangaURL)
	}

	return reverse(out), nil
}

func (s *NineManga) Images(ctx context.Context, chapterURL string) ([]string, error) {
	doc, err := s.fetchDOM(ctx, chapterURL)
	if err != nil {
		return nil, err
	}

	var out []string
	doc.Find("select#page option").Each(func(_ int, opt *goquery.Selection) {
		if v, ok := opt.Attr("value"); ok {
			out = append(out, s.baseURL+v)
		}
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no image pages found at %s", s.name, chapterURL)
	}

	return out, nil
}

// ResolveImage fetches the viewer page an image reference points at
// and extracts the actual image URL.
func (s *NineManga) ResolveImage(ctx context.Context, ref string) (string, error) {
	doc, err := s.fetchDOM(ctx, ref)
	if err != nil {
		return "", err
	}

	src, ok := doc.Find("img.manga_pic").First().Attr("src")
	if !ok {
		return "", fmt.Errorf("%s: no image found at %s", s.name, ref)
	}

	return src, nil
}
