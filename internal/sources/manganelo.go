package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/smd-project/smd/internal/ui"
)

// MangaNelo downloads from manganelo.com.
type MangaNelo struct {
	site
}

func NewMangaNelo(client *http.Client, log *ui.Logger) *MangaNelo {
	return &MangaNelo{site{
		name:    "manganelo",
		lang:    "en",
		baseURL: "https://manganelo.com",
		client:  client,
		log:     log,
	}}
}

// Search posts to the JSON search endpoint. The endpoint wants the
// query words joined by underscores, everything else stripped, and
// answers with HTML-formatted names.
func (s *MangaNelo) Search(ctx context.Context, query string) ([]Result, error) {
	var payload []struct {
		Name         string `json:"name"`
		NameUnsigned string `json:"nameunsigned"`
	}

	form := url.Values{
		"search_style": {"tentruyen"},
		"searchword":   {searchWord(query)},
	}
	if err := s.postJSON(ctx, s.baseURL+"/home_json_search/", form, &payload); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(payload))
	for _, r := range payload {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(r.Name))
		if err != nil {
			return nil, err
		}
		out = append(out, Result{
			Title: text(doc.Selection),
			URL:   s.baseURL + "/manga/" + r.NameUnsigned,
		})
	}

	return out, nil
}

// searchWord strips the query down to its alphanumeric words and joins
// them with underscores, the way the site's own search box does.
func searchWord(query string) string {
	var b strings.Builder
	for _, r := range query {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), "_")
}

func (s *MangaNelo) Chapters(ctx context.Context, mangaURL string) ([]Result, error) {
	doc, err := s.fetchDOM(ctx, mangaURL)
	if err != nil {
		return nil, err
	}

	var out []Result
	doc.Find("div.chapter-list a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		out = append(out, Result{Title: text(a), URL: resolveURL(mangaURL, href)})
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no chapters found at %s", s.name, mangaURL)
	}

	return reverse(out), nil
}

// Images are direct URLs on the chapter page; no resolve step.
func (s *MangaNelo) Images(ctx context.Context, chapterURL string) ([]string, error) {
	doc, err := s.fetchDOM(ctx, chapterURL)
	if err != nil {
		return nil, err
	}

	var out []string
	doc.Find("div#vungdoc img").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok {
			out = append(out, src)
		}
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no images found at %s", s.name, chapterURL)
	}

	return out, nil
}
