package sources

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/smd-project/smd/internal/ui"
	"github.com/smd-project/smd/internal/util"
)

// site carries what every adapter needs: identity, base URL and the
// shared HTTP client. Adapters embed it.
type site struct {
	name    string
	lang    string
	baseURL string
	client  *http.Client
	log     *ui.Logger
}

func (s *site) Name() string { return s.name }
func (s *site) Lang() string { return s.lang }

// ResolveImage is the identity by default; adapters whose image lists
// point at viewer pages override it.
func (s *site) ResolveImage(_ context.Context, ref string) (string, error) {
	return ref, nil
}

func (s *site) fetchDOM(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", s.baseURL)

	resp, err := util.DoWithRetry(s.client, req, 3, 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	return goquery.NewDocumentFromReader(resp.Body)
}

func (s *site) fetchBody(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Referer", s.baseURL)

	resp, err := util.DoWithRetry(s.client, req, 3, 500*time.Millisecond)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	return string(data), err
}

func (s *site) fetchJSON(ctx context.Context, target string, v any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Referer", s.baseURL)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := util.DoWithRetry(s.client, req, 3, 500*time.Millisecond)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	return json.NewDecoder(resp.Body).Decode(v)
}

// postJSON sends a form-encoded POST and decodes the JSON response.
func (s *site) postJSON(ctx context.Context, target string, form url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, "POST", target, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Referer", s.baseURL)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := util.DoWithRetry(s.client, req, 3, 500*time.Millisecond)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	return json.NewDecoder(resp.Body).Decode(v)
}

// resolveURL makes href absolute against base.
func resolveURL(base, href string) string {
	if href == "" {
		return base
	}

	u, err := url.Parse(href)
	if err == nil && u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(base)
	if err != nil {
		return href
	}

	return b.ResolveReference(u).String()
}

// text extracts a selection's text with newlines collapsed and
// surrounding whitespace trimmed.
func text(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// reverse flips a chapter list in place; sites list newest first, the
// rest of the system expects oldest first.
func reverse(rs []Result) []Result {
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
	return rs
}
