package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smd-project/smd/internal/ui"
)

func testMangaNelo(srv *httptest.Server) *MangaNelo {
	return &MangaNelo{site{
		name:    "manganelo",
		lang:    "en",
		baseURL: srv.URL,
		client:  srv.Client(),
		log:     ui.NewLogger(false),
	}}
}

func TestMangaNeloSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/home_json_search/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "tentruyen", r.PostForm.Get("search_style"))
		assert.Equal(t, "attack_on_titan", r.PostForm.Get("searchword"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"name": "<span>Attack</span> on Titan", "nameunsigned": "attack-on-titan"},
			{"name": "Attack on Titan: Before the Fall", "nameunsigned": "attack-on-titan-before-the-fall"}
		]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	got, err := testMangaNelo(srv).Search(context.Background(), "attack on titan!")
	assert.NoError(t, err)
	assert.Equal(t, []Result{
		{Title: "Attack on Titan", URL: srv.URL + "/manga/attack-on-titan"},
		{Title: "Attack on Titan: Before the Fall", URL: srv.URL + "/manga/attack-on-titan-before-the-fall"},
	}, got)
}

func TestSearchWord(t *testing.T) {
	assert.Equal(t, "attack_on_titan", searchWord("attack on titan"))
	assert.Equal(t, "Dr_STONE", searchWord("Dr. STONE!"))
	assert.Equal(t, "86", searchWord("  86--  "))
}

func TestMangaNeloChapters(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/manga/attack-on-titan", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="chapter-list">
			<div class="row"><a href="/chapter/attack-on-titan/chapter-2">Chapter 2</a></div>
			<div class="row"><a href="/chapter/attack-on-titan/chapter-1">Chapter 1</a></div>
		</div></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	got, err := testMangaNelo(srv).Chapters(context.Background(), srv.URL+"/manga/attack-on-titan")
	assert.NoError(t, err)
	assert.Equal(t, []Result{
		{Title: "Chapter 1", URL: srv.URL + "/chapter/attack-on-titan/chapter-1"},
		{Title: "Chapter 2", URL: srv.URL + "/chapter/attack-on-titan/chapter-2"},
	}, got)
}

func TestMangaNeloImages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chapter/attack-on-titan/chapter-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="vungdoc">
			<img src="http://cdn/aot/1/1.jpg">
			<img src="http://cdn/aot/1/2.jpg">
		</div></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := testMangaNelo(srv)
	pages, err := s.Images(context.Background(), srv.URL+"/chapter/attack-on-titan/chapter-1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"http://cdn/aot/1/1.jpg", "http://cdn/aot/1/2.jpg"}, pages)

	// image refs are already direct URLs
	img, err := s.ResolveImage(context.Background(), pages[0])
	assert.NoError(t, err)
	assert.Equal(t, pages[0], img)
}
