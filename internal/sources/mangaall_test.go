package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smd-project/smd/internal/ui"
)

func testMangaAll(srv *httptest.Server) *MangaAll {
	return &MangaAll{site{
		name:    "mangaall",
		lang:    "en",
		baseURL: srv.URL,
		client:  srv.Client(),
		log:     ui.NewLogger(false),
	}}
}

func TestMangaAllSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "one piece", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`<html><body><div class="mainpage-manga">
			<div class="media-body"><a title="One Piece" href="/manga/one-piece/">One Piece</a></div>
		</div></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	got, err := testMangaAll(srv).Search(context.Background(), "one piece")
	assert.NoError(t, err)
	assert.Equal(t, []Result{
		{Title: "One Piece", URL: srv.URL + "/manga/one-piece/"},
	}, got)
}

func TestMangaAllChapters(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/manga/one-piece/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><section id="examples">
			<a title="Chapter 2" href="/manga/one-piece/2/">2</a>
			<a title="Chapter 1" href="/manga/one-piece/1/">1</a>
		</section></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	got, err := testMangaAll(srv).Chapters(context.Background(), srv.URL+"/manga/one-piece/")
	assert.NoError(t, err)
	assert.Equal(t, []Result{
		{Title: "Chapter 1", URL: srv.URL + "/manga/one-piece/1/"},
		{Title: "Chapter 2", URL: srv.URL + "/manga/one-piece/2/"},
	}, got)
}

func TestMangaAllImagesAndResolve(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/manga/one-piece/1/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "3" {
			_, _ = w.Write([]byte(`<html><body><div class="each-page">
				<img src="http://cdn/one-piece/1/3.jpg">
			</div></body></html>`))
			return
		}
		_, _ = w.Write([]byte(`<html><body>
			<script>var _page_total = '12';</script>
			<script>var _page_total = '3';</script>
		</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := testMangaAll(srv)
	chapterURL := srv.URL + "/manga/one-piece/1/"
	pages, err := s.Images(context.Background(), chapterURL)
	assert.NoError(t, err)
	// the last declared total wins
	assert.Equal(t, []string{
		chapterURL + "?page=1",
		chapterURL + "?page=2",
		chapterURL + "?page=3",
	}, pages)

	img, err := s.ResolveImage(context.Background(), pages[2])
	assert.NoError(t, err)
	assert.Equal(t, "http://cdn/one-piece/1/3.jpg", img)
}
