package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smd-project/smd/internal/ui"
)

func testHeavenManga(srv *httptest.Server) *HeavenManga {
	return &HeavenManga{site{
		name:    "heavenmanga",
		lang:    "es",
		baseURL: srv.URL,
		client:  srv.Client(),
		log:     ui.NewLogger(false),
	}}
}

func TestHeavenMangaSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/buscar/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/buscar/naruto.html", r.URL.Path)
		_, _ = w.Write([]byte(`<html><body>
			<div class="cont_manga"><a href="/manga/naruto"><header>Naruto</header></a></div>
			<div class="cont_manga"><a href="/manga/naruto-gaiden"><header>Naruto Gaiden</header></a></div>
		</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	got, err := testHeavenManga(srv).Search(context.Background(), "naruto")
	assert.NoError(t, err)
	assert.Equal(t, []Result{
		{Title: "Naruto", URL: srv.URL + "/manga/naruto"},
		{Title: "Naruto Gaiden", URL: srv.URL + "/manga/naruto-gaiden"},
	}, got)
}

func TestHeavenMangaChapters(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/manga/naruto", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><ul id="holder">
			<li><a title="Naruto 2" href="/manga/naruto/2">2</a></li>
			<li><a title="Naruto 1" href="/manga/naruto/1">1</a></li>
		</ul></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	got, err := testHeavenManga(srv).Chapters(context.Background(), srv.URL+"/manga/naruto")
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	// newest-first site order comes back oldest first
	assert.Equal(t, "Naruto 1", got[0].Title)
	assert.Equal(t, srv.URL+"/manga/naruto/1", got[0].URL)
}

func TestHeavenMangaImagesAndResolve(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/manga/naruto/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a id="l" href="/leer/naruto/1">read all</a>
		</body></html>`))
	})
	mux.HandleFunc("/leer/naruto/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><select>
			<option value="/leer/naruto/1/p1">1</option>
			<option value="/leer/naruto/1/p2">2</option>
		</select></body></html>`))
	})
	mux.HandleFunc("/leer/naruto/1/p2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<img id="p" src="http://cdn/naruto/1/2.jpg">
		</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := testHeavenManga(srv)
	pages, err := s.Images(context.Background(), srv.URL+"/manga/naruto/1")
	assert.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + "/leer/naruto/1/p1",
		srv.URL + "/leer/naruto/1/p2",
	}, pages)

	img, err := s.ResolveImage(context.Background(), pages[1])
	assert.NoError(t, err)
	assert.Equal(t, "http://cdn/naruto/1/2.jpg", img)
}
