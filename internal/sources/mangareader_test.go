package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smd-project/smd/internal/ui"
)

func testMangaReader(srv *httptest.Server) *MangaReader {
	return &MangaReader{site{
		name:    "mangareader",
		lang:    "en",
		baseURL: srv.URL,
		client:  srv.Client(),
		log:     ui.NewLogger(false),
	}}
}

func TestMangaReaderSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/actions/search/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "death note", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(
			"death-note.jpg|1437|Death Note|Action|/death-note|completed\n" +
				"garbage line\n" +
				"dn-special.jpg|1438|Death Note Special|Drama|/death-note-special|completed\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	got, err := testMangaReader(srv).Search(context.Background(), "death note")
	assert.NoError(t, err)
	assert.Equal(t, []Result{
		{Title: "Death Note", URL: srv.URL + "/death-note"},
		{Title: "Death Note Special", URL: srv.URL + "/death-note-special"},
	}, got)
}

func TestMangaReaderChaptersAndImages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/death-note", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><table id="listing">
			<tr><td><a href="/death-note/1">Death Note 1</a></td></tr>
			<tr><td><a href="/death-note/2">Death Note 2</a></td></tr>
		</table></body></html>`))
	})
	mux.HandleFunc("/death-note/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<select id="pageMenu">
				<option value="/death-note/1">1</option>
				<option value="/death-note/1/2">2</option>
			</select>
			<img id="img" src="http://cdn/dn/1/1.jpg">
		</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := testMangaReader(srv)

	chapters, err := s.Chapters(context.Background(), srv.URL+"/death-note")
	assert.NoError(t, err)
	assert.Len(t, chapters, 2)
	// the listing is already oldest first
	assert.Equal(t, "Death Note 1", chapters[0].Title)
	assert.Equal(t, srv.URL+"/death-note/1", chapters[0].URL)

	pages, err := s.Images(context.Background(), chapters[0].URL)
	assert.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/death-note/1", srv.URL + "/death-note/1/2"}, pages)

	img, err := s.ResolveImage(context.Background(), pages[0])
	assert.NoError(t, err)
	assert.Equal(t, "http://cdn/dn/1/1.jpg", img)
}
