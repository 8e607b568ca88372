package sources

import (
	"net/http"
	"sort"

	"github.com/smd-project/smd/internal/ui"
)

var nineMangaMirrors = []string{"en", "es", "ru", "de", "it", "br"}

// All builds every supported source over the shared client, sorted by
// language then name.
func All(client *http.Client, log *ui.Logger) []Source {
	out := []Source{}
	for _, mirror := range nineMangaMirrors {
		out = append(out, NewNineManga(mirror, client, log))
	}
	out = append(out,
		NewHeavenManga(client, log),
		NewMangaReader(client, log),
		NewMangaAll(client, log),
		NewMangaDoor(client, log),
		NewMangaNelo(client, log),
		NewMangaHere(client, log),
	)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Lang() != out[j].Lang() {
			return out[i].Lang() < out[j].Lang()
		}
		return out[i].Name() < out[j].Name()
	})

	return out
}
