package tmdb

import "testing"

func FuzzParseDetails(f *testing.F) {
	f.Add("The Matrix", "Matrix", "1999-03-30", 136, "/poster.jpg", int64(63000000))
	f.Add("", "", "", 0, "", int64(0))

	f.Fuzz(func(t *testing.T, original, title, released string, runtime int, poster string, budget int64) {
		md, err := parseDetails(movieDetails{
			OriginalTitle: original,
			Title:         title,
			ReleaseDate:   released,
			Runtime:       &runtime,
			PosterPath:    &poster,
			Budget:        budget,
			Genres:        []genre{{ID: 1, Name: "Drama"}},
		})
		if err != nil {
			if released == "" {
				t.Fatalf("empty release date must not fail: %v", err)
			}
			return
		}
		if md.Title.Original != original {
			t.Fatalf("original title changed")
		}
		if md.Title.German != nil && *md.Title.German == "" {
			t.Fatalf("empty german title kept")
		}
		if md.Runtime != nil && *md.Runtime == 0 {
			t.Fatalf("zero runtime kept")
		}
		if md.PosterURL != nil && *md.PosterURL == "" {
			t.Fatalf("empty poster kept")
		}
		if len(md.Genres) != 1 || *md.Budget != budget {
			t.Fatalf("unexpected metadata %+v", md)
		}
	})
}
