package recommend

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovieUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Movie
	}{
		{
			name: "full object",
			in:   `{"title":"Inception","poster_path":"/abc.jpg","overview":"Dreams.","genres":"Action, Science Fiction, Adventure","release_year":2010,"vote_average":8.4}`,
			want: Movie{Title: "Inception", PosterPath: "/abc.jpg", Overview: "Dreams.", Genres: "Action, Science Fiction, Adventure", ReleaseYear: 2010, VoteAverage: 8.4},
		},
		{
			name: "bare string",
			in:   `" Heat "`,
			want: Movie{Title: "Heat"},
		},
		{
			name: "nulls",
			in:   `{"title":"Heat","poster_path":null,"overview":null,"genres":null,"release_year":null,"vote_average":null}`,
			want: Movie{Title: "Heat"},
		},
		{
			name: "float year and string rating",
			in:   `{"title":"Alien","release_year":1979.0,"vote_average":"8.1"}`,
			want: Movie{Title: "Alien", ReleaseYear: 1979, VoteAverage: 8.1},
		},
		{
			name: "genre list",
			in:   `{"title":"Up","genres":["Animation","Family"]}`,
			want: Movie{Title: "Up", Genres: "Animation, Family"},
		},
		{
			name: "null",
			in:   `null`,
			want: Movie{},
		},
		{
			name: "number item",
			in:   `1`,
			want: Movie{},
		},
		{
			name: "bool item",
			in:   `true`,
			want: Movie{},
		},
		{
			name: "array item",
			in:   `["Heat"]`,
			want: Movie{},
		},
		{
			name: "year out of range",
			in:   `{"title":"A","release_year":1e30}`,
			want: Movie{Title: "A"},
		},
		{
			name: "negative year",
			in:   `{"title":"A","release_year":-5}`,
			want: Movie{Title: "A"},
		},
		{
			name: "five digit year string",
			in:   `{"title":"A","release_year":"12000"}`,
			want: Movie{Title: "A"},
		},
		{
			name: "year upper bound",
			in:   `{"title":"A","release_year":9999}`,
			want: Movie{Title: "A", ReleaseYear: 9999},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Movie
			require.NoError(t, json.Unmarshal([]byte(tt.in), &m))
			assert.Equal(t, tt.want, m)
		})
	}
}

func TestResponseNormalisation(t *testing.T) {
	in := `{"recommended":["Heat",{"title":"Ronin","release_year":1998},{"overview":"no title"},"",null],"corrected_title":" Heat "}`
	var r Response
	require.NoError(t, json.Unmarshal([]byte(in), &r))

	assert.Equal(t, []string{"Heat", "Ronin"}, r.Titles())
	assert.Equal(t, 1998, r.Recommended[1].ReleaseYear)
	assert.Equal(t, "Heat", r.CorrectedTitle)
}

func TestResponseSkipsNonMovieItems(t *testing.T) {
	for _, in := range []string{
		`{"recommended":[1,"Tenet"]}`,
		`{"recommended":[true,"Tenet",{"x":[1,2]},[3]]}`,
	} {
		var r Response
		require.NoError(t, json.Unmarshal([]byte(in), &r), in)
		assert.Equal(t, []string{"Tenet"}, r.Titles(), in)
	}
}

func TestResponseMissingList(t *testing.T) {
	var r Response
	require.NoError(t, json.Unmarshal([]byte(`{"corrected_title":"Heat"}`), &r))
	assert.Empty(t, r.Recommended)
	assert.NotNil(t, r.Recommended)
}

func TestGenreList(t *testing.T) {
	m := Movie{Genres: "Action, Science Fiction, Adventure"}
	assert.Equal(t, []string{"Action", "Science Fiction"}, m.GenreList(2))
	assert.Equal(t, []string{"Action", "Science Fiction", "Adventure"}, m.GenreList(0))
	assert.Nil(t, Movie{}.GenreList(2))
	assert.Equal(t, []string{"Drama"}, Movie{Genres: "Drama"}.GenreList(2))
}

func TestHasRating(t *testing.T) {
	assert.False(t, Movie{}.HasRating())
	assert.True(t, Movie{VoteAverage: 7.8}.HasRating())
}

func TestNewRequest(t *testing.T) {
	r := NewRequest("  The Matrix\t", 0.6)
	assert.Equal(t, "The Matrix", r.Title)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"The Matrix","similarity_threshold":0.6}`, string(b))
}
