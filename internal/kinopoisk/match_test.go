package kinopoisk

import "testing"

func TestMatchesTitle(t *testing.T) {
	tests := []struct {
		name  string
		query string
		title string
		want  bool
	}{
		{"exact word", "брат", "Брат", true},
		{"trailing vowel stripped", "зелёная миля", "Зелёная миля", true},
		{"inflected form matches stem", "комедии", "Комедия строгого режима", true},
		{"one matching word suffices", "старики разбойники", "Старик Хоттабыч", true},
		{"no word matches", "титаник", "Брат", false},
		{"case insensitive", "МАТРИЦА", "матрица", true},
		{"all-vowel word kept whole", "я", "Я шагаю по Москве", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := MatchesTitle(tc.query, tc.title); got != tc.want {
				t.Fatalf("MatchesTitle(%q, %q) = %v, want %v", tc.query, tc.title, got, tc.want)
			}
		})
	}
}

func TestFilterByTitleDropsUndescribed(t *testing.T) {
	docs := []Doc{
		{Name: "Брат", ShortDescription: "x"},
		{Name: "Брат 2"}, // no descriptions at all
		{Name: "Сестры", Description: "y"},
	}
	got := FilterByTitle("брат", docs)
	if len(got) != 1 || got[0].Name != "Брат" {
		t.Fatalf("FilterByTitle = %+v", got)
	}
}

func TestFilterDescribed(t *testing.T) {
	docs := []Doc{
		{Name: "a", Description: "d"},
		{Name: "b"},
		{Name: "c", ShortDescription: "s"},
	}
	if got := FilterDescribed(docs); len(got) != 2 {
		t.Fatalf("FilterDescribed kept %d, want 2", len(got))
	}
}
