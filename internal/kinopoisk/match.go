package kinopoisk

import "strings"

// trailingStrip is the set of Russian vowels plus the soft sign removed from
// the tail of each query word before matching. Stripping them approximates a
// stem, so "комедии" still matches "комедия".
const trailingStrip = "аеёиоуыэюяь"

// MatchesTitle reports whether a candidate name matches free-text query
// input: some whitespace-delimited query word, with its trailing vowels and
// soft sign stripped, must appear as a substring of the lowercased name.
// This is deliberately fuzzy, not a full-query substring check.
func MatchesTitle(query, name string) bool {
	loweredName := strings.ToLower(name)
	for _, word := range strings.Fields(strings.ToLower(query)) {
		stem := strings.TrimRight(word, trailingStrip)
		if stem == "" {
			stem = word
		}
		if strings.Contains(loweredName, stem) {
			return true
		}
	}
	return false
}

// HasDescription reports whether a catalog item carries at least one of the
// two description fields. Items with neither are incomplete catalog entries
// and are dropped before dedup and storage.
func HasDescription(d Doc) bool {
	return d.ShortDescription != "" || d.Description != ""
}

// FilterByTitle keeps the docs whose names fuzzily match the query and which
// carry a description.
func FilterByTitle(query string, docs []Doc) []Doc {
	out := make([]Doc, 0, len(docs))
	for _, d := range docs {
		if HasDescription(d) && MatchesTitle(query, d.Name) {
			out = append(out, d)
		}
	}
	return out
}

// FilterDescribed keeps only the docs carrying a description; applied to
// every search before results are persisted or shown.
func FilterDescribed(docs []Doc) []Doc {
	out := make([]Doc, 0, len(docs))
	for _, d := range docs {
		if HasDescription(d) {
			out = append(out, d)
		}
	}
	return out
}

// JoinNames renders a Named list as the comma-joined display string stored
// with movie rows.
func JoinNames(items []Named) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return strings.Join(names, ", ")
}
