package session

import (
	"sync"
	"testing"

	"github.com/ndorokhov/go-movie-bot/internal/domain"
)

func TestEnsureFiltersSetIfAbsent(t *testing.T) {
	var d Data
	acc := d.EnsureFilters()
	if acc == nil {
		t.Fatalf("EnsureFilters returned nil")
	}
	acc.PickType("movie")

	// Re-entering the sub-flow must keep prior picks.
	again := d.EnsureFilters()
	if again != acc {
		t.Fatalf("EnsureFilters replaced an existing accumulator")
	}
	if len(again.Types) != 1 || again.Types[0] != "movie" {
		t.Fatalf("prior picks lost: %v", again.Types)
	}
}

func TestResetClearsEverything(t *testing.T) {
	var d Data
	d.State = StateBrowsing
	d.EnsureFilters().PickType("movie")
	d.StartBrowse(&Browse{List: []domain.Movie{{MovieID: "1"}}, Index: 1})
	d.Reset()
	if d.State != StateNone || d.Filters != nil || d.Browse != nil || d.History != nil {
		t.Fatalf("Reset left state behind: %+v", d)
	}
}

func TestBrowseCurrentBounds(t *testing.T) {
	var b *Browse
	if _, ok := b.Current(); ok {
		t.Fatalf("nil browse reported a current movie")
	}
	b = &Browse{List: []domain.Movie{{MovieID: "1"}, {MovieID: "2"}}}
	for _, idx := range []int{0, 3} {
		b.Index = idx
		if _, ok := b.Current(); ok {
			t.Fatalf("index %d reported in range", idx)
		}
	}
	b.Index = 2
	m, ok := b.Current()
	if !ok || m.MovieID != "2" {
		t.Fatalf("Current() = %v %v, want movie 2", m, ok)
	}
}

func TestStoreAcquirePersistsMutations(t *testing.T) {
	s := NewStore()
	key := Key{UserID: "7", ChatID: 42}

	d, release := s.Acquire(key)
	d.State = StateTitleEntry
	release()

	d, release = s.Acquire(key)
	defer release()
	if d.State != StateTitleEntry {
		t.Fatalf("State = %v, want title_entry", d.State)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestStoreSerializesPerKey(t *testing.T) {
	s := NewStore()
	key := Key{UserID: "7", ChatID: 42}

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, release := s.Acquire(key)
			d.EnsureFilters().MarkGenreExclude()
			release()
		}()
	}
	wg.Wait()

	d, release := s.Acquire(key)
	defer release()
	if got := len(d.Filters.Genres); got != n {
		t.Fatalf("genre markers = %d, want %d", got, n)
	}
}
