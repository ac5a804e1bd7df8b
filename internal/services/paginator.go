// Package services – Paginator
//
// This file implements the pagination engine: the mapping between the
// logical browsing position (current item, local window, remote page) and
// the underlying result lists, including remote continuation fetches and
// safe shrinking when mutations remove items mid-browse.
package services

import (
	"context"

	"github.com/ndorokhov/go-movie-bot/internal/domain"
	"github.com/ndorokhov/go-movie-bot/internal/session"
)

// View is one rendered pagination step.
type View struct {
	Movie   domain.Movie
	HasPrev bool
	HasNext bool

	// Boundary marks the terminal "all results shown" notice: the forward
	// edge with no further remote pages. A normal state, not an error.
	Boundary bool

	// Empty marks the "nothing left in this section" notice shown when
	// mutations removed every item of the window.
	Empty bool
}

// Paginator advances a browsing window, fetching further remote pages
// through the search service when the local window is exhausted.
type Paginator struct {
	Search *SearchService
}

// NewPaginator constructs a Paginator.
func NewPaginator(search *SearchService) *Paginator {
	return &Paginator{Search: search}
}

// Current renders the window at its present position without moving it.
func (p *Paginator) Current(b *session.Browse) (View, error) {
	if b == nil {
		return View{}, ErrBrowsingExpired
	}
	if len(b.List) == 0 {
		return View{Empty: true}, nil
	}
	m, ok := b.Current()
	if !ok {
		return View{}, ErrBrowsingExpired
	}
	return View{Movie: m, HasPrev: p.hasPrev(b), HasNext: p.hasNext(b)}, nil
}

// Advance moves the cursor one item forward or backward. Exhausting the
// local window triggers a fresh remote fetch (never the cache-lookup path)
// when continuation inputs exist and remote pages remain; otherwise the
// forward edge yields the Boundary view and the backward edge stays put.
func (p *Paginator) Advance(ctx context.Context, b *session.Browse, forward bool) (View, error) {
	if b == nil {
		return View{}, ErrBrowsingExpired
	}
	if len(b.List) == 0 {
		return View{Empty: true}, nil
	}
	if forward {
		return p.forward(ctx, b)
	}
	return p.backward(ctx, b)
}

func (p *Paginator) forward(ctx context.Context, b *session.Browse) (View, error) {
	if b.Index < len(b.List) {
		b.Index++
		return p.Current(b)
	}
	if !p.canContinue(b) {
		return View{Boundary: true}, nil
	}
	movies, pages, err := p.fetchRemote(ctx, b, b.RemoteOffset+1)
	if err != nil {
		return View{}, err
	}
	if len(movies) == 0 {
		// The service reported more pages but the next batch filtered down
		// to nothing. The window never materialized it, so the offset stays
		// where the user is; clamping the page count records exhaustion.
		b.RemotePages = b.RemoteOffset
		return View{Boundary: true}, nil
	}
	b.List = movies
	b.Index = 1
	b.RemoteOffset++
	if pages > 0 {
		b.RemotePages = pages
	}
	return p.Current(b)
}

func (p *Paginator) backward(ctx context.Context, b *session.Browse) (View, error) {
	if b.Index > 1 {
		b.Index--
		return p.Current(b)
	}
	if b.RemoteOffset <= 1 || !p.hasContinuationInputs(b) {
		// Absolute start; the prev button should not have been offered.
		return p.Current(b)
	}
	movies, _, err := p.fetchRemote(ctx, b, b.RemoteOffset-1)
	if err != nil {
		return View{}, err
	}
	if len(movies) == 0 {
		return p.Current(b)
	}
	b.List = movies
	b.Index = len(movies)
	b.RemoteOffset--
	return p.Current(b)
}

// RemoveCurrent splices the item at the cursor out of the window, clamping
// the index so rendering never runs against an out-of-range position. It
// returns the Empty view when nothing is left.
func (p *Paginator) RemoveCurrent(b *session.Browse) (View, error) {
	if b == nil {
		return View{}, ErrBrowsingExpired
	}
	if b.Index < 1 || b.Index > len(b.List) {
		return View{Empty: true}, nil
	}
	b.List = append(b.List[:b.Index-1], b.List[b.Index:]...)
	if len(b.List) == 0 {
		b.Index = 0
		return View{Empty: true}, nil
	}
	if b.Index > len(b.List) {
		b.Index = len(b.List)
	}
	return p.Current(b)
}

// ReplaceList swaps the window contents from a durable requery, keeping the
// cursor in range.
func (p *Paginator) ReplaceList(b *session.Browse, movies []domain.Movie) (View, error) {
	if b == nil {
		return View{}, ErrBrowsingExpired
	}
	b.List = movies
	if len(movies) == 0 {
		b.Index = 0
		return View{Empty: true}, nil
	}
	if b.Index < 1 {
		b.Index = 1
	}
	if b.Index > len(movies) {
		b.Index = len(movies)
	}
	return p.Current(b)
}

func (p *Paginator) hasPrev(b *session.Browse) bool {
	return b.Index > 1 || (b.RemoteOffset > 1 && p.hasContinuationInputs(b))
}

func (p *Paginator) hasNext(b *session.Browse) bool {
	return b.Index < len(b.List) || p.canContinue(b)
}

func (p *Paginator) canContinue(b *session.Browse) bool {
	return p.hasContinuationInputs(b) && b.RemoteOffset < b.RemotePages
}

// hasContinuationInputs reports whether the window can be refilled
// remotely. Cache-hit, postponed and history windows carry no continuation
// inputs and are single logical pages.
func (p *Paginator) hasContinuationInputs(b *session.Browse) bool {
	switch b.Kind {
	case domain.KindTitle:
		return b.TitleQuery != ""
	case domain.KindFilters:
		return len(b.Query.Types) > 0
	default:
		return false
	}
}

func (p *Paginator) fetchRemote(ctx context.Context, b *session.Browse, page int) ([]domain.Movie, int, error) {
	req := Request{
		UserID:     b.UserID,
		Kind:       b.Kind,
		Identity:   b.Identity,
		TitleQuery: b.TitleQuery,
		Query:      b.Query,
	}
	return p.Search.FetchPage(ctx, req, page)
}
