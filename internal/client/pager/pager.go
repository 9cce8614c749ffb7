// Package pager holds the pagination state machines used by the listings:
// a timeline cursor and page-number paging.
package pager

import (
	"context"
	"errors"
	"sync"
)

// ErrBusy is returned by Next while a page is already being loaded.
var ErrBusy = errors.New("page load already in progress")

// ErrExhausted is returned by Next once the last page has been seen.
var ErrExhausted = errors.New("no more pages")

// Position is where the next timeline page starts. The zero value is the
// newest post.
type Position struct {
	LastCreatedAt string
	LastPostID    int64
}

// CursorFetch loads one page starting after pos. It returns the number of
// items on the page and the position following it.
type CursorFetch func(ctx context.Context, pos Position, pageSize int) (n int, next Position, err error)

// Cursor walks a cursor-paginated listing. It stays exhausted once a short
// page or an empty next cursor is seen, until Reset.
type Cursor struct {
	mu       sync.Mutex
	pos      Position
	hasMore  bool
	loading  bool
	pageSize int
	fetch    CursorFetch
}

func NewCursor(pageSize int, fetch CursorFetch) *Cursor {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Cursor{hasMore: true, pageSize: pageSize, fetch: fetch}
}

// Next loads the following page. A failed load leaves the cursor where it
// was so Next can be retried.
func (c *Cursor) Next(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.loading:
		c.mu.Unlock()
		return ErrBusy
	case !c.hasMore:
		c.mu.Unlock()
		return ErrExhausted
	}
	c.loading = true
	pos := c.pos
	c.mu.Unlock()

	n, next, err := c.fetch(ctx, pos, c.pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		return err
	}
	c.pos = next
	c.hasMore = next.LastPostID != 0 && n >= c.pageSize
	return nil
}

// Reset rewinds to the newest post.
func (c *Cursor) Reset() {
	c.mu.Lock()
	c.pos = Position{}
	c.hasMore = true
	c.mu.Unlock()
}

func (c *Cursor) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

func (c *Cursor) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Cursor) Position() Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

// PageFetch loads page (1-based) and returns the item count on it and the
// total across all pages.
type PageFetch func(ctx context.Context, page, pageSize int) (n int, total int64, err error)

// Pages walks a page-number paginated listing.
type Pages struct {
	mu       sync.Mutex
	page     int
	fetched  int64
	total    int64
	hasMore  bool
	loading  bool
	pageSize int
	fetch    PageFetch
}

func NewPages(pageSize int, fetch PageFetch) *Pages {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Pages{hasMore: true, pageSize: pageSize, fetch: fetch}
}

func (p *Pages) Next(ctx context.Context) error {
	p.mu.Lock()
	switch {
	case p.loading:
		p.mu.Unlock()
		return ErrBusy
	case !p.hasMore:
		p.mu.Unlock()
		return ErrExhausted
	}
	p.loading = true
	page := p.page + 1
	p.mu.Unlock()

	n, total, err := p.fetch(ctx, page, p.pageSize)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		return err
	}
	p.page = page
	p.fetched += int64(n)
	p.total = total
	p.hasMore = p.fetched < total && n >= p.pageSize
	return nil
}

func (p *Pages) Reset() {
	p.mu.Lock()
	p.page, p.fetched, p.total = 0, 0, 0
	p.hasMore = true
	p.mu.Unlock()
}

func (p *Pages) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Page is the last page loaded, 0 before the first.
func (p *Pages) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

func (p *Pages) Total() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// TotalPages is the number of pages of size needed for total items.
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
