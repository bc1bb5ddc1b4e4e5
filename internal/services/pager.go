package services

import (
	"context"
	"iter"
)

// PageFunc fetches page n (1-based) of a listing.
type PageFunc[T any] func(ctx context.Context, page int) ([]T, error)

// Pager walks a paginated listing one element at a time, fetching a page only when
// the buffered one is exhausted.
//
// A page whose length differs from the page size is the last one; its elements are
// still yielded. Once an error is hit, the pager stops and [Pager.Err] reports it.
// Elements yielded before the failing page stay valid.
//
// A Pager is not safe for concurrent use and cannot be rewound.
type Pager[T any] struct {
	fetch    PageFunc[T]
	pageSize int

	page     int
	buf      []T
	cur      T
	err      error
	done     bool
	requests int
}

// NewPager creates a pager that fetches pages of pageSize through fetch.
func NewPager[T any](pageSize int, fetch PageFunc[T]) *Pager[T] {
	return &Pager[T]{fetch: fetch, pageSize: pageSize}
}

// staticPager yields items without touching the network.
func staticPager[T any](items []T) *Pager[T] {
	return &Pager[T]{buf: items, done: true}
}

// Next advances to the next element, fetching the next page if needed.
func (p *Pager[T]) Next(ctx context.Context) bool {
	for len(p.buf) == 0 {
		if p.done || p.err != nil {
			return false
		}

		p.page++
		p.requests++
		items, err := p.fetch(ctx, p.page)
		if err != nil {
			p.err = err
			return false
		}
		if len(items) != p.pageSize {
			p.done = true
		}
		p.buf = items
	}

	p.cur, p.buf = p.buf[0], p.buf[1:]
	return true
}

// Value returns the element [Pager.Next] advanced to.
func (p *Pager[T]) Value() T { return p.cur }

// Err returns the error that stopped the walk, if any.
func (p *Pager[T]) Err() error { return p.err }

// Requests returns the number of pages fetched so far.
func (p *Pager[T]) Requests() int { return p.requests }

// Collect drains up to max elements (all when max <= 0).
//
// On failure the elements gathered so far are returned with the error.
func (p *Pager[T]) Collect(ctx context.Context, max int) ([]T, error) {
	var out []T
	for (max <= 0 || len(out) < max) && p.Next(ctx) {
		out = append(out, p.Value())
	}
	return out, p.Err()
}

// All adapts the pager to a range-over-func sequence. A failure is yielded once,
// paired with the zero value, as the last pair.
func (p *Pager[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for p.Next(ctx) {
			if !yield(p.Value(), nil) {
				return
			}
		}
		if err := p.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}
