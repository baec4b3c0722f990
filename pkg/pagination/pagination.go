// Package pagination provides zero-indexed page requests and page results.
package pagination

import "math"

// MaxSize bounds the number of entries a single page may hold.
const MaxSize = 100

// Request is a zero-indexed page request.
type Request struct {
	Page int
	Size int
}

// Of builds a request, clamping a negative page to 0 and the size to [1, MaxSize].
func Of(page, size int) Request {
	return Request{
		Page: max(page, 0),
		Size: min(max(size, 1), MaxSize),
	}
}

// Offset saturates at math.MaxInt instead of overflowing for huge pages.
func (r Request) Offset() int {
	if r.Size > 0 && r.Page > math.MaxInt/r.Size {
		return math.MaxInt
	}
	return r.Page * r.Size
}

func (r Request) Limit() int {
	return r.Size
}

type Page[T any] struct {
	Content    []T `json:"content"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

func New[T any](content []T, req Request, totalItems int) Page[T] {
	if content == nil {
		content = make([]T, 0)
	}

	return Page[T]{
		Content:    content,
		Page:       req.Page,
		PageSize:   req.Size,
		TotalItems: totalItems,
		TotalPages: (totalItems + req.Size - 1) / req.Size,
	}
}

// Map converts the content of a page, keeping its metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	content := make([]U, 0, len(p.Content))
	for _, v := range p.Content {
		content = append(content, fn(v))
	}

	return Page[U]{
		Content:    content,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
}
