package service

import "github.com/aussiebroadwan/leadflow/internal/intake/store"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is a 1-based page number and size.
type PageRequest struct {
	Page     int
	PageSize int
}

func (r PageRequest) normalize() PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	switch {
	case r.PageSize <= 0:
		r.PageSize = DefaultPageSize
	case r.PageSize > MaxPageSize:
		r.PageSize = MaxPageSize
	}
	return r
}

func (r PageRequest) storePage() store.Page {
	r = r.normalize()
	return store.Page{Limit: r.PageSize, Offset: (r.Page - 1) * r.PageSize}
}

type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

func newPage[T any](items []T, total int, req PageRequest) Page[T] {
	req = req.normalize()
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		TotalCount: total,
		Page:       req.Page,
		TotalPages: (total + req.PageSize - 1) / req.PageSize,
	}
}

// orderByIDs returns items sorted into the order of ids, dropping items not
// listed.
func orderByIDs[T any](items []T, ids []string, id func(T) string) []T {
	byID := make(map[string]T, len(items))
	for _, it := range items {
		byID[id(it)] = it
	}
	out := make([]T, 0, len(ids))
	for _, k := range ids {
		if it, ok := byID[k]; ok {
			out = append(out, it)
		}
	}
	return out
}
