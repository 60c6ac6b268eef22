package handlers

import (
	"strconv"

	"github.com/antiquenepal/storefront/internal/store"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 12
	maxPageSize     = 60
)

// PageMeta is returned next to every paginated list.
type PageMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// parsePage reads ?page and ?page_size, falling back to defaults for
// missing or bad values.
func parsePage(c *gin.Context) store.Page {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.Query("page_size"))
	if err != nil || size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return store.Page{Number: page, Size: size}
}

func totalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// fetchPage loads one page. When the requested page lies past the last one
// (for example after its last row was removed) the last page is returned
// instead.
func fetchPage[T any](p store.Page, fetch func(store.Page) ([]T, int64, error)) ([]T, PageMeta, error) {
	items, total, err := fetch(p)
	if err != nil {
		return nil, PageMeta{}, err
	}

	if last := totalPages(total, p.Size); last > 0 && p.Number > last {
		p.Number = last
		items, total, err = fetch(p)
		if err != nil {
			return nil, PageMeta{}, err
		}
	}

	if items == nil {
		items = []T{}
	}
	return items, PageMeta{
		Page:       p.Number,
		PageSize:   p.Size,
		Total:      total,
		TotalPages: totalPages(total, p.Size),
	}, nil
}
