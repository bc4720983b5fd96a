// internal/paging/paging.go
package paging

import (
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"cashcard-api/internal/domain"
	"cashcard-api/internal/util"
)

// Direction is the ordering of a sort key.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sortable cash card fields, mapped to their column names.
var sortableFields = map[string]string{
	"id":     "id",
	"amount": "amount",
}

// Order is a single sort key.
type Order struct {
	Field     string
	Direction Direction
}

// Request describes which page of a listing to return and how to order it.
type Request struct {
	Page int
	Size int
	Sort []Order
}

// Defaults controls what Parse fills in when the caller omits parameters.
type Defaults struct {
	Size    int
	MaxSize int
	Sort    []Order
}

// DefaultDefaults returns page size 3, max 100, sorted by amount ascending.
func DefaultDefaults() Defaults {
	return Defaults{
		Size:    3,
		MaxSize: 100,
		Sort:    []Order{{Field: "amount", Direction: Asc}},
	}
}

// Parse reads page, size and sort from query parameters.
// sort may be repeated and takes the form "field" or "field,direction".
func Parse(q url.Values, d Defaults) (Request, error) {
	req := Request{Page: 0, Size: d.Size}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 0 {
			return Request{}, fmt.Errorf("page must be a non-negative integer: %w", util.ErrInvalidInput)
		}
		req.Page = page
	}

	if v := q.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return Request{}, fmt.Errorf("size must be a positive integer: %w", util.ErrInvalidInput)
		}
		req.Size = size
	}
	if d.MaxSize > 0 && req.Size > d.MaxSize {
		req.Size = d.MaxSize
	}

	for _, raw := range q["sort"] {
		order, err := parseOrder(raw)
		if err != nil {
			return Request{}, err
		}
		req.Sort = append(req.Sort, order)
	}
	if len(req.Sort) == 0 {
		req.Sort = append(req.Sort, d.Sort...)
	}
	req.Sort = withTieBreak(req.Sort)

	return req, nil
}

func parseOrder(raw string) (Order, error) {
	parts := strings.Split(raw, ",")
	field := strings.TrimSpace(parts[0])
	if _, ok := sortableFields[field]; !ok {
		return Order{}, fmt.Errorf("cannot sort by %q: %w", field, util.ErrInvalidInput)
	}
	order := Order{Field: field, Direction: Asc}
	if len(parts) > 2 {
		return Order{}, fmt.Errorf("malformed sort %q: %w", raw, util.ErrInvalidInput)
	}
	if len(parts) == 2 {
		switch Direction(strings.ToLower(strings.TrimSpace(parts[1]))) {
		case Asc:
		case Desc:
			order.Direction = Desc
		default:
			return Order{}, fmt.Errorf("unknown sort direction in %q: %w", raw, util.ErrInvalidInput)
		}
	}
	return order, nil
}

// withTieBreak appends id ascending unless id already participates.
func withTieBreak(orders []Order) []Order {
	for _, o := range orders {
		if o.Field == "id" {
			return orders
		}
	}
	return append(orders, Order{Field: "id", Direction: Asc})
}

// Offset returns the index of the first element of the page. It saturates
// at math.MaxInt instead of overflowing, so huge pages are simply empty.
func (r Request) Offset() int {
	if r.Page <= 0 || r.Size <= 0 {
		return 0
	}
	if r.Page > math.MaxInt/r.Size {
		return math.MaxInt
	}
	return r.Page * r.Size
}

// OrderBy renders the sort keys as a SQL ORDER BY list. Only whitelisted
// columns reach the output.
func (r Request) OrderBy() string {
	cols := make([]string, 0, len(r.Sort))
	for _, o := range r.Sort {
		col, ok := sortableFields[o.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if o.Direction == Desc {
			dir = "DESC"
		}
		cols = append(cols, col+" "+dir)
	}
	if len(cols) == 0 {
		return "id ASC"
	}
	return strings.Join(cols, ", ")
}

// Compare orders two cards by the request's sort keys.
func (r Request) Compare(a, b domain.CashCard) int {
	for _, o := range r.Sort {
		var c int
		switch o.Field {
		case "id":
			c = cmpInt64(a.ID, b.ID)
		case "amount":
			c = a.Amount.Cmp(b.Amount)
		}
		if o.Direction == Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// Apply sorts cards in place and returns the requested page of them.
// A page past the end yields an empty, non-nil slice.
func (r Request) Apply(cards []domain.CashCard) []domain.CashCard {
	slices.SortStableFunc(cards, r.Compare)

	start := r.Offset()
	if start >= len(cards) {
		return []domain.CashCard{}
	}
	end := start + min(r.Size, len(cards)-start)
	return cards[start:end]
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
