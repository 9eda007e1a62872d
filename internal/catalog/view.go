package catalog

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"StoreFront/internal/wishlist"
)

// PageSize is the fixed number of products per catalog page.
const PageSize = 5

// NoUpperBound stands in for an unbounded price ceiling.
var NoUpperBound = decimal.NewFromInt(math.MaxInt64)

// View derives the displayable product list from the store plus the
// active search query, filters and page. It owns only this transient
// state and never mutates the stores except by delegation. Intended
// for use from a single goroutine (one view per request).
type View struct {
	products *ProductStore
	wishlist *wishlist.Store

	query    string
	selected []string
	minPrice decimal.Decimal
	maxPrice decimal.Decimal

	filtered []Product
	page     int
}

func NewView(products *ProductStore, wl *wishlist.Store) *View {
	return &View{
		products: products,
		wishlist: wl,
		minPrice: decimal.Zero,
		maxPrice: NoUpperBound,
		filtered: products.All(),
		page:     1,
	}
}

// SetQuery filters by case-insensitive substring match on the title.
// Search results come back alphabetically ordered by title; an empty
// query restores the full unsorted list. Either way the view returns
// to page 1.
func (v *View) SetQuery(query string) {
	v.query = query
	v.page = 1

	if query == "" {
		v.filtered = v.products.All()
		return
	}

	all := v.products.All()
	sort.Slice(all, func(i, j int) bool {
		return strings.ToLower(all[i].Title) < strings.ToLower(all[j].Title)
	})

	q := strings.ToLower(query)
	out := all[:0]
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Title), q) {
			out = append(out, p)
		}
	}
	v.filtered = out
}

// ApplyFilters narrows the full product list (not the current search
// results): category membership first, then the inclusive price
// interval [min, max]. An empty category selection keeps everything.
// Resets to page 1.
func (v *View) ApplyFilters(categories []string, min, max decimal.Decimal) {
	v.selected = categories
	v.minPrice = min
	v.maxPrice = max
	v.page = 1

	filtered := v.products.All()

	if len(categories) > 0 {
		keep := make(map[string]struct{}, len(categories))
		for _, c := range categories {
			keep[c] = struct{}{}
		}
		out := filtered[:0]
		for _, p := range filtered {
			if _, ok := keep[p.Category]; ok {
				out = append(out, p)
			}
		}
		filtered = out
	}

	out := filtered[:0]
	for _, p := range filtered {
		if p.Price.GreaterThanOrEqual(min) && p.Price.LessThanOrEqual(max) {
			out = append(out, p)
		}
	}
	v.filtered = out
}

// Page returns the n-th page of the filtered list, pages numbered
// from 1. Pages past the end are empty.
func (v *View) Page(n int) []Product {
	if n < 1 {
		return nil
	}
	lo := (n - 1) * PageSize
	if lo >= len(v.filtered) {
		return nil
	}
	hi := lo + PageSize
	if hi > len(v.filtered) {
		hi = len(v.filtered)
	}

	out := make([]Product, hi-lo)
	copy(out, v.filtered[lo:hi])
	return out
}

// Current returns the page the view is positioned on.
func (v *View) Current() []Product {
	return v.Page(v.page)
}

func (v *View) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	v.page = n
}

func (v *View) CurrentPage() int { return v.page }

func (v *View) HasNext() bool {
	return v.page*PageSize < len(v.filtered)
}

func (v *View) HasPrev() bool {
	return v.page > 1
}

func (v *View) TotalPages() int {
	return (len(v.filtered) + PageSize - 1) / PageSize
}

func (v *View) Total() int {
	return len(v.filtered)
}

// Next advances one page; it stops at the last non-empty page.
func (v *View) Next() {
	if v.HasNext() {
		v.page++
	}
}

// Prev steps one page back; it stops at page 1.
func (v *View) Prev() {
	if v.HasPrev() {
		v.page--
	}
}

// Toggle flips wishlist membership for the id and reports the state
// after the flip.
func (v *View) Toggle(id int64) bool {
	return v.wishlist.Toggle(id)
}

func (v *View) Liked(id int64) bool {
	return v.wishlist.Contains(id)
}

// LikedProduct is a product decorated with its wishlist membership.
type LikedProduct struct {
	Product
	Liked bool `json:"liked"`
}

// Annotate decorates products with wishlist membership.
func (v *View) Annotate(products []Product) []LikedProduct {
	out := make([]LikedProduct, len(products))
	for i, p := range products {
		out[i] = LikedProduct{Product: p, Liked: v.wishlist.Contains(p.ID)}
	}
	return out
}
