package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"StoreFront/internal/wishlist"
)

func newTestView(products ...Product) *View {
	wl := wishlist.New(context.Background(), nil, nil)
	return NewView(storeWith(products...), wl)
}

// The three-product scenario used throughout: Apple/Banana in fruit,
// Bolt in hardware.
func sampleProducts() []Product {
	return []Product{
		product(1, "Apple", 10, "fruit"),
		product(2, "Banana", 5, "fruit"),
		product(3, "Bolt", 50, "hardware"),
	}
}

func ids(products []Product) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func equalIDs(a []int64, b ...int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestView_Search(t *testing.T) {
	v := newTestView(sampleProducts()...)

	v.SetQuery("ap")
	if got := ids(v.Page(1)); !equalIDs(got, 1) {
		t.Fatalf(`search "ap" = %v, want [1]`, got)
	}

	// Results come back alphabetically even when the store order
	// differs.
	v2 := newTestView(
		product(3, "Bolt", 50, "hardware"),
		product(2, "Banana", 5, "fruit"),
	)
	v2.SetQuery("b")
	if got := ids(v2.Page(1)); !equalIDs(got, 2, 3) {
		t.Fatalf(`search "b" = %v, want alphabetical [2 3]`, got)
	}
}

func TestView_SearchIsCaseInsensitive(t *testing.T) {
	v := newTestView(sampleProducts()...)

	v.SetQuery("APPLE")
	if got := ids(v.Page(1)); !equalIDs(got, 1) {
		t.Fatalf(`search "APPLE" = %v, want [1]`, got)
	}
}

func TestView_EmptyQueryRestoresFullList(t *testing.T) {
	v := newTestView(sampleProducts()...)

	v.SetQuery("ap")
	v.SetPage(2)
	v.SetQuery("")

	if v.CurrentPage() != 1 {
		t.Fatalf("page = %d, want reset to 1", v.CurrentPage())
	}
	// Unsorted store order, not alphabetical.
	if got := ids(v.Page(1)); !equalIDs(got, 1, 2, 3) {
		t.Fatalf("full list = %v, want [1 2 3]", got)
	}
}

func TestView_CategoryFilter(t *testing.T) {
	v := newTestView(sampleProducts()...)

	v.ApplyFilters([]string{"hardware"}, decimal.Zero, NoUpperBound)
	if got := ids(v.Page(1)); !equalIDs(got, 3) {
		t.Fatalf("hardware filter = %v, want [3]", got)
	}

	// Empty selection keeps everything.
	v.ApplyFilters(nil, decimal.Zero, NoUpperBound)
	if got := ids(v.Page(1)); !equalIDs(got, 1, 2, 3) {
		t.Fatalf("empty category filter = %v, want all", got)
	}
}

func TestView_PriceFilter(t *testing.T) {
	v := newTestView(sampleProducts()...)

	v.ApplyFilters(nil, decimal.Zero, decimal.NewFromInt(10))
	if got := ids(v.Page(1)); !equalIDs(got, 1, 2) {
		t.Fatalf("price [0,10] = %v, want [1 2]", got)
	}

	// Bounds are inclusive on both ends.
	v.ApplyFilters(nil, decimal.NewFromInt(10), decimal.NewFromInt(50))
	if got := ids(v.Page(1)); !equalIDs(got, 1, 3) {
		t.Fatalf("price [10,50] = %v, want [1 3]", got)
	}

	// min > max matches nothing.
	v.ApplyFilters(nil, decimal.NewFromInt(20), decimal.NewFromInt(10))
	if got := v.Page(1); len(got) != 0 {
		t.Fatalf("inverted interval = %v, want empty", got)
	}

	// Unbounded ceiling keeps everything.
	v.ApplyFilters(nil, decimal.Zero, NoUpperBound)
	if got := v.Total(); got != 3 {
		t.Fatalf("price [0,inf) total = %d, want 3", got)
	}
}

func TestView_FiltersApplyToFullListNotSearchResults(t *testing.T) {
	v := newTestView(sampleProducts()...)

	v.SetQuery("ap")
	v.ApplyFilters(nil, decimal.Zero, NoUpperBound)

	if got := v.Total(); got != 3 {
		t.Fatalf("filters applied to search results, total = %d, want 3", got)
	}
	if v.CurrentPage() != 1 {
		t.Fatalf("page = %d, want reset to 1", v.CurrentPage())
	}
}

func TestView_Pagination(t *testing.T) {
	products := make([]Product, 0, 7)
	for i := int64(1); i <= 7; i++ {
		products = append(products, product(i, "P", 1, "c"))
	}
	v := newTestView(products...)

	if got := len(v.Page(1)); got != 5 {
		t.Fatalf("page 1 len = %d, want 5", got)
	}
	if got := len(v.Page(2)); got != 2 {
		t.Fatalf("page 2 len = %d, want remainder 2", got)
	}
	if got := v.Page(3); len(got) != 0 {
		t.Fatalf("page past the end = %v, want empty", got)
	}
	if v.TotalPages() != 2 {
		t.Fatalf("total pages = %d, want 2", v.TotalPages())
	}

	if !v.HasNext() || v.HasPrev() {
		t.Fatalf("page 1: HasNext=%v HasPrev=%v", v.HasNext(), v.HasPrev())
	}
	v.Next()
	if v.HasNext() || !v.HasPrev() {
		t.Fatalf("page 2: HasNext=%v HasPrev=%v", v.HasNext(), v.HasPrev())
	}
	v.Next() // clamped at the last page
	if v.CurrentPage() != 2 {
		t.Fatalf("page = %d after Next on last page, want 2", v.CurrentPage())
	}
	v.Prev()
	v.Prev() // clamped at page 1
	if v.CurrentPage() != 1 {
		t.Fatalf("page = %d after Prev on first page, want 1", v.CurrentPage())
	}
}

func TestView_PaginationExactMultiple(t *testing.T) {
	products := make([]Product, 0, 10)
	for i := int64(1); i <= 10; i++ {
		products = append(products, product(i, "P", 1, "c"))
	}
	v := newTestView(products...)

	if got := len(v.Page(2)); got != 5 {
		t.Fatalf("last exact page len = %d, want 5", got)
	}
	v.SetPage(2)
	if v.HasNext() {
		t.Fatalf("HasNext true past the last exact page")
	}
}

func TestView_ToggleTwiceRestores(t *testing.T) {
	v := newTestView(sampleProducts()...)

	if liked := v.Toggle(2); !liked {
		t.Fatalf("first toggle reported %v, want true", liked)
	}
	if !v.Liked(2) {
		t.Fatalf("product 2 not liked after toggle")
	}
	if liked := v.Toggle(2); liked {
		t.Fatalf("second toggle reported %v, want false", liked)
	}
	if v.Liked(2) {
		t.Fatalf("product 2 still liked after double toggle")
	}
}

func TestView_Annotate(t *testing.T) {
	v := newTestView(sampleProducts()...)
	v.Toggle(3)

	annotated := v.Annotate(v.Page(1))
	for _, p := range annotated {
		want := p.ID == 3
		if p.Liked != want {
			t.Fatalf("product %d liked = %v, want %v", p.ID, p.Liked, want)
		}
	}
}
