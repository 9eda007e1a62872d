package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustJSON(t *testing.T, w http.ResponseWriter, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(body)); err != nil {
		t.Errorf("write response: %v", err)
	}
}

func storeWith(products ...Product) *ProductStore {
	s := NewProductStore(nil, nil)
	s.SetAll(products)
	return s
}

func product(id int64, title string, price int64, category string) Product {
	return Product{
		ID:       id,
		Title:    title,
		Price:    decimal.NewFromInt(price),
		Category: category,
	}
}

func TestProductStore_UpdateMissingIDIsNoOp(t *testing.T) {
	s := storeWith(product(1, "Apple", 10, "fruit"), product(2, "Banana", 5, "fruit"))

	before := s.All()
	s.Update(product(99, "Ghost", 1, "none"))

	after := s.All()
	if len(after) != len(before) {
		t.Fatalf("list length changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if after[i].ID != before[i].ID || after[i].Title != before[i].Title {
			t.Fatalf("product %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestProductStore_AddAndRemove(t *testing.T) {
	s := storeWith(product(1, "Apple", 10, "fruit"))

	s.Add(product(2, "Banana", 5, "fruit"))
	if s.Len() != 2 {
		t.Fatalf("len after add = %d, want 2", s.Len())
	}

	s.Remove(2)
	if s.Len() != 1 {
		t.Fatalf("len after remove = %d, want 1", s.Len())
	}
	if _, ok := s.Get(2); ok {
		t.Fatalf("removed product still present")
	}

	s.Remove(42) // absent, no-op
	if s.Len() != 1 {
		t.Fatalf("remove of absent id changed len to %d", s.Len())
	}
}

func TestProductStore_RefreshSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			http.NotFound(w, r)
			return
		}
		mustJSON(t, w, `[
			{"id":1,"title":"Apple","price":10,"description":"d","category":"fruit","image":"u"},
			{"id":2,"title":"Banana","price":5.5,"description":"d","category":"fruit","image":"u"}
		]`)
	}))
	t.Cleanup(ts.Close)

	s := NewProductStore(NewUpstreamClient(ts.URL), nil)
	if got := s.Status().State; got != StateIdle {
		t.Fatalf("initial state = %v, want idle", got)
	}

	s.Refresh(context.Background())

	if got := s.Status(); got.State != StateLoaded || got.Message != "" {
		t.Fatalf("status after refresh = %+v, want loaded", got)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	p, ok := s.Get(2)
	if !ok {
		t.Fatalf("product 2 missing")
	}
	if !p.Price.Equal(decimal.RequireFromString("5.5")) {
		t.Fatalf("price = %s, want 5.5", p.Price)
	}
}

func TestProductStore_RefreshFailureKeepsPreviousList(t *testing.T) {
	var fail atomic.Bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		mustJSON(t, w, `[{"id":1,"title":"Apple","price":10,"description":"d","category":"fruit","image":"u"}]`)
	}))
	t.Cleanup(ts.Close)

	s := NewProductStore(NewUpstreamClient(ts.URL), nil)
	s.Refresh(context.Background())
	if s.Len() != 1 {
		t.Fatalf("len after first refresh = %d, want 1", s.Len())
	}

	fail.Store(true)
	s.Refresh(context.Background())

	st := s.Status()
	if st.State != StateFailed {
		t.Fatalf("state = %v, want failed", st.State)
	}
	if st.Message == "" {
		t.Fatalf("failed status carries no message")
	}
	if s.Len() != 1 {
		t.Fatalf("previous list not preserved, len = %d", s.Len())
	}
	if _, ok := s.Get(1); !ok {
		t.Fatalf("previous product lost")
	}
}

func TestProductStore_LastCompletionWins(t *testing.T) {
	const (
		listA = `[{"id":1,"title":"A","price":1,"description":"d","category":"c","image":"u"}]`
		listB = `[{"id":2,"title":"B","price":2,"description":"d","category":"c","image":"u"}]`
	)

	release := make(chan struct{})
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			<-release // first request finishes last
			mustJSON(t, w, listA)
			return
		}
		mustJSON(t, w, listB)
	}))
	t.Cleanup(ts.Close)

	s := NewProductStore(NewUpstreamClient(ts.URL), nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Refresh(context.Background())
	}()

	for calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	s.Refresh(context.Background()) // completes first, serves listB

	close(release)
	wg.Wait()

	// The slower first fetch completed last; its list is final.
	if _, ok := s.Get(1); !ok {
		t.Fatalf("last-completed response did not win: %+v", s.All())
	}
	if s.Status().State != StateLoaded {
		t.Fatalf("state = %v, want loaded", s.Status().State)
	}
}

func TestCategoryStore_RefreshLifecycle(t *testing.T) {
	var fail atomic.Bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/categories" {
			http.NotFound(w, r)
			return
		}
		if fail.Load() {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		mustJSON(t, w, `["fruit","hardware","fruit"]`)
	}))
	t.Cleanup(ts.Close)

	s := NewCategoryStore(NewUpstreamClient(ts.URL), nil)
	s.Refresh(context.Background())

	got := s.All()
	if len(got) != 3 {
		t.Fatalf("categories = %v, want 3 labels with duplicate preserved", got)
	}
	if s.Status().State != StateLoaded {
		t.Fatalf("state = %v, want loaded", s.Status().State)
	}

	fail.Store(true)
	s.Refresh(context.Background())

	if s.Status().State != StateFailed {
		t.Fatalf("state = %v, want failed", s.Status().State)
	}
	if len(s.All()) != 3 {
		t.Fatalf("previous categories lost: %v", s.All())
	}
}
