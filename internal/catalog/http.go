package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"StoreFront/internal/auth"
	"StoreFront/internal/wishlist"
	"StoreFront/pkg/kit"
)

const (
	maxSubmitBody = 1 << 20

	writeLimitPerMin = 30
)

// Server exposes the catalog screens as REST: list/search/filter,
// product details, the editor, and the wishlist.
type Server struct {
	Products   *ProductStore
	Categories *CategoryStore
	Wishlist   *wishlist.Store
	Editor     *Editor
	Auth       *auth.TokenMaker
	Log        *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.Get("/catalog", s.listCatalog)
	r.Get("/catalog/status", s.fetchStatus)
	r.Post("/catalog/refresh", s.refresh)

	r.Get("/categories", s.listCategories)
	r.Get("/products/{id}", s.getProduct)

	writeLimiter := kit.NewIPRateLimiter(writeLimitPerMin, time.Minute)
	r.Group(func(wr chi.Router) {
		wr.Use(writeLimiter.Middleware)
		wr.Use(AuthJWT(s.Auth))
		wr.Post("/products", s.createProduct)
		wr.Put("/products/{id}", s.updateProduct)
		wr.Delete("/products/{id}", s.deleteProduct)
	})

	r.Get("/wishlist", s.listWishlist)
	r.Post("/wishlist/{id}", s.addWish)
	r.Delete("/wishlist/{id}", s.removeWish)
	r.Post("/wishlist/{id}/toggle", s.toggleWish)

	return r
}

// ready reports 200 once both initial fetches have at least started.
// Idle means boot wiring has not reached the stores yet.
func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if s.Products.Status().State == StateIdle || s.Categories.Status().State == StateIdle {
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type catalogPage struct {
	Products   []LikedProduct `json:"products"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	Total      int            `json:"total"`
	HasNext    bool           `json:"has_next"`
	HasPrev    bool           `json:"has_prev"`
}

func (s *Server) listCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v := NewView(s.Products, s.Wishlist)

	// Search and filters are separate surfaces on the screen; a
	// non-empty search wins, mirroring the observed app.
	if search := q.Get("search"); search != "" {
		v.SetQuery(search)
	} else if len(q["category"]) > 0 || q.Get("min_price") != "" || q.Get("max_price") != "" {
		min := decimal.Zero
		max := NoUpperBound

		if raw := q.Get("min_price"); raw != "" {
			parsed, err := decimal.NewFromString(raw)
			if err != nil {
				kit.WriteError(w, r, http.StatusBadRequest, "bad min_price", nil)
				return
			}
			min = parsed
		}
		if raw := q.Get("max_price"); raw != "" {
			parsed, err := decimal.NewFromString(raw)
			if err != nil {
				kit.WriteError(w, r, http.StatusBadRequest, "bad max_price", nil)
				return
			}
			max = parsed
		}

		v.ApplyFilters(q["category"], min, max)
	}

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			kit.WriteError(w, r, http.StatusBadRequest, "bad page", nil)
			return
		}
		v.SetPage(n)
	}

	kit.WriteJSON(w, http.StatusOK, catalogPage{
		Products:   v.Annotate(v.Current()),
		Page:       v.CurrentPage(),
		TotalPages: v.TotalPages(),
		Total:      v.Total(),
		HasNext:    v.HasNext(),
		HasPrev:    v.HasPrev(),
	})
}

func (s *Server) fetchStatus(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]Status{
		"products":   s.Products.Status(),
		"categories": s.Categories.Status(),
	})
}

// refresh re-triggers both upstream fetches. They are independent and
// may finish in either order; completions apply last-write-wins.
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	go s.Products.Refresh(ctx)
	go s.Categories.Refresh(ctx)

	kit.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Categories.All())
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	p, found := s.Products.Get(id)
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}

	kit.WriteJSON(w, http.StatusOK, LikedProduct{Product: p, Liked: s.Wishlist.Contains(p.ID)})
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	in, err := decodeSubmission(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	p, err := s.Editor.Create(in)
	if err != nil {
		s.writeEditorError(w, r, err)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	in, err := decodeSubmission(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	p, err := s.Editor.Update(id, in)
	if err != nil {
		s.writeEditorError(w, r, err)
		return
	}

	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	s.Products.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listWishlist(w http.ResponseWriter, _ *http.Request) {
	liked := make([]LikedProduct, 0, s.Wishlist.Len())
	for _, p := range s.Products.All() {
		if s.Wishlist.Contains(p.ID) {
			liked = append(liked, LikedProduct{Product: p, Liked: true})
		}
	}
	kit.WriteJSON(w, http.StatusOK, liked)
}

func (s *Server) addWish(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	s.Wishlist.Add(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) removeWish(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	s.Wishlist.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleWish(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	liked := s.Wishlist.Toggle(id)
	kit.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "liked": liked})
}

func (s *Server) writeEditorError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs ValidationErrors
	switch {
	case errors.As(err, &verrs):
		kit.WriteError(w, r, http.StatusUnprocessableEntity, "validation failed", verrs)
	case errors.Is(err, ErrProductNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "not found", nil)
	default:
		if s.Log != nil {
			s.Log.Error("editor submit failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", nil)
		return 0, false
	}
	return id, true
}

func decodeSubmission(w http.ResponseWriter, r *http.Request) (EditorInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubmitBody)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var in EditorInput
	if err := dec.Decode(&in); err != nil {
		return EditorInput{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return EditorInput{}, errors.New("extra data after json object")
	}

	return in, nil
}
