package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

// EditorInput is a product submission as it arrives from a form:
// every field is text, price included.
type EditorInput struct {
	Title       string `json:"title"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Image       string `json:"image"`
}

// ValidationErrors maps field names to what is wrong with them.
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d invalid fields", len(e))
}

// Editor validates and submits create/update operations against the
// product store.
type Editor struct {
	store *ProductStore
	ids   idGenerator
}

func NewEditor(store *ProductStore) *Editor {
	return &Editor{store: store}
}

// Validate checks the submission and parses the price. All fields are
// required; a non-numeric or negative price is rejected outright
// rather than coerced.
func (e *Editor) Validate(in EditorInput) (decimal.Decimal, error) {
	errs := ValidationErrors{}

	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = "required"
	}
	if strings.TrimSpace(in.Description) == "" {
		errs["description"] = "required"
	}
	if strings.TrimSpace(in.Category) == "" {
		errs["category"] = "required"
	}
	if strings.TrimSpace(in.Image) == "" {
		errs["image"] = "required"
	}

	var price decimal.Decimal
	if strings.TrimSpace(in.Price) == "" {
		errs["price"] = "required"
	} else {
		parsed, err := decimal.NewFromString(strings.TrimSpace(in.Price))
		switch {
		case err != nil:
			errs["price"] = "must be a number"
		case parsed.IsNegative():
			errs["price"] = "must not be negative"
		default:
			price = parsed
		}
	}

	if len(errs) > 0 {
		return decimal.Decimal{}, errs
	}
	return price, nil
}

// Create validates the input, assigns a fresh id and appends the
// product to the store.
func (e *Editor) Create(in EditorInput) (Product, error) {
	price, err := e.Validate(in)
	if err != nil {
		return Product{}, err
	}

	p := Product{
		ID:          e.ids.Next(),
		Title:       in.Title,
		Price:       price,
		Description: in.Description,
		Category:    in.Category,
		Image:       in.Image,
	}
	e.store.Add(p)
	return p, nil
}

// Update validates the input and replaces the product with the given
// id in place. Unknown ids report ErrProductNotFound; the store-level
// replace itself stays a silent no-op.
func (e *Editor) Update(id int64, in EditorInput) (Product, error) {
	price, err := e.Validate(in)
	if err != nil {
		return Product{}, err
	}

	if _, ok := e.store.Get(id); !ok {
		return Product{}, ErrProductNotFound
	}

	p := Product{
		ID:          id,
		Title:       in.Title,
		Price:       price,
		Description: in.Description,
		Category:    in.Category,
		Image:       in.Image,
	}
	e.store.Update(p)
	return p, nil
}
