package feed

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// landingPage mirrors the part of the embedded JSON the feeds are built from.
type landingPage struct {
	Data *landingPageData `json:"data" validate:"required"`
}

type landingPageData struct {
	Books    *categoryGroup `json:"books" validate:"omitempty"`
	Games    *categoryGroup `json:"games" validate:"omitempty"`
	Software *categoryGroup `json:"software" validate:"omitempty"`
}

type categoryGroup struct {
	Sections []section `json:"mosaic" validate:"required,dive"`
}

type section struct {
	Products []product `json:"products" validate:"required,dive"`
}

// productFields lists the json names of product, in declaration order.
var productFields = []string{
	"machine_name",
	"tile_short_name",
	"product_url",
	"detailed_marketing_blurb",
	"tile_image",
	"start_date|datetime",
	"end_date|datetime",
	"tile_stamp",
}

// Pointers distinguish an absent field from an empty string.
type product struct {
	MachineName *string `json:"machine_name" validate:"required"`
	Title       *string `json:"tile_short_name" validate:"required"`
	ProductURL  *string `json:"product_url" validate:"required"`
	Blurb       *string `json:"detailed_marketing_blurb" validate:"required"`
	TileImage   *string `json:"tile_image" validate:"required,url"`
	StartDate   *string `json:"start_date|datetime" validate:"required"`
	EndDate     *string `json:"end_date|datetime" validate:"required"`
	Stamp       *string `json:"tile_stamp" validate:"required"`
}

type Parser struct {
	validate *validator.Validate
}

func NewParser() *Parser {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Parser{validate: v}
}

// Run validates the extracted landing page JSON and returns its products
// flattened across categories and sections, newest start date first.
func (p *Parser) Run(raw string) ([]Item, error) {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, &ParseError{Err: err}
	}

	if err := checkShape(doc); err != nil {
		return nil, err
	}

	var page landingPage
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return nil, p.decodeError(err)
	}

	if err := p.validate.Struct(page); err != nil {
		return nil, p.validationError(err)
	}

	groups := map[string]*categoryGroup{
		CategoryBooks:    page.Data.Books,
		CategoryGames:    page.Data.Games,
		CategorySoftware: page.Data.Software,
	}

	var items []Item
	for _, category := range Categories {
		group := groups[category]
		if group == nil {
			continue
		}

		for si, s := range group.Sections {
			for pi, pr := range s.Products {
				path := fmt.Sprintf("data.%s.mosaic[%d].products[%d]", category, si, pi)
				item, err := p.normalizeProduct(pr, path)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
		}
	}

	slices.SortStableFunc(items, func(a, b Item) int {
		return b.StartsAt.Compare(a.StartsAt)
	})

	slog.Debug("Landing page parsed", "items", len(items))

	return items, nil
}

func (p *Parser) normalizeProduct(pr product, path string) (Item, error) {
	startsAt, err := parseDateTime(*pr.StartDate)
	if err != nil {
		return Item{}, &ValidationError{Path: path + ".start_date|datetime", Reason: err.Error()}
	}

	endsAt, err := parseDateTime(*pr.EndDate)
	if err != nil {
		return Item{}, &ValidationError{Path: path + ".end_date|datetime", Reason: err.Error()}
	}

	return Item{
		ID:          *pr.MachineName,
		Title:       *pr.Title,
		Description: *pr.Blurb,
		ImageURL:    *pr.TileImage,
		Path:        *pr.ProductURL,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Category:    *pr.Stamp,
	}, nil
}

// parseDateTime accepts RFC 3339 and the other layouts dateparse knows.
// Values without a zone are read as UTC.
func parseDateTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("not a date-time: %q", value)
	}
	return t, nil
}

// checkShape walks the generically decoded document and reports the first
// value whose JSON type does not match landingPage. Absent and null values
// are left to the validator.
func checkShape(doc any) error {
	root, err := expectObject(doc, "")
	if err != nil {
		return err
	}

	data, err := expectObject(root["data"], "data")
	if err != nil || data == nil {
		return err
	}

	for _, category := range Categories {
		path := "data." + category
		group, err := expectObject(data[category], path)
		if err != nil {
			return err
		}
		if group == nil {
			continue
		}

		sections, err := expectArray(group["mosaic"], path+".mosaic")
		if err != nil {
			return err
		}
		for si, rawSection := range sections {
			sectionPath := fmt.Sprintf("%s.mosaic[%d]", path, si)
			s, err := expectObject(rawSection, sectionPath)
			if err != nil {
				return err
			}
			if s == nil {
				continue
			}

			products, err := expectArray(s["products"], sectionPath+".products")
			if err != nil {
				return err
			}
			for pi, rawProduct := range products {
				productPath := fmt.Sprintf("%s.products[%d]", sectionPath, pi)
				pr, err := expectObject(rawProduct, productPath)
				if err != nil {
					return err
				}
				for _, field := range productFields {
					if err := expectString(pr[field], productPath+"."+field); err != nil {
						return err
					}
				}
			}
		}
	}

	return nil
}

func expectObject(v any, path string) (map[string]any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return val, nil
	default:
		return nil, typeMismatch(path, "object", v)
	}
}

func expectArray(v any, path string) ([]any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return val, nil
	default:
		return nil, typeMismatch(path, "array", v)
	}
}

func expectString(v any, path string) error {
	switch v.(type) {
	case nil, string:
		return nil
	default:
		return typeMismatch(path, "string", v)
	}
}

func typeMismatch(path, want string, got any) error {
	return &ValidationError{
		Path:   path,
		Reason: fmt.Sprintf("expected %s, got %s", want, jsonType(got)),
	}
}

func jsonType(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return "number"
	}
}

func (p *Parser) decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{
			Path:   typeErr.Field,
			Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}
	}
	return &ValidationError{Reason: err.Error()}
}

func (p *Parser) validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Reason: err.Error()}
	}

	fe := fieldErrs[0]
	// Drop the root type name from the namespace.
	_, path, _ := strings.Cut(fe.Namespace(), ".")

	reason := "required field is missing"
	if fe.Tag() == "url" {
		reason = fmt.Sprintf("not a valid URL: %v", fe.Value())
	}

	return &ValidationError{Path: path, Reason: reason}
}
