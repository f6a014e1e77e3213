package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/skillspark/hub-api/internal/common"
)

//go:embed courses.json
var coursesJSON []byte

// Course is a storefront course. Prices are in minor units of Currency.
type Course struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Price         int64   `json:"price"`
	OriginalPrice int64   `json:"originalPrice,omitempty"`
	Currency      string  `json:"currency"`
	Rating        float64 `json:"rating"`
	ReviewCount   int     `json:"reviewCount"`
	Duration      string  `json:"duration"`
	Level         string  `json:"level"`
	StudentCount  string  `json:"studentCount"`
}

// Sort orders accepted by List.
const (
	SortPopular   = "popular"
	SortRating    = "rating"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
)

// Price buckets accepted by List. Bounds are in minor units and inclusive
// on both ends of the middle bucket.
const (
	PriceAll      = "all"
	PriceFree     = "free"
	PriceUnder100 = "under-100"
	Price100To200 = "100-200"
	PriceOver200  = "over-200"
)

// ListParams filters the course listing.
type ListParams struct {
	Query    string
	Level    string
	Category string
	Price    string
	Sort     string
}

// Service serves the read-only course catalog.
type Service struct {
	courses []Course
	byID    map[string]Course
}

// NewService loads the embedded catalog.
func NewService() (*Service, error) {
	return newService(coursesJSON)
}

func newService(data []byte) (*Service, error) {
	var courses []Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, fmt.Errorf("catalog: decode courses: %w", err)
	}
	byID := make(map[string]Course, len(courses))
	for _, c := range courses {
		if c.ID == "" {
			return nil, fmt.Errorf("catalog: course without id")
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate course id %q", c.ID)
		}
		byID[c.ID] = c
	}
	return &Service{courses: courses, byID: byID}, nil
}

// ParseListParams normalises query values.
func ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{
		Query:    strings.TrimSpace(values.Get("q")),
		Level:    strings.TrimSpace(values.Get("level")),
		Category: strings.TrimSpace(values.Get("category")),
		Price:    strings.ToLower(strings.TrimSpace(values.Get("price"))),
		Sort:     strings.ToLower(strings.TrimSpace(values.Get("sort"))),
	}
	switch params.Sort {
	case "":
		params.Sort = SortPopular
	case SortPopular, SortRating, SortPriceLow, SortPriceHigh:
	default:
		return params, common.NewAppError("INVALID_SORT", "sort must be one of popular, rating, price-low, price-high", http.StatusBadRequest, nil).
			WithDetails(map[string]string{"field": "sort"})
	}
	switch params.Price {
	case "":
		params.Price = PriceAll
	case PriceAll, PriceFree, PriceUnder100, Price100To200, PriceOver200:
	default:
		return params, common.NewAppError("INVALID_PRICE", "price must be one of all, free, under-100, 100-200, over-200", http.StatusBadRequest, nil).
			WithDetails(map[string]string{"field": "price"})
	}
	return params, nil
}

// List returns the courses matching params in the requested order.
func (s *Service) List(params ListParams) []Course {
	query := strings.ToLower(params.Query)
	out := make([]Course, 0, len(s.courses))
	for _, c := range s.courses {
		if params.Level != "" && !strings.EqualFold(c.Level, params.Level) {
			continue
		}
		if params.Category != "" && !strings.EqualFold(c.Category, params.Category) {
			continue
		}
		if !inPriceBucket(c.Price, params.Price) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(c.Title), query) &&
			!strings.Contains(strings.ToLower(c.Description), query) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		switch params.Sort {
		case SortRating:
			return out[i].Rating > out[j].Rating
		case SortPriceLow:
			return out[i].Price < out[j].Price
		case SortPriceHigh:
			return out[i].Price > out[j].Price
		default:
			return out[i].ReviewCount > out[j].ReviewCount
		}
	})
	return out
}

func inPriceBucket(price int64, bucket string) bool {
	switch bucket {
	case PriceFree:
		return price == 0
	case PriceUnder100:
		return price > 0 && price < 10000
	case Price100To200:
		return price >= 10000 && price <= 20000
	case PriceOver200:
		return price > 20000
	default:
		return true
	}
}

// Get returns a course by id.
func (s *Service) Get(id string) (Course, error) {
	c, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return Course{}, common.NewAppError("COURSE_NOT_FOUND", "course not found", http.StatusNotFound, nil)
	}
	return c, nil
}

// Categories returns the distinct categories in catalog order.
func (s *Service) Categories() []string {
	seen := make(map[string]struct{}, len(s.courses))
	out := make([]string, 0, len(s.courses))
	for _, c := range s.courses {
		if _, ok := seen[c.Category]; ok {
			continue
		}
		seen[c.Category] = struct{}{}
		out = append(out, c.Category)
	}
	return out
}
