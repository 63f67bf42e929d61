package domain

import "time"

// DietaryTag is one of the fixed set of dietary labels an item can carry.
type DietaryTag string

const (
	TagVegetarian DietaryTag = "Vegetarian"
	TagVegan      DietaryTag = "Vegan"
	TagGlutenFree DietaryTag = "Gluten-Free"
	TagDairyFree  DietaryTag = "Dairy-Free"
	TagNutFree    DietaryTag = "Nut-Free"
	TagHalal      DietaryTag = "Halal"
	TagKosher     DietaryTag = "Kosher"
	TagSpicy      DietaryTag = "Spicy"
)

// DietaryTags lists every valid tag, in display order.
var DietaryTags = []DietaryTag{
	TagVegetarian, TagVegan, TagGlutenFree, TagDairyFree,
	TagNutFree, TagHalal, TagKosher, TagSpicy,
}

func ValidDietaryTag(t DietaryTag) bool {
	for _, v := range DietaryTags {
		if v == t {
			return true
		}
	}
	return false
}

type MenuItem struct {
	ID          int64                 `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Price       float64               `json:"price"`
	CategoryID  *int64                `json:"category_id"`
	ImageURL    *string               `json:"image_url"`
	ImagePath   *string               `json:"image_path"`
	Available   bool                  `json:"available"`
	DietaryTags []DietaryTag          `json:"dietary_tags"`
	Portions    []PortionSize         `json:"portion_sizes"`
	Options     []CustomizationOption `json:"customization_options"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OrderIndex  int       `json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PortionSize struct {
	ID         int64   `json:"id"`
	MenuItemID int64   `json:"menu_item_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	IsDefault  bool    `json:"is_default"`
}

type CustomizationOption struct {
	ID              int64                 `json:"id"`
	MenuItemID      int64                 `json:"menu_item_id"`
	Name            string                `json:"name"`
	PriceAdjustment float64               `json:"price_adjustment"`
	MaxSelections   int                   `json:"max_selections"`
	IsRequired      bool                  `json:"is_required"`
	Choices         []CustomizationChoice `json:"choices"`
}

type CustomizationChoice struct {
	ID              int64   `json:"id"`
	OptionID        int64   `json:"option_id"`
	Name            string  `json:"name"`
	PriceAdjustment float64 `json:"price_adjustment"`
	IsDefault       bool    `json:"is_default"`
}

// View is an append-only analytics event recorded on each customer page visit.
type View struct {
	ID         int64     `json:"id"`
	MenuItemID int64     `json:"menu_item_id"`
	ViewedAt   time.Time `json:"viewed_at"`
}

type UserPreferences struct {
	UserID         string       `json:"user_id"`
	DietaryFilters []DietaryTag `json:"dietary_filters"`
	Favorites      []string     `json:"favorites"`
	DarkMode       bool         `json:"dark_mode"`
	Language       string       `json:"language"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
