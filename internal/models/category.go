package models

import "strings"

// Category is the closed set of spend categories a transaction can carry.
type Category string

const (
	CategoryAirfare             Category = "Airfare"
	CategoryLodging             Category = "Lodging"
	CategoryTransportation      Category = "Transportation"
	CategoryCommunication       Category = "Communication"
	CategoryClientEntertainment Category = "Client entertainment"
	CategoryMeals               Category = "Meals"
	CategoryOther               Category = "Other"
	CategoryNonTravel           Category = "Non-travel"
)

// AllCategories lists every valid category, in display order.
var AllCategories = []Category{
	CategoryAirfare,
	CategoryLodging,
	CategoryTransportation,
	CategoryCommunication,
	CategoryClientEntertainment,
	CategoryMeals,
	CategoryOther,
	CategoryNonTravel,
}

// ParseCategory maps a free-form category name to the closed enumeration.
// Unknown or empty names map to CategoryOther.
func ParseCategory(name string) Category {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, c := range AllCategories {
		if strings.ToLower(string(c)) == normalized {
			return c
		}
	}
	switch normalized {
	case "entertainment", "client-entertainment":
		return CategoryClientEntertainment
	case "hotel", "accommodation":
		return CategoryLodging
	case "flight", "air":
		return CategoryAirfare
	case "":
		return CategoryOther
	}
	return CategoryOther
}

// IsUncategorized reports whether the category carries no reviewable
// classification ("Other", "Uncategorized" or empty).
func (c Category) IsUncategorized() bool {
	switch strings.ToLower(strings.TrimSpace(string(c))) {
	case "", "other", "uncategorized":
		return true
	}
	return false
}
