package domain

import "strings"

// Category is the fixed catalog taxonomy used for classifier output and
// store-side filtering. The zero value means "uncertain".
type Category string

const (
	CategoryUnknown     Category = ""
	CategoryAudio       Category = "audio"
	CategoryClothing    Category = "clothing"
	CategoryShoes       Category = "shoes"
	CategoryTech        Category = "tech"
	CategoryFragrance   Category = "fragrance"
	CategoryAccessories Category = "accessories"
)

// Categories returns the catalog taxonomy in display order.
func Categories() []Category {
	return []Category{
		CategoryAudio,
		CategoryClothing,
		CategoryShoes,
		CategoryTech,
		CategoryFragrance,
		CategoryAccessories,
	}
}

// ParseCategory maps free-form model output onto the taxonomy.
// Returns (CategoryUnknown, false) for empty, "null" or unrecognized values.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(CategoryAudio):
		return CategoryAudio, true
	case string(CategoryClothing):
		return CategoryClothing, true
	case string(CategoryShoes):
		return CategoryShoes, true
	case string(CategoryTech):
		return CategoryTech, true
	case string(CategoryFragrance):
		return CategoryFragrance, true
	case string(CategoryAccessories):
		return CategoryAccessories, true
	default:
		return CategoryUnknown, false
	}
}

func (c Category) String() string { return string(c) }
