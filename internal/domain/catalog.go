package domain

import "strings"

// KeyPrefix namespaces all catalog keys in the store.
const KeyPrefix = "trovato:"

// Item is a catalog row as seen by the search pipeline. The catalog itself is
// owned by the storefront; this pipeline reads items and writes back only the
// embedding vector.
type Item struct {
	id       string
	name     string
	category Category
	brand    string
	imageURL string
	features []string
	vector   []float32
}

// NewItem builds an item without a stored embedding.
func NewItem(id, name string, category Category, brand, imageURL string, features []string) Item {
	return Item{
		id:       id,
		name:     name,
		category: category,
		brand:    brand,
		imageURL: imageURL,
		features: features,
	}
}

// Reconstruct rebuilds an item from storage, including its embedding.
func Reconstruct(
	id, name string, category Category, brand, imageURL string,
	features []string, vector []float32,
) Item {
	it := NewItem(id, name, category, brand, imageURL, features)
	it.vector = vector
	return it
}

func (i Item) ID() string         { return i.id }
func (i Item) Name() string       { return i.name }
func (i Item) Category() Category { return i.category }
func (i Item) Brand() string      { return i.brand }
func (i Item) ImageURL() string   { return i.imageURL }
func (i Item) Features() []string { return i.features }
func (i Item) Vector() []float32  { return i.vector }

// HasImage reports whether the item can be embedded or visually compared.
func (i Item) HasImage() bool { return i.imageURL != "" }

// HasVector reports whether an embedding is already stored.
func (i Item) HasVector() bool { return len(i.vector) > 0 }

// SetVector attaches a freshly computed embedding.
func (i *Item) SetVector(v []float32) { i.vector = v }

// LexicalText concatenates the fields the lexical matcher scores against.
func (i Item) LexicalText() string {
	parts := make([]string, 0, 3+len(i.features))
	parts = append(parts, i.name, string(i.category), i.brand)
	parts = append(parts, i.features...)
	return strings.Join(parts, " ")
}

// DedupeItems removes duplicate ids, keeping the first occurrence in order.
func DedupeItems(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, it := range items {
		if _, ok := seen[it.id]; ok {
			continue
		}
		seen[it.id] = struct{}{}
		out = append(out, it)
	}
	return out
}
