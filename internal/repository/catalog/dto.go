package catalog

import (
	"encoding/json"

	"github.com/trovato-shop/trovato/internal/db"
	"github.com/trovato-shop/trovato/internal/domain"
)

// Hash field names for catalog rows.
const (
	fieldName     = "name"
	fieldCategory = "category"
	fieldBrand    = "brand"
	fieldImageURL = "image_url"
	fieldFeatures = "features"
	fieldVector   = "vector"
	fieldIndexed  = "indexed"
)

// itemFields are the non-vector fields returned by list queries.
var itemFields = []string{fieldName, fieldCategory, fieldBrand, fieldImageURL, fieldFeatures}

// itemFromFields rebuilds a domain item from stored hash fields.
func itemFromFields(id string, fields map[string]string) domain.Item {
	var features []string
	if raw := fields[fieldFeatures]; raw != "" {
		// Features are stored as a JSON array; a corrupt field degrades to none.
		_ = json.Unmarshal([]byte(raw), &features)
	}

	category, _ := domain.ParseCategory(fields[fieldCategory])

	return domain.Reconstruct(
		id,
		fields[fieldName],
		category,
		fields[fieldBrand],
		fields[fieldImageURL],
		features,
		db.BytesToVector(fields[fieldVector]),
	)
}

// fieldsFromItem serializes a domain item to hash fields.
func fieldsFromItem(it domain.Item) (map[string]string, error) {
	features, err := json.Marshal(it.Features())
	if err != nil {
		return nil, err
	}

	fields := map[string]string{
		fieldName:     it.Name(),
		fieldCategory: it.Category().String(),
		fieldBrand:    it.Brand(),
		fieldImageURL: it.ImageURL(),
		fieldFeatures: string(features),
		fieldIndexed:  "false",
	}
	if it.HasVector() {
		fields[fieldVector] = db.VectorToBytes(it.Vector())
		fields[fieldIndexed] = "true"
	}
	return fields, nil
}
