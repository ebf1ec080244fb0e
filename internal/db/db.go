package db

import (
	"context"
	"time"
)

// Store is the catalog store facade. Consumers depend on the narrow
// sub-interfaces below.
type Store interface {
	Pinger
	HashStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based row operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// FieldType enumerates FT schema field kinds used by the catalog index.
type FieldType string

const (
	FieldTag     FieldType = "TAG"
	FieldText    FieldType = "TEXT"
	FieldVector  FieldType = "VECTOR"
	FieldNumeric FieldType = "NUMERIC"
)

// IndexField is one FT.CREATE schema entry.
type IndexField struct {
	Name      string
	Type      FieldType
	VectorDim int // VECTOR fields only
}

// IndexDefinition describes an FT index over hash keys with a shared prefix.
type IndexDefinition struct {
	Name   string
	Prefix string
	Fields []IndexField
}

// KNNQuery is a vector similarity search request. Prefilter, when non-empty,
// is an FT query string restricting the candidate set before KNN.
type KNNQuery struct {
	IndexName    string
	Prefilter    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchEntry is one matched row: key, similarity score, returned fields.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult is a parsed FT.SEARCH response.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}
