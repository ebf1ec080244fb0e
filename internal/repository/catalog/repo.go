package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/trovato-shop/trovato/internal/db"
	"github.com/trovato-shop/trovato/internal/domain"
)

// store is the consumer interface for catalog operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo maps catalog rows between the domain and the redis store. The search
// path only reads; the vector field is the one thing the pipeline writes back.
type Repo struct {
	store     store
	keyPrefix string
	vectorDim int
}

// New creates a catalog repository. An empty keyPrefix falls back to the
// default namespace.
func New(s store, keyPrefix string, vectorDim int) *Repo {
	if keyPrefix == "" {
		keyPrefix = domain.KeyPrefix
	}
	return &Repo{store: s, keyPrefix: keyPrefix, vectorDim: vectorDim}
}

func (r *Repo) itemKey(id string) string { return r.keyPrefix + "item:" + id }
func (r *Repo) indexName() string        { return r.keyPrefix + "item:idx" }

// EnsureIndex creates the catalog FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:   r.indexName(),
		Prefix: r.keyPrefix + "item:",
		Fields: []db.IndexField{
			{Name: fieldName, Type: db.FieldText},
			{Name: fieldCategory, Type: db.FieldTag},
			{Name: fieldIndexed, Type: db.FieldTag},
			{Name: fieldVector, Type: db.FieldVector, VectorDim: r.vectorDim},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// GetByID fetches one item.
func (r *Repo) GetByID(ctx context.Context, id string) (domain.Item, error) {
	fields, err := r.store.HGetAll(ctx, r.itemKey(id))
	if err != nil {
		return domain.Item{}, fmt.Errorf("get item %s: %w", id, err)
	}
	if len(fields) == 0 {
		return domain.Item{}, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return itemFromFields(id, fields), nil
}

// Upsert stores a full catalog row. Used by seeding and tests; the search
// path itself never calls it.
func (r *Repo) Upsert(ctx context.Context, it domain.Item) error {
	fields, err := fieldsFromItem(it)
	if err != nil {
		return fmt.Errorf("serialize item %s: %w", it.ID(), err)
	}
	if err := r.store.HSet(ctx, r.itemKey(it.ID()), fields); err != nil {
		return fmt.Errorf("upsert item %s: %w", it.ID(), err)
	}
	return nil
}

// SetVector persists a freshly computed embedding for one item.
// Idempotent; safe to retry.
func (r *Repo) SetVector(ctx context.Context, id string, vector []float32) error {
	fields := map[string]string{
		fieldVector:  db.VectorToBytes(vector),
		fieldIndexed: "true",
	}
	if err := r.store.HSet(ctx, r.itemKey(id), fields); err != nil {
		return fmt.Errorf("set vector %s: %w", id, err)
	}
	return nil
}

// ListByCategory returns items of one category in store order.
func (r *Repo) ListByCategory(ctx context.Context, cat domain.Category, limit int) ([]domain.Item, error) {
	query := fmt.Sprintf("@%s:{%s}", fieldCategory, escapeTag(cat.String()))
	return r.list(ctx, query, limit)
}

// SearchByName returns items whose name contains the given term.
func (r *Repo) SearchByName(ctx context.Context, term string, limit int) ([]domain.Item, error) {
	query := fmt.Sprintf("@%s:(*%s*)", fieldName, escapeQuery(term))
	return r.list(ctx, query, limit)
}

// ListAll returns up to limit items in the store's default ordering.
func (r *Repo) ListAll(ctx context.Context, limit int) ([]domain.Item, error) {
	return r.list(ctx, "*", limit)
}

func (r *Repo) list(ctx context.Context, query string, limit int) ([]domain.Item, error) {
	sr, err := r.store.SearchList(ctx, r.indexName(), query, 0, limit, itemFields)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", query, err)
	}

	items := make([]domain.Item, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, r.keyPrefix+"item:")
		items = append(items, itemFromFields(id, entry.Fields))
	}
	return domain.DedupeItems(items), nil
}

// SearchByVector runs a KNN search over indexed items and keeps matches at or
// above the similarity threshold. An empty result is a valid answer, not an
// error.
func (r *Repo) SearchByVector(
	ctx context.Context, vector []float32, threshold float64, limit int,
) ([]domain.Match, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(),
		Prefilter:    fmt.Sprintf("@%s:{true}", fieldIndexed),
		Vector:       vector,
		K:            limit,
		ReturnFields: itemFields,
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	matches := make([]domain.Match, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		if entry.Score < threshold {
			continue
		}
		id := strings.TrimPrefix(entry.Key, r.keyPrefix+"item:")
		matches = append(matches, domain.Match{
			Item:   itemFromFields(id, entry.Fields),
			Score:  entry.Score,
			Source: domain.RankVector,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// IDs returns every catalog item id, unordered from SCAN but sorted here so
// indexing batches are deterministic.
func (r *Repo) IDs(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, r.keyPrefix+"item:*")
	if err != nil {
		return nil, fmt.Errorf("scan items: %w", err)
	}

	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, r.keyPrefix+"item:"))
	}
	sort.Strings(ids)
	return ids, nil
}

// GetMulti fetches a batch of items by id, skipping ids that vanished.
func (r *Repo) GetMulti(ctx context.Context, ids []string) ([]domain.Item, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.itemKey(id)
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	items := make([]domain.Item, 0, len(maps))
	for i, fields := range maps {
		if len(fields) == 0 {
			continue
		}
		items = append(items, itemFromFields(ids[i], fields))
	}
	return items, nil
}

// Counts reports total and already-indexed item counts for progress reporting.
func (r *Repo) Counts(ctx context.Context) (total, indexed int, err error) {
	total, err = r.store.SearchCount(ctx, r.indexName(), "*")
	if err != nil {
		return 0, 0, fmt.Errorf("count total: %w", err)
	}
	indexed, err = r.store.SearchCount(ctx, r.indexName(), fmt.Sprintf("@%s:{true}", fieldIndexed))
	if err != nil {
		return 0, 0, fmt.Errorf("count indexed: %w", err)
	}
	return total, indexed, nil
}

// --- Query escaping ---

var tagEscaper = strings.NewReplacer(
	",", "\\,", ".", "\\.", "<", "\\<", ">", "\\>",
	"{", "\\{", "}", "\\}", "\"", "\\\"", "'", "\\'",
	":", "\\:", ";", "\\;", "!", "\\!", "@", "\\@",
	"#", "\\#", "$", "\\$", "%", "\\%", "^", "\\^",
	"&", "\\&", "*", "\\*", "(", "\\(", ")", "\\)",
	"-", "\\-", "+", "\\+", "=", "\\=", "~", "\\~",
	" ", "\\ ",
)

func escapeTag(s string) string { return tagEscaper.Replace(s) }

var queryEscaper = strings.NewReplacer(
	`\`, `\\`, `'`, `\'`, `"`, `\"`, `@`, `\@`,
	`{`, `\{`, `}`, `\}`, `(`, `\(`, `)`, `\)`,
	`|`, `\|`, `-`, `\-`, `~`, `\~`, `*`, `\*`,
	`[`, `\[`, `]`, `\]`, `!`, `\!`, `%`, `\%`,
	`^`, `\^`, `$`, `\$`, `<`, `\<`, `>`, `\>`,
	`=`, `\=`, `;`, `\;`, `+`, `\+`, ` `, `\ `,
)

func escapeQuery(s string) string { return queryEscaper.Replace(s) }
