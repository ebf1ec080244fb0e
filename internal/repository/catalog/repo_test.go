package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/trovato-shop/trovato/internal/db"
	"github.com/trovato-shop/trovato/internal/domain"
)

// --- Mock store ---

type mockStore struct {
	hashes      map[string]map[string]string
	scanKeys    []string
	knnResult   *db.SearchResult
	knnErr      error
	knnQuery    *db.KNNQuery
	listResult  *db.SearchResult
	listQuery   string
	counts      map[string]int
	indexExists bool
	createdDef  *db.IndexDefinition
}

func newMockStore() *mockStore {
	return &mockStore{hashes: make(map[string]map[string]string), counts: make(map[string]int)}
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.hashes[key] == nil {
		m.hashes[key] = make(map[string]string)
	}
	for k, v := range fields {
		m.hashes[key][k] = v
	}
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	return m.hashes[key], nil
}

func (m *mockStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i] = m.hashes[k]
	}
	return out, nil
}

func (m *mockStore) Scan(_ context.Context, _ string) ([]string, error) {
	return m.scanKeys, nil
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.createdDef = def
	return nil
}

func (m *mockStore) IndexExists(_ context.Context, _ string) (bool, error) {
	return m.indexExists, nil
}

func (m *mockStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.knnQuery = q
	if m.knnErr != nil {
		return nil, m.knnErr
	}
	if m.knnResult == nil {
		return &db.SearchResult{}, nil
	}
	return m.knnResult, nil
}

func (m *mockStore) SearchList(
	_ context.Context, _, query string, _, _ int, _ []string,
) (*db.SearchResult, error) {
	m.listQuery = query
	if m.listResult == nil {
		return &db.SearchResult{}, nil
	}
	return m.listResult, nil
}

func (m *mockStore) SearchCount(_ context.Context, _, query string) (int, error) {
	return m.counts[query], nil
}

// --- Tests ---

func TestUpsertGetRoundTrip(t *testing.T) {
	store := newMockStore()
	repo := New(store, "", 512)

	item := domain.Reconstruct(
		"p1", "AirPods Pro 2", domain.CategoryAudio, "Apple",
		"https://img.example/p1.jpg", []string{"anc", "wireless"},
		[]float32{0.6, 0.8},
	)
	if err := repo.Upsert(context.Background(), item); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.GetByID(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name() != "AirPods Pro 2" || got.Category() != domain.CategoryAudio {
		t.Errorf("unexpected item: %s %s", got.Name(), got.Category())
	}
	if len(got.Features()) != 2 || got.Features()[0] != "anc" {
		t.Errorf("unexpected features: %v", got.Features())
	}
	if !got.HasVector() || len(got.Vector()) != 2 {
		t.Errorf("vector lost in round trip: %v", got.Vector())
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := New(newMockStore(), "", 512)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetVector_MarksIndexed(t *testing.T) {
	store := newMockStore()
	repo := New(store, "", 512)

	if err := repo.SetVector(context.Background(), "p1", []float32{1, 0}); err != nil {
		t.Fatalf("set vector: %v", err)
	}

	fields := store.hashes[domain.KeyPrefix+"item:p1"]
	if fields[fieldIndexed] != "true" {
		t.Error("SetVector must flip the indexed tag")
	}
	if v := db.BytesToVector(fields[fieldVector]); len(v) != 2 || v[0] != 1 {
		t.Errorf("stored vector mismatch: %v", v)
	}
}

func TestSearchByVector_ThresholdAndLimit(t *testing.T) {
	store := newMockStore()
	store.knnResult = &db.SearchResult{
		Total: 3,
		Entries: []db.SearchEntry{
			{Key: domain.KeyPrefix + "item:a", Score: 0.9, Fields: map[string]string{fieldName: "A"}},
			{Key: domain.KeyPrefix + "item:b", Score: 0.3, Fields: map[string]string{fieldName: "B"}},
			{Key: domain.KeyPrefix + "item:c", Score: 0.5, Fields: map[string]string{fieldName: "C"}},
		},
	}
	repo := New(store, "", 512)

	matches, err := repo.SearchByVector(context.Background(), []float32{1}, 0.45, 8)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches above threshold, got %d", len(matches))
	}
	for _, m := range matches {
		if m.Score < 0.45 {
			t.Errorf("match %s below threshold: %f", m.Item.ID(), m.Score)
		}
		if m.Source != domain.RankVector {
			t.Errorf("expected vector rank source, got %s", m.Source)
		}
	}
	if matches[0].Item.ID() != "a" || matches[1].Item.ID() != "c" {
		t.Errorf("expected score-descending order, got %s, %s", matches[0].Item.ID(), matches[1].Item.ID())
	}
	if store.knnQuery.Prefilter == "" {
		t.Error("KNN query must prefilter on indexed items")
	}
}

func TestSearchByVector_EmptyIsNotError(t *testing.T) {
	repo := New(newMockStore(), "", 512)

	matches, err := repo.SearchByVector(context.Background(), []float32{1}, 0.45, 8)
	if err != nil {
		t.Fatalf("empty KNN result must not error: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected empty result, got %d", len(matches))
	}
}

func TestListByCategory_BuildsTagQuery(t *testing.T) {
	store := newMockStore()
	store.listResult = &db.SearchResult{
		Total: 1,
		Entries: []db.SearchEntry{
			{Key: domain.KeyPrefix + "item:x", Fields: map[string]string{fieldName: "X", fieldCategory: "audio"}},
		},
	}
	repo := New(store, "", 512)

	items, err := repo.ListByCategory(context.Background(), domain.CategoryAudio, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if store.listQuery != "@category:{audio}" {
		t.Errorf("unexpected query: %s", store.listQuery)
	}
	if len(items) != 1 || items[0].ID() != "x" {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestIDs_SortedAndStripped(t *testing.T) {
	store := newMockStore()
	store.scanKeys = []string{
		domain.KeyPrefix + "item:b",
		domain.KeyPrefix + "item:a",
	}
	repo := New(store, "", 512)

	ids, err := repo.IDs(context.Background())
	if err != nil {
		t.Fatalf("ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("unexpected ids: %v", ids)
	}
}

func TestCounts(t *testing.T) {
	store := newMockStore()
	store.counts["*"] = 10
	store.counts["@indexed:{true}"] = 7
	repo := New(store, "", 512)

	total, indexed, err := repo.Counts(context.Background())
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if total != 10 || indexed != 7 {
		t.Errorf("got total=%d indexed=%d", total, indexed)
	}
}

func TestEnsureIndex_SkipsWhenPresent(t *testing.T) {
	store := newMockStore()
	store.indexExists = true
	repo := New(store, "", 512)

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if store.createdDef != nil {
		t.Error("index must not be recreated when it exists")
	}
}

func TestEnsureIndex_CreatesSchema(t *testing.T) {
	store := newMockStore()
	repo := New(store, "", 512)

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if store.createdDef == nil {
		t.Fatal("expected index creation")
	}

	var vectorDim int
	for _, f := range store.createdDef.Fields {
		if f.Type == db.FieldVector {
			vectorDim = f.VectorDim
		}
	}
	if vectorDim != 512 {
		t.Errorf("vector field dim = %d, want 512", vectorDim)
	}
}
