package knowledge

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"ticketbot/internal/domain"
)

type fakeEmbedder struct {
	dim   int
	calls [][]string
}

func (f *fakeEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	vecs := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, f.dim)
		v[0] = 1
		vecs[i] = v
	}
	return vecs, nil
}

func (f *fakeEmbedder) Dimension() int { return f.dim }

type fakeStore struct {
	collections map[string][]domain.Point
	created     map[string]int
	dropped     []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		collections: map[string][]domain.Point{},
		created:     map[string]int{},
	}
}

func (f *fakeStore) HasCollection(ctx context.Context, name string) (bool, error) {
	_, ok := f.collections[name]
	return ok, nil
}

func (f *fakeStore) DropCollection(ctx context.Context, name string) error {
	delete(f.collections, name)
	f.dropped = append(f.dropped, name)
	return nil
}

func (f *fakeStore) CreateCollection(ctx context.Context, name string, dim int) error {
	f.collections[name] = nil
	f.created[name] = dim
	return nil
}

func (f *fakeStore) Insert(ctx context.Context, name string, points []domain.Point) error {
	f.collections[name] = append(f.collections[name], points...)
	return nil
}

func (f *fakeStore) Search(ctx context.Context, name string, vector []float32, topK int) ([]domain.ScoredPoint, error) {
	return nil, nil
}

func (f *fakeStore) Query(ctx context.Context, name string, limit int) ([]domain.Point, error) {
	return f.collections[name], nil
}

func (f *fakeStore) Count(ctx context.Context, name string) (int, error) {
	return len(f.collections[name]), nil
}

func TestIngest(t *testing.T) {
	emb := &fakeEmbedder{dim: 4}
	store := newFakeStore()
	ix := NewIndex(emb, store, nil, 0)

	sheet := Sheet{
		Category: "General Query",
		Columns:  []string{"subject", "email_body", "loan_status"},
		Rows: []map[string]string{
			{"subject": "Refund delay", "email_body": "Check my refund", "loan_status": "DISBURSED"},
			{"subject": "Card blocked", "email_body": "Unblock please", "loan_status": ""},
		},
	}
	if err := ix.Ingest(context.Background(), sheet); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if store.created["general_query"] != 4 {
		t.Fatalf("created = %v", store.created)
	}
	points := store.collections["general_query"]
	if len(points) != 2 {
		t.Fatalf("points = %d, want 2", len(points))
	}
	if points[0].ID != 1 || points[1].ID != 2 {
		t.Fatalf("ids = %d, %d", points[0].ID, points[1].ID)
	}
	if points[0].Fields["loan_status"] != "DISBURSED" {
		t.Fatalf("payload = %v", points[0].Fields)
	}

	// embedding text is subject and body joined with a single space
	if len(emb.calls) != 1 || emb.calls[0][0] != "Refund delay Check my refund" {
		t.Fatalf("encode calls = %v", emb.calls)
	}
}

func TestIngestReplacesExistingCollection(t *testing.T) {
	emb := &fakeEmbedder{dim: 2}
	store := newFakeStore()
	ix := NewIndex(emb, store, nil, 0)

	sheet := Sheet{
		Category: "cat",
		Columns:  []string{"subject", "email_body"},
		Rows:     []map[string]string{{"subject": "a", "email_body": "b"}},
	}
	if err := ix.Ingest(context.Background(), sheet); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	if err := ix.Ingest(context.Background(), sheet); err != nil {
		t.Fatalf("second Ingest: %v", err)
	}

	if len(store.dropped) != 1 || store.dropped[0] != "cat" {
		t.Fatalf("dropped = %v", store.dropped)
	}
	// same sheet twice means same count, not doubled
	if n := len(store.collections["cat"]); n != 1 {
		t.Fatalf("points after re-ingest = %d, want 1", n)
	}
}

func TestIngestMissingRequiredColumnLeavesEmptyCollection(t *testing.T) {
	emb := &fakeEmbedder{dim: 2}
	store := newFakeStore()
	ix := NewIndex(emb, store, nil, 0)

	sheet := Sheet{
		Category: "partial",
		Columns:  []string{"subject", "loan_status"},
		Rows:     []map[string]string{{"subject": "a", "loan_status": "CLOSED"}},
	}
	if err := ix.Ingest(context.Background(), sheet); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if _, ok := store.collections["partial"]; !ok {
		t.Fatalf("collection should exist")
	}
	if n := len(store.collections["partial"]); n != 0 {
		t.Fatalf("points = %d, want 0", n)
	}
	if len(emb.calls) != 0 {
		t.Fatalf("embedder should not be called, got %d calls", len(emb.calls))
	}
}

func TestIngestTruncatesLongFields(t *testing.T) {
	emb := &fakeEmbedder{dim: 2}
	store := newFakeStore()
	ix := NewIndex(emb, store, nil, 10)

	long := strings.Repeat("x", 50)
	sheet := Sheet{
		Category: "cat",
		Columns:  []string{"subject", "email_body"},
		Rows:     []map[string]string{{"subject": "s", "email_body": long}},
	}
	if err := ix.Ingest(context.Background(), sheet); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	got := store.collections["cat"][0].Fields["email_body"]
	if len(got) != 10 {
		t.Fatalf("field length = %d, want 10", len(got))
	}
}

func TestIngestTruncationKeepsRuneBoundary(t *testing.T) {
	emb := &fakeEmbedder{dim: 2}
	store := newFakeStore()
	ix := NewIndex(emb, store, nil, 5)

	sheet := Sheet{
		Category: "cat",
		Columns:  []string{"subject", "email_body"},
		Rows:     []map[string]string{{"subject": "s", "email_body": strings.Repeat("é", 6)}},
	}
	if err := ix.Ingest(context.Background(), sheet); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	got := store.collections["cat"][0].Fields["email_body"]
	// é is two bytes; a 5-byte cut must back off to the 4-byte boundary
	if len(got) != 4 {
		t.Fatalf("field length = %d, want 4", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncated field is not valid UTF-8: %q", got)
	}
}

func TestIngestEmptyCategoryName(t *testing.T) {
	ix := NewIndex(&fakeEmbedder{dim: 2}, newFakeStore(), nil, 0)
	err := ix.Ingest(context.Background(), Sheet{Category: "  "})
	if err == nil {
		t.Fatalf("expected error for unnameable sheet")
	}
}
