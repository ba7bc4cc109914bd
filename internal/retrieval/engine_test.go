package retrieval

import (
	"context"
	"errors"
	"testing"

	"ticketbot/internal/classifier"
	"ticketbot/internal/domain"
)

type fakeEmbedder struct {
	queries []string
}

func (f *fakeEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	f.queries = append(f.queries, texts...)
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{1, 0}
	}
	return vecs, nil
}

func (f *fakeEmbedder) Dimension() int { return 2 }

type fakeStore struct {
	existing map[string]bool
	hits     []domain.ScoredPoint
	searched string
	topK     int
}

func (f *fakeStore) HasCollection(ctx context.Context, name string) (bool, error) {
	return f.existing[name], nil
}

func (f *fakeStore) DropCollection(ctx context.Context, name string) error          { return nil }
func (f *fakeStore) CreateCollection(ctx context.Context, name string, d int) error { return nil }
func (f *fakeStore) Insert(ctx context.Context, name string, p []domain.Point) error {
	return nil
}

func (f *fakeStore) Search(ctx context.Context, name string, v []float32, topK int) ([]domain.ScoredPoint, error) {
	f.searched = name
	f.topK = topK
	return f.hits, nil
}

func (f *fakeStore) Query(ctx context.Context, name string, limit int) ([]domain.Point, error) {
	return nil, nil
}

func (f *fakeStore) Count(ctx context.Context, name string) (int, error) { return 0, nil }

func TestRetrievePrimaryFieldPriority(t *testing.T) {
	store := &fakeStore{
		existing: map[string]bool{"general_query": true},
		hits: []domain.ScoredPoint{{
			Point: domain.Point{ID: 1, Fields: map[string]string{
				"loan_status":          "nan",
				"repayment_status":     "REGULAR",
				"last_stage_checklist": "also present",
			}},
			Score: 0.87,
		}},
	}
	emb := &fakeEmbedder{}
	e := NewEngine(emb, store, nil, 1)

	out, err := e.Retrieve(context.Background(), "General Query", "my subject my body", true)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if store.searched != "general_query" || store.topK != 1 {
		t.Fatalf("searched %q topK=%d", store.searched, store.topK)
	}
	if len(emb.queries) != 1 || emb.queries[0] != "my subject my body" {
		t.Fatalf("queries = %v", emb.queries)
	}
	if !out.Result.Found || out.Result.Score != 0.87 {
		t.Fatalf("result = %+v", out.Result)
	}
	// "nan" loan_status is skipped, repayment_status wins over checklist
	if out.MatchedField != "repayment_status" || out.Response != "REGULAR" {
		t.Fatalf("matched %q = %q", out.MatchedField, out.Response)
	}
}

func TestRetrieveSecondaryFieldPriority(t *testing.T) {
	store := &fakeStore{
		existing: map[string]bool{"cat": true},
		hits: []domain.ScoredPoint{{
			Point: domain.Point{ID: 1, Fields: map[string]string{
				"loan_status": "DISBURSED",
				"lr_status":   "approved",
			}},
			Score: 0.5,
		}},
	}
	e := NewEngine(&fakeEmbedder{}, store, nil, 1)

	out, err := e.Retrieve(context.Background(), "cat", "q", false)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	// secondary list ignores loan_status entirely
	if out.MatchedField != "lr_status" || out.Response != "approved" {
		t.Fatalf("matched %q = %q", out.MatchedField, out.Response)
	}
}

func TestRetrieveNoHitsIsNotAnError(t *testing.T) {
	store := &fakeStore{existing: map[string]bool{"cat": true}}
	e := NewEngine(&fakeEmbedder{}, store, nil, 1)

	out, err := e.Retrieve(context.Background(), "cat", "q", true)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if out.Result.Found || out.FieldMissing {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestRetrieveFieldMissing(t *testing.T) {
	store := &fakeStore{
		existing: map[string]bool{"cat": true},
		hits: []domain.ScoredPoint{{
			Point: domain.Point{ID: 1, Fields: map[string]string{
				"subject": "something unrelated",
			}},
			Score: 0.9,
		}},
	}
	e := NewEngine(&fakeEmbedder{}, store, nil, 1)

	out, err := e.Retrieve(context.Background(), "cat", "q", true)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if !out.Result.Found || !out.FieldMissing {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Response != "" || out.MatchedField != "" {
		t.Fatalf("unexpected response %q from %q", out.Response, out.MatchedField)
	}
}

func TestRetrieveMissingCollection(t *testing.T) {
	store := &fakeStore{existing: map[string]bool{}}
	e := NewEngine(&fakeEmbedder{}, store, nil, 1)

	_, err := e.Retrieve(context.Background(), "nothere", "q", true)
	if !errors.Is(err, domain.ErrCollectionNotFound) {
		t.Fatalf("err = %v, want ErrCollectionNotFound", err)
	}
}

func TestRetrieveCategoryResolvedThroughTable(t *testing.T) {
	store := &fakeStore{existing: map[string]bool{"predisbursal_loan_query_im_in_1": true}}
	e := NewEngine(&fakeEmbedder{}, store, classifier.DefaultSanitizationTable(), 1)

	_, err := e.Retrieve(context.Background(), "Predisbursal_Loan_Query_IM+_instances", "q", true)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if store.searched != "predisbursal_loan_query_im_in_1" {
		t.Fatalf("searched %q", store.searched)
	}
}

func TestUsePrimaryKeys(t *testing.T) {
	cases := []struct {
		marker string
		want   bool
	}{
		{"IM", true},
		{"IM+", true},
		{"", false},
		{"  ", false},
		{"nan", false},
		{"NaN", false},
	}
	for _, tc := range cases {
		rec := domain.TicketRecord{classifier.ColMarker: tc.marker}
		if got := UsePrimaryKeys(rec); got != tc.want {
			t.Fatalf("UsePrimaryKeys(%q) = %v, want %v", tc.marker, got, tc.want)
		}
	}
}
