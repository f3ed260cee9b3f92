package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubEmbedder struct {
	embedding []float32
	err       error
	calls     int
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	s.calls++
	return s.embedding, s.err
}

func (s *stubEmbedder) Dimensions() int { return len(s.embedding) }

type stubVectorIndex struct {
	hits    []string
	err     error
	upserts int
}

func (s *stubVectorIndex) Upsert(_ context.Context, _, _, _ string, _ map[string]string, _ []float32) error {
	s.upserts++
	return s.err
}

func (s *stubVectorIndex) Query(_ context.Context, _ string, _ []float32, _ int) ([]string, error) {
	return s.hits, s.err
}

type stubKeywordIndex struct {
	hits    []string
	err     error
	upserts int
}

func (s *stubKeywordIndex) Upsert(_ context.Context, _, _, _ string, _ map[string]string) error {
	s.upserts++
	return s.err
}

func (s *stubKeywordIndex) Query(_ context.Context, _, _ string, _ int) ([]string, error) {
	return s.hits, s.err
}

func (s *stubKeywordIndex) List(_ context.Context, _ string) ([]DocumentInfo, error) {
	return []DocumentInfo{{ID: "d1"}}, s.err
}

func (s *stubKeywordIndex) Close() error { return nil }

func TestHybridRetriever_IngestWritesBothIndexes(t *testing.T) {
	embedder := &stubEmbedder{embedding: []float32{1, 0, 0}}
	vector := &stubVectorIndex{}
	keyword := &stubKeywordIndex{}
	r := NewHybridRetriever(embedder, vector, keyword, nil, nil, nil)

	id, err := r.Ingest(context.Background(), "acme", "some document", nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if id == "" {
		t.Error("Ingest returned empty document id")
	}
	if vector.upserts != 1 || keyword.upserts != 1 {
		t.Errorf("upserts vector=%d keyword=%d, want 1 each", vector.upserts, keyword.upserts)
	}
}

func TestHybridRetriever_IngestRequiresTenantAndText(t *testing.T) {
	embedder := &stubEmbedder{embedding: []float32{1, 0, 0}}
	r := NewHybridRetriever(embedder, &stubVectorIndex{}, &stubKeywordIndex{}, nil, nil, nil)

	if _, err := r.Ingest(context.Background(), "", "text", nil); err == nil {
		t.Error("expected error for missing tenant id")
	}
	if _, err := r.Ingest(context.Background(), "acme", "", nil); err == nil {
		t.Error("expected error for empty text")
	}
	if embedder.calls != 0 {
		t.Error("validation failures must not reach the embedder")
	}
}

func TestHybridRetriever_EmbedFailureLeavesNoWrites(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("quota exceeded")}
	vector := &stubVectorIndex{}
	keyword := &stubKeywordIndex{}
	r := NewHybridRetriever(embedder, vector, keyword, nil, nil, nil)

	if _, err := r.Ingest(context.Background(), "acme", "text", nil); err == nil {
		t.Fatal("expected embed error to surface")
	}
	if vector.upserts != 0 || keyword.upserts != 0 {
		t.Error("embed failure must leave both indexes untouched")
	}
}

func TestHybridRetriever_PartialWriteSurfaced(t *testing.T) {
	embedder := &stubEmbedder{embedding: []float32{1, 0, 0}}
	vector := &stubVectorIndex{}
	keyword := &stubKeywordIndex{err: errors.New("disk full")}
	r := NewHybridRetriever(embedder, vector, keyword, nil, nil, nil)

	_, err := r.Ingest(context.Background(), "acme", "text", nil)
	if err == nil {
		t.Fatal("expected partial-write error")
	}
	if !strings.Contains(err.Error(), "vector write already applied") {
		t.Errorf("error = %v, must name the inconsistency", err)
	}
}

func TestHybridRetriever_SearchFusesBothIndexes(t *testing.T) {
	embedder := &stubEmbedder{embedding: []float32{1, 0, 0}}
	vector := &stubVectorIndex{hits: []string{"v1", "shared"}}
	keyword := &stubKeywordIndex{hits: []string{"shared", "k1"}}
	r := NewHybridRetriever(embedder, vector, keyword, nil, nil, nil)

	got, err := r.Search(context.Background(), "acme", "query", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"v1", "shared", "k1"}
	if len(got) != len(want) {
		t.Fatalf("results = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("results[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHybridRetriever_SearchDefaultsK(t *testing.T) {
	embedder := &stubEmbedder{embedding: []float32{1, 0, 0}}
	hits := []string{"a", "b", "c", "d", "e", "f", "g"}
	r := NewHybridRetriever(embedder, &stubVectorIndex{hits: hits}, &stubKeywordIndex{}, nil, nil, nil)

	got, err := r.Search(context.Background(), "acme", "query", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != DefaultTopK {
		t.Errorf("got %d results, want DefaultTopK=%d", len(got), DefaultTopK)
	}
}

func TestHybridRetriever_SearchIndexErrorPropagates(t *testing.T) {
	embedder := &stubEmbedder{embedding: []float32{1, 0, 0}}
	keyword := &stubKeywordIndex{err: errors.New("locked")}
	r := NewHybridRetriever(embedder, &stubVectorIndex{}, keyword, nil, nil, nil)

	if _, err := r.Search(context.Background(), "acme", "query", 5); err == nil {
		t.Fatal("expected index error to surface")
	}
}

func TestHybridRetriever_TenantIsolationEndToEnd(t *testing.T) {
	// Real in-memory chromem plus real SQLite, same orthonormal embeddings so
	// only the tenant partition can separate the results.
	embedder := &stubEmbedder{embedding: []float32{1, 0, 0}}
	vector, err := NewVectorIndex("", embedder)
	if err != nil {
		t.Fatalf("NewVectorIndex: %v", err)
	}
	keyword := newTestKeywordIndex(t)
	r := NewHybridRetriever(embedder, vector, keyword, nil, nil, nil)
	ctx := context.Background()

	if _, err := r.Ingest(ctx, "acme", "acme internal roadmap", nil); err != nil {
		t.Fatalf("Ingest acme: %v", err)
	}
	if _, err := r.Ingest(ctx, "globex", "globex internal roadmap", nil); err != nil {
		t.Fatalf("Ingest globex: %v", err)
	}

	got, err := r.Search(ctx, "acme", "roadmap", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0] != "acme internal roadmap" {
		t.Errorf("results = %v, tenant partition leaked", got)
	}

	docs, err := r.List(ctx, "globex")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("docs = %v, want exactly globex's document", docs)
	}
}

func TestHybridRetriever_SearchRequiresTenant(t *testing.T) {
	r := NewHybridRetriever(&stubEmbedder{}, &stubVectorIndex{}, &stubKeywordIndex{}, nil, nil, nil)
	if _, err := r.Search(context.Background(), "", "query", 5); err == nil {
		t.Error("expected error for missing tenant id")
	}
	if _, err := r.List(context.Background(), ""); err == nil {
		t.Error("expected error for missing tenant id")
	}
}
