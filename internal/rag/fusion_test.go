package rag

import (
	"reflect"
	"testing"
)

func TestUnionFuser(t *testing.T) {
	tests := []struct {
		name        string
		vectorHits  []string
		keywordHits []string
		k           int
		want        []string
	}{
		{
			name:        "dedupe by text",
			vectorHits:  []string{"a", "b"},
			keywordHits: []string{"b", "c"},
			k:           5,
			want:        []string{"a", "b", "c"},
		},
		{
			name:        "vector hits ordered first",
			vectorHits:  []string{"v1", "v2"},
			keywordHits: []string{"k1"},
			k:           5,
			want:        []string{"v1", "v2", "k1"},
		},
		{
			name:        "truncated to k",
			vectorHits:  []string{"a", "b", "c"},
			keywordHits: []string{"d", "e"},
			k:           2,
			want:        []string{"a", "b"},
		},
		{
			name:        "keyword only",
			keywordHits: []string{"k1", "k2"},
			k:           5,
			want:        []string{"k1", "k2"},
		},
		{name: "both empty", k: 5, want: []string{}},
		{name: "k zero", vectorHits: []string{"a"}, k: 0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnionFuser{}.Fuse(tt.vectorHits, tt.keywordHits, tt.k)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Fuse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRRFFuser_AgreementRanksFirst(t *testing.T) {
	// "b" appears in both lists so its reciprocal-rank score beats "a",
	// which only the vector index returned, at a better single rank.
	got := RRFFuser{}.Fuse([]string{"a", "b"}, []string{"b", "c"}, 3)
	if len(got) != 3 || got[0] != "b" {
		t.Errorf("Fuse() = %v, want b ranked first", got)
	}
}

func TestRRFFuser_TiesKeepFirstSeenOrder(t *testing.T) {
	got := RRFFuser{}.Fuse([]string{"a"}, []string{"b"}, 2)
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Fuse() = %v, ties must resolve in first-seen order", got)
	}
}

func TestRRFFuser_TruncatesToK(t *testing.T) {
	got := RRFFuser{K: 60}.Fuse([]string{"a", "b", "c"}, nil, 1)
	if !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Fuse() = %v, want [a]", got)
	}
}
