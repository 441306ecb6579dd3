package query

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixedTime = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

func TestChunkSubjects(t *testing.T) {
	long := strings.Repeat("x", 40)

	tests := []struct {
		name     string
		subjects []string
		maxCount int
		maxBytes int
		want     [][]string
	}{
		{"empty", nil, 10, 100, nil},
		{"single chunk", []string{"a", "b", "c"}, 10, 100, [][]string{{"a", "b", "c"}}},
		{"by count", []string{"a", "b", "c", "d", "e"}, 2, 100, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}},
		{"by bytes", []string{"aaa", "bbb", "ccc"}, 10, 8, [][]string{{"aaa", "bbb"}, {"ccc"}}},
		{"oversized subject kept whole", []string{"a", long, "b"}, 10, 10, [][]string{{"a"}, {long}, {"b"}}},
		{"no count limit", []string{"a", "b"}, 0, 0, [][]string{{"a", "b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chunkSubjects(tt.subjects, tt.maxCount, tt.maxBytes)
			assert.Equal(t, tt.want, got)

			var flat []string
			for _, c := range got {
				flat = append(flat, c...)
			}
			assert.Equal(t, len(tt.subjects), len(flat), "every subject appears exactly once")
		})
	}
}
