package listing

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name  string
		total int
		page  int
		want  []int
		next  bool
		prev  bool
		count int
	}{
		{name: "second page partial", total: 15, page: 2, want: []int{13, 14, 15}, next: false, prev: true, count: 2},
		{name: "first page", total: 15, page: 1, want: seq(12), next: true, prev: false, count: 2},
		{name: "exact fit", total: 12, page: 1, want: seq(12), next: false, prev: false, count: 1},
		{name: "past the end", total: 15, page: 3, want: []int{}, next: false, prev: true, count: 2},
		{name: "page zero", total: 15, page: 0, want: []int{}, next: false, prev: false, count: 2},
		{name: "negative page", total: 15, page: -4, want: []int{}, next: false, prev: false, count: 2},
		{name: "empty", total: 0, page: 1, want: []int{}, next: false, prev: false, count: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := seq(tt.total)
			got := Paginate(items, tt.page, PageSize)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("page mismatch (-want +got):\n%s", diff)
			}

			w := NewWindow(tt.page, tt.total, PageSize)
			assert.Equal(t, tt.next, w.HasNext, "has next")
			assert.Equal(t, tt.prev, w.HasPrev, "has prev")
			assert.Equal(t, tt.count, w.PageCount, "page count")
		})
	}
}

func TestPaginateCoversEverythingOnce(t *testing.T) {
	for _, total := range []int{0, 1, 11, 12, 13, 24, 25, 100} {
		items := seq(total)
		var joined []int
		for page := 1; ; page++ {
			chunk := Paginate(items, page, PageSize)
			if len(chunk) == 0 {
				break
			}
			joined = append(joined, chunk...)
		}
		if total == 0 {
			assert.Empty(t, joined)
			continue
		}
		if diff := cmp.Diff(items, joined); diff != "" {
			t.Fatalf("total %d: pages do not reproduce input (-want +got):\n%s", total, diff)
		}
	}
}
