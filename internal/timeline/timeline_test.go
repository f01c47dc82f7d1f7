package timeline

import (
	"testing"

	"github.com/getsentry/ftracer/internal/testutil"
)

func TestOrdered(t *testing.T) {
	tests := []struct {
		name       string
		timestamps []uint64
		limit      int
		want       []uint64
	}{
		{
			name:       "empty",
			timestamps: nil,
			want:       []uint64{},
		},
		{
			name:       "no limit",
			timestamps: []uint64{30, 10, 20},
			want:       []uint64{10, 20, 30},
		},
		{
			name:       "limit keeps the most recent",
			timestamps: []uint64{50, 10, 40, 20, 30},
			limit:      2,
			want:       []uint64{40, 50},
		},
		{
			name:       "limit larger than input",
			timestamps: []uint64{2, 1},
			limit:      10,
			want:       []uint64{1, 2},
		},
		{
			name:       "limit equal to input",
			timestamps: []uint64{3, 1, 2},
			limit:      3,
			want:       []uint64{1, 2, 3},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Ordered(test.timestamps, test.limit)
			if diff := testutil.Diff(got, test.want); diff != "" {
				t.Fatalf("Result mismatch: got - want +\n%s", diff)
			}
		})
	}
}

func TestOrderedDoesNotMutateInput(t *testing.T) {
	input := []uint64{3, 1, 2}
	_ = Ordered(input, 1)
	if diff := testutil.Diff(input, []uint64{3, 1, 2}); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}
