package keyword

import (
	"context"
	"testing"

	"github.com/hyperjump/patsearch/internal/models"
)

func testCorpus() []*models.Document {
	return []*models.Document{
		{ID: "US1", Title: "Wheel hub", SearchableText: "Title: Wheel hub Abstract: a hub for a vehicle wheel"},
		{ID: "US2", Title: "Gearbox", SearchableText: "Title: Gearbox Abstract: planetary gear transmission"},
		{ID: "US1", Title: "Battery", SearchableText: "Title: Battery Abstract: electric vehicle battery pack"},
	}
}

func TestBleveIndex_Match(t *testing.T) {
	ctx := context.Background()
	idx, err := NewBleveIndex(ctx, testCorpus())
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	n, err := idx.DocCount()
	if err != nil || n != 3 {
		t.Fatalf("DocCount = %d, %v", n, err)
	}

	tests := []struct {
		query string
		want  []int
	}{
		{"vehicle", []int{0, 2}},
		{"VEHICLE", []int{0, 2}},
		{"vehicle battery", []int{2}},
		{"gear", []int{1}},
		{"submarine", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := idx.Match(ctx, tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Match(%q) = %v, want %v", tt.query, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Match(%q) = %v, want %v", tt.query, got, tt.want)
				}
			}
		})
	}
}

func TestBleveIndex_Empty(t *testing.T) {
	idx, err := NewBleveIndex(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	got, err := idx.Match(context.Background(), "anything")
	if err != nil || len(got) != 0 {
		t.Errorf("Match on empty index = %v, %v", got, err)
	}
}
