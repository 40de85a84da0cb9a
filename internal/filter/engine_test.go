package filter

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/hyperjump/patsearch/internal/models"
	"github.com/hyperjump/patsearch/internal/vector"
)

type stubMatcher struct {
	hits []int
	err  error
}

func (s *stubMatcher) Match(_ context.Context, _ string) ([]int, error) { return s.hits, s.err }
func (s *stubMatcher) DocCount() (uint64, error)                      { return uint64(len(s.hits)), nil }
func (s *stubMatcher) Close() error                                   { return nil }

func testCorpus() *vector.Corpus {
	return vector.NewCorpus([]*models.Document{
		{ID: "A", Title: "Vehicle wheel hub", ClassificationCode: "B60B"},
		{ID: "B", Title: "Gear train", ClassificationCode: "F16H"},
		{ID: "C", Title: "Wheel bearing for VEHICLES", ClassificationCode: "B60B"},
		{ID: "D", Title: models.DefaultTitle, ClassificationCode: models.DefaultClassification},
	})
}

func TestEngine_Apply(t *testing.T) {
	corpus := testCorpus()
	tests := []struct {
		name string
		spec models.FilterSpec
		want []int
	}{
		{name: "classification prefix excludes default", spec: models.FilterSpec{ClassificationPrefix: "B60"}, want: []int{0, 2}},
		{name: "classification is case sensitive", spec: models.FilterSpec{ClassificationPrefix: "b60"}, want: []int{}},
		{name: "title case insensitive", spec: models.FilterSpec{TitleContains: "vehicle"}, want: []int{0, 2}},
		{name: "conjunction", spec: models.FilterSpec{ClassificationPrefix: "B60", TitleContains: "hub"}, want: []int{0}},
		{name: "no match", spec: models.FilterSpec{ClassificationPrefix: "H04"}, want: []int{}},
		{name: "default classification exact", spec: models.FilterSpec{ClassificationPrefix: "N/A"}, want: []int{3}},
		{name: "default classification prefix", spec: models.FilterSpec{ClassificationPrefix: "N"}, want: []int{3}},
	}
	e := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := e.Apply(context.Background(), corpus, tt.spec)
			if err != nil {
				t.Fatal(err)
			}
			if set.IsUnrestricted() {
				t.Fatal("expected explicit set")
			}
			got := set.Indices()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngine_Apply_EmptySpecIsUnrestricted(t *testing.T) {
	e := NewEngine()
	for _, spec := range []models.FilterSpec{{}, {ClassificationPrefix: "  ", TitleContains: "\t"}} {
		set, err := e.Apply(context.Background(), testCorpus(), spec)
		if err != nil {
			t.Fatal(err)
		}
		if !set.IsUnrestricted() {
			t.Errorf("spec %+v should be unrestricted", spec)
		}
		if !set.Contains(2) || set.Len() != -1 {
			t.Error("unrestricted set should admit every index")
		}
	}
}

func TestEngine_Apply_Keyword(t *testing.T) {
	m := &stubMatcher{hits: []int{2, 1}}
	e := NewEngine(WithKeywordMatcher(m))

	set, err := e.Apply(context.Background(), testCorpus(), models.FilterSpec{Keyword: "bearing"})
	if err != nil {
		t.Fatal(err)
	}
	if got := set.Indices(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("keyword only = %v, want [1 2]", got)
	}

	set, err = e.Apply(context.Background(), testCorpus(), models.FilterSpec{Keyword: "bearing", ClassificationPrefix: "B60"})
	if err != nil {
		t.Fatal(err)
	}
	if got := set.Indices(); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("keyword and classification = %v, want [2]", got)
	}
}

func TestEngine_Apply_KeywordHitsOutsideCorpus(t *testing.T) {
	e := NewEngine(WithKeywordMatcher(&stubMatcher{hits: []int{-1, 1, 4, 9}}))
	ctx := context.Background()

	set, err := e.Apply(ctx, testCorpus(), models.FilterSpec{Keyword: "gear"})
	if err != nil {
		t.Fatal(err)
	}
	if got := set.Indices(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("keyword only = %v, want [1]", got)
	}

	set, err = e.Apply(ctx, testCorpus(), models.FilterSpec{Keyword: "gear", TitleContains: "gear"})
	if err != nil {
		t.Fatal(err)
	}
	if got := set.Indices(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("keyword and title = %v, want [1]", got)
	}
}

func TestEngine_Apply_KeywordErrors(t *testing.T) {
	_, err := NewEngine().Apply(context.Background(), testCorpus(), models.FilterSpec{Keyword: "x"})
	if !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("missing matcher: got %v, want ErrInvalidFilter", err)
	}

	boom := errors.New("boom")
	e := NewEngine(WithKeywordMatcher(&stubMatcher{err: boom}))
	_, err = e.Apply(context.Background(), testCorpus(), models.FilterSpec{Keyword: "x"})
	if !errors.Is(err, boom) {
		t.Errorf("matcher failure: got %v, want wrapped boom", err)
	}
}

func TestAdmissibleSet(t *testing.T) {
	s := NewAdmissibleSet([]int{3, 1, 3, 2})
	if got := s.Indices(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("Indices() = %v", got)
	}
	if s.Len() != 3 || !s.Contains(2) || s.Contains(0) {
		t.Error("unexpected membership")
	}

	var empty AdmissibleSet
	if empty.IsUnrestricted() || empty.Contains(0) || empty.Len() != 0 {
		t.Error("zero value should be an empty explicit set")
	}

	if got := Unrestricted().Intersect(s).Indices(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("Unrestricted ∩ s = %v", got)
	}
	if got := s.Intersect(NewAdmissibleSet([]int{2, 5})).Indices(); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("s ∩ {2,5} = %v", got)
	}
}

func TestParseSpec(t *testing.T) {
	spec, err := ParseSpec(map[string]string{
		"Classification": " B60 ",
		"title_contains": "wheel",
		"keyword":        "",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := models.FilterSpec{ClassificationPrefix: "B60", TitleContains: "wheel"}
	if spec != want {
		t.Errorf("ParseSpec() = %+v, want %+v", spec, want)
	}

	if _, err := ParseSpec(map[string]string{"inventor": "x"}); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("unknown key: got %v, want ErrInvalidFilter", err)
	}
}

func TestParseSpec_Aliases(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]string
		want    models.FilterSpec
		wantErr bool
	}{
		{
			name:    "conflicting aliases",
			values:  map[string]string{"classification": "B60", "classification_prefix": "F16"},
			wantErr: true,
		},
		{
			name:   "agreeing aliases",
			values: map[string]string{"classification": "B60", "classification_code": " B60"},
			want:   models.FilterSpec{ClassificationPrefix: "B60"},
		},
		{
			name:   "blank alias does not clear a value",
			values: map[string]string{"title": "", "title_contains": "wheel"},
			want:   models.FilterSpec{TitleContains: "wheel"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Repeat to cover map iteration order.
			for i := 0; i < 20; i++ {
				got, err := ParseSpec(tt.values)
				if tt.wantErr {
					if !errors.Is(err, ErrInvalidFilter) {
						t.Fatalf("err = %v, want ErrInvalidFilter", err)
					}
					continue
				}
				if err != nil {
					t.Fatal(err)
				}
				if got != tt.want {
					t.Fatalf("ParseSpec() = %+v, want %+v", got, tt.want)
				}
			}
		})
	}
}
