package embedding

import (
	"reflect"
	"testing"
)

func TestSimpleTokenizer_Tokenize(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, types := tok.Tokenize("Vehicle wheel", 6)
	if len(ids) != 6 || len(attn) != 6 || len(types) != 6 {
		t.Fatalf("lengths = %d %d %d", len(ids), len(attn), len(types))
	}
	if ids[0] != clsToken || ids[3] != sepToken {
		t.Errorf("ids = %v, want CLS w w SEP", ids)
	}
	if !reflect.DeepEqual(attn, []int64{1, 1, 1, 1, 0, 0}) {
		t.Errorf("attention = %v", attn)
	}
	again, _, _ := tok.Tokenize("vehicle WHEEL", 6)
	if !reflect.DeepEqual(ids, again) {
		t.Error("tokenization should ignore case")
	}
}

func TestSimpleTokenizer_Truncates(t *testing.T) {
	ids, attn, _ := (&SimpleTokenizer{}).Tokenize("a b c d e f g", 4)
	if ids[3] != sepToken {
		t.Errorf("last token = %d, want SEP", ids[3])
	}
	for i, a := range attn {
		if a != 1 {
			t.Errorf("attention[%d] = %d, want 1", i, a)
		}
	}
}

func TestSplitWords(t *testing.T) {
	if got := SplitWords("  Gear-train, 2 shafts.  "); !reflect.DeepEqual(got, []string{"gear", "train", "2", "shafts"}) {
		t.Errorf("SplitWords() = %v", got)
	}
	if SplitWords(" ,. ") != nil {
		t.Error("text without words should return nil")
	}
}
