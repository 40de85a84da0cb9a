package utils

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
	if got := Truncate("ünïcode", 3); got != "ünï..." {
		t.Errorf("rune-aware truncate: got %s", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("abcdef", 3); got != "abc" {
		t.Errorf("got %s", got)
	}
	if got := TruncateRunes("ab", 3); got != "ab" {
		t.Errorf("got %s", got)
	}
	if got := TruncateRunes("ab", 0); got != "" {
		t.Errorf("got %q", got)
	}
}
