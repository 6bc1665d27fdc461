package markup

import (
	"strings"
	"testing"
)

const defaultNoCompress = "●①②③④⑤⑥⑦⑧⑨⑩"

func bases(segs []Segment) []string {
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		out = append(out, s.Base)
	}
	return out
}

func TestParseSplitsPlainTextPerCharacter(t *testing.T) {
	segs, err := Parse("我是决斗者", Options{NoCompress: defaultNoCompress})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(bases(segs), "|"); got != "我|是|决|斗|者" {
		t.Fatalf("unexpected segments: %s", got)
	}
}

func TestParseRuby(t *testing.T) {
	segs, err := Parse("[青眼(ブルーアイズ)]の龍", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(segs), segs)
	}
	if segs[0].Base != "青眼" || segs[0].Gloss != "ブルーアイズ" {
		t.Fatalf("ruby not captured: %+v", segs[0])
	}
	if segs[1].HasGloss() || segs[2].HasGloss() {
		t.Fatalf("plain characters must not carry a gloss: %+v", segs[1:])
	}
}

func TestParseBoldMarkers(t *testing.T) {
	segs, err := Parse("a<b>bc</b>d</b>e", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		base string
		bold bool
	}{{"a", false}, {"b", true}, {"c", true}, {"d", false}, {"e", false}}
	if len(segs) != len(want) {
		t.Fatalf("expected %d segments, got %d: %+v", len(want), len(segs), segs)
	}
	for i, w := range want {
		if segs[i].Base != w.base || segs[i].Bold != w.bold {
			t.Fatalf("segment %d: got %+v want %+v", i, segs[i], w)
		}
	}
}

func TestParseUnclosedBoldRunsToEnd(t *testing.T) {
	segs, err := Parse("<b>xy", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range segs {
		if !s.Bold {
			t.Fatalf("expected bold segment, got %+v", s)
		}
	}
}

func TestParseNewlineAndAtomic(t *testing.T) {
	segs, err := Parse("①效果\n●", Options{NoCompress: defaultNoCompress})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segs) != 5 {
		t.Fatalf("expected 5 segments, got %d: %+v", len(segs), segs)
	}
	if !segs[0].Atomic || segs[0].Base != "①" {
		t.Fatalf("expected atomic ①, got %+v", segs[0])
	}
	if !segs[3].Break || segs[3].Base != "\n" {
		t.Fatalf("expected break segment, got %+v", segs[3])
	}
	if !segs[4].Atomic {
		t.Fatalf("expected atomic ●, got %+v", segs[4])
	}
}

func TestParseMalformedRubyFallsBackToLiteral(t *testing.T) {
	for _, input := range []string{"[abc(def]", "[abc(def", "abc(def)]", "[(x)]"} {
		segs, err := Parse(input, Options{})
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", input, err)
		}
		for _, s := range segs {
			if s.HasGloss() {
				t.Fatalf("%q: malformed ruby must not produce a gloss: %+v", input, s)
			}
		}
		if got := Plain(segs); got != input {
			t.Fatalf("%q: literal text lost, got %q", input, got)
		}
	}
}

func TestParseRubyWithEmptyReadingKeepsBase(t *testing.T) {
	segs, err := Parse("[AB()]C", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(bases(segs), "|"); got != "A|B|C" {
		t.Fatalf("unexpected segments: %s", got)
	}
	for _, s := range segs {
		if s.HasGloss() {
			t.Fatalf("empty reading must not produce a gloss: %+v", s)
		}
	}
}

func TestParseNoCompressDashIsLiteral(t *testing.T) {
	segs, err := Parse("1-23]", Options{NoCompress: "1-3]"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []bool{true, true, false, true, true}
	if len(segs) != len(want) {
		t.Fatalf("expected %d segments, got %d: %+v", len(want), len(segs), segs)
	}
	for i, atomic := range want {
		if segs[i].Atomic != atomic {
			t.Fatalf("segment %q: atomic=%v, want %v", segs[i].Base, segs[i].Atomic, atomic)
		}
	}
}

func TestParseTrimsTrailingWhitespace(t *testing.T) {
	segs, err := Parse("ab  \n ", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := Plain(segs); got != "ab" {
		t.Fatalf("expected trailing whitespace trimmed, got %q", got)
	}
}

func TestParseKeepsGraphemeClusters(t *testing.T) {
	// e + 组合重音符应当作为一个字素
	segs, err := Parse("éx", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 graphemes, got %d: %+v", len(segs), segs)
	}
}

func TestParseEmpty(t *testing.T) {
	segs, err := Parse("   ", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segs) != 0 {
		t.Fatalf("expected no segments, got %+v", segs)
	}
}
