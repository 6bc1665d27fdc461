package layout

import (
	"testing"
)

func TestConfigFromMap(t *testing.T) {
	cfg, err := ConfigFromMap(DefaultConfig(), map[string]any{
		"text":       "一二",
		"fontSize":   "12pt",
		"width":      "100mm",
		"height":     int64(80),
		"lineHeight": "1.3",
		"textAlign":  "center",
		"gradient":   "true",
		"key":        "2",
		"rtTop":      "-6",
		"color":      "#333",
	})
	if err != nil {
		t.Fatalf("ConfigFromMap: %v", err)
	}
	if !almost(cfg.FontSize, 16) || !almost(cfg.Width, 100*MmToPx) || cfg.Height != 80 {
		t.Fatalf("lengths not converted: %+v", cfg)
	}
	if cfg.LineHeight != 1.3 || cfg.TextAlign != AlignCenter || !cfg.Gradient || cfg.Key != 2 || cfg.RtTop != -6 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.RtFontSize != 13 || cfg.Color != "#333" {
		t.Fatalf("defaults should be kept: %+v", cfg)
	}

	if _, err := ConfigFromMap(DefaultConfig(), map[string]any{"fontColour": "red"}); err == nil {
		t.Fatalf("unknown keys must be rejected")
	}
	if _, err := ConfigFromMap(DefaultConfig(), map[string]any{"width": "wide"}); err == nil {
		t.Fatalf("invalid lengths must be rejected")
	}
}

func TestNormalize(t *testing.T) {
	cfg := Config{Text: "x", Width: -5, TextAlign: "END"}.normalize()
	def := DefaultConfig()
	if cfg.FontSize != def.FontSize || cfg.LineHeight != def.LineHeight || cfg.FontScale != 1 || cfg.RtFontScaleX != 1 {
		t.Fatalf("zero values should fall back to defaults: %+v", cfg)
	}
	if cfg.NoCompressChars != DefaultNoCompressChars || cfg.AvoidStartChars != DefaultAvoidStartChars || cfg.AvoidEndChars != DefaultAvoidEndChars {
		t.Fatalf("empty character sets should fall back to defaults: %+v", cfg)
	}
	if cfg.Width != 0 || cfg.TextAlign != AlignRight {
		t.Fatalf("unexpected normalization: %+v", cfg)
	}
	if got := normalizeAlign("unknown"); got != AlignJustify {
		t.Fatalf("unknown align should be justify, got %s", got)
	}
}

func TestDiff(t *testing.T) {
	a := DefaultConfig()
	if Diff(a, a) != (Change{}) {
		t.Fatalf("identical configs must not change")
	}
	b := a
	b.Text = "new"
	if c := Diff(a, b); !c.Recompute || c.LoadFont {
		t.Fatalf("text change: %+v", c)
	}
	b = a
	b.RtFontFamily = "serif"
	if c := Diff(a, b); !c.Recompute || !c.LoadFont {
		t.Fatalf("font change: %+v", c)
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want Color
	}{
		{"#fff", Color{255, 255, 255, 1}},
		{"#102030", Color{16, 32, 48, 1}},
		{"#10203080", Color{16, 32, 48, 128.0 / 255}},
		{"rgba(1, 2, 3, 0.5)", Color{1, 2, 3, 0.5}},
		{"rgb(300,0,0)", Color{255, 0, 0, 1}},
		{"Red", Color{255, 0, 0, 1}},
		{"transparent", Color{}},
	}
	for _, tc := range cases {
		got, err := ParseColor(tc.in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseColor(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
	for _, bad := range []string{"", "#12", "rgb(1,2)", "nocolor"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestGlyphs(t *testing.T) {
	cfg := testConfig("<b>一</b> 二\n[三(さん)]", 0, 0)
	cfg.Gradient = true
	res := mustLayout(t, cfg, nil)
	glyphs := res.Glyphs()
	if len(glyphs) != 5 {
		t.Fatalf("expected 4 base glyphs and 1 gloss, got %d", len(glyphs))
	}
	first := glyphs[0]
	if first.Text != "一" || first.Font.Weight != "bold" || first.Font.Family != cfg.FontFamily {
		t.Fatalf("unexpected first glyph %+v", first)
	}
	if len(first.Fill.Gradient) != 5 || first.Fill.Gradient[1].Offset != 0.4 {
		t.Fatalf("expected gradient fill, got %+v", first.Fill)
	}
	if first.Stroke == nil || first.Stroke.A != 0.2 || !almost(first.StrokeWidth, 0.6) {
		t.Fatalf("expected translucent stroke, got %+v %g", first.Stroke, first.StrokeWidth)
	}
	gloss := glyphs[4]
	if !gloss.Gloss || gloss.Text != "さん" || gloss.Font.Family != cfg.RtFontFamily || gloss.Fill.Gradient != nil {
		t.Fatalf("unexpected gloss glyph %+v", gloss)
	}

	cfg = testConfig("一", 0, 0)
	cfg.Color = "red"
	cfg.StrokeWidth = 2
	glyphs = mustLayout(t, cfg, nil).Glyphs()
	if g := glyphs[0]; g.Fill.Color != (Color{255, 0, 0, 1}) || g.Stroke == nil || *g.Stroke != g.Fill.Color || g.StrokeWidth != 2 {
		t.Fatalf("unexpected solid glyph %+v", g)
	}

	cfg = testConfig("[一(いち)]", 0, 0)
	cfg.Color = "red"
	cfg.RtColor = "blue"
	cfg.RtStrokeWidth = 1
	glyphs = mustLayout(t, cfg, nil).Glyphs()
	if g := glyphs[len(glyphs)-1]; !g.Gloss || g.Fill.Color != (Color{0, 0, 255, 1}) || g.Stroke == nil || *g.Stroke != (Color{255, 0, 0, 1}) {
		t.Fatalf("gloss stroke should use the base color, got %+v", g)
	}
}
