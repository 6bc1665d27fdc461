package layout

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/fittext/dsl"
)

const sheetDSL = `
sheet Card v1 {
  meta { title: "Card"; keywords: "a, b" }
  page 210mm 297mm
  fonts {
    font "ygo-sc" { src: "embed:goregular" }
  }
  block name x 10 y 20 {
    width: 120
    "[青眼(ブルーアイズ)]の白龍"
  }
  block atk x 10mm y 40 {
    textAlign: right
    width: 100
    "ATK ${card.atk|?}"
  }
  block desc x 10 y 80 {
    width: 160; height: 30
    "一二三四五六七八"
  }
}
`

func buildTestSheet(t *testing.T, m Measurer, data any) *Sheet {
	t.Helper()
	doc, err := dsl.ParseString(sheetDSL)
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	spec, err := SpecFromDocument(doc)
	if err != nil {
		t.Fatalf("SpecFromDocument: %v", err)
	}
	sheet, err := BuildSheet(spec, data, BuildOptions{Measurer: m, Workers: 2})
	if err != nil {
		t.Fatalf("BuildSheet: %v", err)
	}
	return sheet
}

func TestBuildSheetFromDSL(t *testing.T) {
	m := &stubMeasurer{}
	data := map[string]any{"card": map[string]any{"atk": 3000.0}}
	sheet := buildTestSheet(t, m, data)

	if !almost(sheet.Width, 210*MmToPx) || !almost(sheet.Height, 297*MmToPx) {
		t.Fatalf("unexpected page size %gx%g", sheet.Width, sheet.Height)
	}
	if sheet.Meta.Title != "Card" || len(sheet.Meta.Keywords) != 2 || sheet.Meta.Creator != "fittext" {
		t.Fatalf("unexpected meta %+v", sheet.Meta)
	}
	if len(m.fonts) != 1 || m.fonts[0].Name != "ygo-sc" {
		t.Fatalf("fonts should be registered with the measurer: %+v", m.fonts)
	}

	names := make([]string, 0, len(sheet.Blocks))
	for _, b := range sheet.Blocks {
		names = append(names, b.Name)
	}
	if strings.Join(names, ",") != "name,atk,desc" {
		t.Fatalf("block order must follow the document: %v", names)
	}

	atk := sheet.Blocks[1]
	if atk.Result.Config.Text != "ATK 3000" {
		t.Fatalf("text should be interpolated, got %q", atk.Result.Config.Text)
	}
	if !almost(atk.X, 10*MmToPx) || atk.Y != 40 {
		t.Fatalf("unexpected position %g,%g", atk.X, atk.Y)
	}
	if len(atk.Glyphs) != 8 {
		t.Fatalf("expected glyphs for ATK 3000, got %d", len(atk.Glyphs))
	}

	name := sheet.Blocks[0]
	if len(name.Result.Glosses) != 1 {
		t.Fatalf("expected gloss in name block")
	}
	desc := sheet.Blocks[2]
	if desc.Result.Lines != 1 || desc.Result.TextScale >= 1 {
		t.Fatalf("desc should be compressed to fit: lines=%d scale=%g", desc.Result.Lines, desc.Result.TextScale)
	}
}

func TestBuildSheetDefaultsWithoutData(t *testing.T) {
	sheet := buildTestSheet(t, &stubMeasurer{}, nil)
	if got := sheet.Blocks[1].Result.Config.Text; got != "ATK ?" {
		t.Fatalf("expected default value, got %q", got)
	}
}

func TestBuildSheetErrors(t *testing.T) {
	spec := SheetSpec{
		Width:  100,
		Height: 100,
		Blocks: []BlockSpec{{Name: "bad", Props: map[string]any{"fontColour": "red"}}},
	}
	if _, err := BuildSheet(spec, nil, BuildOptions{Measurer: &stubMeasurer{}}); err == nil || !strings.Contains(err.Error(), "bad") {
		t.Fatalf("expected error naming the block, got %v", err)
	}

	boom := errors.New("boom")
	spec.Blocks = []BlockSpec{
		{Name: "a", Props: map[string]any{"text": "一"}},
		{Name: "b", Props: map[string]any{"text": "二"}},
	}
	if _, err := BuildSheet(spec, nil, BuildOptions{Measurer: &stubMeasurer{err: boom}}); !errors.Is(err, boom) {
		t.Fatalf("expected measurer error, got %v", err)
	}
	if _, err := BuildSheet(spec, nil, BuildOptions{}); !errors.Is(err, ErrNoMeasurer) {
		t.Fatalf("expected ErrNoMeasurer, got %v", err)
	}
}

func TestSpecFromDocumentErrors(t *testing.T) {
	cases := []string{
		`sheet A v1 { block a x 0 y 0 { "x" } }`,
		`sheet A v1 { page 100 100 block a x 0 y 0 { "x" } block a x 0 y 0 { "y" } }`,
	}
	for _, src := range cases {
		doc, err := dsl.ParseString(src)
		if err != nil {
			t.Fatalf("parse %q: %v", src, err)
		}
		if _, err := SpecFromDocument(doc); err == nil {
			t.Fatalf("expected error for %q", src)
		}
	}
}

func TestSpecFromTOML(t *testing.T) {
	src := `
name = "Card"
width = "210mm"
height = 1000

[meta]
title = "T"
keywords = ["x", "y"]

[[fonts]]
name = "ygo-sc"
src = "embed:goregular"
style = "regular"

[[blocks]]
name = "title"
x = 10
y = "1in"
text = "一二"
fontSize = 30
gradient = true

[[blocks]]
text = "三"
`
	spec, err := SpecFromTOML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("SpecFromTOML: %v", err)
	}
	if spec.Name != "Card" || !almost(spec.Width, 210*MmToPx) || spec.Height != 1000 {
		t.Fatalf("unexpected sheet header %+v", spec)
	}
	if spec.Meta.Title != "T" || strings.Join(spec.Meta.Keywords, ",") != "x,y" {
		t.Fatalf("unexpected meta %+v", spec.Meta)
	}
	if len(spec.Fonts) != 1 || spec.Fonts[0].Src != "embed:goregular" {
		t.Fatalf("unexpected fonts %+v", spec.Fonts)
	}
	if len(spec.Blocks) != 2 || spec.Blocks[0].Y != 96 || spec.Blocks[1].Name != "block2" {
		t.Fatalf("unexpected blocks %+v", spec.Blocks)
	}
	if _, ok := spec.Blocks[0].Props["name"]; ok {
		t.Fatalf("position keys must not be passed as props")
	}

	sheet, err := BuildSheet(spec, nil, BuildOptions{Measurer: &stubMeasurer{}})
	if err != nil {
		t.Fatalf("BuildSheet: %v", err)
	}
	cfg := sheet.Blocks[0].Result.Config
	if cfg.FontSize != 30 || !cfg.Gradient {
		t.Fatalf("typed TOML values not decoded: %+v", cfg)
	}

	if _, err := SpecFromTOML(strings.NewReader(`name = "x"`)); err == nil {
		t.Fatalf("missing page size must be rejected")
	}
}

func TestWriteDebugJSON(t *testing.T) {
	sheet := buildTestSheet(t, &stubMeasurer{}, nil)
	dir := t.TempDir()

	path := filepath.Join(dir, "debug.json")
	if err := WriteDebugJSON(sheet, path, DebugOptions{}); err != nil {
		t.Fatalf("WriteDebugJSON: %v", err)
	}
	var out struct {
		Blocks []struct {
			Result struct {
				Runs []Run `json:"runs"`
			} `json:"result"`
			Glyphs []Glyph `json:"glyphs"`
		} `json:"blocks"`
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Blocks) != 3 || len(out.Blocks[0].Result.Runs) != 0 || len(out.Blocks[0].Glyphs) == 0 {
		t.Fatalf("runs should be omitted by default")
	}
	if len(sheet.Blocks[0].Result.Runs) == 0 {
		t.Fatalf("original sheet must not be modified")
	}

	if err := WriteDebugJSON(sheet, path, DebugOptions{Runs: true}); err != nil {
		t.Fatalf("WriteDebugJSON: %v", err)
	}
	data, _ = os.ReadFile(path)
	out.Blocks = nil
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Blocks[0].Result.Runs) == 0 {
		t.Fatalf("runs should be kept when requested")
	}
}
