package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/fittext/dsl"
)

const sampleDSL = `
// 卡片示例
sheet Card v1 {
  meta {
    title: "Blue-Eyes"
    author: "fittext"
  }

  page 1394 2031

  fonts {
    font "ygo-sc" { src: "embed:goregular"; style: regular }
    font "ygo-tip" {
      src: "embed:gobold"
    }
  }

  block name x 116 y 96 {
    fontSize: 52pt
    width: 1000
    rtTop: -9
    color: #333
    gradient: true
    "[青眼(ブルーアイズ)]の白龍"
  }

  # 效果文本
  block desc x 110 y 1530 {
    width: 1175; height: 360
    "①：这张卡不能通常召唤。"
    "②：${card.effect}"
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Name != "Card" || doc.Version != "v1" {
		t.Fatalf("unexpected header %s %s", doc.Name, doc.Version)
	}
	if len(doc.Sections) != 5 {
		t.Fatalf("expected 5 sections, got %d", len(doc.Sections))
	}

	kinds := make([]string, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		kinds = append(kinds, s.Kind())
	}
	if got := strings.Join(kinds, ","); got != "meta,page,fonts,block,block" {
		t.Fatalf("unexpected section kinds %s", got)
	}

	meta := doc.Sections[0].Meta.Body.Props()
	if meta["title"] != "Blue-Eyes" || meta["author"] != "fittext" {
		t.Fatalf("unexpected meta %+v", meta)
	}

	page := doc.Sections[1].Page
	if page.Width != "1394" || page.Height != "2031" {
		t.Fatalf("unexpected page size %+v", page)
	}

	fonts := doc.Sections[2].Fonts.Fonts
	if len(fonts) != 2 {
		t.Fatalf("expected 2 fonts, got %d", len(fonts))
	}
	if fonts[0].Name != "ygo-sc" || fonts[0].Body.Props()["style"] != "regular" {
		t.Fatalf("unexpected font %+v", fonts[0])
	}
	if fonts[1].Body.Props()["src"] != "embed:gobold" {
		t.Fatalf("unexpected font src %+v", fonts[1].Body.Props())
	}
}

func TestParseBlock(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	block := doc.Sections[3].Block
	if block.Name != "name" || block.X != "116" || block.Y != "96" {
		t.Fatalf("unexpected block header %+v", block)
	}
	props := block.Body.Props()
	want := map[string]string{
		"fontSize": "52pt",
		"width":    "1000",
		"rtTop":    "-9",
		"color":    "#333",
		"gradient": "true",
	}
	for k, v := range want {
		if props[k] != v {
			t.Fatalf("prop %s: expected %q, got %q", k, v, props[k])
		}
	}
	if got := block.Body.Text(); got != "[青眼(ブルーアイズ)]の白龍" {
		t.Fatalf("unexpected text %q", got)
	}

	desc := doc.Sections[4].Block
	if got := desc.Body.Text(); got != "①：这张卡不能通常召唤。\n②：${card.effect}" {
		t.Fatalf("expected text literals joined by newline, got %q", got)
	}
	if desc.Body.Props()["height"] != "360" {
		t.Fatalf("semicolon separated props not parsed: %+v", desc.Body.Props())
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		`sheet Card v1 { block name x 1 { "missing y" } }`,
		`sheet Card v1 { page 100 }`,
		`doc Card v1 { }`,
	}
	for _, src := range cases {
		if _, err := dsl.ParseString(src); err == nil {
			t.Fatalf("expected error for %q", src)
		}
	}
}
