package layout

import (
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ByLCY/fittext/dsl"
)

// BlockSpec 描述页面上的一个文本块：位置与原始属性表（含 text）。
type BlockSpec struct {
	Name  string
	X, Y  float64
	Props map[string]any
}

// SheetSpec 是整页排版的输入，可以来自 DSL 或 TOML。
type SheetSpec struct {
	Name   string
	Width  float64
	Height float64
	Meta   DocumentMeta
	Fonts  []FontResource
	Blocks []BlockSpec
}

// SpecFromDocument 将 DSL AST 转换为 SheetSpec。
func SpecFromDocument(doc *dsl.Document) (SheetSpec, error) {
	if doc == nil {
		return SheetSpec{}, fmt.Errorf("文档为空")
	}
	spec := SheetSpec{Name: doc.Name, Meta: DocumentMeta{Creator: "fittext"}}
	seen := map[string]bool{}
	for _, section := range doc.Sections {
		switch {
		case section.Meta != nil:
			applyMeta(&spec.Meta, section.Meta.Body.Props())
		case section.Page != nil:
			w, err := lengthPX(section.Page.Width)
			if err != nil {
				return SheetSpec{}, fmt.Errorf("页面宽度: %w", err)
			}
			h, err := lengthPX(section.Page.Height)
			if err != nil {
				return SheetSpec{}, fmt.Errorf("页面高度: %w", err)
			}
			spec.Width, spec.Height = w, h
		case section.Fonts != nil:
			for _, decl := range section.Fonts.Fonts {
				props := decl.Body.Props()
				spec.Fonts = append(spec.Fonts, FontResource{
					Name:  string(decl.Name),
					Src:   props["src"],
					Style: props["style"],
				})
			}
		case section.Block != nil:
			b := section.Block
			if seen[b.Name] {
				return SheetSpec{}, fmt.Errorf("%s: 文本块 %s 重复定义", b.Pos, b.Name)
			}
			seen[b.Name] = true
			x, err := lengthPX(b.X)
			if err != nil {
				return SheetSpec{}, fmt.Errorf("%s: 文本块 %s 的 x: %w", b.Pos, b.Name, err)
			}
			y, err := lengthPX(b.Y)
			if err != nil {
				return SheetSpec{}, fmt.Errorf("%s: 文本块 %s 的 y: %w", b.Pos, b.Name, err)
			}
			props := map[string]any{}
			for k, v := range b.Body.Props() {
				props[k] = v
			}
			if text := b.Body.Text(); text != "" {
				props["text"] = text
			}
			spec.Blocks = append(spec.Blocks, BlockSpec{Name: b.Name, X: x, Y: y, Props: props})
		}
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return SheetSpec{}, fmt.Errorf("文档中缺少 page 段落")
	}
	return spec, nil
}

type tomlSheet struct {
	Name   string           `toml:"name"`
	Width  any              `toml:"width"`
	Height any              `toml:"height"`
	Meta   map[string]any   `toml:"meta"`
	Fonts  []FontResource   `toml:"fonts"`
	Blocks []map[string]any `toml:"blocks"`
}

// SpecFromTOML 读取 TOML 格式的排版单：
//
//	name = "Card"
//	width = 1394
//	height = 2031
//	[[fonts]]
//	name = "ygo-sc"
//	src = "embed:goregular"
//	[[blocks]]
//	name = "title"
//	x = 116
//	y = 96
//	text = "[青眼(ブルーアイズ)]の白龍"
//	fontSize = 52
func SpecFromTOML(r io.Reader) (SheetSpec, error) {
	var raw tomlSheet
	if err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return SheetSpec{}, fmt.Errorf("解析 TOML 失败: %w", err)
	}
	spec := SheetSpec{Name: raw.Name, Fonts: raw.Fonts, Meta: DocumentMeta{Creator: "fittext"}}
	var err error
	if spec.Width, err = anyPX(raw.Width); err != nil {
		return SheetSpec{}, fmt.Errorf("页面宽度: %w", err)
	}
	if spec.Height, err = anyPX(raw.Height); err != nil {
		return SheetSpec{}, fmt.Errorf("页面高度: %w", err)
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return SheetSpec{}, fmt.Errorf("缺少页面尺寸 width/height")
	}
	meta := map[string]string{}
	for k, v := range raw.Meta {
		meta[k] = fmt.Sprint(v)
	}
	applyMeta(&spec.Meta, meta)
	if kw, ok := raw.Meta["keywords"].([]any); ok {
		spec.Meta.Keywords = spec.Meta.Keywords[:0]
		for _, k := range kw {
			spec.Meta.Keywords = append(spec.Meta.Keywords, fmt.Sprint(k))
		}
	}

	seen := map[string]bool{}
	for i, props := range raw.Blocks {
		name, _ := props["name"].(string)
		if name == "" {
			name = fmt.Sprintf("block%d", i+1)
		}
		if seen[name] {
			return SheetSpec{}, fmt.Errorf("文本块 %s 重复定义", name)
		}
		seen[name] = true
		x, err := anyPX(props["x"])
		if err != nil {
			return SheetSpec{}, fmt.Errorf("文本块 %s 的 x: %w", name, err)
		}
		y, err := anyPX(props["y"])
		if err != nil {
			return SheetSpec{}, fmt.Errorf("文本块 %s 的 y: %w", name, err)
		}
		rest := make(map[string]any, len(props))
		for k, v := range props {
			switch k {
			case "name", "x", "y":
			default:
				rest[k] = v
			}
		}
		spec.Blocks = append(spec.Blocks, BlockSpec{Name: name, X: x, Y: y, Props: rest})
	}
	return spec, nil
}

func applyMeta(meta *DocumentMeta, props map[string]string) {
	for k, v := range props {
		switch strings.ToLower(k) {
		case "title":
			meta.Title = v
		case "author":
			meta.Author = v
		case "subject":
			meta.Subject = v
		case "creator":
			meta.Creator = v
		case "keywords":
			meta.Keywords = splitKeywords(v)
		}
	}
}

func splitKeywords(v string) []string {
	var out []string
	for _, k := range strings.Split(v, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func lengthPX(s string) (float64, error) {
	l, err := ParseLength(s)
	if err != nil {
		return 0, err
	}
	return l.PX(), nil
}

func anyPX(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		return lengthPX(n)
	default:
		return 0, fmt.Errorf("无法识别的长度 %v", v)
	}
}
