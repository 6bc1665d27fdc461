package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+|\.\d+)(?:px|pt|mm|cm|in)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[:;,]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document 是 .papyrus 排版单文件的根节点：一页纸与若干文本块。
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'sheet' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section 为顶层段落之一。
type Section struct {
	Meta  *MetaSection  `parser:"  @@"`
	Page  *PageSection  `parser:"| @@"`
	Fonts *FontsSection `parser:"| @@"`
	Block *BlockSection `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Page != nil:
		return "page"
	case s.Fonts != nil:
		return "fonts"
	case s.Block != nil:
		return "block"
	default:
		return "unknown"
	}
}

// MetaSection captures metadata assignments.
type MetaSection struct {
	Body *Body `parser:"'meta' Newline* @@"`
}

// PageSection 声明页面尺寸，数值可带单位。
type PageSection struct {
	Width  string `parser:"'page' @Number"`
	Height string `parser:"@Number"`
}

// FontsSection 列出字体资源。
type FontsSection struct {
	Fonts []*FontDecl `parser:"'fonts' Newline* '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// FontDecl 形如 font "ygo-sc" { src: "embed:goregular" style: "regular" }。
type FontDecl struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Name StringLiteral  `parser:"'font' @String"`
	Body *Body          `parser:"Newline* @@"`
}

// BlockSection 是放在 (x, y) 的一个文本块，块内为排版属性与文本。
type BlockSection struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Name string         `parser:"'block' @Ident"`
	X    string         `parser:"'x' @Number"`
	Y    string         `parser:"'y' @Number"`
	Body *Body          `parser:"Newline* @@"`
}

// Body is a delimited list of statements.
type Body struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement inside a body (assignment or text literal).
type Statement struct {
	Assignment *Assignment  `parser:"  @@"`
	Text       *TextLiteral `parser:"| @@"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Key   string `parser:"@Ident"`
	Value *Value `parser:"':' Newline* @@"`
}

// TextLiteral encapsulates raw string statements within blocks.
type TextLiteral struct {
	Value StringLiteral `parser:"@String"`
}

// Value represents generic property values.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Ident  *string        `parser:"| @Ident"`
}

// Raw 返回值的文本形式，数值保留单位，由使用方决定如何换算。
func (v *Value) Raw() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// Props 收集 body 中的全部赋值，后出现的同名键覆盖前者。
func (b *Body) Props() map[string]string {
	out := map[string]string{}
	if b == nil {
		return out
	}
	for _, st := range b.Statements {
		if st.Assignment != nil {
			out[st.Assignment.Key] = st.Assignment.Value.Raw()
		}
	}
	return out
}

// Text 将 body 中的文本字面量按出现顺序以换行连接。
func (b *Body) Text() string {
	if b == nil {
		return ""
	}
	var parts []string
	for _, st := range b.Statements {
		if st.Text != nil {
			parts = append(parts, string(st.Text.Value))
		}
	}
	return strings.Join(parts, "\n")
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses DSL content from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses DSL content from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
