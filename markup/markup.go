// Package markup 将带注音与加粗标记的卡片文本拆分为有序的排版片段。
//
// 支持的标记（按优先级）：
//
//	[本文(ふりがな)]  注音片段，本文与注音作为一个整体参与排版
//	<b> … </b>       加粗开关，未配对的结束标记忽略
//	\n               显式换行
//	不压缩字符集      每个字符单独成段，且不参与横向压缩
//
// 其余文本按字素簇逐个拆分，保证每个字符都可以独立决定换行位置。
package markup

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/clipperhouse/uax29/v2/graphemes"
	"golang.org/x/text/unicode/norm"
)

// Segment 是解析后的一个排版片段。
type Segment struct {
	Base   string `json:"base"`
	Gloss  string `json:"gloss,omitempty"`
	Bold   bool   `json:"bold,omitempty"`
	Atomic bool   `json:"atomic,omitempty"` // 不压缩字符
	Break  bool   `json:"break,omitempty"`  // 显式换行
}

// HasGloss 判断片段是否带注音。
func (s Segment) HasGloss() bool { return s.Gloss != "" }

// Options 控制解析行为。
type Options struct {
	NoCompress string // 不压缩字符集合
}

// Ruby 捕获 [本文(注音)] 形式的注音标记。
type Ruby struct {
	Base    string
	Reading string
	Raw     string
}

var rubyPattern = regexp.MustCompile(`^\[(.*?)\((.*?)\)\]$`)

// Capture implements participle.Capture.
func (r *Ruby) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("注音标记缺少内容")
	}
	raw := values[0]
	m := rubyPattern.FindStringSubmatch(raw)
	if m == nil {
		return fmt.Errorf("无法识别的注音标记 %q", raw)
	}
	*r = Ruby{Base: m[1], Reading: m[2], Raw: raw}
	return nil
}

type document struct {
	Tokens []*token `parser:"@@*"`
}

type token struct {
	Ruby      *Ruby   `parser:"  @Ruby"`
	BoldOpen  bool    `parser:"| @BoldOpen"`
	BoldClose bool    `parser:"| @BoldClose"`
	Newline   bool    `parser:"| @Newline"`
	Atomic    *string `parser:"| @Atomic"`
	Char      *string `parser:"| @Char"`
}

// 语法按不压缩字符集缓存，同一字符集只构建一次。
var parsers sync.Map

func parserFor(noCompress string) (*participle.Parser[document], error) {
	if p, ok := parsers.Load(noCompress); ok {
		return p.(*participle.Parser[document]), nil
	}
	def, err := lexer.NewSimple(lexerRules(noCompress))
	if err != nil {
		return nil, fmt.Errorf("构建标记词法失败: %w", err)
	}
	p, err := participle.Build[document](participle.Lexer(def))
	if err != nil {
		return nil, fmt.Errorf("构建标记语法失败: %w", err)
	}
	actual, _ := parsers.LoadOrStore(noCompress, p)
	return actual.(*participle.Parser[document]), nil
}

func lexerRules(noCompress string) []lexer.SimpleRule {
	atomic := `[^\s\S]` // 空集合时永不匹配
	if set := charClass(noCompress); set != "" {
		atomic = set
	}
	return []lexer.SimpleRule{
		{Name: "Ruby", Pattern: `\[[^\n]*?\([^\n]*?\)\]`},
		{Name: "BoldOpen", Pattern: `<b>`},
		{Name: "BoldClose", Pattern: `</b>`},
		{Name: "Newline", Pattern: `\n`},
		{Name: "Atomic", Pattern: atomic},
		{Name: "Char", Pattern: `[^\n]`},
	}
}

func charClass(chars string) string {
	if chars == "" {
		return ""
	}
	var b strings.Builder
	b.WriteByte('[')
	seen := map[rune]bool{}
	for _, r := range chars {
		if seen[r] || r == '\n' {
			continue
		}
		seen[r] = true
		b.WriteString(fmt.Sprintf(`\x{%x}`, r))
	}
	if len(seen) == 0 {
		return ""
	}
	b.WriteByte(']')
	return b.String()
}

// Parse 把原始文本解析为有序片段。格式错误的标记按普通文本处理，不返回错误。
func Parse(text string, opts Options) ([]Segment, error) {
	text = strings.TrimRightFunc(norm.NFC.String(text), unicode.IsSpace)
	if text == "" {
		return nil, nil
	}
	p, err := parserFor(opts.NoCompress)
	if err != nil {
		return nil, err
	}
	doc, err := p.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("解析标记文本失败: %w", err)
	}

	var (
		segments []Segment
		pending  strings.Builder
		bold     bool
	)
	flush := func() {
		for _, g := range Graphemes(pending.String()) {
			segments = append(segments, Segment{Base: g, Bold: bold})
		}
		pending.Reset()
	}

	for _, tok := range doc.Tokens {
		switch {
		case tok.Ruby != nil:
			if tok.Ruby.Base == "" {
				// 缺少本文时退化为普通文本
				pending.WriteString(tok.Ruby.Raw)
				continue
			}
			if tok.Ruby.Reading == "" {
				pending.WriteString(tok.Ruby.Base)
				continue
			}
			flush()
			segments = append(segments, Segment{Base: tok.Ruby.Base, Gloss: tok.Ruby.Reading, Bold: bold})
		case tok.BoldOpen:
			flush()
			bold = true
		case tok.BoldClose:
			flush()
			bold = false
		case tok.Newline:
			flush()
			segments = append(segments, Segment{Base: "\n", Bold: bold, Break: true})
		case tok.Atomic != nil:
			flush()
			segments = append(segments, Segment{Base: *tok.Atomic, Bold: bold, Atomic: true})
		case tok.Char != nil:
			pending.WriteString(*tok.Char)
		}
	}
	flush()
	return segments, nil
}

// Graphemes 将文本拆分为字素簇。
func Graphemes(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	seg := graphemes.FromString(s)
	for seg.Next() {
		out = append(out, seg.Value())
	}
	return out
}

// Plain 去掉所有标记，返回可见文本（注音只保留本文）。
func Plain(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Base)
	}
	return b.String()
}
