package layout

// 该文件定义排版结果与资源描述，供排版计算、渲染与调试 JSON 共用。

// Run 是一个本文字符（或不压缩字符）的排版记录。
// 所有 Run 存放在 Result.Runs 中并以下标引用，每一轮排版都会重新生成。
type Run struct {
	Text      string `json:"text"`
	Segment   int    `json:"segment"`   // 所属片段下标
	Paragraph int    `json:"paragraph"` // 所属显式段落（按 \n 划分）
	Bold      bool   `json:"bold,omitempty"`
	Atomic    bool   `json:"atomic,omitempty"` // 不参与压缩
	Break     bool   `json:"break,omitempty"`  // 显式换行符

	OriginalWidth  float64 `json:"originalWidth"`
	OriginalHeight float64 `json:"originalHeight"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	PaddingLeft    float64 `json:"paddingLeft,omitempty"`
	PaddingRight   float64 `json:"paddingRight,omitempty"`

	X        float64 `json:"x"` // 已包含 PaddingLeft
	Y        float64 `json:"y"`
	Line     int     `json:"line"` // -1 表示未分配或已删除
	ScaleX   float64 `json:"scaleX"`
	FontSize float64 `json:"fontSize"`
	Removed  bool    `json:"removed,omitempty"` // 行尾空格被删除
}

// span 返回含左右留白的占位宽度。
func (r *Run) span() float64 { return r.Width + r.PaddingLeft + r.PaddingRight }

// right 返回含右留白的右边界。
func (r *Run) right() float64 { return r.X + r.Width + r.PaddingRight }

// visible 判断该字符是否参与最终输出。
func (r *Run) visible() bool { return !r.Removed && r.Line >= 0 }

// GlossRun 是一个片段的注音排版记录。
type GlossRun struct {
	Text          string  `json:"text"`
	Segment       int     `json:"segment"`
	OriginalWidth float64 `json:"originalWidth"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	X             float64 `json:"x"`       // 左边界
	CenterX       float64 `json:"centerX"` // 居中锚点
	Y             float64 `json:"y"`
	ScaleX        float64 `json:"scaleX"`
	FontSize      float64 `json:"fontSize"`
	LetterSpacing float64 `json:"letterSpacing"`
}

// Bounds 为文本块的外接尺寸。
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Result 是一次排版的最终输出。
type Result struct {
	Config          Config     `json:"config"`
	Runs            []Run      `json:"runs,omitempty"`
	Glosses         []GlossRun `json:"glosses,omitempty"`
	Lines           int        `json:"lines"`
	Bounds          Bounds     `json:"bounds"`
	TextScale       float64    `json:"textScale"`
	LineHeightScale float64    `json:"lineHeightScale"`
	FirstLineScale  float64    `json:"firstLineScale"`
	SmallSize       bool       `json:"smallSize"`
	Passes          int        `json:"passes"`
	Overflow        bool       `json:"overflow"` // 超出目标高度（软溢出）
}

// LineRuns 返回第 line 行的可见字符下标（按原始顺序）。
func (r *Result) LineRuns(line int) []int {
	var out []int
	for i := range r.Runs {
		if r.Runs[i].visible() && r.Runs[i].Line == line {
			out = append(out, i)
		}
	}
	return out
}

// GradientStop 为渐变色标。
type GradientStop struct {
	Offset float64 `json:"offset"`
	Color  Color   `json:"color"`
}

// Paint 为填充方式：纯色或从左上到右下的线性渐变。
type Paint struct {
	Color    Color          `json:"color"`
	Gradient []GradientStop `json:"gradient,omitempty"`
}

// Glyph 是交给渲染器的最终绘制条目，坐标为文本块内的 px。
type Glyph struct {
	Text          string   `json:"text"`
	X             float64  `json:"x"`
	Y             float64  `json:"y"`
	Width         float64  `json:"width"`
	Height        float64  `json:"height"`
	ScaleX        float64  `json:"scaleX"`
	FontSize      float64  `json:"fontSize"`
	LineHeight    float64  `json:"lineHeight"`
	LetterSpacing float64  `json:"letterSpacing,omitempty"`
	Font          FontSpec `json:"font"`
	Fill          Paint    `json:"fill"`
	Stroke        *Color   `json:"stroke,omitempty"`
	StrokeWidth   float64  `json:"strokeWidth,omitempty"`
	Gloss         bool     `json:"gloss,omitempty"`
}

// FontResource 描述字体资源，src 可以是文件路径或 embed:<name>。
type FontResource struct {
	Name  string `json:"name" toml:"name"` // 字体族名，与 Config.FontFamily 中的候选名对应
	Src   string `json:"src" toml:"src"`
	Style string `json:"style" toml:"style"` // regular/bold/italic…
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// Sheet 是整页排版结果，坐标单位为 px。
type Sheet struct {
	Name   string         `json:"name"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Meta   DocumentMeta   `json:"meta"`
	Fonts  []FontResource `json:"fonts"`
	Blocks []PlacedBlock  `json:"blocks"`
}

// PlacedBlock 是放置在页面上的一个文本块。
type PlacedBlock struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Result *Result `json:"result"`
	Glyphs []Glyph `json:"glyphs"`
}
