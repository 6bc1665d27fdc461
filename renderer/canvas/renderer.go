package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/fittext/fonts"
	"github.com/ByLCY/fittext/layout"
	"github.com/ByLCY/fittext/markup"
	"github.com/ByLCY/fittext/renderer"
)

// Renderer 基于 github.com/tdewolff/canvas 测量文本并输出 PDF。
// 排版坐标为 px，canvas 内部使用 mm，字号使用 pt，在边界处换算。
type Renderer struct {
	baseDir string

	fontBlobs map[string][]byte // built-in:<name> 注入的字体

	// canvas 的字体对象不保证并发安全，测量与加载共用一把锁
	mu         sync.Mutex
	registered map[string][]layout.FontResource // 小写字体族名 → 各字重的资源
	families   map[string]*canvas.FontFamily    // 资源 src → 已加载的字体
}

var (
	_ renderer.Renderer    = (*Renderer)(nil)
	_ layout.Measurer      = (*Renderer)(nil)
	_ layout.FontRegistrar = (*Renderer)(nil)
	_ layout.FontLoader    = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // 通过 built-in:<name> 引用的字体
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving font files.
func NewRenderer(baseDir string) *Renderer {
	r, _ := NewRendererWithOptions(Options{BaseDir: baseDir})
	return r
}

// NewRendererWithOptions creates a renderer with injected fonts and optional baseDir.
// 注入的字体文件在此读取，读取失败时返回错误。
func NewRendererWithOptions(opts Options) (*Renderer, error) {
	r := &Renderer{
		baseDir:    opts.BaseDir,
		fontBlobs:  map[string][]byte{},
		registered: map[string][]layout.FontResource{},
		families:   map[string]*canvas.FontFamily{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			return nil, fmt.Errorf("注入字体缺少名称")
		}
		switch {
		case len(res.Bytes) > 0:
			r.fontBlobs[name] = res.Bytes
		case res.Path != "":
			data, err := os.ReadFile(res.Path)
			if err != nil {
				return nil, fmt.Errorf("读取注入字体 %s 失败: %w", name, err)
			}
			r.fontBlobs[name] = data
		default:
			return nil, fmt.Errorf("注入字体 %s 没有内容", name)
		}
	}
	return r, nil
}

// RegisterFont 以资源名注册字体，同名资源可按 style 提供不同字重。
// 字体会立即加载，无法读取或解析时返回错误。
func (r *Renderer) RegisterFont(font layout.FontResource) error {
	name := normalizeFamily(font.Name)
	if name == "" {
		return fmt.Errorf("字体资源缺少名称")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.loadFamily(font); err != nil {
		return err
	}
	r.registered[name] = append(r.registered[name], font)
	return nil
}

// EnsureFonts 预先加载候选字体列表中已注册的字体。
func (r *Renderer) EnsureFonts(families ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, family := range families {
		for _, bold := range []bool{false, true} {
			if _, err := r.resolve(family, bold); err != nil {
				return err
			}
		}
	}
	return nil
}

// Measure 实现 layout.Measurer，返回 px 尺寸。
// 宽度为字形宽度加上每个字素之后的字间距；高度优先使用 FontSpec.LineHeight。
func (r *Renderer) Measure(text string, font layout.FontSpec) (layout.Size, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	face, err := r.face(font, canvas.Black)
	if err != nil {
		return layout.Size{}, err
	}
	width := face.TextWidth(text)*layout.MmToPx + font.LetterSpacing*float64(len(markup.Graphemes(text)))
	height := font.LineHeight
	if height <= 0 {
		height = face.Metrics().LineHeight * layout.MmToPx
	}
	return layout.Size{Width: width, Height: height}, nil
}

// Render 将整页排版结果绘制为单页 PDF。
func (r *Renderer) Render(sheet *layout.Sheet) ([]byte, error) {
	if sheet == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if sheet.Width <= 0 || sheet.Height <= 0 {
		return nil, fmt.Errorf("页面尺寸无效: %gx%g", sheet.Width, sheet.Height)
	}
	width, height := toMm(sheet.Width), toMm(sheet.Height)

	var buf bytes.Buffer
	writer := pdf.New(&buf, width, height, nil)
	applyMeta(writer, sheet.Meta)

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与排版保持左上角为原点

	r.mu.Lock()
	for _, block := range sheet.Blocks {
		for _, g := range block.Glyphs {
			if err := r.drawGlyph(ctx, block.X, block.Y, g); err != nil {
				r.mu.Unlock()
				return nil, fmt.Errorf("绘制文本块 %s 失败: %w", block.Name, err)
			}
		}
	}
	r.mu.Unlock()
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// drawGlyph 绘制一个字符或一段注音。(ox, oy) 为文本块左上角，单位 px。
func (r *Renderer) drawGlyph(ctx *canvas.Context, ox, oy float64, g layout.Glyph) error {
	x := toMm(ox + g.X)
	top := toMm(oy + g.Y)
	var paint any = colorFromLayout(g.Fill.Color)
	if len(g.Fill.Gradient) > 0 {
		paint = gradientPaint(g, x, top)
	}
	face, err := r.face(g.Font, paint)
	if err != nil {
		return err
	}
	metrics := face.Metrics()
	// 行高大于字体自身行高时上下平分多余空间
	baseline := top + (toMm(g.LineHeight)-metrics.LineHeight)/2 + metrics.Ascent

	var strokeFace *canvas.FontFace
	if g.Stroke != nil && g.StrokeWidth > 0 {
		if strokeFace, err = r.face(g.Font, colorFromLayout(*g.Stroke)); err != nil {
			return err
		}
	}

	scaleX := g.ScaleX
	if scaleX <= 0 {
		scaleX = 1
	}
	texts := []string{g.Text}
	if g.Gloss && g.LetterSpacing != 0 {
		texts = markup.Graphemes(g.Text)
	}
	cursor := x
	for _, text := range texts {
		if strokeFace != nil {
			drawStroke(ctx, strokeFace, text, cursor, baseline, scaleX, toMm(g.StrokeWidth))
		}
		drawScaled(ctx, canvas.NewTextLine(face, text, canvas.Left), cursor, baseline, scaleX)
		cursor += face.TextWidth(text)*scaleX + toMm(g.LetterSpacing)
	}
	return nil
}

// drawScaled 以 (x, baseline) 为锚点在水平方向按 scaleX 压缩后绘制。
func drawScaled(ctx *canvas.Context, text *canvas.Text, x, baseline, scaleX float64) {
	if scaleX == 1 {
		ctx.DrawText(x, baseline, text)
		return
	}
	ctx.Push()
	ctx.ComposeView(canvas.Identity.Translate(x, 0).Scale(scaleX, 1).Translate(-x, 0))
	ctx.DrawText(x, baseline, text)
	ctx.Pop()
}

// drawStroke 在八个方向上偏移绘制描边色文字，模拟文字描边。
func drawStroke(ctx *canvas.Context, face *canvas.FontFace, text string, x, baseline, scaleX, width float64) {
	d := width / 2
	line := canvas.NewTextLine(face, text, canvas.Left)
	for _, off := range [][2]float64{{-d, 0}, {d, 0}, {0, -d}, {0, d}, {-d, -d}, {d, -d}, {-d, d}, {d, d}} {
		drawScaled(ctx, line, x+off[0], baseline+off[1], scaleX)
	}
}

func gradientPaint(g layout.Glyph, x, top float64) canvas.Paint {
	grad := canvas.NewLinearGradient(
		canvas.Point{X: x, Y: top},
		canvas.Point{X: x + toMm(g.Width), Y: top + toMm(g.Height)},
	)
	for _, stop := range g.Fill.Gradient {
		grad.Add(stop.Offset, colorFromLayout(stop.Color))
	}
	return canvas.Paint{Gradient: grad}
}

// face 按 FontSpec 解析字体并创建字体面，字号由 px 换算为 pt。
func (r *Renderer) face(font layout.FontSpec, paint any) (*canvas.FontFace, error) {
	family, err := r.resolve(font.Family, font.Bold())
	if err != nil {
		return nil, err
	}
	size := font.Size
	if size <= 0 {
		size = layout.DefaultConfig().FontSize
	}
	return family.Face(size*layout.PxToPt, paint, canvas.FontRegular, canvas.FontNormal), nil
}

// resolve 依次尝试逗号分隔的候选字体：已注册的资源名、embed:<name>、
// 通用族名 monospace；都不可用时回退到内置的 Go 字体。
func (r *Renderer) resolve(families string, bold bool) (*canvas.FontFamily, error) {
	for _, candidate := range strings.Split(families, ",") {
		name := normalizeFamily(candidate)
		if name == "" {
			continue
		}
		if resources, ok := r.registered[name]; ok {
			return r.loadFamily(pickStyle(resources, bold))
		}
		if strings.HasPrefix(name, "embed:") {
			return r.loadFamily(layout.FontResource{Name: name, Src: name})
		}
		if name == "monospace" {
			return r.loadFamily(layout.FontResource{Name: name, Src: "embed:gomono"})
		}
	}
	src := "embed:" + fonts.Default
	if bold {
		src = "embed:gobold"
	}
	return r.loadFamily(layout.FontResource{Name: "fittext-fallback", Src: src})
}

// pickStyle 在同名资源中选择与字重匹配的一个，没有匹配时使用第一个。
func pickStyle(resources []layout.FontResource, bold bool) layout.FontResource {
	for _, res := range resources {
		if isBoldStyle(res.Style) == bold {
			return res
		}
	}
	return resources[0]
}

func isBoldStyle(style string) bool {
	s := strings.ToLower(style)
	return strings.Contains(s, "bold") || strings.Contains(s, "black") || strings.Contains(s, "heavy")
}

func (r *Renderer) loadFamily(font layout.FontResource) (*canvas.FontFamily, error) {
	if family, ok := r.families[font.Src]; ok {
		return family, nil
	}
	data, err := r.loadFontBytes(font)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily(font.Name)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", font.Name, err)
	}
	r.families[font.Src] = family
	return family, nil
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	src := font.Src
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到内置字体资源 built-in:%s", name)
	}
	if strings.HasPrefix(src, "embed:") {
		return fonts.Load(src)
	}
	path := src
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 built-in: 或 embed:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", font.Name, err)
	}
	return data, nil
}

// normalizeFamily 去掉候选字体名两侧的空白与引号并转为小写。
func normalizeFamily(name string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(name), `"'`))
}

func colorFromLayout(c layout.Color) color.RGBA {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, c.A)
}

// toMm 将 px 转换为 mm。
func toMm(px float64) float64 { return px * layout.PxToMm }
