package layout

import (
	"fmt"
	"math"

	"github.com/ByLCY/fittext/markup"
)

type measureKey struct {
	text string
	font FontSpec
}

func (e *engine) measure(text string, font FontSpec) (Size, error) {
	key := measureKey{text: text, font: font}
	if sz, ok := e.cache[key]; ok {
		return sz, nil
	}
	sz, err := e.measurer.Measure(text, font)
	if err != nil {
		return Size{}, fmt.Errorf("测量 %q 失败: %w", text, err)
	}
	e.cache[key] = sz
	return sz, nil
}

// materialize 为每个片段生成字符记录并测量原始尺寸。
// 注音片段的本文按字素拆开，其余片段本身就是一个字素。
func (e *engine) materialize(paddings map[int]padding) error {
	e.runs = e.runs[:0]
	paragraph := 0
	for si, seg := range e.segments {
		lo := len(e.runs)
		texts := []string{seg.Base}
		if seg.HasGloss() {
			texts = markup.Graphemes(seg.Base)
		}
		for _, text := range texts {
			e.runs = append(e.runs, Run{
				Text:      text,
				Segment:   si,
				Paragraph: paragraph,
				Bold:      seg.Bold,
				Atomic:    seg.Atomic,
				Break:     seg.Break,
				Line:      -1,
				ScaleX:    1,
			})
		}
		e.segRuns[si] = [2]int{lo, len(e.runs)}
		if seg.Break {
			paragraph++
		}
	}
	e.paragraphs = paragraph + 1
	for i, p := range paddings {
		if i >= 0 && i < len(e.runs) {
			e.runs[i].PaddingLeft = p.Left
			e.runs[i].PaddingRight = p.Right
		}
	}
	return e.measureRuns()
}

// measureRuns 按当前字号（常规或小字）测量全部字符，并重新计算首行压缩比例。
func (e *engine) measureRuns() error {
	for i := range e.runs {
		r := &e.runs[i]
		font := e.runFont(r)
		r.FontSize = font.Size
		if r.Break {
			r.OriginalWidth, r.OriginalHeight = 0, font.LineHeight
		} else {
			sz, err := e.measure(r.Text, font)
			if err != nil {
				return err
			}
			r.OriginalWidth, r.OriginalHeight = sz.Width, sz.Height
			if r.Text == " " {
				r.OriginalWidth += e.cfg.WordSpacing
			}
		}
		r.Width, r.Height = r.OriginalWidth, r.OriginalHeight
	}
	e.st.firstLineScale = e.computeFirstLineScale()
	return nil
}

func (e *engine) runFont(r *Run) FontSpec {
	size := e.cfg.baseFontSize(e.st.small) * e.cfg.FontScale
	weight := e.cfg.FontWeight
	if r.Bold {
		weight = "bold"
	}
	return FontSpec{
		Family:        e.cfg.FontFamily,
		Size:          size,
		Weight:        weight,
		LetterSpacing: e.cfg.LetterSpacing,
		LineHeight:    size * e.cfg.LineHeight,
	}
}

func (e *engine) glossFont() FontSpec {
	size := e.cfg.RtFontSize * e.cfg.FontScale
	return FontSpec{
		Family:        e.cfg.RtFontFamily,
		Size:          size,
		Weight:        e.cfg.RtFontWeight,
		LetterSpacing: e.cfg.RtLetterSpacing,
		LineHeight:    size * e.cfg.RtLineHeight,
	}
}

// computeFirstLineScale 直接计算首段压缩到一行所需的比例，只缩不放，
// 向下取整到千分位以避免浮点误差导致溢出。
func (e *engine) computeFirstLineScale() float64 {
	if !e.cfg.FirstLineCompress || e.cfg.Width <= 0 {
		return 1
	}
	total := 0.0
	limit := e.cfg.Width
	for i := range e.runs {
		r := &e.runs[i]
		if r.Paragraph != 0 {
			break
		}
		total += r.OriginalWidth
		limit -= r.PaddingLeft + r.PaddingRight
	}
	if total <= 0 {
		return 1
	}
	return math.Min(math.Floor(limit/total*1000)/1000, 1)
}
