package layout

import (
	"math"

	"github.com/ByLCY/fittext/markup"
)

const (
	minGlossScale     = 0.6 // 注音最大压缩程度
	maxGlossSpacingEm = 9   // 注音拉伸时字间距上限（注音字号的倍数）
)

// positionGlosses 根据本文宽度决定每个注音的拉伸、压缩与位置。
// 压缩比例低于下限时改为加宽本文，返回需要追加的留白；此时已有的换行结果失效，
// 调用方需要重新排版。
func (e *engine) positionGlosses() (map[int]padding, error) {
	e.glosses = e.glosses[:0]
	var widen map[int]padding
	font := e.glossFont()
	for si, seg := range e.segments {
		if !seg.HasGloss() {
			continue
		}
		lo, hi := e.segRuns[si][0], e.segRuns[si][1]
		if lo == hi {
			continue
		}
		sz, err := e.measure(seg.Gloss, font)
		if err != nil {
			return nil, err
		}
		first, last := &e.runs[lo], &e.runs[hi-1]
		g := GlossRun{
			Text:          seg.Gloss,
			Segment:       si,
			OriginalWidth: sz.Width,
			Width:         sz.Width,
			Height:        sz.Height,
			ScaleX:        1,
			FontSize:      font.Size,
			LetterSpacing: font.LetterSpacing,
		}

		rubyWidth := last.X - first.X + last.Width + first.PaddingLeft + last.PaddingRight
		trim := math.Min(math.Min(first.Width, last.Width), e.cfg.baseFontSize(e.st.small)) / 2
		target := rubyWidth - trim
		g.CenterX = first.X - first.PaddingLeft + rubyWidth/2
		g.Y = first.Y + e.cfg.RtTop*e.cfg.FontScale
		count := len(markup.Graphemes(seg.Gloss))

		switch {
		case e.cfg.RtFontScaleX != 1:
			e.scaleGloss(&g, e.cfg.RtFontScaleX)
		case g.OriginalWidth < target && count > 1:
			spacing := math.Min((target-g.OriginalWidth)/float64(count-1), maxGlossSpacingEm*font.Size)
			g.LetterSpacing = spacing
			g.Width = g.OriginalWidth + spacing*float64(count)
			g.CenterX += spacing / 2
		case g.OriginalWidth > rubyWidth:
			ratio := rubyWidth / g.OriginalWidth
			if ratio < minGlossScale {
				e.scaleGloss(&g, minGlossScale)
				// (rubyWidth + widen) / glossWidth = minGlossScale
				w := minGlossScale*g.OriginalWidth - rubyWidth
				if widen == nil {
					widen = map[int]padding{}
				}
				p := widen[lo]
				p.Left += w / 2
				widen[lo] = p
				p = widen[hi-1]
				p.Right += w / 2
				widen[hi-1] = p
			} else {
				e.scaleGloss(&g, ratio)
			}
		}
		g.X = g.CenterX - g.Width/2
		e.glosses = append(e.glosses, g)
	}
	return widen, nil
}

func (e *engine) scaleGloss(g *GlossRun, scale float64) {
	if e.cfg.UseScaleXForCompress {
		g.ScaleX = scale
	} else {
		g.FontSize *= scale
	}
	g.Width = g.OriginalWidth * scale
}
