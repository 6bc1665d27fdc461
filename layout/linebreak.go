package layout

import "strings"

// reflow 在给定的压缩比例与行距比例下，从头为每个字符分配行号与坐标。
// 每次调用都会清空上一次的行分配和行尾空格删除结果。
func (e *engine) reflow(textScale, lineHeightScale float64) {
	e.st.textScale = textScale
	e.st.lineHeightScale = lineHeightScale
	e.st.x, e.st.y, e.st.line = 0, 0, 0
	for i := range e.runs {
		r := &e.runs[i]
		r.Line = -1
		r.Removed = false
		e.scaleRun(r)
	}
	for si, seg := range e.segments {
		lo, hi := e.segRuns[si][0], e.segRuns[si][1]
		if lo == hi {
			continue
		}
		if seg.HasGloss() {
			e.placeBlock(lo, hi)
			continue
		}
		for i := lo; i < hi; i++ {
			e.placeRun(i)
		}
	}
}

// scaleRun 计算字符在当前比例下的宽高。
// 首行压缩开启时首段使用首行比例；否则只有最后一段参与压缩，不压缩字符保持原宽。
func (e *engine) scaleRun(r *Run) {
	scale := 1.0
	switch {
	case e.cfg.FirstLineCompress && r.Paragraph == 0:
		scale = e.st.firstLineScale
	case !r.Atomic && r.Paragraph == e.paragraphs-1:
		scale = e.st.textScale
	}
	size := e.cfg.baseFontSize(e.st.small) * e.cfg.FontScale
	r.Width = r.OriginalWidth * scale
	r.Height = r.OriginalHeight * e.st.lineHeightScale
	if e.cfg.UseScaleXForCompress {
		r.ScaleX, r.FontSize = scale, size
	} else {
		r.ScaleX, r.FontSize = 1, size*scale
	}
}

// placeBlock 把注音片段的本文作为不可拆分的整体放置，放不下时整体换到下一行。
func (e *engine) placeBlock(lo, hi int) {
	total := 0.0
	for i := lo; i < hi; i++ {
		total += e.runs[i].span()
	}
	if e.overflows(total) {
		e.newLine()
	}
	for i := lo; i < hi; i++ {
		e.place(i)
	}
}

// placeRun 放置普通字符，处理宽度溢出与避头尾。
func (e *engine) placeRun(i int) {
	r := &e.runs[i]
	if !r.Break && e.overflows(r.span()) {
		prev := e.retractable(i)
		if prev >= 0 {
			e.st.x -= e.runs[prev].span()
			e.runs[prev].Line = -1
		}
		e.newLine()
		if prev >= 0 {
			e.place(prev)
		}
	}
	e.place(i)
	if r.Break {
		e.newLine()
	}
}

func (e *engine) overflows(width float64) bool {
	return e.cfg.Width > 0 && e.st.x > 0 && e.st.x+width > e.cfg.Width+epsilon
}

// retractable 判断换行时是否需要把前一个字符一起带到下一行：
// 当前字符不能出现在行首，或前一个字符不能出现在行尾。
// 返回前一个字符的下标，不需要或不能移动时返回 -1。
func (e *engine) retractable(i int) int {
	if i == 0 {
		return -1
	}
	cur, prev := &e.runs[i], &e.runs[i-1]
	if !strings.Contains(e.cfg.AvoidStartChars, cur.Text) && !strings.Contains(e.cfg.AvoidEndChars, prev.Text) {
		return -1
	}
	if !prev.visible() || prev.Line != e.st.line || prev.Break || e.segments[prev.Segment].HasGloss() {
		return -1
	}
	// 前一个字符已在行首时移走它只会留下空行
	if e.st.x-prev.span() <= epsilon {
		return -1
	}
	return i - 1
}

func (e *engine) place(i int) {
	r := &e.runs[i]
	r.X = e.st.x + r.PaddingLeft
	r.Y = e.st.y
	r.Line = e.st.line
	e.st.x += r.span()
}

// newLine 结束当前行：删除行尾空格后把游标移到下一行行首。
func (e *engine) newLine() {
	e.trimLineEnd(e.st.line)
	e.st.x = 0
	e.st.y += e.lineAdvance()
	e.st.line++
}

func (e *engine) lineAdvance() float64 {
	return e.cfg.baseFontSize(e.st.small) * e.cfg.LineHeight * e.cfg.FontScale * e.st.lineHeightScale
}

// trimLineEnd 删除指定行末尾的所有空格，并从宽度统计中扣除。
func (e *engine) trimLineEnd(line int) {
	for {
		last := e.lastOnLine(line)
		if last < 0 || !isSpace(e.runs[last].Text) {
			return
		}
		r := &e.runs[last]
		if line == e.st.line {
			e.st.x -= r.span()
		}
		r.Removed = true
		r.Line = -1
	}
}

func (e *engine) lastOnLine(line int) int {
	for i := len(e.runs) - 1; i >= 0; i-- {
		if e.runs[i].visible() && e.runs[i].Line == line {
			return i
		}
	}
	return -1
}

// lineRuns 返回某一行的可见字符下标。
func (e *engine) lineRuns(line int) []int {
	var out []int
	for i := range e.runs {
		if e.runs[i].visible() && e.runs[i].Line == line {
			out = append(out, i)
		}
	}
	return out
}

// blockHeight 为最后一个字符的底边，即整个文本块的高度。
func (e *engine) blockHeight() float64 {
	for i := len(e.runs) - 1; i >= 0; i-- {
		if r := &e.runs[i]; r.visible() {
			return r.Y + r.Height
		}
	}
	return 0
}

func isSpace(s string) bool { return s == " " || s == "　" }
