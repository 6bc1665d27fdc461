package layout

// align 对已完成的各行做水平对齐。
// 文字被压缩、居中/右对齐或设置 textJustifyLast 时，最后一行也参与处理（去除行尾空白）；
// 自然结束的末行始终不做两端对齐。
func (e *engine) align() {
	lastLine := e.st.line
	limit := lastLine
	if e.st.textScale < 1 || e.cfg.TextAlign == AlignCenter || e.cfg.TextAlign == AlignRight || e.cfg.TextJustifyLast {
		limit = lastLine + 1
	}
	for line := 0; line < limit; line++ {
		e.trimLineEnd(line)
		idx := e.lineRuns(line)
		if len(idx) == 0 {
			continue
		}
		last := &e.runs[idx[len(idx)-1]]
		remain := e.cfg.Width - last.right()
		if remain <= 0 {
			continue
		}
		switch e.cfg.TextAlign {
		case AlignCenter:
			e.shift(idx, remain/2)
		case AlignRight:
			e.shift(idx, remain)
		case AlignJustify:
			// 以换行符结尾的行和自然结束的末行不做两端对齐
			finalLine := line == lastLine && !last.Break
			if len(idx) > 1 && !last.Break && !finalLine {
				gap := remain / float64(len(idx)-1)
				for k, i := range idx {
					e.runs[i].X += float64(k) * gap
				}
			}
		}
	}
}

func (e *engine) shift(idx []int, offset float64) {
	for _, i := range idx {
		e.runs[i].X += offset
	}
}

// bounds 计算所有行的外接宽高。
func (e *engine) bounds() Bounds {
	var b Bounds
	for line := 0; line <= e.st.line; line++ {
		idx := e.lineRuns(line)
		if len(idx) == 0 {
			continue
		}
		last := &e.runs[idx[len(idx)-1]]
		if w := last.right(); w > b.Width {
			b.Width = w
		}
		if h := last.Y + last.Height; h > b.Height {
			b.Height = h
		}
	}
	return b
}
