package layout

// Glyphs 生成交给渲染器的绘制列表：先本文字符，后注音。
// 已删除的行尾空格与换行符不会出现在列表中。
func (r *Result) Glyphs() []Glyph {
	cfg := r.Config
	fill := Paint{Color: colorOr(cfg.Color, Black)}
	var stroke *Color
	strokeWidth := cfg.StrokeWidth
	if strokeWidth > 0 {
		c := fill.Color
		stroke = &c
	}
	if cfg.Gradient {
		fill = gradientPaint(cfg)
		stroke = &Color{A: 0.2}
		strokeWidth = cfg.baseFontSize(r.SmallSize) * 0.025 * cfg.FontScale
	}

	out := make([]Glyph, 0, len(r.Runs)+len(r.Glosses))
	for i := range r.Runs {
		run := &r.Runs[i]
		if !run.visible() || run.Break {
			continue
		}
		weight := cfg.FontWeight
		if run.Bold {
			weight = "bold"
		}
		out = append(out, Glyph{
			Text:          run.Text,
			X:             run.X,
			Y:             run.Y,
			Width:         run.Width,
			Height:        run.Height,
			ScaleX:        run.ScaleX,
			FontSize:      run.FontSize,
			LineHeight:    run.Height,
			LetterSpacing: cfg.LetterSpacing,
			Font: FontSpec{
				Family:        cfg.FontFamily,
				Size:          run.FontSize,
				Weight:        weight,
				LetterSpacing: cfg.LetterSpacing,
				LineHeight:    run.Height,
			},
			Fill:        fill,
			Stroke:      stroke,
			StrokeWidth: strokeWidth,
		})
	}

	rtFill := Paint{Color: colorOr(cfg.RtColor, Black)}
	var rtStroke *Color
	if cfg.RtStrokeWidth > 0 {
		// 注音描边沿用正文颜色
		c := colorOr(cfg.Color, Black)
		rtStroke = &c
	}
	for _, g := range r.Glosses {
		out = append(out, Glyph{
			Text:          g.Text,
			X:             g.X,
			Y:             g.Y,
			Width:         g.Width,
			Height:        g.Height,
			ScaleX:        g.ScaleX,
			FontSize:      g.FontSize,
			LineHeight:    g.FontSize * cfg.RtLineHeight,
			LetterSpacing: g.LetterSpacing,
			Font: FontSpec{
				Family:        cfg.RtFontFamily,
				Size:          g.FontSize,
				Weight:        cfg.RtFontWeight,
				LetterSpacing: g.LetterSpacing,
				LineHeight:    g.FontSize * cfg.RtLineHeight,
			},
			Fill:        rtFill,
			Stroke:      rtStroke,
			StrokeWidth: cfg.RtStrokeWidth,
			Gloss:       true,
		})
	}
	return out
}

// gradientPaint 为卡名等使用的金属质感渐变。
func gradientPaint(cfg Config) Paint {
	c1 := colorOr(cfg.GradientColor1, Color{R: 0x99, G: 0x99, B: 0x99, A: 1})
	c2 := colorOr(cfg.GradientColor2, Color{R: 0xff, G: 0xff, B: 0xff, A: 1})
	return Paint{
		Color: c1,
		Gradient: []GradientStop{
			{Offset: 0, Color: c1},
			{Offset: 0.4, Color: c2},
			{Offset: 0.55, Color: c2},
			{Offset: 0.6, Color: c1},
			{Offset: 0.75, Color: c2},
		},
	}
}

func colorOr(value string, fallback Color) Color {
	if c, err := ParseColor(value); err == nil {
		return c
	}
	return fallback
}
