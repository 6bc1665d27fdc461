package layout

import (
	"math"

	"go.uber.org/zap"
)

// 高度适配的搜索范围：文字横向压缩 1.0→0.6（步长 0.02），行距 1.0→0.9（步长 0.01）。
const (
	minTextScale        = 0.6
	textScaleStep       = 0.02
	minLineHeightScale  = 0.9
	lineHeightScaleStep = 0.01
)

var (
	textScaleSteps       = int(math.Round((1 - minTextScale) / textScaleStep))
	lineHeightScaleSteps = int(math.Round((1 - minLineHeightScale) / lineHeightScaleStep))
)

type scalePair struct {
	text   float64
	line   float64
	height float64
}

// fitHeight 搜索能放进目标高度的最佳比例组合。
// 找不到时可切换到小字号再搜索一次；仍然找不到则保持原始比例并允许溢出。
func (e *engine) fitHeight() error {
	if e.cfg.Height <= 0 || len(e.runs) == 0 {
		return nil
	}
	best, ok := e.searchScales()
	if !ok && e.cfg.AutoSmallSize && e.cfg.FontScale <= 1 && !e.st.small {
		e.log.Debug("压缩后仍超出高度，切换为小字号", zap.Float64("smallFontSize", e.cfg.SmallFontSize))
		e.st.small = true
		if err := e.measureRuns(); err != nil {
			return err
		}
		best, ok = e.searchScales()
	}
	if !ok {
		e.log.Debug("无法放入目标高度，允许溢出",
			zap.Float64("lowest", best.height),
			zap.Float64("target", e.cfg.Height))
		best.text, best.line = 1, 1
	}
	e.reflow(best.text, best.line)
	return nil
}

// searchScales 逐级降低文字压缩比例；对每个压缩比例逐级降低行距，
// 一旦放得下就停止降低行距（行距越小高度越小，继续降低只会离目标更远）。
// 在所有放得下的组合中选择最接近目标高度的一个。
func (e *engine) searchScales() (scalePair, bool) {
	target := e.cfg.Height
	best := scalePair{text: 1, line: 1, height: math.MaxFloat64}
	lowest := best
	found := false
	for i := 0; i <= textScaleSteps; i++ {
		ts := 1 - float64(i)*textScaleStep
		for j := 0; j <= lineHeightScaleSteps; j++ {
			ls := 1 - float64(j)*lineHeightScaleStep
			e.reflow(ts, ls)
			h := e.blockHeight()
			if h < lowest.height {
				lowest = scalePair{text: ts, line: ls, height: h}
			}
			if h <= target+epsilon {
				if math.Abs(h-target) < math.Abs(best.height-target) {
					best = scalePair{text: ts, line: ls, height: h}
					found = true
				}
				break
			}
		}
	}
	if !found {
		// 仅用于日志，调用方不采用该组合
		return lowest, false
	}
	return best, true
}
