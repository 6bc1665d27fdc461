package layout

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ByLCY/fittext/markup"
)

// 注音触发的重新排版最多进行一次，即总共两轮。
const maxPasses = 2

const epsilon = 1e-9

// padding 为某个字符因注音过宽而追加的左右留白。
type padding struct {
	Left  float64
	Right float64
}

// state 是一轮排版中唯一的可变游标状态，每轮开始时重置。
type state struct {
	x, y            float64
	line            int
	textScale       float64
	lineHeightScale float64
	firstLineScale  float64
	small           bool
}

// engine 持有一轮排版所需的全部数据，不跨轮复用。
type engine struct {
	cfg      Config
	measurer Measurer
	log      *zap.Logger

	segments   []markup.Segment
	segRuns    [][2]int // 片段对应的 Run 区间 [lo, hi)
	runs       []Run
	glosses    []GlossRun
	paragraphs int

	st    state
	cache map[measureKey]Size
}

// Layout 对单个文本块执行完整的排版流程：
// 解析 → 测量 → 换行 → 高度适配 → 对齐 → 注音定位 → 外接尺寸。
// 若注音需要加宽本文，会带着新的留白重新排版一次。
func Layout(cfg Config, opts Options) (*Result, error) {
	if opts.Measurer == nil {
		return nil, ErrNoMeasurer
	}
	cfg = cfg.normalize()
	segments, err := markup.Parse(cfg.Text, markup.Options{NoCompress: cfg.NoCompressChars})
	if err != nil {
		return nil, err
	}
	log := opts.logger()

	var paddings map[int]padding
	for pass := 1; ; pass++ {
		e := newEngine(cfg, segments, opts.Measurer, log)
		res, retry, err := e.run(paddings)
		if err != nil {
			return nil, err
		}
		res.Passes = pass
		if retry == nil || pass >= maxPasses {
			log.Debug("排版完成",
				zap.Int("lines", res.Lines),
				zap.Float64("textScale", res.TextScale),
				zap.Float64("lineHeightScale", res.LineHeightScale),
				zap.Bool("smallSize", res.SmallSize),
				zap.Bool("overflow", res.Overflow),
				zap.Int("passes", pass))
			return res, nil
		}
		log.Debug("注音过宽，加宽本文后重新排版", zap.Int("runs", len(retry)))
		paddings = retry
	}
}

func newEngine(cfg Config, segments []markup.Segment, m Measurer, log *zap.Logger) *engine {
	return &engine{
		cfg:      cfg,
		measurer: m,
		log:      log,
		segments: segments,
		segRuns:  make([][2]int, len(segments)),
		st:       state{textScale: 1, lineHeightScale: 1, firstLineScale: 1},
		cache:    map[measureKey]Size{},
	}
}

// run 执行一轮排版。若注音定位加宽了本文，返回合并后的留白表，调用方据此再排一轮。
func (e *engine) run(paddings map[int]padding) (*Result, map[int]padding, error) {
	if err := e.materialize(paddings); err != nil {
		return nil, nil, err
	}
	e.reflow(1, 1)
	if err := e.fitHeight(); err != nil {
		return nil, nil, err
	}
	e.align()
	widen, err := e.positionGlosses()
	if err != nil {
		return nil, nil, err
	}
	res := e.result()
	if len(widen) == 0 {
		return res, nil, nil
	}
	next := make(map[int]padding, len(paddings)+len(widen))
	for i, p := range paddings {
		next[i] = p
	}
	for i, p := range widen {
		cur := next[i]
		next[i] = padding{Left: cur.Left + p.Left, Right: cur.Right + p.Right}
	}
	return res, next, nil
}

func (e *engine) result() *Result {
	res := &Result{
		Config:          e.cfg,
		Runs:            append([]Run(nil), e.runs...),
		Glosses:         append([]GlossRun(nil), e.glosses...),
		Bounds:          e.bounds(),
		TextScale:       e.st.textScale,
		LineHeightScale: e.st.lineHeightScale,
		FirstLineScale:  e.st.firstLineScale,
		SmallSize:       e.st.small,
	}
	if len(e.runs) > 0 {
		res.Lines = e.st.line + 1
	}
	res.Overflow = e.cfg.Height > 0 && res.Bounds.Height > e.cfg.Height+epsilon
	return res
}

// Block 保存上一次的 Config 与结果，只在配置变化时重新排版。
type Block struct {
	opts Options
	cfg  Config
	res  *Result
}

// FontLoader 由能够预加载字体的测量后端实现。
type FontLoader interface {
	EnsureFonts(families ...string) error
}

// NewBlock 创建一个可增量更新的文本块。
func NewBlock(opts Options) *Block { return &Block{opts: opts} }

// Update 应用新的配置。配置未变化时直接返回；字体标识变化时先要求后端加载字体。
func (b *Block) Update(cfg Config) (Change, error) {
	change := Diff(b.cfg, cfg)
	if b.res == nil {
		change = Change{Recompute: true, LoadFont: true}
	}
	if !change.Recompute {
		return change, nil
	}
	if change.LoadFont {
		if loader, ok := b.opts.Measurer.(FontLoader); ok {
			if err := loader.EnsureFonts(cfg.FontFamily, cfg.RtFontFamily); err != nil {
				return change, fmt.Errorf("加载字体失败: %w", err)
			}
		}
	}
	res, err := Layout(cfg, b.opts)
	if err != nil {
		return change, err
	}
	b.cfg, b.res = cfg, res
	return change, nil
}

// Config 返回当前生效的配置。
func (b *Block) Config() Config { return b.cfg }

// Result 返回最近一次排版结果，尚未排版时为 nil。
func (b *Block) Result() *Result { return b.res }
