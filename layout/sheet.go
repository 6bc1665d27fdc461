package layout

import (
	"fmt"
	"sync"

	"github.com/gammazero/workerpool"
	"go.uber.org/zap"

	"github.com/ByLCY/fittext/binding"
)

const defaultWorkers = 4

// BuildSheet 排版整页上的全部文本块。
// 字符串属性先做数据绑定，再合并到默认配置上；各文本块互不共享状态，
// 由 workerpool 并发排版，按定义顺序返回第一个错误。
func BuildSheet(spec SheetSpec, data any, opts BuildOptions) (*Sheet, error) {
	if opts.Measurer == nil {
		return nil, ErrNoMeasurer
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if reg, ok := opts.Measurer.(FontRegistrar); ok {
		for _, font := range spec.Fonts {
			if err := reg.RegisterFont(font); err != nil {
				return nil, fmt.Errorf("注册字体 %s 失败: %w", font.Name, err)
			}
		}
	}

	cfgs := make([]Config, len(spec.Blocks))
	for i, block := range spec.Blocks {
		cfg, err := ConfigFromMap(DefaultConfig(), bindProps(block.Props, data))
		if err != nil {
			return nil, fmt.Errorf("文本块 %s: %w", block.Name, err)
		}
		cfgs[i] = cfg
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	placed := make([]PlacedBlock, len(spec.Blocks))
	errs := make([]error, len(spec.Blocks))
	var mu sync.Mutex
	wp := workerpool.New(workers)
	for i, block := range spec.Blocks {
		wp.Submit(func() {
			res, err := Layout(cfgs[i], Options{
				Measurer: opts.Measurer,
				Logger:   log.With(zap.String("block", block.Name)),
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[i] = fmt.Errorf("文本块 %s 排版失败: %w", block.Name, err)
				return
			}
			placed[i] = PlacedBlock{
				Name:   block.Name,
				X:      block.X,
				Y:      block.Y,
				Result: res,
				Glyphs: res.Glyphs(),
			}
		})
	}
	wp.StopWait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	for _, b := range placed {
		if b.Result.Overflow {
			log.Warn("文本块超出目标高度",
				zap.String("block", b.Name),
				zap.Float64("height", b.Result.Bounds.Height),
				zap.Float64("target", b.Result.Config.Height))
		}
	}

	return &Sheet{
		Name:   spec.Name,
		Width:  spec.Width,
		Height: spec.Height,
		Meta:   spec.Meta,
		Fonts:  spec.Fonts,
		Blocks: placed,
	}, nil
}

// bindProps 对字符串属性做 ${} 数据绑定，返回新的属性表。
func bindProps(props map[string]any, data any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		if s, ok := v.(string); ok {
			v = binding.Interpolate(s, data)
		}
		out[k] = v
	}
	return out
}
