package layout

import (
	"errors"

	"go.uber.org/zap"
)

// ErrNoMeasurer 表示调用方没有提供测量后端。
var ErrNoMeasurer = errors.New("layout: 缺少测量后端 Measurer")

// FontSpec 描述一次测量所使用的字体参数，单位均为 px。
type FontSpec struct {
	Family        string  `json:"family"` // 逗号分隔的候选字体
	Size          float64 `json:"size"`
	Weight        string  `json:"weight"`
	LetterSpacing float64 `json:"letterSpacing"`
	LineHeight    float64 `json:"lineHeight"`
}

// Bold 判断字重是否为粗体。
func (f FontSpec) Bold() bool {
	switch f.Weight {
	case "bold", "bolder", "600", "700", "800", "900":
		return true
	}
	return false
}

// Size 为测量结果。
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Measurer 负责测量一段文本的宽高。实现必须是确定性的，
// 返回的错误会原样（包装后）交给调用方。
type Measurer interface {
	Measure(text string, font FontSpec) (Size, error)
}

// FontRegistrar 由支持按名称注册字体的测量后端实现。
type FontRegistrar interface {
	RegisterFont(font FontResource) error
}

// Options 配置单个文本块的排版。
type Options struct {
	Measurer Measurer
	Logger   *zap.Logger // 为空时不输出日志
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// BuildOptions 配置整页排版所需的依赖。
type BuildOptions struct {
	Measurer Measurer
	Logger   *zap.Logger
	Workers  int // 并发排版的文本块数，<=0 时为 4
}

// DebugOptions 控制调试 JSON 的内容。
type DebugOptions struct {
	Runs bool // 在调试 JSON 中保留逐字排版数据
}
