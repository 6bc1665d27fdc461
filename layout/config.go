package layout

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Align 为水平对齐方式。
type Align string

const (
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

// 默认的字符集合。
const (
	DefaultNoCompressChars = "●①②③④⑤⑥⑦⑧⑨⑩"
	DefaultAvoidStartChars = "。；：，、”」）·× "
	DefaultAvoidEndChars   = "“「（●"
)

const baseLineHeight = 1.15

// Config 描述一次排版请求的全部输入。Config 是可比较的值类型，
// 调用方通过比较前后两个 Config 决定是否需要重新排版（见 Diff）。
type Config struct {
	Text              string  `json:"text"`
	FontFamily        string  `json:"fontFamily"`
	FontSize          float64 `json:"fontSize"`
	FontWeight        string  `json:"fontWeight"`
	LineHeight        float64 `json:"lineHeight"` // 字号的倍数
	LetterSpacing     float64 `json:"letterSpacing"`
	WordSpacing       float64 `json:"wordSpacing"`
	FirstLineCompress bool    `json:"firstLineCompress"`
	TextAlign         Align   `json:"textAlign"`
	TextJustifyLast   bool    `json:"textJustifyLast"`
	Color             string  `json:"color"`
	StrokeWidth       float64 `json:"strokeWidth"`

	Gradient       bool   `json:"gradient"`
	GradientColor1 string `json:"gradientColor1"`
	GradientColor2 string `json:"gradientColor2"`

	Width  float64 `json:"width"`  // 0 表示不限制
	Height float64 `json:"height"` // 0 表示不限制

	FontScale            float64 `json:"fontScale"`
	AutoSmallSize        bool    `json:"autoSmallSize"`
	SmallFontSize        float64 `json:"smallFontSize"`
	UseScaleXForCompress bool    `json:"useScaleXForCompress"` // false 时直接缩小字号

	RtFontFamily    string  `json:"rtFontFamily"`
	RtFontSize      float64 `json:"rtFontSize"`
	RtFontWeight    string  `json:"rtFontWeight"`
	RtLineHeight    float64 `json:"rtLineHeight"`
	RtLetterSpacing float64 `json:"rtLetterSpacing"`
	RtTop           float64 `json:"rtTop"`
	RtColor         string  `json:"rtColor"`
	RtStrokeWidth   float64 `json:"rtStrokeWidth"`
	RtFontScaleX    float64 `json:"rtFontScaleX"`

	NoCompressChars string `json:"noCompressChars"`
	AvoidStartChars string `json:"avoidStartChars"`
	AvoidEndChars   string `json:"avoidEndChars"`

	Key int `json:"key"` // 变更时要求重新加载字体
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		FontFamily:           "ygo-sc, 楷体, serif",
		FontSize:             24,
		FontWeight:           "normal",
		LineHeight:           baseLineHeight,
		TextAlign:            AlignJustify,
		Color:                "black",
		GradientColor1:       "#999999",
		GradientColor2:       "#ffffff",
		FontScale:            1,
		SmallFontSize:        18,
		UseScaleXForCompress: true,
		RtFontFamily:         "ygo-tip, sans-serif",
		RtFontSize:           13,
		RtFontWeight:         "bold",
		RtLineHeight:         baseLineHeight,
		RtTop:                -9,
		RtColor:              "black",
		RtFontScaleX:         1,
		NoCompressChars:      DefaultNoCompressChars,
		AvoidStartChars:      DefaultAvoidStartChars,
		AvoidEndChars:        DefaultAvoidEndChars,
	}
}

// normalize 修正非法或缺省的数值，返回新的 Config。
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.FontSize <= 0 {
		c.FontSize = def.FontSize
	}
	if c.LineHeight <= 0 {
		c.LineHeight = def.LineHeight
	}
	if c.FontScale <= 0 {
		c.FontScale = def.FontScale
	}
	if c.SmallFontSize <= 0 {
		c.SmallFontSize = def.SmallFontSize
	}
	if c.RtFontSize <= 0 {
		c.RtFontSize = def.RtFontSize
	}
	if c.RtLineHeight <= 0 {
		c.RtLineHeight = def.RtLineHeight
	}
	if c.RtFontScaleX <= 0 {
		c.RtFontScaleX = def.RtFontScaleX
	}
	if strings.TrimSpace(c.FontFamily) == "" {
		c.FontFamily = def.FontFamily
	}
	if strings.TrimSpace(c.RtFontFamily) == "" {
		c.RtFontFamily = def.RtFontFamily
	}
	if c.FontWeight == "" {
		c.FontWeight = def.FontWeight
	}
	if c.RtFontWeight == "" {
		c.RtFontWeight = def.RtFontWeight
	}
	// 字符集合为空时使用默认集合
	if c.NoCompressChars == "" {
		c.NoCompressChars = def.NoCompressChars
	}
	if c.AvoidStartChars == "" {
		c.AvoidStartChars = def.AvoidStartChars
	}
	if c.AvoidEndChars == "" {
		c.AvoidEndChars = def.AvoidEndChars
	}
	if c.Width < 0 {
		c.Width = 0
	}
	if c.Height < 0 {
		c.Height = 0
	}
	c.TextAlign = normalizeAlign(c.TextAlign)
	return c
}

func normalizeAlign(a Align) Align {
	switch Align(strings.ToLower(strings.TrimSpace(string(a)))) {
	case AlignLeft, "start":
		return AlignLeft
	case AlignCenter:
		return AlignCenter
	case AlignRight, "end":
		return AlignRight
	default:
		return AlignJustify
	}
}

// baseFontSize 返回当前生效的基础字号（未乘 fontScale）。
func (c Config) baseFontSize(small bool) float64 {
	if small {
		return c.SmallFontSize
	}
	return c.FontSize
}

// Change 描述两个 Config 之间的差异带来的动作。
type Change struct {
	Recompute bool // 需要重新排版
	LoadFont  bool // 字体标识变化，测量前应确保字体已加载
}

// Diff 比较前后两个 Config。
func Diff(prev, next Config) Change {
	if prev == next {
		return Change{}
	}
	return Change{
		Recompute: true,
		LoadFont:  prev.FontFamily != next.FontFamily || prev.RtFontFamily != next.RtFontFamily || prev.Key != next.Key,
	}
}

// ConfigFromMap 将 DSL/TOML 中的属性表合并到 base 上。
// 数值属性可以带单位（如 12pt、6mm），统一换算为 px；未知属性返回错误。
func ConfigFromMap(base Config, props map[string]any) (Config, error) {
	cfg := base
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       lengthDecodeHook,
	})
	if err != nil {
		return base, fmt.Errorf("创建配置解码器失败: %w", err)
	}
	if err := dec.Decode(props); err != nil {
		return base, fmt.Errorf("解析排版配置失败: %w", err)
	}
	return cfg, nil
}

// lengthDecodeHook 把带单位的字符串转换为 px 数值。
func lengthDecodeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Float64 {
		return data, nil
	}
	s, _ := data.(string)
	l, err := ParseLength(s)
	if err != nil {
		return nil, err
	}
	return l.PX(), nil
}
