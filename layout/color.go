package layout

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color 采用 0-255 的 RGB 数值，A 为 0-1 的不透明度。
type Color struct {
	R int     `json:"r"`
	G int     `json:"g"`
	B int     `json:"b"`
	A float64 `json:"a"`
}

// Black 是默认文字颜色。
var Black = Color{A: 1}

// ParseColor 支持 #rgb、#rrggbb、#rrggbbaa、rgb()/rgba() 以及 CSS 颜色名。
func ParseColor(value string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "":
		return Color{}, fmt.Errorf("颜色值为空")
	case strings.HasPrefix(v, "#"):
		return parseHexColor(v)
	case strings.HasPrefix(v, "rgb"):
		return parseFuncColor(v)
	case v == "transparent":
		return Color{}, nil
	}
	if c, ok := colornames.Map[v]; ok {
		return Color{R: int(c.R), G: int(c.G), B: int(c.B), A: float64(c.A) / 255}, nil
	}
	return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
}

func parseHexColor(value string) (Color, error) {
	value = strings.TrimPrefix(value, "#")
	switch len(value) {
	case 3:
		return Color{
			R: mustHex(strings.Repeat(value[0:1], 2)),
			G: mustHex(strings.Repeat(value[1:2], 2)),
			B: mustHex(strings.Repeat(value[2:3], 2)),
			A: 1,
		}, nil
	case 6:
		return Color{R: mustHex(value[0:2]), G: mustHex(value[2:4]), B: mustHex(value[4:6]), A: 1}, nil
	case 8:
		return Color{
			R: mustHex(value[0:2]),
			G: mustHex(value[2:4]),
			B: mustHex(value[4:6]),
			A: float64(mustHex(value[6:8])) / 255,
		}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 #%s 无法解析", value)
	}
}

func parseFuncColor(value string) (Color, error) {
	open := strings.IndexByte(value, '(')
	if open < 0 || !strings.HasSuffix(value, ")") {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	parts := strings.Split(value[open+1:len(value)-1], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, fmt.Errorf("颜色值 %s 分量数量错误", value)
	}
	nums := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
		}
		nums[i] = f
	}
	c := Color{R: clampByte(nums[0]), G: clampByte(nums[1]), B: clampByte(nums[2]), A: 1}
	if len(nums) == 4 {
		c.A = nums[3]
	}
	return c, nil
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}

func clampByte(f float64) int {
	switch {
	case f < 0:
		return 0
	case f > 255:
		return 255
	default:
		return int(f)
	}
}
