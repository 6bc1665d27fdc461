package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 排版内部统一使用 px（CSS 像素，96dpi）。本文件负责与 pt/mm 等单位之间的换算。

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, treated as px
	UnitPX
	UnitPT
	UnitMM
	UnitCM
	UnitIN
)

// Conversion constants between px, pt and mm.
const (
	PxToPt = 0.75
	PtToPx = 1.0 / PxToPt
	PxToMm = 25.4 / 96
	MmToPx = 1.0 / PxToMm
)

// String returns the DSL suffix of the unit.
func (u Unit) String() string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// PX converts the length to px.
func (l Length) PX() float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PtToPx
	case UnitMM:
		return l.Value * MmToPx
	case UnitCM:
		return l.Value * 10 * MmToPx
	case UnitIN:
		return l.Value * 96
	default:
		return l.Value
	}
}

// To converts the length to the target unit.
func (l Length) To(target Unit) float64 {
	px := l.PX()
	switch target {
	case UnitPT:
		return px * PxToPt
	case UnitMM:
		return px * PxToMm
	case UnitCM:
		return px * PxToMm / 10
	case UnitIN:
		return px / 96
	default:
		return px
	}
}

var unitSuffixes = []struct {
	s string
	u Unit
}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}}

// ParseLength parses strings like "12pt", "6mm" or "24".
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	unit := UnitNone
	num := v
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q: %w", value, err)
	}
	return Length{Value: f, Unit: unit}, nil
}
