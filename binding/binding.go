package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// ${path|默认值} 在路径不存在时使用默认值；没有默认值时保留原占位符。
func Interpolate(text string, data any) string {
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path, fallback, hasDefault := strings.Cut(groups[1], "|")
		path = strings.TrimSpace(path)
		if path == "" {
			return match
		}
		if val, ok := lookup(data, path); ok && val != nil {
			return format(val)
		}
		if hasDefault {
			return fallback
		}
		return match
	})
}

// format 输出值的文本形式，浮点数不使用科学计数法。
func format(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

// step 是路径中的一级访问：Key 非空时按键取值，否则按下标取值。
type step struct {
	key   string
	index int
}

// lookup 沿路径逐级取值；任何一级缺失都视为未命中，由调用方决定是否使用默认值。
func lookup(data any, path string) (any, bool) {
	steps, ok := splitPath(path)
	if !ok {
		return nil, false
	}
	current := data
	for _, st := range steps {
		switch c := current.(type) {
		case map[string]any:
			if st.key == "" {
				return nil, false
			}
			if current, ok = c[st.key]; !ok {
				return nil, false
			}
		case map[string]string:
			if st.key == "" {
				return nil, false
			}
			if current, ok = c[st.key]; !ok {
				return nil, false
			}
		case []any:
			if st.key != "" || st.index < 0 || st.index >= len(c) {
				return nil, false
			}
			current = c[st.index]
		case []string:
			if st.key != "" || st.index < 0 || st.index >= len(c) {
				return nil, false
			}
			current = c[st.index]
		default:
			return nil, false
		}
	}
	return current, true
}

// splitPath 把 a.b[0][1].c 拆成访问步骤。
func splitPath(path string) ([]step, bool) {
	var steps []step
	for _, part := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(part, "[")
		if name = strings.TrimSpace(name); name != "" {
			steps = append(steps, step{key: name})
		}
		for rest != "" {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				return nil, false
			}
			idx, err := strconv.Atoi(strings.TrimSpace(rest[:end]))
			if err != nil {
				return nil, false
			}
			steps = append(steps, step{index: idx})
			rest = strings.TrimPrefix(rest[end+1:], "[")
		}
	}
	return steps, len(steps) > 0
}
