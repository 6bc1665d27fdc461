package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// builtin 内置字体表，名称即 embed: 之后的部分。
var builtin = map[string][]byte{
	"goregular":    goregular.TTF,
	"gobold":       gobold.TTF,
	"goitalic":     goitalic.TTF,
	"gobolditalic": gobolditalic.TTF,
	"gomono":       gomono.TTF,
}

// Default 为找不到任何字体时使用的兜底字体名。
const Default = "goregular"

// Load 返回内置字体的字节数据，name 可写为 "embed:gobold" 或直接 "gobold"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "embed:")))
	key = strings.TrimSuffix(key, ".ttf")
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 可选值为 %s", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names 列出所有内置字体名。
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
