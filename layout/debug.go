package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将整页排版结果输出为 JSON，便于调试或可视化。
// 未开启 Runs 时省略逐字排版数据，只保留绘制列表与统计信息。
func WriteDebugJSON(sheet *Sheet, path string, opts DebugOptions) error {
	if sheet == nil {
		return nil
	}
	out := *sheet
	if !opts.Runs {
		out.Blocks = make([]PlacedBlock, len(sheet.Blocks))
		for i, b := range sheet.Blocks {
			if b.Result != nil {
				res := *b.Result
				res.Runs, res.Glosses = nil, nil
				b.Result = &res
			}
			out.Blocks[i] = b
		}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
