package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/speedata/optionparser"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ByLCY/fittext/dsl"
	"github.com/ByLCY/fittext/layout"
	"github.com/ByLCY/fittext/renderer"
	canvasrenderer "github.com/ByLCY/fittext/renderer/canvas"
)

var version = "dev"

func newZapLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.Config{
		Encoding:    "console",
		OutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			EncodeLevel: zapcore.LowercaseColorLevelEncoder,
			LevelKey:    "level",
			MessageKey:  "message",
		},
	}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}

// options 为命令行参数。
type options struct {
	input     string
	output    string
	debug     string
	data      string
	workers   string
	fonts     string
	debugRuns bool
	verbose   bool
}

func dothings() error {
	opts := options{
		input:  "examples/card.papyrus",
		output: "output/card.pdf",
	}
	op := optionparser.NewOptionParser()
	op.On("--in FILE", "排版单路径（.papyrus 或 .toml）", &opts.input)
	op.On("--out FILE", "PDF 输出路径", &opts.output)
	op.On("--debug FILE", "排版调试 JSON 输出路径", &opts.debug)
	op.On("--debug-runs", "在调试 JSON 中保留逐字排版数据", &opts.debugRuns)
	op.On("--data JSON", "绑定到文本的 JSON 数据", &opts.data)
	op.On("--workers N", "并发排版的文本块数", &opts.workers)
	op.On("--fonts LIST", "注入字体 name=path[,name=path]，通过 built-in:name 引用", &opts.fonts)
	op.On("--verbose", "输出调试日志", &opts.verbose)
	op.Command("render", "排版并生成 PDF（默认）")
	op.Command("layout", "只排版，输出调试 JSON")
	op.Command("version", "输出版本信息")
	if err := op.Parse(); err != nil {
		op.Help()
		return err
	}

	logger, err := newZapLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	cmd := "render"
	if len(op.Extra) > 0 {
		cmd = op.Extra[0]
	}
	switch cmd {
	case "render", "layout":
		if cmd == "layout" && opts.debug == "" {
			opts.debug = strings.TrimSuffix(opts.output, filepath.Ext(opts.output)) + ".json"
		}
		r, err := newRenderer(opts)
		if err != nil {
			logger.Error(err.Error())
			return err
		}
		if err := run(opts, cmd == "render", r, logger); err != nil {
			logger.Error(err.Error())
			return err
		}
	case "version":
		fmt.Println("fittext version", version)
	default:
		op.Help()
		return fmt.Errorf("未知命令 %s", cmd)
	}
	return nil
}

// run 串联解析、排版与渲染。
func run(opts options, render bool, r *canvasrenderer.Renderer, logger *zap.Logger) error {
	var data any
	if opts.data != "" {
		if err := json.Unmarshal([]byte(opts.data), &data); err != nil {
			return fmt.Errorf("解析 data JSON 失败: %w", err)
		}
	}
	workers := 0
	if opts.workers != "" {
		n, err := strconv.Atoi(opts.workers)
		if err != nil {
			return fmt.Errorf("--workers 需要整数: %w", err)
		}
		workers = n
	}

	spec, err := loadSpec(opts.input)
	if err != nil {
		return err
	}
	sheet, err := layout.BuildSheet(spec, data, layout.BuildOptions{
		Measurer: r,
		Logger:   logger,
		Workers:  workers,
	})
	if err != nil {
		return fmt.Errorf("排版失败: %w", err)
	}
	logger.Info("排版完成", zap.String("sheet", sheet.Name), zap.Int("blocks", len(sheet.Blocks)))

	if opts.debug != "" {
		if err := writeDebug(sheet, opts.debug, opts.debugRuns); err != nil {
			return err
		}
		logger.Info("已输出调试 JSON", zap.String("path", opts.debug))
	}
	if !render {
		return nil
	}
	if err := writePDF(sheet, opts.output, r); err != nil {
		return err
	}
	logger.Info("已生成 PDF", zap.String("path", opts.output))
	return nil
}

func newRenderer(opts options) (*canvasrenderer.Renderer, error) {
	fonts, err := parseFonts(opts.fonts)
	if err != nil {
		return nil, err
	}
	return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir: filepath.Dir(opts.input),
		Fonts:   fonts,
	})
}

// parseFonts 解析 --fonts 的 name=path 列表。
func parseFonts(list string) (map[string]canvasrenderer.Resource, error) {
	fonts := map[string]canvasrenderer.Resource{}
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, path, ok := strings.Cut(item, "=")
		name, path = strings.TrimSpace(name), strings.TrimSpace(path)
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("--fonts 格式应为 name=path: %q", item)
		}
		fonts[name] = canvasrenderer.Resource{Path: path}
	}
	return fonts, nil
}

// loadSpec 按扩展名读取 DSL 或 TOML 排版单。
func loadSpec(path string) (layout.SheetSpec, error) {
	file, err := os.Open(path)
	if err != nil {
		return layout.SheetSpec{}, fmt.Errorf("无法打开排版单 %s: %w", path, err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return layout.SpecFromTOML(file)
	}
	doc, err := dsl.Parse(file)
	if err != nil {
		return layout.SheetSpec{}, fmt.Errorf("解析 DSL 失败: %w", err)
	}
	return layout.SpecFromDocument(doc)
}

func writePDF(sheet *layout.Sheet, outputPath string, r renderer.Renderer) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(sheet)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

func writeDebug(sheet *layout.Sheet, debugPath string, runs bool) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(sheet, debugPath, layout.DebugOptions{Runs: runs}); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func main() {
	if err := dothings(); err != nil {
		os.Exit(1)
	}
}
