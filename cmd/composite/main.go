// Command composite renders the final collection images: for every record in
// metadata.json it layers the trait art in category order and writes one PNG
// per item index.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/appengine-ltd/ordgen/internal/compose"
	"github.com/appengine-ltd/ordgen/internal/output"
)

func main() {
	var (
		metadataPath string
		traitsDir    string
		outDir       string
		size         int
	)
	flag.StringVar(&metadataPath, "metadata", "metadata.json", "collection metadata file")
	flag.StringVar(&traitsDir, "traits", "traits", "trait art directory")
	flag.StringVar(&outDir, "out", "output", "directory for rendered images")
	flag.IntVar(&size, "size", compose.DefaultSize, "canvas edge in pixels")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	blob, err := os.ReadFile(metadataPath)
	if err != nil {
		logger.Fatal("read metadata", zap.Error(err))
	}
	var records [][]output.Attribute
	if err := json.Unmarshal(blob, &records); err != nil {
		logger.Fatal("parse metadata", zap.Error(err))
	}

	renderer, err := compose.NewRenderer(traitsDir, size)
	if err != nil {
		logger.Fatal("prepare renderer", zap.Error(err))
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		logger.Fatal("output dir", zap.Error(err))
	}

	for i, record := range records {
		img, err := renderer.Compose(record)
		if err != nil {
			logger.Fatal("compose item", zap.Int("item", i), zap.Error(err))
		}
		path := filepath.Join(outDir, fmt.Sprintf("%d.png", i))
		f, err := os.Create(path)
		if err != nil {
			logger.Fatal("create image file", zap.Error(err))
		}
		if err := png.Encode(f, img); err != nil {
			_ = f.Close()
			logger.Fatal("encode image", zap.String("path", path), zap.Error(err))
		}
		if err := f.Close(); err != nil {
			logger.Fatal("close image file", zap.String("path", path), zap.Error(err))
		}
		if (i+1)%100 == 0 {
			logger.Info("progress", zap.Int("rendered", i+1), zap.Int("total", len(records)))
		}
	}
	logger.Info("render complete", zap.Int("images", len(records)), zap.String("dir", outDir))
}
