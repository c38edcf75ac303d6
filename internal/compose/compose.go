// Package compose layers per-trait art into final collection images, one
// per metadata record, honoring category layering order. The generation
// engine itself never touches pixels; this runs strictly after it.
package compose

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/agnivade/levenshtein"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/appengine-ltd/ordgen/internal/output"
	"github.com/appengine-ltd/ordgen/internal/traitdir"
)

// DefaultSize is the canvas edge in pixels.
const DefaultSize = 1000

// Renderer resolves trait art under a traits directory and composites it.
// Decoded, pre-scaled layers are cached per trait since collections reuse a
// small set of images thousands of times.
type Renderer struct {
	size    int
	folders map[string]string
	cache   map[string]*image.RGBA
}

// NewRenderer scans the traits directory once and prepares an empty cache.
func NewRenderer(traitsDir string, size int) (*Renderer, error) {
	if size <= 0 {
		size = DefaultSize
	}
	categories, err := traitdir.Scan(traitsDir)
	if err != nil {
		return nil, err
	}
	folders := make(map[string]string, len(categories))
	for _, category := range categories {
		folders[category.Name] = category.Dir
	}
	return &Renderer{
		size:    size,
		folders: folders,
		cache:   make(map[string]*image.RGBA),
	}, nil
}

// Compose layers one record's traits in order onto a transparent canvas.
func (r *Renderer) Compose(record []output.Attribute) (*image.RGBA, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, r.size, r.size))
	for _, attribute := range record {
		layer, err := r.layer(attribute.TraitType, attribute.Value)
		if err != nil {
			return nil, err
		}
		xdraw.Draw(canvas, canvas.Bounds(), layer, image.Point{}, xdraw.Over)
	}
	return canvas, nil
}

// layer loads (or reuses) the scaled image for one trait.
func (r *Renderer) layer(traitType, value string) (*image.RGBA, error) {
	key := traitType + "/" + value
	if cached, ok := r.cache[key]; ok {
		return cached, nil
	}

	dir, ok := r.folders[traitType]
	if !ok {
		return nil, fmt.Errorf("no trait folder for type %q%s", traitType, suggestion(traitType, keys(r.folders)))
	}
	path, err := findTraitFile(dir, value)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trait image: %w", err)
	}
	defer f.Close()
	decoded, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	scaled := image.NewRGBA(image.Rect(0, 0, r.size, r.size))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), decoded, decoded.Bounds(), xdraw.Src, nil)
	r.cache[key] = scaled
	return scaled, nil
}

// findTraitFile locates the art file whose base name matches the trait value.
func findTraitFile(dir, value string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read trait folder: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if base == value {
			return filepath.Join(dir, entry.Name()), nil
		}
		names = append(names, base)
	}
	return "", fmt.Errorf("missing image for %s in %s%s", value, dir, suggestion(value, names))
}

// suggestion names the closest candidate when a lookup misses, so a renamed
// file or trait is obvious from the error alone.
func suggestion(miss string, candidates []string) string {
	best := ""
	bestDist := 0
	for _, candidate := range candidates {
		dist := levenshtein.ComputeDistance(strings.ToLower(miss), strings.ToLower(candidate))
		if best == "" || dist < bestDist {
			best, bestDist = candidate, dist
		}
	}
	if best == "" || bestDist > len(miss)/2+1 {
		return ""
	}
	return fmt.Sprintf(" (closest match: %q)", best)
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
