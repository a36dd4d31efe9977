// Command arverify inspects one processed predictor/target pair: it prints a
// per-channel value summary and optionally renders the channels and target
// side by side as a grayscale PNG for visual sanity checking.
//
// Usage:
//
//	go run ./cmd/arverify \
//	  -dir data/processed \
//	  -timestamp 20191209_1810 \
//	  -png verify.png
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/munim110/ar-downscaling/internal/adapter/npy"
	"github.com/munim110/ar-downscaling/internal/domain"
)

func main() {
	dir := flag.String("dir", "", "directory containing processed .npy artifacts")
	key := flag.String("timestamp", "", "artifact timestamp key, e.g. 20191209_1810")
	pngPath := flag.String("png", "", "optional output PNG path for a side-by-side rendering")
	flag.Parse()

	if *dir == "" || *key == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dir, *key, *pngPath); code != 0 {
		os.Exit(code)
	}
}

func run(dir, key, pngPath string) int {
	ts, err := domain.ParseKey(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	predictor, err := npy.LoadPredictor(filepath.Join(dir, npy.PredictorName(ts)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load predictor: %v\n", err)
		return 1
	}
	target, err := npy.LoadTarget(filepath.Join(dir, npy.TargetName(ts)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load target: %v\n", err)
		return 1
	}

	names := domain.ChannelNames()
	if predictor.Channels != len(names) {
		fmt.Fprintf(os.Stderr, "FATAL: predictor has %d channels, schema expects %d\n",
			predictor.Channels, len(names))
		return 1
	}
	if predictor.Height != target.Height || predictor.Width != target.Width {
		fmt.Fprintf(os.Stderr, "FATAL: predictor grid %dx%d does not match target grid %dx%d\n",
			predictor.Height, predictor.Width, target.Height, target.Width)
		return 1
	}

	fmt.Printf("=== Pair %s ===\n", key)
	fmt.Printf("Grid: %d x %d\n\n", predictor.Height, predictor.Width)
	fmt.Printf("  %-8s %12s %12s %12s\n", "channel", "min", "max", "mean")
	for c, name := range names {
		lo, hi, mean := summarize(predictor.Channel(c))
		fmt.Printf("  %-8s %12.4f %12.4f %12.4f\n", name, lo, hi, mean)
	}
	lo, hi, mean := summarize(target.Data)
	fmt.Printf("  %-8s %12.4f %12.4f %12.4f\n", "tbb", lo, hi, mean)

	if pngPath == "" {
		return 0
	}
	if err := renderPNG(pngPath, predictor, target); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: render png: %v\n", err)
		return 1
	}
	fmt.Printf("\nRendering written to %s\n", pngPath)
	return 0
}

func summarize(data []float32) (lo, hi, mean float64) {
	lo = math.Inf(1)
	hi = math.Inf(-1)
	sum := 0.0
	for _, v := range data {
		f := float64(v)
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
		sum += f
	}
	if len(data) > 0 {
		mean = sum / float64(len(data))
	}
	return lo, hi, mean
}

const panelGap = 4

// renderPNG draws each predictor channel and the target as grayscale panels
// in a single row, each panel normalized to its own value range.
func renderPNG(path string, predictor domain.PredictorTensor, target domain.TargetTensor) error {
	panels := make([][]float32, 0, predictor.Channels+1)
	for c := 0; c < predictor.Channels; c++ {
		panels = append(panels, predictor.Channel(c))
	}
	panels = append(panels, target.Data)

	h, w := predictor.Height, predictor.Width
	img := image.NewGray(image.Rect(0, 0, len(panels)*(w+panelGap)-panelGap, h))

	for i, panel := range panels {
		lo, hi, _ := summarize(panel)
		span := hi - lo
		if span == 0 {
			span = 1
		}
		x0 := i * (w + panelGap)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := (float64(panel[y*w+x]) - lo) / span
				img.SetGray(x0+x, y, color.Gray{Y: uint8(v * 255)})
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return err
	}
	return f.Close()
}
