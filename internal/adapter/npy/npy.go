// Package npy persists predictor and target tensors as NumPy .npy
// artifacts, the on-disk interchange format consumed by the training stack.
package npy

import (
	"fmt"
	"time"

	"github.com/kshedden/gonpy"

	"github.com/munim110/ar-downscaling/internal/domain"
)

// PredictorName returns the predictor artifact filename for a timestamp,
// e.g. 20191209_1810_predictor.npy.
func PredictorName(ts time.Time) string {
	return domain.FormatKey(ts) + "_predictor.npy"
}

// TargetName returns the target artifact filename for a timestamp.
func TargetName(ts time.Time) string {
	return domain.FormatKey(ts) + "_target.npy"
}

// SavePredictor writes a (C,H,W) float32 array.
func SavePredictor(path string, t domain.PredictorTensor) error {
	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return fmt.Errorf("create predictor artifact %s: %w", path, err)
	}
	w.Shape = []int{t.Channels, t.Height, t.Width}
	if err := w.WriteFloat32(t.Data); err != nil {
		return fmt.Errorf("write predictor artifact %s: %w", path, err)
	}
	return nil
}

// SaveTarget writes an (H,W) float32 array.
func SaveTarget(path string, t domain.TargetTensor) error {
	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return fmt.Errorf("create target artifact %s: %w", path, err)
	}
	w.Shape = []int{t.Height, t.Width}
	if err := w.WriteFloat32(t.Data); err != nil {
		return fmt.Errorf("write target artifact %s: %w", path, err)
	}
	return nil
}

// LoadPredictor reads a (C,H,W) float32 artifact.
func LoadPredictor(path string) (domain.PredictorTensor, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return domain.PredictorTensor{}, fmt.Errorf("open predictor artifact %s: %w", path, err)
	}
	if len(r.Shape) != 3 {
		return domain.PredictorTensor{}, fmt.Errorf("predictor artifact %s: expected 3 dimensions, got %v", path, r.Shape)
	}
	data, err := r.GetFloat32()
	if err != nil {
		return domain.PredictorTensor{}, fmt.Errorf("read predictor artifact %s: %w", path, err)
	}
	return domain.PredictorTensor{
		Channels: r.Shape[0],
		Height:   r.Shape[1],
		Width:    r.Shape[2],
		Data:     data,
	}, nil
}

// LoadTarget reads an (H,W) float32 artifact.
func LoadTarget(path string) (domain.TargetTensor, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return domain.TargetTensor{}, fmt.Errorf("open target artifact %s: %w", path, err)
	}
	if len(r.Shape) != 2 {
		return domain.TargetTensor{}, fmt.Errorf("target artifact %s: expected 2 dimensions, got %v", path, r.Shape)
	}
	data, err := r.GetFloat32()
	if err != nil {
		return domain.TargetTensor{}, fmt.Errorf("read target artifact %s: %w", path, err)
	}
	return domain.TargetTensor{Height: r.Shape[0], Width: r.Shape[1], Data: data}, nil
}

// PredictorShape reads only the header of a predictor artifact, returning
// (channels, height, width) without loading pixel data.
func PredictorShape(path string) (int, int, int, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("open predictor artifact %s: %w", path, err)
	}
	if len(r.Shape) != 3 {
		return 0, 0, 0, fmt.Errorf("predictor artifact %s: expected 3 dimensions, got %v", path, r.Shape)
	}
	return r.Shape[0], r.Shape[1], r.Shape[2], nil
}

// TargetShape reads only the header of a target artifact, returning
// (height, width).
func TargetShape(path string) (int, int, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open target artifact %s: %w", path, err)
	}
	if len(r.Shape) != 2 {
		return 0, 0, fmt.Errorf("target artifact %s: expected 2 dimensions, got %v", path, r.Shape)
	}
	return r.Shape[0], r.Shape[1], nil
}
