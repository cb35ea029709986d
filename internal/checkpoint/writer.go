package checkpoint

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/pixel"
)

const (
	filePrefix   = "checkpoint_"
	fileExt      = ".png"
	SolutionName = "solution.png"
)

// IOError reports a failed checkpoint or solution write
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// FileName returns the checkpoint file name for a generation
func FileName(generation int) string {
	return fmt.Sprintf("%s%d%s", filePrefix, generation, fileExt)
}

// Writer persists genotypes as PNG images: checkpoints under CheckpointDir and the
// final solution under OutputDir
type Writer struct {
	OutputDir     string
	CheckpointDir string
}

// NewWriter creates a writer using <outputDir>/checkpoint for checkpoints
func NewWriter(outputDir string) *Writer {
	return &Writer{
		OutputDir:     outputDir,
		CheckpointDir: filepath.Join(outputDir, "checkpoint"),
	}
}

// Write decodes g and persists it as the checkpoint for generation.
// It never retains or modifies g.
func (w *Writer) Write(g pixel.Genotype, shape pixel.Shape, generation int) (string, error) {
	path := filepath.Join(w.CheckpointDir, FileName(generation))
	return path, writePNG(g, shape, path)
}

// WriteFinal decodes g and persists it as the run's solution image
func (w *Writer) WriteFinal(g pixel.Genotype, shape pixel.Shape) (string, error) {
	path := filepath.Join(w.OutputDir, SolutionName)
	return path, writePNG(g, shape, path)
}

// SolutionPath returns where WriteFinal writes
func (w *Writer) SolutionPath() string {
	return filepath.Join(w.OutputDir, SolutionName)
}

// writePNG goes through a temp file and rename so pollers never observe a partial image
func writePNG(g pixel.Genotype, shape pixel.Shape, path string) error {
	decoded, err := pixel.Decode(g, shape)
	if err != nil {
		return err
	}
	img, err := decoded.ToImage()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &IOError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*.png")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &IOError{Op: "encode", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
