package checkpoint

import (
	"errors"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Entry is a checkpoint file discovered on disk
type Entry struct {
	Generation int
	Path       string
}

// ParseFileName extracts the generation from a checkpoint file name
func ParseFileName(name string) (int, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// List returns the checkpoints in dir ordered by generation (numerically, not lexically).
// A missing directory yields no entries.
func List(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if gen, ok := ParseFileName(f.Name()); ok {
			entries = append(entries, Entry{Generation: gen, Path: filepath.Join(dir, f.Name())})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Generation < entries[j].Generation
	})
	return entries, nil
}

// Latest returns the highest-generation checkpoint in dir
func Latest(dir string) (Entry, bool, error) {
	entries, err := List(dir)
	if err != nil || len(entries) == 0 {
		return Entry{}, false, err
	}
	return entries[len(entries)-1], true, nil
}

// Load decodes a checkpoint or solution image from disk
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}
