package logging

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/engine"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/ga"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/pixel"
)

// Logger handles all run output: CSV and JSONL generation logs plus console lines
type Logger struct {
	csvPath     string
	jsonPath    string
	csvFile     *os.File
	csvWriter   *csv.Writer
	jsonFile    *os.File
	console     io.Writer
	initialized bool
}

// NewLogger creates a new logger
func NewLogger(csvPath, jsonPath string) (*Logger, error) {
	l := &Logger{
		csvPath:  csvPath,
		jsonPath: jsonPath,
		console:  os.Stdout,
	}

	// Ensure directories exist
	if err := os.MkdirAll(filepath.Dir(csvPath), 0755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(jsonPath), 0755); err != nil {
		return nil, err
	}

	return l, nil
}

// SetConsole redirects console lines; nil silences them
func (l *Logger) SetConsole(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	l.console = w
}

// Init initializes the log files
func (l *Logger) Init() error {
	var err error

	// Open CSV file
	l.csvFile, err = os.Create(l.csvPath)
	if err != nil {
		return err
	}
	l.csvWriter = csv.NewWriter(l.csvFile)

	// Write CSV header
	header := []string{
		"generation", "state", "best_fitness", "min_fitness", "mean_fitness",
		"std_fitness", "max_fitness", "distinct", "checkpoint",
	}
	if err := l.csvWriter.Write(header); err != nil {
		return err
	}

	// Open JSON file
	l.jsonFile, err = os.OpenFile(l.jsonPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	l.initialized = true
	return nil
}

// Close closes all log files
func (l *Logger) Close() {
	if l.csvWriter != nil {
		l.csvWriter.Flush()
	}
	if l.csvFile != nil {
		l.csvFile.Close()
	}
	if l.jsonFile != nil {
		l.jsonFile.Close()
	}
}

// GenerationSummary holds per-generation statistics
type GenerationSummary struct {
	Generation  int     `json:"generation"`
	State       string  `json:"state"`
	BestFitness float64 `json:"best_fitness"`
	engine.Stats
	Checkpoint string `json:"checkpoint,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Summarize converts a progress event into a log record
func Summarize(p engine.Progress) GenerationSummary {
	s := GenerationSummary{
		Generation:  p.Generation,
		State:       p.State.String(),
		BestFitness: p.BestFitness,
		Stats:       p.Stats,
		Checkpoint:  p.Checkpoint,
	}
	if p.CheckpointErr != nil {
		s.Error = p.CheckpointErr.Error()
	}
	return s
}

// LogGeneration writes a generation summary to the CSV and JSONL logs
func (l *Logger) LogGeneration(p engine.Progress) error {
	if !l.initialized {
		return nil
	}
	summary := Summarize(p)

	// Write CSV row
	row := []string{
		strconv.Itoa(summary.Generation),
		summary.State,
		fmt.Sprintf("%.2f", summary.BestFitness),
		fmt.Sprintf("%.2f", summary.Min),
		fmt.Sprintf("%.2f", summary.Mean),
		fmt.Sprintf("%.2f", summary.Std),
		fmt.Sprintf("%.2f", summary.Max),
		strconv.Itoa(summary.Distinct),
		summary.Checkpoint,
	}
	if err := l.csvWriter.Write(row); err != nil {
		return err
	}
	l.csvWriter.Flush()
	if err := l.csvWriter.Error(); err != nil {
		return err
	}

	// Write JSON line
	jsonLine, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	_, err = l.jsonFile.Write(append(jsonLine, '\n'))
	return err
}

// PrintGeneration prints a one-line summary to the console
func (l *Logger) PrintGeneration(p engine.Progress) {
	fmt.Fprintf(l.console, "Gen %6d | Best: %12.1f | Mean: %12.1f | Std: %10.1f | Distinct: %4d | %s\n",
		p.Generation, p.BestFitness, p.Stats.Mean, p.Stats.Std, p.Stats.Distinct, p.State)
	if p.Checkpoint != "" {
		fmt.Fprintf(l.console, "  [Checkpoint] %s\n", p.Checkpoint)
	}
	if p.CheckpointErr != nil {
		fmt.Fprintf(l.console, "  Warning: checkpoint failed: %v\n", p.CheckpointErr)
	}
}

// SaveBest saves the best genotype with its shape to a JSON file
func SaveBest(path string, best ga.Individual, shape pixel.Shape, generation int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data := bestRecord{
		Generation: generation,
		Fitness:    best.Fitness,
		Shape:      shape,
		Genotype:   toInts(best.Genotype),
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, jsonData, 0644)
}

// LoadBest loads a genotype saved with SaveBest
func LoadBest(path string) (ga.Individual, pixel.Shape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ga.Individual{}, pixel.Shape{}, err
	}

	var saved bestRecord
	if err := json.Unmarshal(data, &saved); err != nil {
		return ga.Individual{}, pixel.Shape{}, err
	}

	g := make(pixel.Genotype, len(saved.Genotype))
	for i, v := range saved.Genotype {
		if v < 0 || v > 255 {
			return ga.Individual{}, pixel.Shape{}, fmt.Errorf("gene %d out of range: %d", i, v)
		}
		g[i] = uint8(v)
	}
	if len(g) != saved.Shape.Len() {
		return ga.Individual{}, pixel.Shape{}, &pixel.ShapeMismatchError{Shape: saved.Shape, Length: len(g)}
	}
	return ga.Individual{Genotype: g, Fitness: saved.Fitness}, saved.Shape, nil
}

// bestRecord stores genes as numbers; []uint8 would be base64 encoded
type bestRecord struct {
	Generation int         `json:"generation"`
	Fitness    float64     `json:"fitness"`
	Shape      pixel.Shape `json:"shape"`
	Genotype   []int       `json:"genotype"`
}

func toInts(g pixel.Genotype) []int {
	out := make([]int, len(g))
	for i, v := range g {
		out[i] = int(v)
	}
	return out
}
