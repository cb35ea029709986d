package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure
type Config struct {
	Seed    int64         `yaml:"seed" toml:"seed"`
	GA      GAConfig      `yaml:"ga" toml:"ga"`
	Init    InitConfig    `yaml:"init" toml:"init"`
	Eval    EvalConfig    `yaml:"eval" toml:"eval"`
	Image   ImageConfig   `yaml:"image" toml:"image"`
	Output  OutputConfig  `yaml:"output" toml:"output"`
	Logging LogConfig     `yaml:"logging" toml:"logging"`
	Storage StorageConfig `yaml:"storage" toml:"storage"`
}

// GAConfig defines genetic algorithm parameters
type GAConfig struct {
	Population        int     `yaml:"population" toml:"population"`
	Elites            int     `yaml:"elites" toml:"elites"`
	Selection         string  `yaml:"selection" toml:"selection"` // tournament|rank
	TournamentK       int     `yaml:"tournament_k" toml:"tournament_k"`
	RankPressure      float64 `yaml:"rank_pressure" toml:"rank_pressure"`
	Crossover         string  `yaml:"crossover" toml:"crossover"` // uniform|single_point
	CrossoverRate     float64 `yaml:"crossover_rate" toml:"crossover_rate"`
	MutationRate      float64 `yaml:"mutation_rate" toml:"mutation_rate"`
	MutationMagnitude int     `yaml:"mutation_magnitude" toml:"mutation_magnitude"`
	ResetRate         float64 `yaml:"reset_rate" toml:"reset_rate"`
	MaxGenerations    int     `yaml:"max_generations" toml:"max_generations"`
	FitnessThreshold  float64 `yaml:"fitness_threshold" toml:"fitness_threshold"`
}

// InitConfig defines how the first generation is drawn
type InitConfig struct {
	Mode   string `yaml:"mode" toml:"mode"` // uniform|mean
	Spread int    `yaml:"spread" toml:"spread"`
}

// EvalConfig defines fitness evaluation parameters
type EvalConfig struct {
	Metric  string `yaml:"metric" toml:"metric"` // sad|sse|mae|mse
	Workers int    `yaml:"workers" toml:"workers"`
}

// ImageConfig defines how the target image is ingested
type ImageConfig struct {
	Path     string `yaml:"path" toml:"path"`
	Channels int    `yaml:"channels" toml:"channels"`
	MaxWidth int    `yaml:"max_width" toml:"max_width"` // 0 keeps the original size
}

// OutputConfig defines where checkpoints and the solution are written
type OutputConfig struct {
	Dir                string `yaml:"dir" toml:"dir"`
	CheckpointInterval int    `yaml:"checkpoint_interval" toml:"checkpoint_interval"`
}

// CheckpointDir returns the directory holding checkpoint images
func (o OutputConfig) CheckpointDir() string {
	return filepath.Join(o.Dir, "checkpoint")
}

// LogConfig defines logging parameters
type LogConfig struct {
	EveryGenSummary bool   `yaml:"every_gen_summary" toml:"every_gen_summary"`
	SummaryEvery    int    `yaml:"summary_every" toml:"summary_every"`
	CSVPath         string `yaml:"csv_path" toml:"csv_path"`
	JSONPath        string `yaml:"json_path" toml:"json_path"`
	BestPath        string `yaml:"best_path" toml:"best_path"`
}

// StorageConfig selects the run-history backend
type StorageConfig struct {
	Kind string `yaml:"kind" toml:"kind"` // memory|sqlite
	Path string `yaml:"path" toml:"path"`
}

// Default returns a config with every option set to its default
func Default() *Config {
	cfg := &Config{
		Seed: 1337,
		GA: GAConfig{
			Population:        50,
			Elites:            2,
			Selection:         "tournament",
			TournamentK:       3,
			RankPressure:      1.5,
			Crossover:         "uniform",
			CrossoverRate:     0.7,
			MutationRate:      0.01,
			MutationMagnitude: 32,
			ResetRate:         0,
			MaxGenerations:    10000,
			FitnessThreshold:  0,
		},
		Init: InitConfig{
			Mode:   "uniform",
			Spread: 64,
		},
		Eval: EvalConfig{
			Metric: "sad",
		},
		Image: ImageConfig{
			Channels: 3,
		},
		Output: OutputConfig{
			Dir:                "data/processed",
			CheckpointInterval: 100,
		},
		Logging: LogConfig{
			EveryGenSummary: false,
			SummaryEvery:    100,
			CSVPath:         "runs/run.csv",
			JSONPath:        "runs/run.jsonl",
			BestPath:        "runs/best.json",
		},
		Storage: StorageConfig{
			Kind: "memory",
		},
	}
	applyDefaults(cfg)
	return cfg
}

// Load reads a YAML (or .toml) config file over the defaults and returns a Config
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

// applyDefaults fills options for which zero is never a meaningful value
func applyDefaults(cfg *Config) {
	if cfg.GA.Selection == "" {
		cfg.GA.Selection = "tournament"
	}
	if cfg.GA.TournamentK == 0 {
		cfg.GA.TournamentK = 3
	}
	if cfg.GA.RankPressure == 0 {
		cfg.GA.RankPressure = 1.5
	}
	if cfg.GA.Crossover == "" {
		cfg.GA.Crossover = "uniform"
	}
	if cfg.Init.Mode == "" {
		cfg.Init.Mode = "uniform"
	}
	if cfg.Eval.Metric == "" {
		cfg.Eval.Metric = "sad"
	}
	if cfg.Eval.Workers <= 0 {
		cfg.Eval.Workers = runtime.NumCPU()
	}
	if cfg.Image.Channels == 0 {
		cfg.Image.Channels = 3
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "data/processed"
	}
	if cfg.Logging.SummaryEvery == 0 {
		cfg.Logging.SummaryEvery = 100
	}
	if cfg.Storage.Kind == "" {
		cfg.Storage.Kind = "memory"
	}
}
