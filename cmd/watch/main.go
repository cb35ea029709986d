package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"time"

	"github.com/gosuri/uitable"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "config file to read output.dir from")
	dir := flag.String("dir", "", "output directory to watch; overrides output.dir")
	interval := flag.Duration("interval", 2*time.Second, "polling interval")
	width := flag.Int("width", 64, "preview width in characters")
	once := flag.Bool("once", false, "list what is on disk and exit")
	noDisplay := flag.Bool("no-display", false, "print checkpoint names only")
	noClear := flag.Bool("no-clear", false, "do not clear the terminal between frames")
	flag.Parse()

	outDir := config.Default().Output.Dir
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		outDir = cfg.Output.Dir
	}
	if *dir != "" {
		outDir = *dir
	}
	if *interval <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -interval must be positive")
		os.Exit(1)
	}

	w := NewWatcher(outDir)
	display := NewDisplay(*width, !*noDisplay, !*noClear)

	if *once {
		if _, _, err := w.Poll(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading checkpoints: %v\n", err)
			os.Exit(1)
		}
		if w.Done() {
			display.Show("Solution", w.SolutionPath(), 0)
		} else if latest, ok, err := w.Latest(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading checkpoints: %v\n", err)
			os.Exit(1)
		} else if ok {
			display.Show(fmt.Sprintf("Generation %d", latest.Generation), latest.Path, 0)
		}
		fmt.Println()
		printListing(w)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Watching %s (every %v). Press Ctrl+C to exit\n", outDir, *interval)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		fresh, done, err := w.Poll()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: poll failed: %v\n", err)
		}
		if len(fresh) > 0 {
			latest := fresh[len(fresh)-1]
			display.Show(fmt.Sprintf("Generation %d", latest.Generation), latest.Path, len(fresh)-1)
		}
		if done {
			display.Show("Solution", w.SolutionPath(), 0)
			fmt.Println()
			printListing(w)
			return
		}

		select {
		case <-ctx.Done():
			fmt.Println()
			printListing(w)
			return
		case <-ticker.C:
		}
	}
}

func printListing(w *Watcher) {
	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = false
	table.AddRow("GENERATION", "PATH")
	for _, e := range w.Seen() {
		table.AddRow(e.Generation, e.Path)
	}
	if w.Done() {
		table.AddRow("final", w.SolutionPath())
	}
	fmt.Println(table)
}

func clearScreen() {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/c", "cls")
	} else {
		cmd = exec.Command("clear")
	}
	cmd.Stdout = os.Stdout
	cmd.Run()
}
