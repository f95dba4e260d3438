// graphbench measures classifier insert and match throughput against
// synthetically generated categories and inputs.
//
// Usage:
//
//	go run ./cmd/graphbench [flags]
//
// Examples:
//
//	go run ./cmd/graphbench -categories 100000 -inputs 200000
//	go run ./cmd/graphbench -workers 1,4,8 -wildcards 0.5
//	go run ./cmd/graphbench -inputs 50000 -input /path/to/lines.txt -json
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/peco/graphmaster"
	"github.com/peco/graphmaster/batch"
	"github.com/peco/graphmaster/registry"
)

type result struct {
	Phase      string  `json:"phase"`
	Workers    int     `json:"workers,omitempty"`
	Items      int     `json:"items"`
	Matches    int     `json:"matches"`
	Duration   string  `json:"duration"`
	DurationMs float64 `json:"duration_ms"`
	PerSec     float64 `json:"per_sec"`
}

type benchConfig struct {
	numCategories int
	numInputs     int
	vocabulary    int
	wildcards     float64
	workers       string
	inputFile     string
	jsonOutput    bool
	seed          uint64
	maxSteps      int
}

func main() {
	var cfg benchConfig
	flag.IntVar(&cfg.numCategories, "categories", 50_000, "number of categories to generate")
	flag.IntVar(&cfg.numInputs, "inputs", 100_000, "number of input lines to generate")
	flag.IntVar(&cfg.vocabulary, "vocabulary", 500, "number of distinct words")
	flag.Float64Var(&cfg.wildcards, "wildcards", 0.2, "probability that a pattern word is a wildcard")
	flag.StringVar(&cfg.workers, "workers", "1,"+strconv.Itoa(runtime.GOMAXPROCS(0)), "comma-separated worker counts to try")
	flag.StringVar(&cfg.inputFile, "input", "", "read input lines from file instead of generating them")
	flag.BoolVar(&cfg.jsonOutput, "json", false, "output results as JSON")
	flag.Uint64Var(&cfg.seed, "seed", 42, "random seed for data generation")
	flag.IntVar(&cfg.maxSteps, "max-steps", 0, "per-match step limit (0 = unlimited)")
	flag.Parse()

	workers, err := parseWorkers(cfg.workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -workers: %v\n", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewPCG(cfg.seed, cfg.seed+1))
	words := vocabulary(cfg.vocabulary)

	reg := registry.New()
	input := reg.MustRegister("input", registry.WordBehaviour())
	c := graphmaster.New(reg, graphmaster.WithMaxSteps(cfg.maxSteps))

	var results []result
	results = append(results, benchInsert(c, input, words, rng, cfg))

	lines := loadOrGenerate(words, rng, cfg)
	providers := make([]graphmaster.ValueProvider, len(lines))
	for i, l := range lines {
		providers[i] = graphmaster.ValueMap{"input": l}
	}

	if !cfg.jsonOutput {
		fmt.Fprintf(os.Stderr, "Categories: %d\n", c.Len())
		fmt.Fprintf(os.Stderr, "Inputs: %d\n", len(lines))
		fmt.Fprintf(os.Stderr, "GOMAXPROCS: %d\n\n", runtime.GOMAXPROCS(0))
		printResult(results[0])
	}

	for _, w := range workers {
		r := benchMatch(c, providers, w)
		results = append(results, r)
		if !cfg.jsonOutput {
			printResult(r)
		}
	}

	if cfg.jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(results)
	}
}

func parseWorkers(s string) ([]int, error) {
	var list []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, nil
}

func vocabulary(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = "w" + strconv.Itoa(i)
	}
	return words
}

// pattern builds a category pattern of 1 to 6 words. Low-numbered words
// are picked more often so that categories share prefixes.
func pattern(words []string, rng *rand.Rand, wildcards float64) string {
	n := 1 + rng.IntN(6)
	parts := make([]string, n)
	for i := range parts {
		switch f := rng.Float64(); {
		case f < wildcards/2:
			parts[i] = "_"
		case f < wildcards:
			parts[i] = "*"
		default:
			parts[i] = words[skewed(rng, len(words))]
		}
	}
	return strings.Join(parts, " ")
}

func skewed(rng *rand.Rand, n int) int {
	f := rng.Float64()
	return int(f * f * float64(n))
}

func benchInsert(c *graphmaster.Classifier, input *registry.Context, words []string, rng *rand.Rand, cfg benchConfig) result {
	runtime.GC()
	start := time.Now()

	inserted := 0
	for range cfg.numCategories {
		p := pattern(words, rng, cfg.wildcards)
		seq := c.NewSequence()
		if err := seq.Insert(input, p); err != nil {
			fmt.Fprintf(os.Stderr, "error: %q: %v\n", p, err)
			continue
		}
		if err := c.Insert(seq, p); err == nil {
			inserted++
		}
	}

	elapsed := time.Since(start)
	return result{
		Phase:      "insert",
		Items:      cfg.numCategories,
		Matches:    inserted,
		Duration:   elapsed.String(),
		DurationMs: float64(elapsed.Milliseconds()),
		PerSec:     float64(cfg.numCategories) / elapsed.Seconds(),
	}
}

func benchMatch(c *graphmaster.Classifier, providers []graphmaster.ValueProvider, workers int) result {
	runtime.GC()
	start := time.Now()

	outcomes, err := batch.Run(context.Background(), c, providers, workers)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: workers=%d: %v\n", workers, err)
	}

	matched := 0
	for _, o := range outcomes {
		if o.Matched() {
			matched++
		}
	}

	return result{
		Phase:      "match",
		Workers:    workers,
		Items:      len(providers),
		Matches:    matched,
		Duration:   elapsed.String(),
		DurationMs: float64(elapsed.Milliseconds()),
		PerSec:     float64(len(providers)) / elapsed.Seconds(),
	}
}

func loadOrGenerate(words []string, rng *rand.Rand, cfg benchConfig) []string {
	if cfg.inputFile != "" {
		return loadFromFile(cfg.inputFile)
	}

	lines := make([]string, cfg.numInputs)
	for i := range lines {
		n := 1 + rng.IntN(10)
		parts := make([]string, n)
		for j := range parts {
			parts[j] = words[skewed(rng, len(words))]
		}
		lines[i] = strings.Join(parts, " ")
	}
	return lines
}

func loadFromFile(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	// Allow long lines
	scanner.Buffer(make([]byte, 256*1024), 256*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error reading file: %v\n", err)
		os.Exit(1)
	}
	return lines
}

func printResult(r result) {
	if r.Phase == "insert" {
		fmt.Printf("%-8s %8d items  %8d new  %12s  %12.0f/s\n", r.Phase, r.Items, r.Matches, r.Duration, r.PerSec)
		return
	}
	fmt.Printf("%-8s %8d items  %8d hit  %12s  %12.0f/s  workers=%d\n", r.Phase, r.Items, r.Matches, r.Duration, r.PerSec, r.Workers)
}
