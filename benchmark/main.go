// Package main measures covpost render times on synthetic JaCoCo reports of growing size.
// Each size is rendered in every output format several times; the first run is reported
// as cold and the rest are averaged as warm. Results are written to a CSV file.
//
// Prerequisites:
// - covpost binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the generated reports (defaults to a temp dir)
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the timings of one report size and output format.
type BenchmarkResult struct {
	Classes  int
	Output   string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Runs     int
	Packages []int // Number of packages per report; each has classesPerPackage classes
	Outputs  []string
}

const classesPerPackage = 50

func main() {
	workDir := ""
	if len(os.Args) == 2 {
		workDir = os.Args[1]
	} else {
		dir, err := os.MkdirTemp("", "covpost-benchmark-*")
		if err != nil {
			fmt.Printf("Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = os.RemoveAll(dir) }()
		workDir = dir
	}

	config := BenchmarkConfig{
		WorkDir:  workDir,
		Timeout:  time.Minute,
		Runs:     5,
		Packages: []int{10, 100, 1000},
		Outputs:  []string{"markdown", "text", "json", "csv"},
	}

	if _, err := exec.LookPath("covpost"); err != nil {
		fmt.Printf("Prerequisites check failed: covpost binary not found in PATH\n")
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}
	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}
	printSummary(results)
}

// runBenchmarks generates one report per size and renders it in every output format.
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult
	fmt.Printf("Starting benchmark: %d sizes, %d outputs, %d runs, %v timeout\n",
		len(config.Packages), len(config.Outputs), config.Runs, config.Timeout)

	for _, packages := range config.Packages {
		reportPath := filepath.Join(config.WorkDir, fmt.Sprintf("jacoco_%d.xml", packages))
		changed, err := writeSyntheticReport(reportPath, packages)
		if err != nil {
			return nil, err
		}
		classes := packages * classesPerPackage
		fmt.Printf("Benchmarking %d classes\n", classes)

		for _, output := range config.Outputs {
			args := []string{"render", reportPath, "--output", output, "--changed-file", strings.Join(changed, ",")}
			cold, warm := runBenchmark(config, args)
			result := BenchmarkResult{Classes: classes, Output: output, ColdTime: formatSeconds(cold), WarmTime: averageSeconds(warm)}
			fmt.Printf("  %-8s cold: %s, warm average: %s\n", output, result.ColdTime, result.WarmTime)
			results = append(results, result)
		}
	}
	return results, nil
}

// writeSyntheticReport writes a report with packages*classesPerPackage classes and returns
// one changed Java file per package.
func writeSyntheticReport(path string, packages int) ([]string, error) {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(`<report name="benchmark">` + "\n")
	var changed []string
	for p := range packages {
		pkg := fmt.Sprintf("com/bench/p%d", p)
		fmt.Fprintf(&sb, `<package name="%s">`+"\n", pkg)
		for c := range classesPerPackage {
			name := fmt.Sprintf("C%d", c)
			fmt.Fprintf(&sb, `<class name="%s/%s" sourcefilename="%s.java">`, pkg, name, name)
			fmt.Fprintf(&sb, `<counter type="INSTRUCTION" missed="%d" covered="%d"/>`, c%7, 20+c)
			fmt.Fprintf(&sb, `<counter type="LINE" missed="%d" covered="%d"/>`, c%3, 5+c)
			fmt.Fprintf(&sb, `<counter type="METHOD" missed="%d" covered="%d"/>`, c%2, 2)
			sb.WriteString("</class>\n")
		}
		sb.WriteString("</package>\n")
		changed = append(changed, fmt.Sprintf("src/main/java/%s/C0.java", pkg))
	}
	total := packages * classesPerPackage
	fmt.Fprintf(&sb, `<counter type="INSTRUCTION" missed="%d" covered="%d"/>`, total, total*20)
	fmt.Fprintf(&sb, `<counter type="LINE" missed="%d" covered="%d"/>`, total, total*5)
	sb.WriteString("</report>\n")

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return changed, nil
}

// runBenchmark executes covpost config.Runs times and returns the cold time and warm times.
func runBenchmark(config BenchmarkConfig, args []string) (coldTime float64, warmTimes []float64) {
	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()
		cmd := exec.Command("covpost", args...)

		done := make(chan error, 1)
		go func() {
			_, err := cmd.Output()
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

func formatSeconds(s float64) string {
	if s <= 0 {
		return "TIMEOUT"
	}
	return fmt.Sprintf("%.3fs", s)
}

func averageSeconds(times []float64) string {
	if len(times) == 0 {
		return "TIMEOUT"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return formatSeconds(sum / float64(len(times)))
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("covpost_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"classes", "output", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{fmt.Sprint(result.Classes), result.Output, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %7d classes %-8s: Cold: %s, Warm: %s\n", result.Classes, result.Output, result.ColdTime, result.WarmTime)
	}
}
