// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command bench measures the throughput of the queue variants across a
// configurable matrix of producer/consumer counts and appends the
// session to a JSON report consumed by cmd/benchplot.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sugawarayuuta/sonnet"
	"gopkg.in/yaml.v3"

	"code.hybscloud.com/ubq"
	"code.hybscloud.com/ubq/internal/testbench"
)

// Config is the YAML run configuration.
type Config struct {
	Duration        string        `yaml:"duration"` // time.ParseDuration syntax
	Capacity        int           `yaml:"capacity"`
	Pin             bool          `yaml:"pin"`
	Implementations []string      `yaml:"implementations"`
	Concurrency     []Concurrency `yaml:"concurrency"`
}

func (c Config) duration() (time.Duration, error) {
	return time.ParseDuration(c.Duration)
}

// Concurrency is one point of the producer/consumer matrix.
type Concurrency struct {
	Producers int `yaml:"producers" json:"producers"`
	Consumers int `yaml:"consumers" json:"consumers"`
}

func defaultConfig() Config {
	return Config{
		Duration: "2s",
		Capacity: 1024,
		Implementations: []string{
			"spsc", "spsc-batch", "mpmc", "channel",
		},
		Concurrency: []Concurrency{
			{Producers: 1, Consumers: 1},
			{Producers: 2, Consumers: 2},
			{Producers: 4, Consumers: 4},
		},
	}
}

// BenchmarkResult holds results for one test run.
type BenchmarkResult struct {
	Implementation string  `json:"implementation"`
	NumProducers   int     `json:"num_producers"`
	NumConsumers   int     `json:"num_consumers"`
	Produced       int64   `json:"produced"`
	Consumed       int64   `json:"consumed"`
	TestDuration   string  `json:"test_duration"`
	ActualElapsed  string  `json:"actual_elapsed"`
	Throughput     float64 `json:"throughput_msgs_sec"`
	PoolHits       int64   `json:"pool_hits,omitempty"`
	PoolMisses     int64   `json:"pool_misses,omitempty"`
}

// SystemInfo holds host information captured with the session.
type SystemInfo struct {
	NumCPU      int     `json:"num_cpu"`
	CPUModel    string  `json:"cpu_model,omitempty"`
	CPUSpeedMHz float64 `json:"cpu_speed_mhz,omitempty"`
	GOARCH      string  `json:"go_arch"`
	GoVersion   string  `json:"go_version"`
	TotalMemory uint64  `json:"total_memory_bytes,omitempty"`
}

// FullReport represents a complete bench session.
type FullReport struct {
	SessionTime string            `json:"session_time"`
	SystemInfo  SystemInfo        `json:"system_info"`
	Benchmarks  []BenchmarkResult `json:"benchmarks"`
}

// statser is implemented by the variants that expose pool counters.
type statser interface {
	Stats() ubq.Stats
}

// Implementation describes one benchmarked queue variant.
type Implementation struct {
	name        string
	description string
	// spscOnly restricts the variant to the 1x1 matrix points.
	spscOnly bool
	newQueue func(capacity int) ubq.Queue
}

func implementations() []Implementation {
	return []Implementation{
		{
			name:        "spsc",
			description: "unbounded chained-ring SPSC queue",
			spscOnly:    true,
			newQueue:    func(c int) ubq.Queue { return ubq.NewSPSC(c) },
		},
		{
			name:        "spsc-batch",
			description: "SPSC with batching producer",
			spscOnly:    true,
			newQueue:    func(c int) ubq.Queue { return ubq.NewSPSCBatch(c) },
		},
		{
			name:        "mpmc",
			description: "coarse-locked multi-endpoint facade",
			newQueue:    func(c int) ubq.Queue { return ubq.NewMPMC(c) },
		},
		{
			name:        "channel",
			description: "buffered Go channel baseline",
			newQueue:    func(c int) ubq.Queue { return newChanQueue(c) },
		},
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func systemInfo() SystemInfo {
	info := SystemInfo{
		NumCPU:    runtime.NumCPU(),
		GOARCH:    runtime.GOARCH,
		GoVersion: runtime.Version(),
	}
	if cpus, err := cpu.Info(); err == nil && len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
		info.CPUSpeedMHz = cpus[0].Mhz
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
	}
	return info
}

func runSession(cfg Config, duration time.Duration) FullReport {
	impls := implementations()
	byName := make(map[string]Implementation, len(impls))
	for _, impl := range impls {
		byName[impl.name] = impl
	}

	var selected []Implementation
	for _, name := range cfg.Implementations {
		impl, ok := byName[name]
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown implementation %q, skipping\n", name)
			continue
		}
		selected = append(selected, impl)
	}

	total := 0
	for _, impl := range selected {
		for _, cc := range cfg.Concurrency {
			if impl.spscOnly && (cc.Producers != 1 || cc.Consumers != 1) {
				continue
			}
			total++
		}
	}

	bar := progressbar.Default(int64(total), "bench")
	report := FullReport{
		SessionTime: time.Now().Format(time.RFC3339),
		SystemInfo:  systemInfo(),
	}

	for _, impl := range selected {
		for _, cc := range cfg.Concurrency {
			if impl.spscOnly && (cc.Producers != 1 || cc.Consumers != 1) {
				continue
			}
			q := impl.newQueue(cfg.Capacity)
			res := testbench.RunTimed(q, testbench.Config{
				NumProducers: cc.Producers,
				NumConsumers: cc.Consumers,
				PinCPUs:      cfg.Pin,
			}, duration)

			result := BenchmarkResult{
				Implementation: impl.name,
				NumProducers:   cc.Producers,
				NumConsumers:   cc.Consumers,
				Produced:       res.Produced,
				Consumed:       res.Consumed,
				TestDuration:   duration.String(),
				ActualElapsed:  res.Elapsed.String(),
				Throughput:     float64(res.Consumed) / res.Elapsed.Seconds(),
			}
			if s, ok := q.(statser); ok {
				stats := s.Stats()
				result.PoolHits = stats.PoolHits
				result.PoolMisses = stats.PoolMisses
			}
			report.Benchmarks = append(report.Benchmarks, result)
			_ = bar.Add(1)
		}
	}
	return report
}

func appendSession(path string, report FullReport) error {
	var sessions []FullReport
	if data, err := os.ReadFile(path); err == nil {
		if err := sonnet.Unmarshal(data, &sessions); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
	sessions = append(sessions, report)
	data, err := sonnet.Marshal(sessions)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printMarkdown(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var sessions []FullReport
	if err := sonnet.Unmarshal(data, &sessions); err != nil {
		return err
	}
	if len(sessions) == 0 {
		return fmt.Errorf("no sessions in %s", path)
	}
	last := sessions[len(sessions)-1]

	rows := make([]BenchmarkResult, len(last.Benchmarks))
	copy(rows, last.Benchmarks)
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Throughput > rows[j].Throughput
	})

	fmt.Println("## Last Session Benchmark Summary")
	fmt.Println()
	fmt.Println("| Implementation | P | C | Throughput (msgs/sec) |")
	fmt.Println("|----------------|---|---|-----------------------|")
	for _, r := range rows {
		fmt.Printf("| %-14s | %d | %d | %21.0f |\n",
			r.Implementation, r.NumProducers, r.NumConsumers, r.Throughput)
	}
	return nil
}

func main() {
	configPath := flag.String("config", "", "YAML run configuration (defaults apply when omitted)")
	outPath := flag.String("out", "bench_results.json", "JSON session report to append to")
	markdown := flag.Bool("markdown", false, "print a Markdown summary of the last session and exit")
	flag.Parse()

	if *markdown {
		if err := printMarkdown(*outPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	duration, err := cfg.duration()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid duration:", err)
		os.Exit(1)
	}

	report := runSession(cfg, duration)
	if err := appendSession(*outPath, report); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("session appended to %s (%d results)\n", *outPath, len(report.Benchmarks))
	fmt.Printf("system: %d cpus, %s\n", report.SystemInfo.NumCPU,
		strings.TrimSpace(report.SystemInfo.CPUModel))
}
