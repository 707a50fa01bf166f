// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command benchplot renders the throughput results collected by
// cmd/bench as a line chart, one line per queue implementation.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/sugawarayuuta/sonnet"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Mirrors of the cmd/bench report types; only the fields the chart
// needs are declared.
type benchmarkResult struct {
	Implementation string  `json:"implementation"`
	NumProducers   int     `json:"num_producers"`
	NumConsumers   int     `json:"num_consumers"`
	Throughput     float64 `json:"throughput_msgs_sec"`
}

type fullReport struct {
	SessionTime string            `json:"session_time"`
	Benchmarks  []benchmarkResult `json:"benchmarks"`
}

func main() {
	inPath := flag.String("in", "bench_results.json", "JSON session report produced by cmd/bench")
	outPath := flag.String("out", "throughput.png", "output chart file")
	flag.Parse()

	data, err := os.ReadFile(*inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var sessions []fullReport
	if err := sonnet.Unmarshal(data, &sessions); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stderr, "no sessions in", *inPath)
		os.Exit(1)
	}
	last := sessions[len(sessions)-1]

	// Group by implementation, x = total endpoint goroutines.
	byImpl := map[string]plotter.XYs{}
	for _, b := range last.Benchmarks {
		byImpl[b.Implementation] = append(byImpl[b.Implementation], plotter.XY{
			X: float64(b.NumProducers + b.NumConsumers),
			Y: b.Throughput,
		})
	}

	names := make([]string, 0, len(byImpl))
	for name := range byImpl {
		names = append(names, name)
	}
	sort.Strings(names)

	p := plot.New()
	p.Title.Text = "Queue throughput — session " + last.SessionTime
	p.X.Label.Text = "endpoint goroutines (producers + consumers)"
	p.Y.Label.Text = "throughput (msgs/sec)"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{}
	p.Add(plotter.NewGrid())

	args := make([]any, 0, 2*len(names))
	for _, name := range names {
		pts := byImpl[name]
		sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
		args = append(args, name, pts)
	}
	if err := plotutil.AddLinePoints(p, args...); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, *outPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("wrote", *outPath)
}
