package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gohypo/internal/testkit"
)

func main() {
	out := flag.String("out", "result.tsv", "output file path")
	samples := flag.Int("samples", 41, "number of temperature samples")
	format := flag.String("format", "", "output format: tsv, csv or xlsx (default inferred from -out)")
	seed := flag.Int64("seed", 42, "RNG seed (deterministic)")
	tmin := flag.Float64("tmin", 0.5, "sweep start temperature")
	tmax := flag.Float64("tmax", 4.5, "sweep end temperature")
	tc := flag.Float64("tc", 2.269, "planted critical temperature")
	noise := flag.Float64("noise", 0.004, "relative noise amplitude")
	flag.Parse()

	if *samples < 2 {
		fmt.Fprintln(os.Stderr, "samples must be >= 2")
		os.Exit(2)
	}

	fmtName := strings.ToLower(strings.TrimSpace(*format))
	if fmtName == "" {
		switch strings.ToLower(filepath.Ext(*out)) {
		case ".csv":
			fmtName = "csv"
		case ".xlsx":
			fmtName = "xlsx"
		default:
			fmtName = "tsv"
		}
	}

	cfg := testkit.DefaultConfig()
	cfg.Samples = *samples
	cfg.Seed = *seed
	cfg.TMin = *tmin
	cfg.TMax = *tmax
	cfg.TC = *tc
	cfg.Noise = *noise

	ds, err := testkit.Generate(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error generating sweep:", err)
		os.Exit(1)
	}

	switch fmtName {
	case "tsv":
		err = testkit.WriteTSV(*out, ds)
	case "csv":
		err = testkit.WriteCSV(*out, ds)
	case "xlsx":
		err = testkit.WriteXLSX(*out, ds)
	default:
		fmt.Fprintln(os.Stderr, "unsupported format:", fmtName)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", fmtName, err)
		os.Exit(1)
	}

	fmt.Printf("Synthetic sweep written: %s\n", *out)
	fmt.Printf("Observables: %d | Samples: %d\n", len(ds.Headers)-1, len(ds.Rows))
}
