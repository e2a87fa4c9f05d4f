package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stemsi/marksheet-analytics/internal/config"
	"github.com/stemsi/marksheet-analytics/internal/dataset"
	"github.com/stemsi/marksheet-analytics/internal/logger"
	"github.com/stemsi/marksheet-analytics/internal/sample"
)

func main() {
	defaults := sample.DefaultOptions()

	out := flag.String("out", "marksheet.xlsx", "output file (.xlsx or .csv)")
	students := flag.Int("students", defaults.Students, "number of students")
	subjects := flag.String("subjects", strings.Join(defaults.Subjects, ","), "comma-separated subject names")
	teachers := flag.Int("teachers", defaults.TeachersPerSubject, "teachers per subject")
	missing := flag.Float64("missing", defaults.MissingRate, "share of blank marks/attendance cells")
	gap := flag.Float64("gender-gap", defaults.GenderGap, "marks added to male students")
	seed := flag.Uint64("seed", defaults.Seed, "random seed")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	opts := sample.Options{
		Students:           *students,
		Subjects:           splitList(*subjects),
		TeachersPerSubject: *teachers,
		MissingRate:        *missing,
		GenderGap:          *gap,
		Seed:               *seed,
	}
	if opts.Students < 1 || len(opts.Subjects) == 0 {
		log.Fatal().Msg("-students must be positive and -subjects must name at least one subject")
	}
	if err := dataset.CheckExtension(*out); err != nil {
		log.Fatal().Err(err).Str("out", *out).Msg("Unsupported output file")
	}

	fmt.Printf("=== Generating %d students across %d subjects ===\n", opts.Students, len(opts.Subjects))
	tbl := sample.Generate(opts)

	// The file must load back through the same path the API uses.
	if _, err := dataset.Validate(tbl); err != nil {
		log.Fatal().Err(err).Msg("Generated marksheet failed validation")
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create output file")
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(*out)) {
	case ".csv":
		err = dataset.WriteCSV(f, tbl)
	default:
		err = dataset.WriteWorkbook(f, tbl)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to write marksheet")
	}

	fmt.Printf("\nSeed completed! Wrote %d rows to %s\n", len(tbl.Rows), *out)
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
