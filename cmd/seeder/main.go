package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/poiesic/matchmaker/population"
)

var (
	outFileName  = flag.String("out", "", "file to write the population to (default stdout)")
	size         = flag.Int("size", 40, "number of profiles")
	seed         = flag.Uint64("seed", 1, "random seed")
	meanAge      = flag.Float64("mean-age", 25, "mean profile age")
	ageStdDev    = flag.Float64("age-stddev", 3.5, "standard deviation of profile age")
	criteriaRate = flag.Float64("criteria-rate", 1, "fraction of profiles with preference criteria")
)

func seedPopulation(w io.Writer, cfg *population.GenerateConfig) error {
	doc, err := population.Generate(cfg)
	if err != nil {
		return err
	}
	return population.Write(w, doc)
}

func run() error {
	cfg := &population.GenerateConfig{
		Size:         *size,
		Seed:         *seed,
		MeanAge:      *meanAge,
		AgeStdDev:    *ageStdDev,
		CriteriaRate: *criteriaRate,
	}

	if *outFileName == "" {
		return seedPopulation(os.Stdout, cfg)
	}
	f, err := os.Create(*outFileName)
	if err != nil {
		return err
	}
	if err := seedPopulation(f, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
