package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ousposer/ousposer/internal/classify"
	"github.com/ousposer/ousposer/internal/config"
	"github.com/ousposer/ousposer/internal/db"
	"github.com/ousposer/ousposer/internal/evaluation"
	"github.com/ousposer/ousposer/internal/furniture"
	"github.com/ousposer/ousposer/internal/ingest"
	"github.com/ousposer/ousposer/internal/monitoring"
	"github.com/ousposer/ousposer/internal/pipeline"
)

func loadDataset(path string) (*ingest.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ingest.LoadDataset(f)
}

func handleImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dbPath := fs.String("db", "furniture.db", "path to sqlite db")
	input := fs.String("input", "", "municipal JSON export")
	fs.Parse(args)

	if *input == "" {
		return errors.New("--input is required")
	}
	ds, err := loadDataset(*input)
	if err != nil {
		return err
	}

	store, err := db.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.ImportComponents(ctx, ds.Components())
	if err != nil {
		return err
	}
	fmt.Printf("imported %d components (%d records skipped)\n", n, ds.Stats.Skipped)
	return nil
}

func handleDetect(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	dbPath := fs.String("db", "furniture.db", "path to sqlite db")
	input := fs.String("input", "", "read components from a JSON export instead of the db")
	configPath := fs.String("config", "", "tuning config JSON (defaults built in)")
	workers := fs.Int("workers", 1, "partitions processed in parallel")
	partitions := fs.String("partitions", "", "comma-separated partitions (default: all)")
	dryRun := fs.Bool("dry-run", false, "do not write detections")
	verbose := fs.Bool("v", false, "verbose per-cluster logging")
	fs.Parse(args)

	monitoring.SetVerbose(*verbose)

	cfg := config.DefaultTuningConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadTuningConfig(*configPath); err != nil {
			return err
		}
	}
	params, err := classify.ParamsFromConfig(cfg)
	if err != nil {
		return err
	}
	classifier, err := classify.New(params)
	if err != nil {
		return err
	}
	selected, err := parsePartitions(*partitions)
	if err != nil {
		return err
	}

	var src pipeline.Source
	var sink pipeline.Sink
	if *input != "" {
		ds, err := loadDataset(*input)
		if err != nil {
			return err
		}
		src = ds
	}
	if *input == "" || !*dryRun {
		store, err := db.Open(*dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if src == nil {
			src = store
		}
		sink = store
	}
	if *dryRun {
		sink = pipeline.NewMemorySink()
	}

	summary, err := pipeline.NewDetector(classifier, src, sink, pipeline.Options{
		Workers:    *workers,
		Partitions: selected,
	}).Run(ctx)
	if err != nil {
		return err
	}
	for _, p := range summary.Partitions {
		fmt.Printf("partition %2d: %5d components, %3d skipped, %4d objects (%d trash bins, %d benches, %d trash bins discarded)\n",
			p.Partition, p.Components, p.Skipped, p.Objects,
			p.Classify.TrashBins, p.Classify.Benches(), p.Classify.DiscardedTrashBins)
	}
	fmt.Println(summary)
	return nil
}

func handleEvaluate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	dbPath := fs.String("db", "furniture.db", "path to sqlite db")
	truthPath := fs.String("truth", "", "manually validated clusters JSON")
	fs.Parse(args)

	if *truthPath == "" {
		return errors.New("--truth is required")
	}
	f, err := os.Open(*truthPath)
	if err != nil {
		return err
	}
	truth, err := ingest.LoadManualClusters(f)
	f.Close()
	if err != nil {
		return err
	}

	store, err := db.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var detections []furniture.DetectedObject
	for _, p := range partitionsOf(truth) {
		objs, err := store.DetectedObjects(ctx, p)
		if err != nil {
			return err
		}
		detections = append(detections, objs...)
	}
	fmt.Println(evaluation.Evaluate(truth, detections))
	return nil
}

func handleMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dbPath := fs.String("db", "furniture.db", "path to sqlite db")
	fs.Parse(args)

	action := "up"
	if fs.NArg() > 0 {
		action = fs.Arg(0)
	}

	store, err := db.OpenNoMigrate(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	switch action {
	case "up":
		err = store.MigrateUp()
	case "down":
		err = store.MigrateDown()
	case "force":
		if fs.NArg() < 2 {
			return errors.New("usage: migrate force <version>")
		}
		v, perr := strconv.Atoi(fs.Arg(1))
		if perr != nil {
			return fmt.Errorf("invalid version %q: %w", fs.Arg(1), perr)
		}
		err = store.MigrateForce(v)
	case "version":
	default:
		return fmt.Errorf("unknown migrate action %q", action)
	}
	if err != nil {
		return err
	}

	v, dirty, err := store.MigrateVersion()
	if err != nil {
		return err
	}
	log.Printf("schema version %d (dirty=%t)", v, dirty)
	return nil
}

// parsePartitions reads "4,11,12". An empty string selects everything.
func parsePartitions(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid partition %q: %w", part, err)
		}
		if n < furniture.MinPartition || n > furniture.MaxPartition {
			return nil, fmt.Errorf("partition %d out of range %d..%d", n, furniture.MinPartition, furniture.MaxPartition)
		}
		out = append(out, n)
	}
	return out, nil
}

func partitionsOf(truth []ingest.ManualCluster) []int {
	seen := make(map[int]bool)
	var out []int
	for _, mc := range truth {
		if !seen[mc.Partition] {
			seen[mc.Partition] = true
			out = append(out, mc.Partition)
		}
	}
	return out
}
