package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ousposer/ousposer/internal/version"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var err error
	switch command {
	case "import":
		err = handleImport(ctx, args)
	case "detect":
		err = handleDetect(ctx, args)
	case "evaluate":
		err = handleEvaluate(ctx, args)
	case "migrate":
		err = handleMigrate(args)
	case "version":
		fmt.Printf("ousposer version %s\n", version.String())
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", command, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ousposer - street furniture reconstruction from line-work

Usage: ousposer <command> [options]

Commands:
  import     Load the municipal JSON export into the database
  detect     Reconstruct benches and trash bins, one partition at a time
  evaluate   Score stored detections against manually validated clusters
  migrate    Manage the database schema (up, down, version, force)
  version    Show version
  help       Show this help message

Examples:
  ousposer import --db furniture.db --input plan-de-voirie-mobiliers-urbains.json
  ousposer detect --db furniture.db --workers 4 --partitions 4,11
  ousposer detect --input plan-de-voirie-mobiliers-urbains.json --dry-run
  ousposer evaluate --db furniture.db --truth manual_clusters.json
  ousposer migrate --db furniture.db version`)
}
