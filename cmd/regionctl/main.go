package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/OCharnyshevich/mcregion/pkg/world/anvil"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "inspect":
		err = runInspect(args)
	case "extract":
		err = runExtract(args)
	case "rebuild":
		err = runRebuild(args)
	case "delete":
		err = runDelete(args)
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Default().Fatalf("%s: %v", cmd, err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: regionctl <inspect|extract|rebuild|delete> [flags] <region-file> [args...]")
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		panic("inspect requires exactly one region file path")
	}
	path := fs.Arg(0)

	count, err := anvil.CountChunks(path)
	if err != nil {
		return fmt.Errorf("count chunks: %w", err)
	}
	wasted, err := anvil.WastedSectors(path)
	if err != nil {
		return fmt.Errorf("wasted sectors: %w", err)
	}
	sequential, err := anvil.ChunksAreSequential(path)
	if err != nil {
		return fmt.Errorf("sequential check: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	log.Default().Printf("%s: %d bytes, %d/1024 chunks present, %d sectors wasted, sequential=%v",
		path, info.Size(), count, wasted, sequential)
	return nil
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		panic("extract requires a region file path and an output directory")
	}
	path, outDir := fs.Arg(0), fs.Arg(1)

	if err := anvil.ExtractAllChunks(path, outDir); err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	log.Default().Printf("extracted %s to %s", path, outDir)
	return nil
}

func runRebuild(args []string) error {
	fs := flag.NewFlagSet("rebuild", flag.ExitOnError)
	out := fs.String("o", "", "output path (defaults to rewriting the input in place)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		panic("rebuild requires exactly one region file path")
	}
	path := fs.Arg(0)
	outputPath := path
	if *out != "" {
		outputPath = *out
	}

	log.Default().Printf("rebuilding %s", path)
	written, err := anvil.Rebuild(path, outputPath)
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}
	log.Default().Printf("rebuilt %s -> %s (%d bytes)", path, outputPath, written)
	return nil
}

func runDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 2 {
		panic("delete requires a region file path and at least one x,z coordinate")
	}
	path := fs.Arg(0)

	coords := make([]anvil.RegionCoord, 0, fs.NArg()-1)
	for _, raw := range fs.Args()[1:] {
		x, z, err := parseCoord(raw)
		if err != nil {
			return fmt.Errorf("parse coordinate %q: %w", raw, err)
		}
		coords = append(coords, anvil.NewRegionCoord(x, z))
	}

	written, err := anvil.DeleteChunks(path, path, coords)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	log.Default().Printf("deleted %d chunk(s) from %s (%d bytes)", len(coords), path, written)
	return nil
}

func parseCoord(raw string) (x, z int, err error) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected format x,z")
	}
	x, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	z, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return x, z, nil
}
