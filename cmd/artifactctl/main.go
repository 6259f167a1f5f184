// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

// Command artifactctl manages predictor artifacts on disk.
//
// Commands:
//
//	import   Convert an exported JSON model into a stored artifact
//	export   Write the stored artifact for a commodity as JSON
//	list     Print the latest stored version of every commodity
//	prune    Remove old versions of a commodity
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"

	"github.com/mohan-p-hp/market-recomender/internal/recommend/predict"
	"github.com/mohan-p-hp/market-recomender/internal/recommend/storage"
)

const defaultModelDir = "models"

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	var err error
	switch args[0] {
	case "import":
		err = runImport(ctx, args[1:], stdout)
	case "export":
		err = runExport(ctx, args[1:], stdout)
	case "list":
		err = runList(ctx, args[1:], stdout)
	case "prune":
		err = runPrune(ctx, args[1:], stdout)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return 2
	default:
		fmt.Fprintf(stderr, "artifactctl %s: %v\n", args[0], err)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  artifactctl <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  import -in FILE [-commodity NAME] [-dir DIR]   Store an exported JSON model")
	fmt.Fprintln(w, "  export -commodity NAME [-out FILE] [-dir DIR]  Write the latest artifact as JSON")
	fmt.Fprintln(w, "  list [-json] [-dir DIR]                        List stored artifacts")
	fmt.Fprintln(w, "  prune -commodity NAME [-keep N] [-dir DIR]     Remove old versions")
}

func newFlagSet(name string, out io.Writer) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	dir := fs.String("dir", envOr("MODEL_PATH", defaultModelDir), "artifact store directory")
	return fs, dir
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runImport(ctx context.Context, args []string, stdout io.Writer) error {
	fs, dir := newFlagSet("import", stdout)
	in := fs.String("in", "", "exported JSON model file")
	commodity := fs.String("commodity", "", "override the commodity named in the file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		fs.Usage()
		return errUsage
	}

	f, err := os.Open(*in) //nolint:gosec // path supplied by the operator
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // read-only

	a, err := predict.DecodeJSON(f)
	if err != nil {
		return err
	}
	if *commodity != "" {
		a.Commodity = *commodity
	}

	store, err := storage.NewStore(*dir)
	if err != nil {
		return err
	}
	meta, err := store.Save(ctx, a)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "stored %s v%d (%s, %d features, %d bytes)\n",
		meta.Commodity, meta.Version, meta.Kind, len(meta.Features), meta.SizeBytes)
	return nil
}

func runExport(ctx context.Context, args []string, stdout io.Writer) error {
	fs, dir := newFlagSet("export", stdout)
	commodity := fs.String("commodity", "", "commodity to export")
	version := fs.Int("version", 0, "version to export (default latest)")
	out := fs.String("out", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *commodity == "" {
		fs.Usage()
		return errUsage
	}

	store, err := storage.NewStore(*dir)
	if err != nil {
		return err
	}

	var a *predict.Artifact
	if *version > 0 {
		a, err = store.LoadVersion(ctx, *commodity, *version)
	} else {
		a, err = store.LoadArtifact(ctx, *commodity)
	}
	if err != nil {
		return err
	}

	if *out == "" {
		return predict.EncodeJSON(stdout, a)
	}
	f, err := os.Create(*out) //nolint:gosec // path supplied by the operator
	if err != nil {
		return err
	}
	if err := predict.EncodeJSON(f, a); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func runList(ctx context.Context, args []string, stdout io.Writer) error {
	fs, dir := newFlagSet("list", stdout)
	asJSON := fs.Bool("json", false, "print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*dir)
	if err != nil {
		return err
	}
	list, err := store.List(ctx)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMMODITY\tVERSION\tKIND\tFEATURES\tSAVED")
	for _, m := range list {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\n",
			m.Commodity, m.Version, m.Kind, len(m.Features), m.SavedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func runPrune(ctx context.Context, args []string, stdout io.Writer) error {
	fs, dir := newFlagSet("prune", stdout)
	commodity := fs.String("commodity", "", "commodity to prune")
	keep := fs.Int("keep", 3, "number of newest versions to keep")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *commodity == "" {
		fs.Usage()
		return errUsage
	}

	store, err := storage.NewStore(*dir)
	if err != nil {
		return err
	}
	removed, err := store.Prune(ctx, *commodity, *keep)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "removed %d old version(s) of %s\n", removed, *commodity)
	return nil
}
