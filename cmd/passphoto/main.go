// Command passphoto turns portrait photos into printable passport-photo sheets.
//
// Usage:
//
//	passphoto [flags] [photo ...]
//
// Without arguments it processes input.jpg in the current directory. The outcome is
// printed to stdout as JSON: one object for a single photo, an array for several.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/autopassphoto/passphoto/pkg/config"
	"github.com/autopassphoto/passphoto/pkg/faults"
	"github.com/autopassphoto/passphoto/pkg/pipeline"
	"github.com/autopassphoto/passphoto/pkg/pipeline/drawer"
	"github.com/autopassphoto/passphoto/pkg/pipeline/measure"
	"github.com/autopassphoto/passphoto/pkg/pipeline/model"
	"github.com/autopassphoto/passphoto/pkg/segment"
)

const defaultInput = "input.jpg"

// segmenters maps the -segmenter flag to its implementation.
var segmenters = map[string]func() segment.Segmenter{
	"rembg": func() segment.Segmenter { return segment.Command{} },
	"none":  func() segment.Segmenter { return segment.Passthrough{} },
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("passphoto", flag.ContinueOnError)
	flags.SetOutput(stderr)

	configPath := flags.String("config", "", "YAML file overriding the default sizes and settings")
	outDir := flags.String("out", "", "directory receiving the outputs (default from config)")
	writePDF := flags.Bool("pdf", false, "also write the sheet as a PDF of its physical size")
	graphPath := flags.String("graph", "", "write a Graphviz DOT file of the stages with their timings")
	verbose := flags.Bool("v", false, "log every stage to stderr")
	segmenterName := flags.String("segmenter", "rembg", "background removal: "+strings.Join(segmenterNames(), ", "))
	command := flags.String("cmd", "", "external background removal command, reading stdin and writing a PNG to stdout")
	concurrency := flags.Int("concurrency", 1, "photos processed at once when several are given")

	err := flags.Parse(args)
	if err != nil {
		printResults(stdout, []pipeline.Result{pipeline.Failure(model.StartStage.Name, err)}, false)

		return 2
	}

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(stderr, "passphoto: ", log.LstdFlags)
	}

	cfg, seg, err := setup(*configPath, *outDir, *writePDF, *segmenterName, *command)
	if err != nil {
		logger.Printf("setup: %v", err)

		return printResults(stdout, []pipeline.Result{pipeline.Failure(model.StartStage.Name, err)}, false)
	}

	opts := []model.PipelineOption{pipeline.PipelineLogger(logger)}
	if *graphPath != "" {
		m := measure.NewDefaultMeasure()
		opts = append(opts, measure.PipelineMeasure(m), drawer.PipelineDrawer(drawer.NewDOTDrawer(*graphPath), m))
	}

	pipe, err := pipeline.New(cfg, seg, opts...)
	if err != nil {
		return printResults(stdout, []pipeline.Result{pipeline.Failure(model.StartStage.Name, err)}, false)
	}

	inputs := flags.Args()
	if len(inputs) == 0 {
		inputs = []string{defaultInput}
	}

	if len(inputs) == 1 {
		return printResults(stdout, []pipeline.Result{pipe.Run(ctx, inputs[0])}, false)
	}

	return printResults(stdout, pipe.RunBatch(ctx, inputs, *concurrency), true)
}

func setup(configPath, outDir string, writePDF bool, segmenterName, command string) (config.Config, segment.Segmenter, error) {
	cfg := config.Default()

	if configPath != "" {
		var err error

		cfg, err = config.Load(configPath)
		if err != nil {
			return cfg, nil, err
		}
	}

	if writePDF {
		cfg.Output.WritePDF = true
	}

	if outDir != "" {
		err := os.MkdirAll(outDir, 0o755)
		if err != nil {
			return cfg, nil, faults.Wrapf(faults.ErrIOFailure, err, "unable to create %s", outDir)
		}

		cfg.Output.Dir = outDir
	}

	if command != "" {
		return cfg, segment.Command{Args: strings.Fields(command)}, nil
	}

	newSegmenter, ok := segmenters[segmenterName]
	if !ok {
		return cfg, nil, errors.Errorf("unknown segmenter %q, expected one of %s", segmenterName, strings.Join(segmenterNames(), ", "))
	}

	return cfg, newSegmenter(), nil
}

func segmenterNames() []string {
	names := make([]string, 0, len(segmenters))
	for name := range segmenters {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// printResults writes the results as indented JSON and returns the exit code.
func printResults(w io.Writer, results []pipeline.Result, batch bool) int {
	var value interface{} = results
	if !batch {
		value = results[0]
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(value); err != nil {
		return 1
	}

	for _, res := range results {
		if !res.OK() {
			return 1
		}
	}

	return 0
}
