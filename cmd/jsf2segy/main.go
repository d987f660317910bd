package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"example.com/jsf2segy/internal/common"
	"example.com/jsf2segy/internal/config"
	"example.com/jsf2segy/internal/convert"
	"example.com/jsf2segy/internal/jsf"
	"example.com/jsf2segy/internal/manifest"
	"example.com/jsf2segy/internal/report"
	"example.com/jsf2segy/internal/sample"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

type cliOptions struct {
	modes        sample.Modes
	output       string
	configPath   string
	logPath      string
	manifestPath string
	signKeyPath  string
	reportPath   string
	summaryPath  string
	eventsPath   string
	progress     bool
	input        string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `jsf2segy %s (built %s) extracts subbottom data from Edgetech JSF files

Usage: jsf2segy [options] -o <output base> <input.jsf>

Sidescan and subbottom record sizes must stay consistent; a change in the
subbottom record length starts a new output file.

Options:
  -e              Get Envelope subbottom data
  -a              Get Analytic subbottom data and make Envelope
  -r              Get Real subbottom data
  -x              Extract real value from Analytic subbottom data
  -o <base>       Path and name of output file (no extension, .sgy is added)
  -config <file>  YAML configuration
  -log <file>     rolling log file
  -manifest <f>   write a manifest of the SEG-Y files produced
  -sign-key <pem> sign the manifest with an RSA key (detached JWS next to it)
  -summary <f>    write the conversion report as JSON
  -report <f>     write the conversion report as PDF
  -events <f>     append output file events as JSONL
  -progress       display progress updates

Example: jsf2segy -a -o outfile infile.jsf
`, version, buildDate)
}

func parseArgs(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("jsf2segy", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	fs.BoolVar(&opts.modes.Envelope, "e", false, "envelope subbottom data")
	fs.BoolVar(&opts.modes.Analytic, "a", false, "analytic subbottom data as envelope")
	fs.BoolVar(&opts.modes.Real, "r", false, "real subbottom data")
	fs.BoolVar(&opts.modes.ExtractReal, "x", false, "real part of analytic subbottom data")
	fs.StringVar(&opts.output, "o", "", "output base name")
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration")
	fs.StringVar(&opts.logPath, "log", "", "rolling log file")
	fs.StringVar(&opts.manifestPath, "manifest", "", "manifest JSON output")
	fs.StringVar(&opts.signKeyPath, "sign-key", "", "PEM RSA key for signing the manifest")
	fs.StringVar(&opts.reportPath, "report", "", "PDF report output")
	fs.StringVar(&opts.summaryPath, "summary", "", "JSON report output")
	fs.StringVar(&opts.eventsPath, "events", "", "JSONL event log")
	fs.BoolVar(&opts.progress, "progress", false, "display progress updates")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 1 {
		usage(stderr)
		return opts, errors.New("exactly one input file is required")
	}
	opts.input = fs.Arg(0)
	if strings.TrimSpace(opts.output) == "" {
		usage(stderr)
		return opts, errors.New("required: -o")
	}
	if !opts.modes.Any() {
		usage(stderr)
		return opts, convert.ErrNoModes
	}
	if opts.signKeyPath != "" && opts.manifestPath == "" {
		return opts, errors.New("-sign-key requires -manifest")
	}
	return opts, nil
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func setupLogging(opts cliOptions, cfg config.Config) (func(), error) {
	path := opts.logPath
	if path == "" {
		path = cfg.Logs.LogPath()
	}
	if path == "" {
		return func() {}, nil
	}
	w, err := config.OpenLog(path, cfg.Logs)
	if err != nil {
		return nil, err
	}
	common.SetLogOutput(w)
	return func() {
		common.SetLogOutput(nil)
		w.Close()
	}, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "jsf2segy: %v\n", err)
		return exitUsage
	}
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "jsf2segy: load config: %v\n", err)
		return exitFatal
	}
	closeLog, err := setupLogging(opts, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "jsf2segy: open log: %v\n", err)
		return exitFatal
	}
	defer closeLog()

	var events *common.EventLog
	if opts.eventsPath != "" {
		events = common.NewEventLog(opts.eventsPath)
	}
	var metrics *common.Metrics
	if opts.progress || opts.summaryPath != "" || opts.reportPath != "" {
		metrics = common.NewMetrics()
	}
	stopProgress := func() {}
	if opts.progress {
		stopProgress = common.StartProgressPrinter(stderr, metrics, time.Second)
	}

	common.Logf("converting %s (%s) to %s%s", opts.input, strings.Join(opts.modes.Names(), ","), opts.output, cfg.Output.Extension)
	sum, convErr := convert.ConvertFile(opts.input, convert.Options{
		Modes:      opts.modes,
		OutputBase: opts.output,
		Extension:  cfg.Output.Extension,
		Text:       cfg.TextHeader,
		Metrics:    metrics,
		Events:     events,
		Notices:    stdout,
	})
	stopProgress()
	printSummary(stdout, sum, convErr)

	if err := writeOutputs(opts, sum, metrics, stdout); err != nil {
		fmt.Fprintf(stderr, "jsf2segy: %v\n", err)
		return exitFatal
	}
	if convErr != nil {
		common.Logf("conversion of %s failed: %v", opts.input, convErr)
		fmt.Fprintf(stderr, "jsf2segy: %v\n", convErr)
		return exitFatal
	}
	common.Logf("converted %s: %d records in %d file(s)", opts.input, sum.Records, len(sum.Files))
	return exitOK
}

func printSummary(w io.Writer, sum convert.Summary, convErr error) {
	switch {
	case convErr == nil:
		fmt.Fprintf(w, "%s End of File reached %d seismic records processed\n", sum.Input, sum.Records)
	case errors.Is(convErr, jsf.ErrBadMarker):
		fmt.Fprintf(w, "Invalid file format\n")
		fmt.Fprintf(w, "%s Record Length change? %d seismic records processed\n", sum.Input, sum.Records)
	default:
		fmt.Fprintf(w, "%s: %d seismic records processed\n", sum.Input, sum.Records)
	}
	fmt.Fprintf(w, "Start Time:\t%s\n", sum.Start)
	fmt.Fprintf(w, "End Time:\t%s\n", sum.End)
}

// writeOutputs produces the manifest and reports for whatever files the run
// left on disk, including runs that failed part way.
func writeOutputs(opts cliOptions, sum convert.Summary, metrics *common.Metrics, stdout io.Writer) error {
	var m *manifest.Manifest
	if opts.manifestPath != "" || opts.reportPath != "" || opts.summaryPath != "" {
		built, err := manifest.Build(sum.Input, sum.Paths())
		if err != nil {
			return fmt.Errorf("manifest build: %w", err)
		}
		m = &built
	}
	if opts.manifestPath != "" {
		if err := saveManifest(*m, opts, stdout); err != nil {
			return err
		}
	}
	if opts.summaryPath == "" && opts.reportPath == "" {
		return nil
	}
	var snap *common.MetricsSnapshot
	if metrics != nil {
		s := metrics.Snapshot()
		snap = &s
	}
	rep := report.Build(sum, opts.modes.Names(), m, snap)
	if opts.summaryPath != "" {
		if err := report.SaveJSON(rep, opts.summaryPath); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		fmt.Fprintln(stdout, "Wrote summary:", opts.summaryPath)
	}
	if opts.reportPath != "" {
		if err := report.SavePDF(rep, opts.reportPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		fmt.Fprintln(stdout, "Wrote PDF:", opts.reportPath)
	}
	return nil
}

func saveManifest(m manifest.Manifest, opts cliOptions, stdout io.Writer) error {
	if opts.signKeyPath == "" {
		if err := manifest.Save(m, opts.manifestPath); err != nil {
			return fmt.Errorf("manifest save: %w", err)
		}
		fmt.Fprintln(stdout, "Wrote manifest:", opts.manifestPath)
		return nil
	}
	key, err := os.ReadFile(opts.signKeyPath)
	if err != nil {
		return fmt.Errorf("read key: %w", err)
	}
	jwsPath, err := manifest.SaveSigned(m, opts.manifestPath, key)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Wrote manifest:", opts.manifestPath)
	fmt.Fprintln(stdout, "Wrote signature:", jwsPath)
	return nil
}
