/*
NAME
  hevcparse - parse H.265/HEVC Annex B byte stream files and print their
  NAL unit structure, parameter sets and slice QP values.

DESCRIPTION
  See Readme.md.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/hevc/h265dec"
)

var (
	logLevel string
	logJSON  bool
	logFile  string
	jsonOut  bool
	qpOut    bool
)

var rootCmd = &cobra.Command{
	Use:   "hevcparse [flags] <file>...",
	Short: "Parse H.265/HEVC Annex B byte streams.",
	Args:  cobra.MinimumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger(logLevel, logJSON, logFile)
	},
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "INFO", "set log level")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "set log to json format (default colorized console)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file with rotation")
	rootCmd.Flags().BoolVar(&jsonOut, "json", false, "dump parsed structures as JSON")
	rootCmd.Flags().BoolVar(&qpOut, "qp", false, "print the luminance QP of each slice")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// fileResult holds the parse output for one input file.
type fileResult struct {
	name      string
	bitstream *h265dec.Bitstream
	qps       []int32
	err       error
}

// run parses each file concurrently with its own parser state, then reports
// results in argument order.
func run(files []string) error {
	results := make([]fileResult, len(files))

	var g errgroup.Group
	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			results[i] = parseFile(name)
			return results[i].err
		})
	}
	err := g.Wait()

	for _, res := range results {
		if res.err != nil {
			log.Error().Str("file", res.name).Err(res.err).Msg("parse failed")
			continue
		}
		report(os.Stdout, res)
	}
	return err
}

// parseFile reads and parses a single Annex B file.
func parseFile(name string) fileResult {
	res := fileResult{name: name}

	data, err := os.ReadFile(name)
	if err != nil {
		res.err = err
		return res
	}

	p := h265dec.NewBitstreamParser()
	p.Log = log.Logger.With().Str("file", name).Logger()
	res.bitstream, res.err = p.Parse(data)
	if res.err != nil {
		return res
	}
	if qpOut {
		res.qps = h265dec.SliceQpY(data, p.State)
	}
	return res
}

// report writes one file's results to w.
func report(w io.Writer, res fileResult) {
	fmt.Fprintf(w, "%s: %d NAL units\n", res.name, len(res.bitstream.NALUnits))
	if jsonOut {
		if err := h265dec.DumpJSON(w, res.bitstream); err != nil {
			log.Error().Str("file", res.name).Err(err).Msg("could not dump JSON")
		}
	} else {
		h265dec.Dump(w, res.bitstream)
	}
	if qpOut {
		fmt.Fprintf(w, "slice QPs: %v\n", res.qps)
	}
}

// initLogger configures the global zerolog logger.
func initLogger(level string, jsonFormat bool, file string) {
	zerolog.TimeFieldFormat = "2006-01-02T15:04:05.999Z0700"

	var writer io.Writer = os.Stderr
	if !jsonFormat {
		writer = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	if file != "" {
		writer = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
		}
	}
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()

	switch strings.ToUpper(level) {
	case "DEBUG":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "INFO":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "WARN":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "ERROR":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
