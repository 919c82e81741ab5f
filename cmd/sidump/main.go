/*
NAME
  main.go

DESCRIPTION
  sidump reads MPEG-TS files and prints the PSI/SI tables they carry.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// sidump prints the PSI/SI tables of MPEG-TS files.
//
// Usage:
//
//	sidump [flags] file.ts...
//
// Inputs are scanned concurrently. Settings may also be given in a YAML
// config file, which flags override.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/dvbsi/container/mts/psi/desc"
	"github.com/ausocean/dvbsi/device/file"
	"github.com/ausocean/dvbsi/scan"
	"github.com/ausocean/dvbsi/scan/config"
)

// Current software version.
const version = "v0.3.0"

// Logging configuration.
const (
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Warning
	logSuppress  = true
)

// flagKeys maps command line flags to the config variables they set.
var flagKeys = map[string]string{
	"crc":       config.KeyCheckCRC,
	"follow":    config.KeyFollowPMT,
	"log":       config.KeyLogPath,
	"loop":      config.KeyLoop,
	"limit":     config.KeyPacketLimit,
	"max-nodes": config.KeyMaxDescriptors,
	"pids":      config.KeyPIDs,
	"suppress":  config.KeySuppress,
	"v":         config.KeyLogging,
}

func main() {
	showVersion := flag.Bool("version", false, "show version")
	configPath := flag.String("config", "", "path of YAML config file")
	flag.Bool("crc", false, "verify section CRC-32")
	flag.Bool("follow", true, "scan PMT PIDs announced by the PAT")
	flag.String("log", "", "path of rotated log file")
	flag.Bool("loop", false, "loop input files; use with -limit")
	flag.Int("limit", 0, "stop each input after this many packets")
	logTables := flag.Bool("log-tables", false, "send tables to the log instead of stdout")
	flag.Int("max-nodes", 0, "limit on live decoded nodes per input")
	flag.String("pids", "", "comma separated extra PIDs to scan")
	flag.Bool("suppress", logSuppress, "suppress repeated log messages")
	flag.String("v", "Warning", "log level (Debug, Info, Warning, Error, Fatal)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	log := logging.New(logVerbosity, os.Stderr, logSuppress)
	cfg := config.Config{Logger: log, LogLevel: logVerbosity, FollowPMT: true, Suppress: logSuppress}
	if *configPath != "" {
		err := cfg.LoadFile(*configPath)
		if err != nil {
			log.Fatal("could not load config", "error", err.Error())
		}
	}

	// Flags given on the command line override the config file.
	vars := make(map[string]string)
	flag.Visit(func(f *flag.Flag) {
		if k, ok := flagKeys[f.Name]; ok {
			vars[k] = f.Value.String()
		}
	})
	cfg.Update(vars)
	cfg.Inputs = append(cfg.Inputs, flag.Args()...)
	err := cfg.Validate()
	if err != nil {
		log.Fatal("invalid config", "error", err.Error())
	}

	log = newLogger(cfg)
	cfg.Logger = log
	log.Info("starting sidump", "version", version, "inputs", len(cfg.Inputs))

	if len(cfg.Inputs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: sidump [flags] file.ts...")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if cfg.Loop && cfg.PacketLimit == 0 {
		log.Warning("looping inputs without a packet limit, scanning until interrupted")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var out io.Writer = os.Stdout
	if *logTables {
		out = nil
	}
	err = run(ctx, cfg, out)
	if err != nil {
		log.Error("scan failed", "error", err.Error())
		os.Exit(1)
	}
}

// newLogger returns a logger writing to stderr and, if a log path is
// configured, to a rotated log file.
func newLogger(cfg config.Config) logging.Logger {
	var w io.Writer = os.Stderr
	if cfg.LogPath != "" {
		fileLog := &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackup,
			MaxAge:     logMaxAge,
		}
		w = io.MultiWriter(os.Stderr, fileLog)
	}
	return logging.New(cfg.LogLevel, w, cfg.Suppress)
}

// run scans each input of cfg concurrently and writes the tables found to
// out, one input at a time. If out is nil the tables are logged instead.
func run(ctx context.Context, cfg config.Config, out io.Writer) error {
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for _, path := range cfg.Inputs {
		g.Go(func() error {
			var r reporter
			var buf bytes.Buffer
			if out == nil {
				r = desc.NewLogReporter(cfg.Logger)
			} else {
				r = desc.NewWriterReporter(&buf)
			}
			err := dump(ctx, cfg, path, r)
			if err != nil {
				return errors.Wrapf(err, "could not scan %s", path)
			}
			if out == nil {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			_, err = buf.WriteTo(out)
			return err
		})
	}
	return g.Wait()
}

// reporter is a desc.Reporter that may have failed to write.
type reporter interface {
	desc.Reporter
	Err() error
}

// dump scans the input at path and prints its tables to r.
func dump(ctx context.Context, cfg config.Config, path string, r reporter) error {
	c := cfg
	c.Inputs = []string{path}

	src := file.New(cfg.Logger)
	err := src.Set(c)
	if err != nil {
		return errors.Wrap(err, "could not set source")
	}
	cfg.Logger.Debug("reading input", "source", src.Name(), "path", src.Path())
	err = src.Start()
	if err != nil {
		return errors.Wrap(err, "could not start source")
	}
	defer src.Stop()

	s, err := scan.NewScanner(c)
	if err != nil {
		return errors.Wrap(err, "could not create scanner")
	}
	defer s.Close()

	err = s.Scan(ctx, src)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	st := s.Stats()
	cfg.Logger.Info("scanned input", "path", src.Path(), "packets", st.Packets, "sections", st.Sections,
		"errors", st.Errors, "warnings", st.Warnings, "tables", len(s.Tables()), "pending", s.Pending())

	r.Printf(0, "%s: %d tables", path, len(s.Tables()))
	s.Print(r)
	if p := s.Pending(); p != 0 {
		r.Printf(0, "%s: %d incomplete tables", path, p)
	}
	return r.Err()
}
