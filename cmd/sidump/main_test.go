/*
NAME
  main_test.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/dvbsi/container/mts"
	"github.com/ausocean/dvbsi/container/mts/psi"
	"github.com/ausocean/dvbsi/scan/config"
)

// patFile writes a transport stream holding a single PAT to a temporary file.
func patFile(t *testing.T, name string) string {
	h := psi.Header{
		TableID:       psi.PATID,
		Syntax:        true,
		SectionLength: psi.HeaderLen - 3 + 4 + psi.CRCSize,
		ID:            1,
		CurrentNext:   true,
		Reserved:      0x0f,
	}
	sec := psi.AppendCRC(append(h.Bytes(), 0x00, 0x01, 0xf0, 0x00))

	pkt := bytes.Repeat([]byte{0xff}, mts.PacketSize)
	copy(pkt, []byte{mts.SyncByte, 0x40, 0x00, 0x10, 0x00})
	copy(pkt[5:], sec)

	path := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, pkt, 0o644)
	if err != nil {
		t.Fatalf("could not write input: %v", err)
	}
	return path
}

func TestRun(t *testing.T) {
	a := patFile(t, "a.ts")
	b := patFile(t, "b.ts")
	cfg := config.Config{
		Logger:   (*logging.TestLogger)(t),
		Inputs:   []string{a, b},
		CheckCRC: true,
	}

	var out bytes.Buffer
	err := run(context.Background(), cfg, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	for _, want := range []string{a + ": 1 tables", b + ": 1 tables", "PAT:", "PMT PID 0x1000"} {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
}

func TestRunLogTables(t *testing.T) {
	a := patFile(t, "a.ts")
	var log bytes.Buffer
	cfg := config.Config{
		Logger: logging.New(logging.Info, &log, false),
		Inputs: []string{a},
	}

	err := run(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := log.String()
	for _, want := range []string{"1 tables", "PAT:", "PMT PID 0x1000", "scanned input"} {
		if !strings.Contains(got, want) {
			t.Errorf("log does not contain %q:\n%s", want, got)
		}
	}
}

func TestRunMissingInput(t *testing.T) {
	cfg := config.Config{
		Logger: (*logging.TestLogger)(t),
		Inputs: []string{filepath.Join(t.TempDir(), "missing.ts")},
	}
	err := run(context.Background(), cfg, &bytes.Buffer{})
	if err == nil {
		t.Error("expected error for missing input")
	}
}
