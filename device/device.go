/*
NAME
  device.go

DESCRIPTION
  device.go provides the Source interface implemented by transport stream
  inputs, and a software driven Pipe source.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package device provides an interface and implementations for inputs that
// can be started and stopped and from which MPEG-TS packets can be read.
package device

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/ausocean/dvbsi/scan/config"
)

// ErrNotRunning is returned by Read and Write on a source that has not been
// started.
var ErrNotRunning = errors.New("source has not been started")

// Source describes a configurable input from which MPEG-TS packets can be
// obtained. Source is an io.Reader.
type Source interface {
	io.Reader

	// Name returns the name of the Source.
	Name() string

	// Set allows for configuration of the Source using a Config struct. An
	// implementation should specify which fields it considers.
	Set(c config.Config) error

	// Start opens the Source, after which Read may be called.
	Start() error

	// Stop closes the Source. From this point reads will no longer succeed.
	Stop() error

	// IsRunning reports whether the Source has been started and not stopped.
	IsRunning() bool
}

// MultiError collects the errors found while validating the configuration of
// a Source.
type MultiError []error

func (me MultiError) Error() string {
	if len(me) == 0 {
		panic("device: invalid use of MultiError")
	}
	return fmt.Sprintf("%v", []error(me))
}

// Pipe is a Source whose packets are written to it by software. Pipe employs
// an io.Pipe, so every Write blocks until the bytes have been read.
type Pipe struct {
	isRunning bool
	reader    *io.PipeReader
	writer    *io.PipeWriter
}

// NewPipe returns a new Pipe.
func NewPipe() *Pipe { return &Pipe{} }

// Read reads packet bytes written to the pipe into b. After Stop, Read
// returns io.EOF once written bytes have been consumed.
func (p *Pipe) Read(b []byte) (int, error) {
	if p.reader == nil {
		return 0, ErrNotRunning
	}
	return p.reader.Read(b)
}

// Name returns "Pipe".
func (p *Pipe) Name() string { return "Pipe" }

// Set is a no-op; Pipe considers no configuration fields.
func (p *Pipe) Set(c config.Config) error { return nil }

// Start creates the underlying pipe.
func (p *Pipe) Start() error {
	p.isRunning = true
	p.reader, p.writer = io.Pipe()
	return nil
}

// Stop closes the writing side of the pipe, so that a reader sees io.EOF once
// any pending write has been consumed.
func (p *Pipe) Stop() error {
	if p.writer != nil {
		p.writer.Close()
	}
	p.isRunning = false
	return nil
}

// IsRunning reports whether Start has been called without a following Stop.
func (p *Pipe) IsRunning() bool { return p.isRunning }

// Write writes b to the writing side of the pipe.
func (p *Pipe) Write(b []byte) (int, error) {
	if !p.isRunning {
		return 0, ErrNotRunning
	}
	return p.writer.Write(b)
}
