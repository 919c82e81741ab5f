/*
NAME
  file.go

DESCRIPTION
  file.go provides an implementation of the Source interface for files
  containing MPEG-TS packets.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package file provides a Source that reads MPEG-TS packets from a file.
package file

import (
	"io"
	"os"
	"sync"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/dvbsi/device"
	"github.com/ausocean/dvbsi/scan/config"
)

// Errors returned by File.
var (
	ErrNotSet  = errors.New("file source has not been set with config")
	ErrNoInput = errors.New("no input path")
)

// File is an implementation of the device.Source interface for a transport
// stream file. A looping File restarts from the beginning at end of file.
type File struct {
	f         *os.File
	path      string
	loop      bool
	loops     int
	isRunning bool
	log       logging.Logger
	set       bool
	mu        sync.Mutex
}

// New returns a new File that must be configured with Set before Start.
func New(l logging.Logger) *File { return &File{log: l} }

// NewWith returns a new File reading path, i.e. the Set method does not need
// to be called.
func NewWith(l logging.Logger, path string, loop bool) *File {
	return &File{log: l, path: path, loop: loop, set: true}
}

// Name returns the name of the source.
func (m *File) Name() string { return "File" }

// Path returns the path of the file being read.
func (m *File) Path() string { return m.path }

// Set configures the File from the first of c.Inputs and c.Loop.
func (m *File) Set(c config.Config) error {
	var errs device.MultiError
	if len(c.Inputs) == 0 || c.Inputs[0] == "" {
		errs = append(errs, ErrNoInput)
	} else {
		fi, err := os.Stat(c.Inputs[0])
		switch {
		case err != nil:
			errs = append(errs, errors.Wrap(err, "could not stat input"))
		case fi.IsDir():
			errs = append(errs, errors.Errorf("input %s is a directory", c.Inputs[0]))
		}
	}
	if errs != nil {
		return errs
	}
	m.path = c.Inputs[0]
	m.loop = c.Loop
	m.set = true
	return nil
}

// Start opens the file.
func (m *File) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return ErrNotSet
	}
	var err error
	m.f, err = os.Open(m.path)
	if err != nil {
		return errors.Wrap(err, "could not open transport stream file")
	}
	m.loops = 0
	m.isRunning = true
	return nil
}

// Stop closes the file such that any further reads will fail.
func (m *File) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.f == nil {
		return nil
	}
	err := m.f.Close()
	if err != nil {
		return err
	}
	m.f = nil
	m.isRunning = false
	return nil
}

// Read implements io.Reader. If Start has not been called, or Stop has since
// been called, device.ErrNotRunning is returned.
func (m *File) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.f == nil {
		return 0, device.ErrNotRunning
	}

	n, err := m.f.Read(p)
	if err != io.EOF || !m.loop || n != 0 {
		if err == io.EOF && n != 0 {
			err = nil
		}
		return n, err
	}

	m.loops++
	m.log.Info("looping input file", "path", m.path, "loops", m.loops)
	_, err = m.f.Seek(0, io.SeekStart)
	if err != nil {
		return 0, errors.Wrap(err, "could not seek to start of file for input loop")
	}

	// An empty file ends here rather than looping forever.
	return m.f.Read(p)
}

// Loops returns the number of times the file has been restarted.
func (m *File) Loops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loops
}

// IsRunning is used to determine if the File is running.
func (m *File) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.f != nil && m.isRunning
}
