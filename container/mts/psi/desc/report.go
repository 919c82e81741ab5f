/*
NAME
  report.go

DESCRIPTION
  report.go provides the sinks that decoded records are printed to.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package desc

import (
	"fmt"
	"io"
	"strings"

	"github.com/ausocean/utils/logging"
)

// Reporter receives the human readable rendering of decoded records, one line
// at a time.
type Reporter interface {
	Printf(indent int, format string, args ...interface{})
}

const indentUnit = "  "

// WriterReporter writes lines to an io.Writer.
type WriterReporter struct {
	w   io.Writer
	err error
}

// NewWriterReporter returns a Reporter writing to w.
func NewWriterReporter(w io.Writer) *WriterReporter { return &WriterReporter{w: w} }

// Printf implements Reporter. The first write error is kept and later lines
// are dropped.
func (r *WriterReporter) Printf(indent int, format string, args ...interface{}) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, "%s%s\n", strings.Repeat(indentUnit, indent), fmt.Sprintf(format, args...))
}

// Err returns the first write error, if any.
func (r *WriterReporter) Err() error { return r.err }

// LogReporter sends lines to a logger at info level.
type LogReporter struct {
	log logging.Logger
}

// NewLogReporter returns a Reporter logging to l.
func NewLogReporter(l logging.Logger) *LogReporter { return &LogReporter{log: l} }

// Printf implements Reporter.
func (r *LogReporter) Printf(indent int, format string, args ...interface{}) {
	r.log.Info(strings.Repeat(indentUnit, indent) + fmt.Sprintf(format, args...))
}

// Err returns nil, as logging does not report write errors.
func (r *LogReporter) Err() error { return nil }
