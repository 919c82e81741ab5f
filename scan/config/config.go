/*
NAME
  config.go

DESCRIPTION
  config.go provides the Config struct used to configure a scan, along with
  methods for updating, validating and loading it.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config provides the configuration of a transport stream scan.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config provides the parameters of a scan. Default values for these fields
// are applied by Validate.
type Config struct {
	// Logger holds an implementation of the Logger interface as defined in
	// the logging package. This must be set for Update, Validate and Load to
	// report problems.
	Logger logging.Logger

	LogLevel int8   // LogLevel is the logging verbosity.
	LogPath  string // LogPath is the path of a rotated log file; none if empty.
	Suppress bool   // Suppress holds logger suppression state.

	// Inputs are the paths of the transport stream files to scan.
	Inputs []string

	// PIDs are scanned for sections in addition to the well known SI PIDs.
	PIDs []uint16

	CheckCRC  bool // CheckCRC drops and rejects sections with a bad CRC-32.
	FollowPMT bool // FollowPMT scans the PMT PIDs announced by the PAT.

	// MaxDescriptors bounds the number of live nodes (descriptors, entries and
	// tables) a scan may hold. Zero means no bound.
	MaxDescriptors int

	Loop bool // Loop restarts file inputs at end of file.

	// PacketLimit is the number of packets read before a scan stops. Zero
	// means the whole input is read. A looping input needs a limit to end.
	PacketLimit int
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values, converting into correct type, and then
// sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

// LoadFile reads the YAML file at path and applies it using Load.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "could not open config file")
	}
	defer f.Close()
	return c.Load(f)
}

// Load reads a YAML mapping of variable names to values from r and applies it
// using Update. Sequence values are joined with commas, so that
//
//	Inputs: [a.ts, b.ts]
//
// is equivalent to the variable Inputs having the value "a.ts,b.ts".
func (c *Config) Load(r io.Reader) error {
	var m map[string]interface{}
	err := yaml.NewDecoder(r).Decode(&m)
	if err != nil && err != io.EOF {
		return errors.Wrap(err, "could not decode config")
	}

	vars := make(map[string]string, len(m))
	for k, v := range m {
		switch v := v.(type) {
		case nil:
			vars[k] = ""
		case []interface{}:
			s := make([]string, len(v))
			for i, e := range v {
				s[i] = fmt.Sprint(e)
			}
			vars[k] = strings.Join(s, ",")
		case map[string]interface{}:
			return errors.Errorf("unexpected mapping for config variable %s", k)
		default:
			vars[k] = fmt.Sprint(v)
		}
	}
	c.Update(vars)
	return nil
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
