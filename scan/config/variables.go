/*
NAME
  variables.go

DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and finally, a validation function to check the validity of the
  corresponding field value in the Config.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ausocean/utils/logging"
)

// Config map Keys.
const (
	KeyCheckCRC       = "CheckCRC"
	KeyFollowPMT      = "FollowPMT"
	KeyInputs         = "Inputs"
	KeyLogging        = "logging"
	KeyLogPath        = "LogPath"
	KeyLoop           = "Loop"
	KeyMaxDescriptors = "MaxDescriptors"
	KeyPacketLimit    = "PacketLimit"
	KeyPIDs           = "PIDs"
	KeySuppress       = "Suppress"
)

// Config map parameter types.
const (
	typeString = "string"
	typeUint   = "uint"
	typeBool   = "bool"
)

// Default variable values.
const (
	defaultVerbosity      = logging.Warning
	defaultMaxDescriptors = 0
	defaultPacketLimit    = 0
)

// maxPID is the largest 13 bit packet identifier.
const maxPID = 0x1fff

// Variables describes the variables that can be used for scan control.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, and a function for validating the value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyCheckCRC,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.CheckCRC = parseBool(KeyCheckCRC, v, c) },
	},
	{
		Name:   KeyFollowPMT,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.FollowPMT = parseBool(KeyFollowPMT, v, c) },
	},
	{
		Name:   KeyInputs,
		Type:   typeString,
		Update: func(c *Config, v string) { c.Inputs = splitList(v) },
		Validate: func(c *Config) {
			inputs := c.Inputs[:0]
			for _, in := range c.Inputs {
				if in == "" {
					c.Logger.Warning("ignoring empty input path")
					continue
				}
				inputs = append(inputs, in)
			}
			if len(inputs) == 0 {
				inputs = nil
			}
			c.Inputs = inputs
		},
	},
	{
		Name: KeyLogging,
		Type: "enum:Debug,Info,Warning,Error,Fatal",
		Update: func(c *Config, v string) {
			switch v {
			case "Debug":
				c.LogLevel = logging.Debug
			case "Info":
				c.LogLevel = logging.Info
			case "Warning":
				c.LogLevel = logging.Warning
			case "Error":
				c.LogLevel = logging.Error
			case "Fatal":
				c.LogLevel = logging.Fatal
			default:
				c.Logger.Warning("invalid Logging param", "value", v)
			}
		},
		Validate: func(c *Config) {
			switch c.LogLevel {
			case logging.Debug, logging.Info, logging.Warning, logging.Error, logging.Fatal:
			default:
				c.LogInvalidField("LogLevel", defaultVerbosity)
				c.LogLevel = defaultVerbosity
			}
		},
	},
	{
		Name:   KeyLogPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.LogPath = v },
	},
	{
		Name:   KeyLoop,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Loop = parseBool(KeyLoop, v, c) },
	},
	{
		Name:   KeyMaxDescriptors,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MaxDescriptors = parseInt(KeyMaxDescriptors, v, c) },
		Validate: func(c *Config) {
			c.MaxDescriptors = notNegative(KeyMaxDescriptors, c.MaxDescriptors, c, defaultMaxDescriptors)
		},
	},
	{
		Name:   KeyPacketLimit,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.PacketLimit = parseInt(KeyPacketLimit, v, c) },
		Validate: func(c *Config) {
			c.PacketLimit = notNegative(KeyPacketLimit, c.PacketLimit, c, defaultPacketLimit)
		},
	},
	{
		Name: KeyPIDs,
		Type: typeString,
		Update: func(c *Config, v string) {
			c.PIDs = nil
			for _, s := range splitList(v) {
				pid, err := strconv.ParseUint(s, 0, 16)
				if err != nil {
					c.Logger.Warning("invalid PIDs param", "value", s)
					continue
				}
				c.PIDs = append(c.PIDs, uint16(pid))
			}
		},
		Validate: func(c *Config) {
			var pids []uint16
			seen := make(map[uint16]bool)
			for _, pid := range c.PIDs {
				if pid > maxPID {
					c.Logger.Warning("ignoring out of range PID", "pid", pid)
					continue
				}
				if seen[pid] {
					continue
				}
				seen[pid] = true
				pids = append(pids, pid)
			}
			c.PIDs = pids
		},
	},
	{
		Name:   KeySuppress,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Suppress = parseBool(KeySuppress, v, c) },
	},
}

func parseInt(n, v string, c *Config) int {
	_v, err := strconv.Atoi(v)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected integer for param %s", n), "value", v)
	}
	return _v
}

func parseBool(n, v string, c *Config) (b bool) {
	switch strings.ToLower(v) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		c.Logger.Warning(fmt.Sprintf("expect bool for param %s", n), "value", v)
	}
	return
}

// splitList splits a comma separated list, trimming space around elements.
func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	s := strings.Split(v, ",")
	for i := range s {
		s[i] = strings.TrimSpace(s[i])
	}
	return s
}

func notNegative(n string, v int, c *Config, def int) int {
	if v < 0 {
		c.LogInvalidField(n, def)
		return def
	}
	return v
}
