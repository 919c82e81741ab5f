/*
NAME
  errors.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/ausocean/dvbsi/container/mts/psi/desc"
)

// Decode errors. ErrTruncated, ErrOutOfMemory and ErrSpuriousBytes are the
// values used by package desc, so a check against either package's value
// matches.
var (
	ErrInvalidMarker    = errors.New("invalid table id")
	ErrTruncated        = desc.ErrTruncated
	ErrOutOfMemory      = desc.ErrOutOfMemory
	ErrSpuriousBytes    = desc.ErrSpuriousBytes
	ErrInvalidCRC       = errors.New("section CRC mismatch")
	ErrUnsupportedTable = errors.New("unsupported table id")
)

// MarkerError reports a section whose table id does not belong to the table
// it was decoded into.
type MarkerError struct {
	Got  byte
	Want []byte
}

func (e *MarkerError) Error() string {
	if len(e.Want) == 1 {
		return fmt.Sprintf("invalid table id %#02x, want %#02x", e.Got, e.Want[0])
	}
	return fmt.Sprintf("invalid table id %#02x, want one of % x", e.Got, e.Want)
}

// Is allows errors.Is(err, ErrInvalidMarker).
func (e *MarkerError) Is(target error) bool { return target == ErrInvalidMarker }

func truncated(what string, want, have int) error {
	return &desc.TruncatedError{What: what, Want: want, Have: have}
}
