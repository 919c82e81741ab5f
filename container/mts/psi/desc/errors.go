/*
NAME
  errors.go

DESCRIPTION
  errors.go defines the decode errors shared by descriptor and table parsing.

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

	"github.com/pkg/errors"
)

// Decode error sentinels. ErrTruncated and ErrOutOfMemory abort a decode;
// ErrSpuriousBytes is only ever reported as a warning.
var (
	ErrTruncated     = errors.New("truncated")
	ErrOutOfMemory   = errors.New("out of memory")
	ErrSpuriousBytes = errors.New("spurious trailing bytes")
)

// TruncatedError reports a declared length that runs past the bytes
// available to it.
type TruncatedError struct {
	What string // What was being decoded.
	Want int    // Bytes the declared length requires.
	Have int    // Bytes available.
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("%s truncated: need %d bytes, have %d", e.What, e.Want, e.Have)
}

// Is allows errors.Is(err, ErrTruncated).
func (e *TruncatedError) Is(target error) bool { return target == ErrTruncated }

// SpuriousError reports bytes left over after the last complete entry of a
// loop.
type SpuriousError struct {
	What string
	N    int
}

func (e *SpuriousError) Error() string {
	return fmt.Sprintf("%s has %d spurious bytes at the end", e.What, e.N)
}

// Is allows errors.Is(err, ErrSpuriousBytes).
func (e *SpuriousError) Is(target error) bool { return target == ErrSpuriousBytes }

// truncated is shorthand for a TruncatedError.
func truncated(what string, want, have int) error {
	return &TruncatedError{What: what, Want: want, Have: have}
}
