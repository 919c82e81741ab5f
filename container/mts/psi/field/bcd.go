/*
NAME
  bcd.go

DESCRIPTION
  bcd.go provides binary-coded decimal decoding and the DVB time formats built
  on it.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package field

import (
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidBCD is returned, alongside a best-effort value, when a BCD field
// contains a nibble outside 0-9. It is a soft error; callers are expected to
// report it and carry on with the returned value.
var ErrInvalidBCD = errors.New("invalid BCD digit")

// Protocol multipliers applied after BCD (or binary) decode of frequency
// bearing descriptor fields.
const (
	CableFrequencyMul       = 100 // Cable frequency, Hz.
	SatelliteFrequencyMul   = 10  // Satellite frequency, kHz.
	SymbolRateMul           = 100 // Satellite and cable symbol rate, symbols/s.
	TerrestrialFrequencyMul = 10  // Terrestrial and T2 centre frequency, Hz.
)

// BCD decodes the 8 nibble BCD value v. See BCDN.
func BCD(v uint32) (uint32, error) {
	return BCDN(v, 8)
}

// BCDN decodes the low digits nibbles of v as a BCD number, most significant
// nibble first. A nibble greater than 9 contributes its binary value in that
// decimal position and ErrInvalidBCD is returned with the result.
func BCDN(v uint32, digits int) (uint32, error) {
	var (
		res uint32
		bad bool
	)
	for i := digits - 1; i >= 0; i-- {
		d := (v >> (uint(i) * 4)) & 0xf
		if d > 9 {
			bad = true
		}
		res = res*10 + d
	}
	if bad {
		return res, errors.Wrapf(ErrInvalidBCD, "value %#x", v)
	}
	return res, nil
}

// bcd2 decodes a single BCD octet.
func bcd2(b byte) (int, error) {
	v, err := BCDN(uint32(b), 2)
	return int(v), err
}

// MJDTime decodes the 40 bit DVB UTC time: a 16 bit Modified Julian Date
// followed by hours, minutes and seconds as six BCD digits. b must hold at
// least 5 bytes. An invalid BCD digit gives ErrInvalidBCD alongside the best
// value available.
func MJDTime(b []byte) (time.Time, error) {
	mjd := float64(Uint16(b))

	// Conversion from ETSI EN 300 468 annex C.
	yp := int((mjd - 15078.2) / 365.25)
	mp := int((mjd - 14956.1 - float64(int(float64(yp)*365.25))) / 30.6001)
	day := int(mjd) - 14956 - int(float64(yp)*365.25) - int(float64(mp)*30.6001)
	k := 0
	if mp == 14 || mp == 15 {
		k = 1
	}
	year := 1900 + yp + k
	month := mp - 1 - k*12

	h, errH := bcd2(b[2])
	m, errM := bcd2(b[3])
	s, errS := bcd2(b[4])
	t := time.Date(year, time.Month(month), day, h, m, s, 0, time.UTC)
	return t, firstErr(errH, errM, errS)
}

// BCDDuration decodes a six digit BCD hhmmss duration from the first 3
// bytes of b.
func BCDDuration(b []byte) (time.Duration, error) {
	h, errH := bcd2(b[0])
	m, errM := bcd2(b[1])
	s, errS := bcd2(b[2])
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
	return d, firstErr(errH, errM, errS)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
