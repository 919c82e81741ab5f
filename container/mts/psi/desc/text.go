/*
NAME
  text.go

DESCRIPTION
  text.go provides Text, a DVB text field, and its decoding through the
  character table named by its leading selection bytes.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package desc

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// Character table selection bytes.
const (
	tableISO8859    = 0x10 // Followed by a 16 bit ISO/IEC 8859 part number.
	tableUCS2       = 0x11
	tableKSX1001    = 0x12
	tableGB2312     = 0x13
	tableBig5       = 0x14
	tableUTF8       = 0x15
	tableEncodingID = 0x1f // Followed by an encoding type id.
)

// iso8859 holds the decoders of the ISO/IEC 8859 parts, by part number.
// Part 11 (Thai) is served by its Windows superset; part 12 does not exist.
var iso8859 = map[int]encoding.Encoding{
	1:  charmap.ISO8859_1,
	2:  charmap.ISO8859_2,
	3:  charmap.ISO8859_3,
	4:  charmap.ISO8859_4,
	5:  charmap.ISO8859_5,
	6:  charmap.ISO8859_6,
	7:  charmap.ISO8859_7,
	8:  charmap.ISO8859_8,
	9:  charmap.ISO8859_9,
	10: charmap.ISO8859_10,
	11: charmap.Windows874,
	13: charmap.ISO8859_13,
	14: charmap.ISO8859_14,
	15: charmap.ISO8859_15,
	16: charmap.ISO8859_16,
}

// Text is a DVB text field as broadcast, including any leading character
// table selection bytes.
type Text string

// table returns the character table selected by the leading bytes of b,
// whether it is a one byte table, and the text following the selection bytes.
// A nil encoding is the default table.
func table(b []byte) (enc encoding.Encoding, single bool, text []byte) {
	if len(b) == 0 || b[0] >= 0x20 {
		return nil, true, b
	}
	switch sel := b[0]; {
	case sel >= 0x01 && sel <= 0x0b:
		return iso8859[int(sel)+4], true, b[1:]
	case sel == tableISO8859:
		if len(b) < 3 {
			return nil, true, nil
		}
		return iso8859[int(b[1])<<8|int(b[2])], true, b[3:]
	case sel == tableUCS2:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), false, b[1:]
	case sel == tableKSX1001:
		return korean.EUCKR, false, b[1:]
	case sel == tableGB2312:
		return simplifiedchinese.GBK, false, b[1:]
	case sel == tableBig5:
		return traditionalchinese.Big5, false, b[1:]
	case sel == tableUTF8:
		return unicode.UTF8, false, b[1:]
	case sel == tableEncodingID:
		if len(b) < 2 {
			return nil, true, nil
		}
		return nil, true, b[2:]
	default:
		return nil, true, b[1:]
	}
}

// String returns t decoded from its character table, without selection
// bytes. Control codes are dropped except the CR/LF code, which becomes a
// line break. The default table and unknown tables are decoded as ISO/IEC
// 8859-1, which agrees with the default table on all printable ASCII.
func (t Text) String() string {
	enc, single, b := table([]byte(t))
	if enc == nil {
		enc, single = charmap.ISO8859_1, true
	}
	if single {
		b = singleByteControls(b)
	}

	s, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return strings.Map(wideControl, string(s))
}

// singleByteControls removes the control codes 0x80 to 0x9f of a single byte
// table, replacing the CR/LF code 0x8a with a line feed.
func singleByteControls(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		switch {
		case c == 0x8a:
			out = append(out, '\n')
		case c >= 0x80 && c < 0xa0:
		default:
			out = append(out, c)
		}
	}
	return out
}

// wideControl maps the private use control codes of two byte and UTF-8
// text, U+E080 to U+E09F, as singleByteControls does their one byte forms.
func wideControl(r rune) rune {
	switch {
	case r == 0xe08a:
		return '\n'
	case r >= 0xe080 && r <= 0xe09f:
		return -1
	}
	return r
}
