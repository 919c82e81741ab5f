/*
NAME
  parser.go

DESCRIPTION
  parser.go provides parsing of descriptor loops into descriptor chains.

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

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

// Parser decodes descriptor loops. A Parser is used for a single table
// section decode and is not safe for concurrent use.
type Parser struct {
	Log   logging.Logger // May be nil.
	Tally *Tally         // May be nil.

	// Warnings holds the non-fatal conditions met while parsing, such as
	// spurious trailing bytes or invalid BCD digits.
	Warnings []error
}

// Warn records a non-fatal decode condition.
func (p *Parser) Warn(err error) {
	p.Warnings = append(p.Warnings, err)
	if p.Log != nil {
		p.Log.Warning("descriptor decode warning", "error", err.Error())
	}
}

// Parse decodes the descriptor loop held in the first n bytes of b. Each
// {tag, length, payload} record is decoded through the registry and appended
// to the returned chain in the order found. A record whose declared length
// runs past n gives a *TruncatedError and nothing is retained.
func (p *Parser) Parse(b []byte, n int) (Chain, error) {
	if n > len(b) {
		return nil, truncated("descriptor loop", n, len(b))
	}

	var c Chain
	i := 0
	for i < n {
		if i+HeaderLen > n {
			p.Warn(&SpuriousError{What: "descriptor loop", N: n - i})
			break
		}
		h := Header{Tag: b[i], Length: b[i+1]}
		end := i + HeaderLen + int(h.Length)
		if end > n {
			c.Free(p.Tally)
			return nil, truncated(fmt.Sprintf("descriptor %#02x", h.Tag), end-i, n-i)
		}

		d, err := p.decode(h, b[i+HeaderLen:end])
		if err != nil {
			c.Free(p.Tally)
			return nil, errors.Wrapf(err, "could not decode %s descriptor", Name(h.Tag))
		}
		c = append(c, d)
		i = end
	}

	if p.Log != nil {
		p.Log.Debug("parsed descriptor loop", "length", n, "descriptors", len(c))
	}
	return c, nil
}

// decode allocates a node for one descriptor and runs its handler's init.
func (p *Parser) decode(h Header, b []byte) (Descriptor, error) {
	err := p.Tally.Alloc(1)
	if err != nil {
		return nil, err
	}
	d, err := Lookup(h.Tag).Init(p, h, b)
	if err != nil {
		p.Tally.Release(1)
		return nil, err
	}
	return d, nil
}

// store accounts for one block of variable length payload storage.
func (p *Parser) store() error { return p.Tally.Alloc(1) }

// Chain is an ordered sequence of descriptors, in the order they appeared in
// the section(s) they were decoded from.
type Chain []Descriptor

// Append adds the descriptors of o to the tail of c.
func (c *Chain) Append(o Chain) { *c = append(*c, o...) }

// Find returns the first descriptor with the given tag, or nil.
func (c Chain) Find(tag byte) Descriptor {
	for _, d := range c {
		if d.Head().Tag == tag {
			return d
		}
	}
	return nil
}

// Print renders every descriptor of c through its handler.
func (c Chain) Print(r Reporter, indent int) {
	for _, d := range c {
		h := d.Head()
		r.Printf(indent, "descriptor %s (%#02x), length %d", Name(h.Tag), h.Tag, h.Length)
		Lookup(h.Tag).Print(r, indent+1, d)
	}
}

// Free releases every descriptor of c, and the storage each owns, and empties
// c. Calling Free on an empty chain does nothing.
func (c *Chain) Free(t *Tally) {
	for _, d := range *c {
		if f := Lookup(d.Head().Tag).Free; f != nil {
			f(t, d)
		}
		t.Release(1)
	}
	*c = nil
}
