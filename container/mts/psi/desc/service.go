/*
NAME
  service.go

DESCRIPTION
  service.go provides the DVB descriptors carrying names and text: network
  name, service and short event.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package desc

// lengthPrefixed reads a one byte length followed by that many bytes from the
// start of b, returning the text and the bytes after it.
func lengthPrefixed(what string, b []byte) (Text, []byte, error) {
	if len(b) < 1 {
		return "", nil, truncated(what, 1, 0)
	}
	n := int(b[0])
	if 1+n > len(b) {
		return "", nil, truncated(what, 1+n, len(b))
	}
	return Text(b[1 : 1+n]), b[1+n:], nil
}

// NetworkName is the DVB network name descriptor.
type NetworkName struct {
	Header
	Name Text
}

func newNetworkName(p *Parser, h Header, b []byte) (Descriptor, error) {
	return &NetworkName{Header: h, Name: Text(b)}, nil
}

func printNetworkName(r Reporter, indent int, d Descriptor) {
	r.Printf(indent, "network name: %s", d.(*NetworkName).Name)
}

// Service is the DVB service descriptor.
type Service struct {
	Header
	ServiceType byte
	Provider    Text
	Name        Text
}

func newService(p *Parser, h Header, b []byte) (Descriptor, error) {
	if len(b) < 1 {
		return nil, truncated("service descriptor", 1, len(b))
	}
	d := &Service{Header: h, ServiceType: b[0]}
	var err error
	d.Provider, b, err = lengthPrefixed("service provider name", b[1:])
	if err != nil {
		return nil, err
	}
	d.Name, b, err = lengthPrefixed("service name", b)
	if err != nil {
		return nil, err
	}
	if len(b) != 0 {
		p.Warn(&SpuriousError{What: "service descriptor", N: len(b)})
	}
	return d, nil
}

func printService(r Reporter, indent int, d Descriptor) {
	s := d.(*Service)
	r.Printf(indent, "service type: %#02x", s.ServiceType)
	r.Printf(indent, "provider: %s", s.Provider)
	r.Printf(indent, "name: %s", s.Name)
}

// ShortEvent is the DVB short event descriptor.
type ShortEvent struct {
	Header
	Language string
	Name     Text
	Text     Text
}

func newShortEvent(p *Parser, h Header, b []byte) (Descriptor, error) {
	if len(b) < 3 {
		return nil, truncated("short event descriptor", 3, len(b))
	}
	d := &ShortEvent{Header: h, Language: string(b[:3])}
	var err error
	d.Name, b, err = lengthPrefixed("event name", b[3:])
	if err != nil {
		return nil, err
	}
	d.Text, b, err = lengthPrefixed("event text", b)
	if err != nil {
		return nil, err
	}
	if len(b) != 0 {
		p.Warn(&SpuriousError{What: "short event descriptor", N: len(b)})
	}
	return d, nil
}

func printShortEvent(r Reporter, indent int, d Descriptor) {
	e := d.(*ShortEvent)
	r.Printf(indent, "language: %s", e.Language)
	r.Printf(indent, "name: %s", e.Name)
	r.Printf(indent, "text: %s", e.Text)
}
