/*
NAME
  desc.go

DESCRIPTION
  desc.go provides the descriptor header, the Descriptor interface and the
  registry mapping descriptor tags to their init, print and free operations.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package desc provides decoding of the tagged, variable length descriptors
// carried in MPEG-TS SI/PSI tables, and of the descriptor loops holding them.
package desc

// HeaderLen is the length of the tag and length prefix of a descriptor.
const HeaderLen = 2

// Descriptor tags.
const (
	TagRegistration         = 0x05
	TagCA                   = 0x09
	TagLanguage             = 0x0a
	TagNetworkName          = 0x40
	TagServiceList          = 0x41
	TagSatelliteDelivery    = 0x43
	TagCableDelivery        = 0x44
	TagService              = 0x48
	TagShortEvent           = 0x4d
	TagStreamIdentifier     = 0x52
	TagCAIdentifier         = 0x53
	TagTerrestrialDelivery  = 0x5a
	TagPrivateDataSpecifier = 0x5f
	TagFrequencyList        = 0x62
	TagExtension            = 0x7f
	TagLogicalChannel       = 0x83
	TagATSCServiceLocation  = 0xa1
	TagISDBTSInformation    = 0xcd
	TagISDBPartialReception = 0xfb
	ExtensionTagT2Delivery  = 0x04
)

// Header is the prefix common to all descriptors.
type Header struct {
	Tag    byte // Descriptor tag.
	Length byte // Payload length, not counting the header.
}

// Head returns h, so that any descriptor embedding a Header satisfies
// Descriptor.
func (h Header) Head() Header { return h }

// Descriptor is a decoded descriptor record. The concrete type depends on the
// tag; tags without a decoder give an *Opaque.
type Descriptor interface {
	Head() Header
}

// InitFunc decodes the payload b of a descriptor with header h. len(b) is
// always h.Length.
type InitFunc func(p *Parser, h Header, b []byte) (Descriptor, error)

// PrintFunc renders d to r at the given indentation.
type PrintFunc func(r Reporter, indent int, d Descriptor)

// FreeFunc releases the payload storage that the matching InitFunc allocated
// for d. It must not touch anything else.
type FreeFunc func(t *Tally, d Descriptor)

// Handler holds the operations for one descriptor tag.
type Handler struct {
	Name  string
	Init  InitFunc
	Print PrintFunc
	Free  FreeFunc
}

// registry maps every tag to its handler. It is filled by init and read-only
// afterwards.
var registry [256]Handler

var handlers = map[byte]Handler{
	TagRegistration:         {Name: "registration", Init: newRegistration, Print: printRegistration, Free: freeRegistration},
	TagCA:                   {Name: "conditional access", Init: newCA, Print: printCA, Free: freeCA},
	TagLanguage:             {Name: "ISO 639 language", Init: newLanguage, Print: printLanguage, Free: freeLanguage},
	TagNetworkName:          {Name: "network name", Init: newNetworkName, Print: printNetworkName},
	TagServiceList:          {Name: "service list", Init: newServiceList, Print: printServiceList, Free: freeServiceList},
	TagSatelliteDelivery:    {Name: "satellite delivery system", Init: newSatelliteDelivery, Print: printSatelliteDelivery},
	TagCableDelivery:        {Name: "cable delivery system", Init: newCableDelivery, Print: printCableDelivery},
	TagService:              {Name: "service", Init: newService, Print: printService},
	TagShortEvent:           {Name: "short event", Init: newShortEvent, Print: printShortEvent},
	TagStreamIdentifier:     {Name: "stream identifier", Init: newStreamIdentifier, Print: printStreamIdentifier},
	TagCAIdentifier:         {Name: "CA identifier", Init: newCAIdentifier, Print: printCAIdentifier, Free: freeCAIdentifier},
	TagTerrestrialDelivery:  {Name: "terrestrial delivery system", Init: newTerrestrialDelivery, Print: printTerrestrialDelivery},
	TagPrivateDataSpecifier: {Name: "private data specifier", Init: newPrivateDataSpecifier, Print: printPrivateDataSpecifier},
	TagFrequencyList:        {Name: "frequency list", Init: newFrequencyList, Print: printFrequencyList, Free: freeFrequencyList},
	TagExtension:            {Name: "extension", Init: newExtension, Print: printExtension, Free: freeExtension},
	TagLogicalChannel:       {Name: "logical channel number", Init: newLogicalChannel, Print: printLogicalChannel, Free: freeLogicalChannel},
	TagATSCServiceLocation:  {Name: "ATSC service location", Init: newServiceLocation, Print: printServiceLocation, Free: freeServiceLocation},
	TagISDBTSInformation:    {Name: "ISDB TS information", Init: newTSInformation, Print: printTSInformation, Free: freeTSInformation},
	TagISDBPartialReception: {Name: "ISDB partial reception", Init: newPartialReception, Print: printPartialReception, Free: freePartialReception},
}

var opaqueHandler = Handler{Name: "unknown", Init: newOpaque, Print: printOpaque, Free: freeOpaque}

func init() {
	for i := range registry {
		h, ok := handlers[byte(i)]
		if !ok {
			h = opaqueHandler
		}
		registry[i] = h
	}
}

// Lookup returns the handler for tag. Tags without a dedicated decoder get the
// opaque handler, which keeps a copy of the payload.
func Lookup(tag byte) Handler { return registry[tag] }

// Name returns the name of the descriptor kind for tag.
func Name(tag byte) string { return registry[tag].Name }
