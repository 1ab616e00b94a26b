// Package amf0 wires the internal/amf0 codec into the Format Registry as a
// worked example of a real wire protocol plugging into wire.Format. It is
// not itself part of the dispatch core — an embedding application registers
// it (or not) at startup alongside whatever other formats it needs.
package amf0

import (
	"fmt"

	"github.com/alxayo/go-arcade/internal/amf0"
	"github.com/alxayo/go-arcade/internal/wire"
)

// CommandMessage is the Message produced by Format for a successfully
// decoded AMF0 value sequence. AMF0 command payloads are conventionally a
// flat list of values: [commandName string, transactionID number, ...rest].
// CommandMessage preserves that shape without imposing further structure.
type CommandMessage struct {
	// Name is the command name, the first element of the decoded sequence.
	// If the sequence is empty or its first element is not a string, Name
	// is empty and Type() falls back to typeUnnamed.
	Name string

	// TransactionID is the second element, if present and numeric.
	TransactionID float64

	// Values holds every decoded AMF0 value, in order, including the name
	// and transaction id already surfaced above.
	Values []interface{}
}

// typeUnnamed is the logical Type() for a decoded AMF0 sequence whose first
// element is not a command name string.
const typeUnnamed = "amf0.unnamed"

// Type implements wire.Message.
func (m CommandMessage) Type() string {
	if m.Name == "" {
		return typeUnnamed
	}
	return m.Name
}

// minMarkerPeek is the number of leading bytes Verify inspects.
const minMarkerPeek = 1

// Format adapts the amf0 codec into a wire.Format. Verify performs a cheap,
// non-parsing check: the leading byte must be one of the markers this
// package's decoder understands. TryDecode fully decodes the packet as a
// sequence of AMF0 values via amf0.DecodeAll.
type Format struct{}

// New returns the AMF0 wire.Format.
func New() wire.Format { return Format{} }

// Name implements wire.Format.
func (Format) Name() string { return "amf0" }

// Verify implements wire.Format. It never calls into the decoder; it only
// checks that the packet is non-empty and begins with a marker byte this
// package knows how to decode.
func (Format) Verify(data []byte) bool {
	if len(data) < minMarkerPeek {
		return false
	}
	switch data[0] {
	case 0x00, 0x01, 0x02, 0x03, 0x05, 0x0A:
		return true
	default:
		return false
	}
}

// TryDecode implements wire.Format, delegating to amf0.DecodeAll.
func (Format) TryDecode(data []byte) (any, error) {
	return amf0.DecodeAll(data)
}

// Materialize implements wire.Format, turning a decoded value sequence into
// a CommandMessage.
func (Format) Materialize(decoded any) wire.Message {
	values, ok := decoded.([]interface{})
	if !ok {
		return CommandMessage{}
	}
	msg := CommandMessage{Values: values}
	if len(values) > 0 {
		if name, ok := values[0].(string); ok {
			msg.Name = name
		}
	}
	if len(values) > 1 {
		if txn, ok := values[1].(float64); ok {
			msg.TransactionID = txn
		}
	}
	return msg
}

// String renders m for logs.
func (m CommandMessage) String() string {
	return fmt.Sprintf("amf0.CommandMessage{Name: %q, TransactionID: %v, Values: %d}", m.Name, m.TransactionID, len(m.Values))
}
