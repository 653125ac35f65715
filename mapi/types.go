// Package mapi decodes the MAPI property layer of Outlook message files:
// the fixed width records of a properties stream, the named property
// mapping streams and the values stored in property streams.
package mapi

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedPropertyType marks a record whose type code is not known.
	// The record is still returned, with its payload as an opaque integer.
	ErrUnrecognizedPropertyType = errors.New("unrecognized property type")
	// ErrNameNotFound is returned when neither the tag table nor the named
	// properties know a property id.
	ErrNameNotFound = errors.New("property name not found")
	// ErrMalformed reports a stream whose length does not fit its record size.
	ErrMalformed = errors.New("malformed property stream")
	// ErrNotString is returned when string decoding is asked for a non string type.
	ErrNotString = errors.New("not a string property type")
)

// NotFound is the name reported for properties that could not be resolved.
const NotFound = "(not found)"

// Property data types, [MS-OXCDATA] 2.11.1.
const (
	PtypUnspecified  uint16 = 0x0000
	PtypNull         uint16 = 0x0001
	PtypInteger16    uint16 = 0x0002
	PtypInteger32    uint16 = 0x0003
	PtypFloating32   uint16 = 0x0004
	PtypFloating64   uint16 = 0x0005
	PtypCurrency     uint16 = 0x0006
	PtypFloatingTime uint16 = 0x0007
	PtypErrorCode    uint16 = 0x000A
	PtypBoolean      uint16 = 0x000B
	PtypObject       uint16 = 0x000D
	PtypInteger64    uint16 = 0x0014
	PtypString8      uint16 = 0x001E
	PtypString       uint16 = 0x001F
	PtypTime         uint16 = 0x0040
	PtypGUID         uint16 = 0x0048
	PtypBinary       uint16 = 0x0102

	MultipleFlag uint16 = 0x1000
)

var typeNames = map[uint16]string{
	PtypInteger16:    "Integer16",
	PtypInteger32:    "Integer32",
	PtypFloating32:   "Floating32",
	PtypFloating64:   "Floating64",
	PtypCurrency:     "Currency",
	PtypFloatingTime: "FloatingTime",
	PtypErrorCode:    "ErrorCode",
	PtypBoolean:      "Boolean",
	PtypObject:       "Object",
	PtypInteger64:    "Integer64",
	PtypString8:      "String8",
	PtypString:       "String",
	PtypTime:         "Time",
	PtypGUID:         "GUID",
	PtypBinary:       "Binary",
}

// TypeName returns the display name of a property type code, "Unrecognized"
// for codes this package does not decode.
func TypeName(propType uint16) string {
	if propType&MultipleFlag != 0 {
		if name, ok := typeNames[propType&^MultipleFlag]; ok {
			return "Multiple" + name
		}
		return "Unrecognized"
	}
	if name, ok := typeNames[propType]; ok {
		return name
	}
	return "Unrecognized"
}

// IsVariableWidth reports whether values of the type are stored in their own
// stream, with only the length kept in the properties stream.
func IsVariableWidth(propType uint16) bool {
	if propType&MultipleFlag != 0 {
		_, ok := typeNames[propType&^MultipleFlag]
		return ok
	}
	switch propType {
	case PtypString, PtypString8, PtypBinary, PtypObject, PtypGUID:
		return true
	}
	return false
}

// Tag composes a property tag from its id and type.
func Tag(id, propType uint16) uint32 {
	return uint32(id)<<16 | uint32(propType)
}

// SplitTag returns the id and type halves of a property tag.
func SplitTag(tag uint32) (uint16, uint16) {
	return uint16(tag >> 16), uint16(tag)
}

// FormatTag renders a tag as 0xIIIITTTT.
func FormatTag(tag uint32) string {
	return fmt.Sprintf("0x%08X", tag)
}
