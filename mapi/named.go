package mapi

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Well known property sets. GUID indices 1 and 2 always refer to them; the
// GUID stream starts at index 3.
var (
	PSMAPI          = uuid.MustParse("00020328-0000-0000-c000-000000000046")
	PSPublicStrings = uuid.MustParse("00020329-0000-0000-c000-000000000046")
)

// Stream names inside the named property storage.
const (
	GUIDStreamName   = "__substg1.0_00020102"
	EntryStreamName  = "__substg1.0_00030102"
	StringStreamName = "__substg1.0_00040102"
)

const (
	guidRecordLen  = 16
	entryRecordLen = 8

	// NamedPropertyBase is the first property id assigned to named properties.
	NamedPropertyBase uint16 = 0x8000
)

// NamedEntry is one record of the entry stream, or of a name to id mapping
// stream.
type NamedEntry struct {
	// NameID is the numeric name, or the byte offset of the name in the
	// string stream when IsString is set.
	NameID        uint32
	PropertyIndex uint16
	GUIDIndex     uint16
	IsString      bool
}

func parseNamedEntry(b []byte) NamedEntry {
	info := binary.LittleEndian.Uint32(b[4:8])
	return NamedEntry{
		NameID:        binary.LittleEndian.Uint32(b[0:4]),
		IsString:      info&1 == 1,
		GUIDIndex:     uint16(info&0xffff) >> 1,
		PropertyIndex: uint16(info >> 16),
	}
}

// NameMapping is the content of one of the name to id mapping streams.
type NameMapping struct {
	Stream  string
	Entries []NamedEntry
}

// NamedProperties is the decoded named property storage.
type NamedProperties struct {
	GUIDs    []uuid.UUID
	Entries  []NamedEntry
	Strings  map[uint32]string
	Mappings []NameMapping
}

// ParseGUIDStream decodes the GUID stream into 16 byte GUIDs.
func ParseGUIDStream(b []byte) ([]uuid.UUID, error) {
	guids := make([]uuid.UUID, 0, len(b)/guidRecordLen)
	for off := 0; off+guidRecordLen <= len(b); off += guidRecordLen {
		var raw [16]byte
		copy(raw[:], b[off:off+guidRecordLen])
		guids = append(guids, GUIDFromBytes(raw))
	}
	if len(b)%guidRecordLen != 0 {
		return guids, fmt.Errorf("GUID stream is %v bytes, not a multiple of %v: %w", len(b), guidRecordLen, ErrMalformed)
	}
	return guids, nil
}

// ParseEntryStream decodes 8 byte entry records. Mapping streams share the
// layout.
func ParseEntryStream(b []byte) ([]NamedEntry, error) {
	entries := make([]NamedEntry, 0, len(b)/entryRecordLen)
	for off := 0; off+entryRecordLen <= len(b); off += entryRecordLen {
		entries = append(entries, parseNamedEntry(b[off:off+entryRecordLen]))
	}
	if len(b)%entryRecordLen != 0 {
		return entries, fmt.Errorf("entry stream is %v bytes, not a multiple of %v: %w", len(b), entryRecordLen, ErrMalformed)
	}
	return entries, nil
}

// ParseStringStream decodes the length prefixed UTF-16 names, keyed by the
// offset of their length field.
func ParseStringStream(b []byte) (map[uint32]string, error) {
	strings := make(map[uint32]string)

	off := 0
	for off+4 <= len(b) {
		length := int(binary.LittleEndian.Uint32(b[off : off+4]))
		start := off + 4
		if length < 0 || start+length > len(b) {
			return strings, fmt.Errorf("string at offset %v runs past the end of the stream: %w", off, ErrMalformed)
		}

		s, err := DecodeUTF16(b[start : start+length])
		if err != nil {
			return strings, fmt.Errorf("string at offset %v: %v: %w", off, err, ErrMalformed)
		}
		strings[uint32(off)] = s

		off = start + length
		off += (4 - off%4) % 4
	}

	return strings, nil
}

// ParseMappingStream decodes one of the name to id mapping streams.
func ParseMappingStream(name string, b []byte) (NameMapping, error) {
	entries, err := ParseEntryStream(b)
	return NameMapping{Stream: name, Entries: entries}, err
}

// GUIDFromBytes converts a GUID as stored on disk, with its first three
// fields little endian, to a uuid.UUID.
func GUIDFromBytes(b [16]byte) uuid.UUID {
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = b[3], b[2], b[1], b[0]
	u[4], u[5] = b[5], b[4]
	u[6], u[7] = b[7], b[6]
	copy(u[8:], b[8:])
	return u
}

// IndexToGUID resolves a GUID index of an entry record.
func (n *NamedProperties) IndexToGUID(index uint16) (uuid.UUID, error) {
	switch index {
	case 1:
		return PSMAPI, nil
	case 2:
		return PSPublicStrings, nil
	}
	if index < 3 || int(index-3) >= len(n.GUIDs) {
		return uuid.Nil, fmt.Errorf("GUID index %v out of range (%v GUIDs): %w", index, len(n.GUIDs), ErrNameNotFound)
	}
	return n.GUIDs[index-3], nil
}

// Entry returns the entry for a named property index, the low 15 bits of a
// named property id.
func (n *NamedProperties) Entry(propertyIndex uint16) (NamedEntry, error) {
	if int(propertyIndex) < len(n.Entries) && n.Entries[propertyIndex].PropertyIndex == propertyIndex {
		return n.Entries[propertyIndex], nil
	}
	for _, e := range n.Entries {
		if e.PropertyIndex == propertyIndex {
			return e, nil
		}
	}
	return NamedEntry{}, fmt.Errorf("named property index %v: %w", propertyIndex, ErrNameNotFound)
}

// PropertyName returns the name of a named property: its string name when
// the entry is string named, otherwise the numeric id as 0xNNNN.
func (n *NamedProperties) PropertyName(propertyIndex uint16) (string, error) {
	e, err := n.Entry(propertyIndex)
	if err != nil {
		return "", err
	}
	return n.nameOf(e)
}

func (n *NamedProperties) nameOf(e NamedEntry) (string, error) {
	if !e.IsString {
		return fmt.Sprintf("0x%04X", e.NameID), nil
	}
	s, ok := n.Strings[e.NameID]
	if !ok {
		return "", fmt.Errorf("string offset %v: %w", e.NameID, ErrNameNotFound)
	}
	return s, nil
}

// NamedProperty is a fully resolved named property.
type NamedProperty struct {
	ID        uint16
	GUID      uuid.UUID
	IsString  bool
	Name      string
	NumericID uint32
}

// Resolve resolves a property id in the named range (high bit set).
func (n *NamedProperties) Resolve(id uint16) (NamedProperty, error) {
	if id < NamedPropertyBase {
		return NamedProperty{}, fmt.Errorf("property id 0x%04X is not a named property: %w", id, ErrNameNotFound)
	}

	e, err := n.Entry(id & 0x7fff)
	if err != nil {
		return NamedProperty{}, err
	}

	guid, err := n.IndexToGUID(e.GUIDIndex)
	if err != nil {
		return NamedProperty{}, err
	}

	name, err := n.nameOf(e)
	if err != nil {
		return NamedProperty{}, err
	}

	p := NamedProperty{ID: id, GUID: guid, IsString: e.IsString, Name: name}
	if !e.IsString {
		p.NumericID = e.NameID
	}
	return p, nil
}

// All resolves every entry of the entry stream, in property id order.
// Entries that cannot be resolved are skipped.
func (n *NamedProperties) All() []NamedProperty {
	out := make([]NamedProperty, 0, len(n.Entries))
	for _, e := range n.Entries {
		p, err := n.Resolve(NamedPropertyBase + e.PropertyIndex)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// StringOffsets returns the offsets of the string table in ascending order.
func (n *NamedProperties) StringOffsets() []uint32 {
	offsets := make([]uint32, 0, len(n.Strings))
	for off := range n.Strings {
		offsets = append(offsets, off)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	return offsets
}
