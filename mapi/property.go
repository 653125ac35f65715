package mapi

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

const (
	// RecordLen is the size of one property record in a properties stream.
	RecordLen = 16

	namedIndexMask = 0x7fff
)

// Property is one decoded record of a properties stream. Which value field
// is meaningful depends on Type; variable width types only carry Size and
// Reserved, their content lives in a sibling stream.
type Property struct {
	Tag   uint32
	ID    uint16
	Type  uint16
	Flags uint32
	Name  string
	// Offset of the record within the properties stream.
	Offset int

	Bool  bool
	Int   int64
	Float float64
	Time  time.Time

	Size     uint32
	Reserved uint32

	// Raw is the 8 byte payload as an integer.
	Raw uint64
	Err error
}

// TypeName returns the display name of the property's type.
func (p Property) TypeName() string {
	return TypeName(p.Type)
}

// IsVariableWidth reports whether the value is stored in a sibling stream.
func (p Property) IsVariableWidth() bool {
	return IsVariableWidth(p.Type)
}

// Value returns the decoded fixed width value, or the size for variable
// width types.
func (p Property) Value() interface{} {
	switch {
	case p.Err != nil:
		return p.Raw
	case p.IsVariableWidth():
		return p.Size
	}
	switch p.Type {
	case PtypBoolean:
		return p.Bool
	case PtypFloating32, PtypFloating64:
		return p.Float
	case PtypTime:
		return p.Time
	}
	return p.Int
}

func (p Property) String() string {
	return fmt.Sprintf("%v %v (%v) = %v", FormatTag(p.Tag), p.Name, p.TypeName(), p.Value())
}

// Resolver names property ids, first through a tag table and then, for ids in
// the named range, through the named property storage.
type Resolver struct {
	Tags  TagNamer
	Named *NamedProperties
}

// NewResolver returns a Resolver over the given tables. A nil TagNamer uses
// WellKnownTags.
func NewResolver(tags TagNamer, named *NamedProperties) *Resolver {
	if tags == nil {
		tags = WellKnownTags
	}
	return &Resolver{Tags: tags, Named: named}
}

// Name resolves a property id. Ids that cannot be resolved are reported as
// NotFound together with ErrNameNotFound.
func (r *Resolver) Name(id uint16) (string, error) {
	if r == nil {
		return NotFound, fmt.Errorf("property id 0x%04X: %w", id, ErrNameNotFound)
	}
	if r.Tags != nil {
		if name, ok := r.Tags.TagName(id); ok {
			return name, nil
		}
	}
	if id&NamedPropertyBase != 0 && r.Named != nil {
		name, err := r.Named.PropertyName(id & namedIndexMask)
		if err == nil {
			return name, nil
		}
		return NotFound, err
	}
	return NotFound, fmt.Errorf("property id 0x%04X: %w", id, ErrNameNotFound)
}

// ParseProperties decodes the 16 byte records of a properties stream,
// starting skip bytes in. Unknown types do not stop decoding; they carry
// ErrUnrecognizedPropertyType in Property.Err. A trailing partial record is
// reported as ErrMalformed along with every complete record.
func ParseProperties(b []byte, skip int, r *Resolver) ([]Property, error) {
	if skip < 0 || skip > len(b) {
		return nil, fmt.Errorf("header skip %v beyond stream of %v bytes: %w", skip, len(b), ErrMalformed)
	}

	props := make([]Property, 0, (len(b)-skip)/RecordLen)
	off := skip
	for ; off+RecordLen <= len(b); off += RecordLen {
		p := parseRecord(b[off : off+RecordLen])
		p.Offset = off
		p.Name, _ = r.Name(p.ID)
		props = append(props, p)
	}

	if off != len(b) {
		return props, fmt.Errorf("%v trailing bytes after the last property record: %w", len(b)-off, ErrMalformed)
	}
	return props, nil
}

func parseRecord(b []byte) Property {
	p := Property{
		Tag:   binary.LittleEndian.Uint32(b[0:4]),
		Flags: binary.LittleEndian.Uint32(b[4:8]),
		Raw:   binary.LittleEndian.Uint64(b[8:16]),
	}
	p.ID, p.Type = SplitTag(p.Tag)
	payload := b[8:16]

	if IsVariableWidth(p.Type) {
		p.Size = binary.LittleEndian.Uint32(payload[0:4])
		p.Reserved = binary.LittleEndian.Uint32(payload[4:8])
		return p
	}

	switch p.Type {
	case PtypBoolean:
		p.Bool = payload[0] != 0
	case PtypInteger16:
		p.Int = int64(int16(binary.LittleEndian.Uint16(payload)))
	case PtypInteger32, PtypErrorCode:
		p.Int = int64(int32(binary.LittleEndian.Uint32(payload)))
	case PtypInteger64, PtypCurrency:
		p.Int = int64(p.Raw)
	case PtypFloating32:
		p.Float = float64(math.Float32frombits(binary.LittleEndian.Uint32(payload)))
	case PtypFloating64, PtypFloatingTime:
		p.Float = math.Float64frombits(p.Raw)
	case PtypTime:
		p.Time = FileTime(p.Raw)
	default:
		p.Err = fmt.Errorf("type 0x%04X of tag %v: %w", p.Type, FormatTag(p.Tag), ErrUnrecognizedPropertyType)
	}
	return p
}
