package mscfb

import (
	"regexp"
	"strconv"
)

// Kind classifies a directory entry by the role its name gives it inside an
// Outlook message.
type Kind int

const (
	KindGeneric Kind = iota
	KindRoot
	KindNamedPropertiesMapping
	KindStringStream
	KindProperties
	KindRecipient
	KindAttachment
	KindUnallocated
	KindInvalid
)

var kindNames = [...]string{
	KindGeneric:                "Generic",
	KindRoot:                   "Root",
	KindNamedPropertiesMapping: "NamedPropertiesMapping",
	KindStringStream:           "StringStream",
	KindProperties:             "Properties",
	KindRecipient:              "Recipient",
	KindAttachment:             "Attachment",
	KindUnallocated:            "Unallocated",
	KindInvalid:                "Invalid",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

var (
	substgPattern = regexp.MustCompile(`^__substg1\.0_([0-9A-Fa-f]{4})([0-9A-Fa-f]{4})(?:-([0-9A-Fa-f]{8}))?$`)
	recipPattern  = regexp.MustCompile(`^__recip_version1\.0_#([0-9A-Fa-f]{8})$`)
	attachPattern = regexp.MustCompile(`^__attach_version1\.0_#([0-9A-Fa-f]{8})$`)
)

// Classification is the per-kind payload computed once from an entry name.
type Classification struct {
	Kind Kind

	// PropID and PropType are set for string streams.
	PropID   uint16
	PropType uint16
	// ValueIndex is the element index of a multi-valued property stream, or -1.
	ValueIndex int

	// Index is the recipient or attachment number.
	Index uint32
}

// Classify maps an entry name to its kind.
func Classify(name string) Classification {
	c := Classification{Kind: KindGeneric, ValueIndex: -1}

	switch name {
	case "":
		c.Kind = KindUnallocated
		return c
	case ROOT_DIR_NAME:
		c.Kind = KindRoot
		return c
	case NAMEID_STORAGE_NAME:
		c.Kind = KindNamedPropertiesMapping
		return c
	case PROPERTIES_STREAM_NAME:
		c.Kind = KindProperties
		return c
	}

	if m := substgPattern.FindStringSubmatch(name); m != nil {
		c.Kind = KindStringStream
		c.PropID = uint16(parseHex(m[1]))
		c.PropType = uint16(parseHex(m[2]))
		if m[3] != "" {
			c.ValueIndex = int(parseHex(m[3]))
		}
		return c
	}
	if m := recipPattern.FindStringSubmatch(name); m != nil {
		c.Kind = KindRecipient
		c.Index = uint32(parseHex(m[1]))
		return c
	}
	if m := attachPattern.FindStringSubmatch(name); m != nil {
		c.Kind = KindAttachment
		c.Index = uint32(parseHex(m[1]))
		return c
	}

	return c
}

func parseHex(s string) uint64 {
	v, _ := strconv.ParseUint(s, 16, 32)
	return v
}

// SubstgName builds the stream name holding the value of a property.
func SubstgName(propID, propType uint16) string {
	return SUBSTG_PREFIX + hex4(propID) + hex4(propType)
}

func hex4(v uint16) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{digits[v>>12&0xf], digits[v>>8&0xf], digits[v>>4&0xf], digits[v&0xf]})
}
