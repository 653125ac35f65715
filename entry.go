package mscfb

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/asalih/go-msgcfb/mapi"
)

// Entry is the read only summary of a directory entry handed to callers.
type Entry struct {
	Index          uint32
	Name           string
	Path           string
	Kind           Kind
	ObjType        ObjectType
	CLSID          uuid.UUID
	StateBits      uint32
	CreationTime   time.Time
	ModifiedTime   time.Time
	StartingSector uint32
	StreamLen      uint64

	Left  uint32
	Right uint32
	Child uint32

	// PropID and PropType are set for property value streams.
	PropID   uint16
	PropType uint16
	// Number is the recipient or attachment number.
	Number uint32
}

func NewEntry(dirEntry *DirEntry, path string) *Entry {
	entry := Entry{
		Index:          dirEntry.Index,
		Name:           dirEntry.Name,
		Path:           path,
		Kind:           dirEntry.Kind,
		ObjType:        dirEntry.ObjType,
		CLSID:          dirEntry.CLSID,
		StateBits:      dirEntry.StateBits,
		CreationTime:   dirEntry.CreationTime,
		ModifiedTime:   dirEntry.ModifiedTime,
		StartingSector: dirEntry.StartingSector,
		StreamLen:      dirEntry.StreamSize,
		Left:           dirEntry.LeftSibling,
		Right:          dirEntry.RightSibling,
		Child:          dirEntry.Child,
		PropID:         dirEntry.PropID,
		PropType:       dirEntry.PropType,
	}
	if dirEntry.Kind == KindRecipient || dirEntry.Kind == KindAttachment {
		entry.Number = dirEntry.Classification.Index
	}

	return &entry
}

func (e *Entry) IsStream() bool {
	return e.ObjType == StreamObject
}

func (e *Entry) IsStorage() bool {
	return e.ObjType == Storage || e.ObjType == Root
}

func (e *Entry) IsRoot() bool {
	return e.ObjType == Root
}

// KeyValue is one line of a flattened description.
type KeyValue struct {
	Key   string
	Value string
}

func kv(key string, format string, args ...interface{}) KeyValue {
	return KeyValue{Key: key, Value: fmt.Sprintf(format, args...)}
}

func sectorString(id uint32) string {
	switch id {
	case END_OF_CHAIN:
		return "END_OF_CHAIN"
	case FREE_SECTOR:
		return "FREE"
	case FAT_SECTOR:
		return "FAT"
	case DIFAT_SECTOR:
		return "DIFAT"
	case INVALID_SECTOR:
		return "INVALID"
	}
	return fmt.Sprintf("%d", id)
}

func timeString(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339Nano)
}

// Describe flattens the entry into key/value pairs for display.
func (e *Entry) Describe() []KeyValue {
	out := []KeyValue{
		kv("Index", "%d", e.Index),
		kv("Name", "%s", e.Name),
		kv("Path", "%s", e.Path),
		kv("Kind", "%v", e.Kind),
		kv("Object type", "%v", e.ObjType),
		kv("Left sibling", "%s", sectorString(e.Left)),
		kv("Right sibling", "%s", sectorString(e.Right)),
		kv("Child", "%s", sectorString(e.Child)),
		kv("CLSID", "%v", e.CLSID),
		kv("State bits", "0x%08X", e.StateBits),
		kv("Creation time", "%s", timeString(e.CreationTime)),
		kv("Modified time", "%s", timeString(e.ModifiedTime)),
		kv("Starting sector", "%s", sectorString(e.StartingSector)),
		kv("Stream size", "%d", e.StreamLen),
	}

	switch e.Kind {
	case KindStringStream:
		out = append(out,
			kv("Property tag", "%s", mapi.FormatTag(mapi.Tag(e.PropID, e.PropType))),
			kv("Property type", "%s", mapi.TypeName(e.PropType)))
	case KindRecipient, KindAttachment:
		out = append(out, kv("Number", "%d", e.Number))
	}

	return out
}

// Describe returns the flattened description of the entry at index.
func (c *CompoundFile) Describe(index uint32) ([]KeyValue, error) {
	entry, err := c.Directory.Entry(index)
	if err != nil {
		return nil, err
	}

	desc := NewEntry(entry, c.pathOf(index)).Describe()
	if entry.Kind == KindStringStream {
		name, _ := c.resolver().Name(entry.PropID)
		desc = append(desc, kv("Property name", "%s", name))
	}
	if entry.Err != nil {
		desc = append(desc, kv("Error", "%v", entry.Err))
	}
	if c.Directory.IsOrphan(index) {
		desc = append(desc, kv("Orphan", "true"))
	}
	return desc, nil
}
