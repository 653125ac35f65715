package mscfb

import (
	"fmt"

	"github.com/asalih/go-msgcfb/mapi"
)

// embedded message storage inside an attachment
var embeddedMessageName = SubstgName(0x3701, mapi.PtypObject)

// PropertiesHeaderLen returns how many bytes precede the property records of
// the properties stream at index. It depends on the storage holding it: the
// message at the root, an embedded message, a recipient or an attachment.
func (c *CompoundFile) PropertiesHeaderLen(index uint32) (int, error) {
	parent := c.Directory.Parent(index)
	if parent == NO_STREAM {
		return 0, &EntryError{Entry: index, Err: fmt.Errorf("properties stream is not reachable from the root: %w", ErrStructural)}
	}
	if parent == ROOT_STREAM_ID {
		return PROPS_HEADER_TOP_LEVEL, nil
	}

	storage := c.Directory.Entries[parent]
	switch storage.Kind {
	case KindRecipient, KindAttachment:
		return PROPS_HEADER_CHILD, nil
	case KindStringStream:
		if storage.IsStorage() && storage.Name == embeddedMessageName {
			return PROPS_HEADER_EMBEDDED, nil
		}
	}
	return PROPS_HEADER_NONE, nil
}

// Properties decodes the properties stream at index. Records with unknown
// types are returned with Err set; they do not stop decoding.
func (c *CompoundFile) Properties(index uint32) ([]mapi.Property, error) {
	entry, err := c.dirEntry(index)
	if err != nil {
		return nil, err
	}
	if entry.Kind != KindProperties {
		return nil, &EntryError{Entry: index, Err: fmt.Errorf("%v is not a properties stream", entry.Name)}
	}

	skip, err := c.PropertiesHeaderLen(index)
	if err != nil {
		return nil, err
	}

	data, err := c.Content(index)
	if err != nil {
		return nil, err
	}
	if len(data) < skip {
		skip = len(data)
	}

	props, err := mapi.ParseProperties(data, skip, c.resolver())
	if err != nil {
		c.diag.warn(&EntryError{Entry: index, Err: err})
	}
	return props, nil
}

// PropertyValue reads the stream holding the value of a variable width
// property listed in the properties stream at index.
func (c *CompoundFile) PropertyValue(index uint32, prop mapi.Property) ([]byte, error) {
	if !prop.IsVariableWidth() {
		return nil, fmt.Errorf("%v is stored inline, not in a stream", mapi.FormatTag(prop.Tag))
	}

	parent := c.Directory.Parent(index)
	if parent == NO_STREAM {
		return nil, &EntryError{Entry: index, Err: fmt.Errorf("properties stream is not reachable from the root: %w", ErrStructural)}
	}

	id, err := c.Directory.Find(parent, SubstgName(prop.ID, prop.Type))
	if err != nil {
		return nil, err
	}
	return c.Content(id)
}

// PropertyString reads and decodes a String or String8 property value.
func (c *CompoundFile) PropertyString(index uint32, prop mapi.Property) (string, error) {
	data, err := c.PropertyValue(index, prop)
	if err != nil {
		return "", err
	}
	return mapi.DecodeString(data, prop.Type)
}
