package mscfb

import (
	"fmt"

	"github.com/asalih/go-msgcfb/mapi"
)

// loadNamedProperties decodes the named property storage below the root. A
// container without one, such as a plain OLE document, has no named
// properties and is not an error.
func (c *CompoundFile) loadNamedProperties() (*mapi.NamedProperties, error) {
	children, err := c.Directory.Children(ROOT_STREAM_ID)
	if err != nil {
		return nil, err
	}

	storage := NO_STREAM
	for _, id := range children {
		if c.Directory.Entries[id].Kind == KindNamedPropertiesMapping {
			storage = id
			break
		}
	}
	if storage == NO_STREAM {
		return nil, nil
	}

	streams, err := c.Directory.Children(storage)
	if err != nil {
		return nil, err
	}

	named := &mapi.NamedProperties{
		Strings: make(map[uint32]string),
	}
	found := map[string]bool{}

	for _, id := range streams {
		entry := c.Directory.Entries[id]
		if entry.Err != nil || !entry.IsStream() {
			continue
		}

		data, err := c.Content(id)
		if err != nil {
			c.diag.warn(err)
			continue
		}

		switch entry.Name {
		case mapi.GUIDStreamName:
			named.GUIDs, err = mapi.ParseGUIDStream(data)
		case mapi.EntryStreamName:
			named.Entries, err = mapi.ParseEntryStream(data)
		case mapi.StringStreamName:
			named.Strings, err = mapi.ParseStringStream(data)
		default:
			var mapping mapi.NameMapping
			mapping, err = mapi.ParseMappingStream(entry.Name, data)
			named.Mappings = append(named.Mappings, mapping)
		}
		if err != nil {
			c.diag.warn(&EntryError{Entry: id, Err: err})
		}
		found[entry.Name] = true
	}

	for _, name := range []string{mapi.GUIDStreamName, mapi.EntryStreamName, mapi.StringStreamName} {
		if !found[name] {
			return named, &EntryError{Entry: storage, Err: fmt.Errorf("named property stream %v is missing: %w", name, ErrStructural)}
		}
	}

	c.opts.logger.Debug("named properties",
		"guids", len(named.GUIDs),
		"entries", len(named.Entries),
		"strings", len(named.Strings),
		"mappings", len(named.Mappings))

	return named, nil
}

// NamedProperties returns the decoded named property storage.
func (c *CompoundFile) NamedProperties() (*mapi.NamedProperties, error) {
	if c.namedErr != nil {
		return c.named, c.namedErr
	}
	if c.named == nil {
		return nil, fmt.Errorf("no %v storage: %w", NAMEID_STORAGE_NAME, mapi.ErrNameNotFound)
	}
	return c.named, nil
}

// ResolveNamed resolves a property id of the named range (0x8000 and up).
func (c *CompoundFile) ResolveNamed(id uint16) (mapi.NamedProperty, error) {
	named, err := c.NamedProperties()
	if named == nil {
		return mapi.NamedProperty{}, err
	}
	return named.Resolve(id)
}

func (c *CompoundFile) resolver() *mapi.Resolver {
	return mapi.NewResolver(c.opts.tags, c.named)
}
