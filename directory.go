package mscfb

import (
	"fmt"
)

// Directory owns every directory entry in one flat slice. Parent, child and
// sibling relations are indices into it.
type Directory struct {
	Entries        []*DirEntry
	DirStartSector uint32

	parents []uint32
	diag    *Diagnostics
}

// ParseDirectory reads the directory chain and rebuilds the parent map.
func ParseDirectory(fat *FAT, header *Header, validation Validation, diag *Diagnostics) (*Directory, error) {
	sectorLen := fat.SectorLen()
	perSector := sectorLen / DIR_ENTRY_LEN

	dir := &Directory{
		Entries:        make([]*DirEntry, 0),
		DirStartSector: header.FirstDirSector,
		diag:           diag,
	}

	walker := fat.Chain(header.FirstDirSector)
	for walker.Next() {
		buf, err := fat.sectors.ReadSector(walker.Sector())
		if err != nil {
			return nil, err
		}

		for i := 0; i < perSector; i++ {
			index := uint32(len(dir.Entries))
			entry, err := ReadDirEntry(buf[i*DIR_ENTRY_LEN:(i+1)*DIR_ENTRY_LEN], index, header.Version)
			if err != nil {
				if entry == nil {
					entry = &DirEntry{
						Index:          index,
						LeftSibling:    NO_STREAM,
						RightSibling:   NO_STREAM,
						Child:          NO_STREAM,
						StartingSector: END_OF_CHAIN,
						Classification: Classification{Kind: KindInvalid, ValueIndex: -1},
						Raw:            append([]byte(nil), buf[i*DIR_ENTRY_LEN:(i+1)*DIR_ENTRY_LEN]...),
						Err:            err,
					}
				}
				diag.warn(err)
			}
			dir.Entries = append(dir.Entries, entry)
		}
	}
	if err := walker.Err(); err != nil {
		return nil, fmt.Errorf("directory chain: %w", err)
	}

	if header.Version == V4 && header.NumDirSectors != uint32(walker.Steps()) {
		err := fmt.Errorf("incorrect number of directory sectors (header says %v, chain has %v): %w",
			header.NumDirSectors, walker.Steps(), ErrStructural)
		if err := diag.check(validation, err); err != nil {
			return nil, err
		}
	}

	if err := dir.validateRoot(); err != nil {
		return nil, err
	}

	dir.BuildParentMap()
	dir.reportUnexpected()

	return dir, nil
}

func (d *Directory) validateRoot() error {
	if len(d.Entries) == 0 {
		return fmt.Errorf("directory has no entries: %w", ErrStructural)
	}

	root := d.Entries[ROOT_STREAM_ID]
	if root.Err != nil {
		return fmt.Errorf("root entry: %w", root.Err)
	}
	if root.ObjType != Root {
		return &EntryError{Entry: ROOT_STREAM_ID, Err: fmt.Errorf("root entry has object type %v: %w", root.ObjType, ErrStructural)}
	}
	return nil
}

func (d *Directory) RootDirEntry() *DirEntry {
	return d.Entries[ROOT_STREAM_ID]
}

// Entry returns the entry at index.
func (d *Directory) Entry(index uint32) (*DirEntry, error) {
	if index >= uint32(len(d.Entries)) {
		return nil, &EntryError{Entry: index, Err: fmt.Errorf("index out of range, directory has %v entries: %w", len(d.Entries), ErrStructural)}
	}
	return d.Entries[index], nil
}

// Children walks the sibling tree below parent in order (left sibling, self,
// right sibling) and returns the child indices.
func (d *Directory) Children(parent uint32) ([]uint32, error) {
	entry, err := d.Entry(parent)
	if err != nil {
		return nil, err
	}
	if entry.Err != nil {
		return nil, entry.Err
	}

	children := make([]uint32, 0)
	seen := make(map[uint32]bool)
	stack := make([]uint32, 0)

	current := entry.Child
	for current != NO_STREAM || len(stack) > 0 {
		for current != NO_STREAM {
			if current == ROOT_STREAM_ID || current >= uint32(len(d.Entries)) {
				return nil, &EntryError{Entry: parent, Err: fmt.Errorf("sibling tree refers to entry %v: %w", current, ErrStructural)}
			}
			if seen[current] {
				return nil, &EntryError{Entry: parent, Err: fmt.Errorf("sibling tree visits entry %v twice: %w", current, ErrStructural)}
			}
			seen[current] = true
			stack = append(stack, current)
			current = d.Entries[current].LeftSibling
		}

		current = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		children = append(children, current)
		current = d.Entries[current].RightSibling
	}

	return children, nil
}

// BuildParentMap walks the tree from the root once and records the parent of
// every reachable entry. Problems below a storage are recorded and only that
// storage's subtree is dropped.
func (d *Directory) BuildParentMap() {
	d.parents = make([]uint32, len(d.Entries))
	for i := range d.parents {
		d.parents[i] = NO_STREAM
	}

	stack := []uint32{ROOT_STREAM_ID}
	for len(stack) > 0 {
		parent := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := d.Children(parent)
		if err != nil {
			d.diag.warn(err)
			continue
		}

		for _, child := range children {
			if d.parents[child] != NO_STREAM {
				d.diag.warn(&EntryError{Entry: child, Err: fmt.Errorf("entry is listed under %v and %v: %w", d.parents[child], parent, ErrStructural)})
				continue
			}
			d.parents[child] = parent

			entry := d.Entries[child]
			if entry.Err == nil && entry.IsStorage() && entry.Child != NO_STREAM {
				stack = append(stack, child)
			}
		}
	}
}

// Parent returns the parent of index, or NO_STREAM for the root and for
// entries that are not reachable from it.
func (d *Directory) Parent(index uint32) uint32 {
	if index >= uint32(len(d.parents)) {
		return NO_STREAM
	}
	return d.parents[index]
}

// IsOrphan reports whether a non-root entry is unreachable from the root.
func (d *Directory) IsOrphan(index uint32) bool {
	return index != ROOT_STREAM_ID && d.Parent(index) == NO_STREAM
}

// reportUnexpected records names a message writer would not produce and
// sibling links that break the name ordering. None of them stop decoding.
func (d *Directory) reportUnexpected() {
	for _, entry := range d.Entries {
		if entry.Err != nil || d.IsOrphan(entry.Index) {
			continue
		}
		if entry.Kind == KindGeneric {
			d.diag.warn(&EntryError{Entry: entry.Index, Err: fmt.Errorf("unexpected entry name %q", entry.Name)})
		}
		if err := ValidateName(entry.Name); err != nil {
			d.diag.warn(&EntryError{Entry: entry.Index, Err: err})
		}
	}
	for _, err := range d.CheckOrdering() {
		d.diag.warn(err)
	}
}

// Find looks up a child of parent by name. It searches the sibling tree
// using the CFB name ordering first and falls back to a scan for writers
// that do not keep the tree ordered.
func (d *Directory) Find(parent uint32, name string) (uint32, error) {
	entry, err := d.Entry(parent)
	if err != nil {
		return NO_STREAM, err
	}

	current := entry.Child
	for steps := 0; current != NO_STREAM && current < uint32(len(d.Entries)) && steps < len(d.Entries); steps++ {
		dirEntry := d.Entries[current]
		order := CompareNames(name, dirEntry.Name)
		if order == OrderEqual {
			return current, nil
		}

		switch order {
		case OrderLess:
			current = dirEntry.LeftSibling
		case OrderGreater:
			current = dirEntry.RightSibling
		}
	}

	children, err := d.Children(parent)
	if err != nil {
		return NO_STREAM, err
	}
	for _, child := range children {
		if CompareNames(name, d.Entries[child].Name) == OrderEqual {
			return child, nil
		}
	}

	return NO_STREAM, fmt.Errorf("stream not found: %v", name)
}

func (d *Directory) StreamIDForNameChain(names []string) (uint32, error) {
	streamId := ROOT_STREAM_ID

	for _, name := range names {
		next, err := d.Find(streamId, name)
		if err != nil {
			return NO_STREAM, err
		}
		streamId = next
	}

	return streamId, nil
}

// CheckOrdering reports sibling links that violate the CFB name ordering.
func (d *Directory) CheckOrdering() []error {
	errs := make([]error, 0)
	for _, entry := range d.Entries {
		if entry.Err != nil || d.IsOrphan(entry.Index) {
			continue
		}
		if left := entry.LeftSibling; left < uint32(len(d.Entries)) && CompareNames(d.Entries[left].Name, entry.Name) != OrderLess {
			errs = append(errs, &EntryError{Entry: entry.Index, Err: fmt.Errorf("name ordering, %v vs %v", d.Entries[left].Name, entry.Name)})
		}
		if right := entry.RightSibling; right < uint32(len(d.Entries)) && CompareNames(entry.Name, d.Entries[right].Name) != OrderLess {
			errs = append(errs, &EntryError{Entry: entry.Index, Err: fmt.Errorf("name ordering, %v vs %v", entry.Name, d.Entries[right].Name)})
		}
	}
	return errs
}
