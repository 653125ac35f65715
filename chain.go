package mscfb

// ChainWalker lazily follows a sector chain. It is single use: start a new
// walk for every traversal.
//
//	w := fat.Chain(start)
//	for w.Next() {
//		use(w.Sector())
//	}
//	if err := w.Err(); err != nil { ... }
//
// The walk fails instead of looping when an index leaves the addressable
// range or a sector is visited twice, so it always ends after at most limit
// steps.
type ChainWalker struct {
	table string
	start uint32
	limit int
	next  func(uint32) (uint32, error)

	current uint32
	started bool
	done    bool
	seen    map[uint32]bool
	err     error
}

func newChainWalker(table string, start uint32, limit int, next func(uint32) (uint32, error)) *ChainWalker {
	return &ChainWalker{
		table: table,
		start: start,
		limit: limit,
		next:  next,
		seen:  make(map[uint32]bool),
	}
}

// Next advances to the following sector and reports whether there is one.
func (w *ChainWalker) Next() bool {
	if w.done {
		return false
	}

	id := w.start
	if w.started {
		var err error
		id, err = w.next(w.current)
		if err != nil {
			return w.fail(err)
		}
	}
	w.started = true

	if id == END_OF_CHAIN {
		w.done = true
		return false
	}
	if id > MAX_REGULAR_SECTOR {
		return w.fail(sectorErr(w.table, w.current, "chain reaches reserved value 0x%08X", id))
	}
	if id >= uint32(w.limit) {
		return w.fail(sectorErr(w.table, id, "chain index out of range, limit is %v", w.limit))
	}
	if w.seen[id] {
		return w.fail(sectorErr(w.table, id, "chain contains a cycle after %v sectors", len(w.seen)))
	}

	w.seen[id] = true
	w.current = id
	return true
}

func (w *ChainWalker) fail(err error) bool {
	w.err = err
	w.done = true
	return false
}

// Sector returns the sector the walker is positioned on.
func (w *ChainWalker) Sector() uint32 {
	return w.current
}

// Steps returns the number of sectors visited so far.
func (w *ChainWalker) Steps() int {
	return len(w.seen)
}

// Err returns the error that stopped the walk, if any.
func (w *ChainWalker) Err() error {
	return w.err
}

// All drains the walker into a slice.
func (w *ChainWalker) All() ([]uint32, error) {
	ids := make([]uint32, 0)
	for w.Next() {
		ids = append(ids, w.Sector())
	}
	if w.err != nil {
		return nil, w.err
	}
	return ids, nil
}
