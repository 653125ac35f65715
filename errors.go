package mscfb

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrNotContainerFormat is returned when the header signature does not match.
	ErrNotContainerFormat = errors.New("not a compound file")
	// ErrIO wraps failures of the underlying reader.
	ErrIO = errors.New("compound file read error")
	// ErrUnknownStorageType marks a directory entry with an object type byte
	// outside unknown/storage/stream/root.
	ErrUnknownStorageType = errors.New("unknown storage type")
	// ErrStructural covers chain cycles, out of range sector indices and
	// allocation tables that disagree with each other.
	ErrStructural = errors.New("structural inconsistency")
)

// SectorError reports a structural problem at a specific sector of one of the
// allocation tables.
type SectorError struct {
	Table  string
	Sector uint32
	Err    error
}

func (e *SectorError) Error() string {
	return fmt.Sprintf("%s sector %d: %v", e.Table, e.Sector, e.Err)
}

func (e *SectorError) Unwrap() error {
	return e.Err
}

// EntryError ties an error to a directory entry index.
type EntryError struct {
	Entry uint32
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("directory entry %d: %v", e.Entry, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

func sectorErr(table string, sector uint32, format string, args ...interface{}) error {
	return &SectorError{
		Table:  table,
		Sector: sector,
		Err:    fmt.Errorf(format+": %w", append(args, ErrStructural)...),
	}
}

// Diagnostics collects the non-fatal problems found while decoding. Every
// lenient decision taken in permissive mode ends up here.
type Diagnostics struct {
	logger   *slog.Logger
	warnings []error
}

func newDiagnostics(logger *slog.Logger) *Diagnostics {
	return &Diagnostics{logger: logger}
}

func (d *Diagnostics) warn(err error) {
	if d == nil {
		return
	}
	d.warnings = append(d.warnings, err)
	if d.logger != nil {
		d.logger.Warn("compound file", "error", err)
	}
}

// Warnings returns the recorded problems in the order they were found.
func (d *Diagnostics) Warnings() []error {
	if d == nil {
		return nil
	}
	out := make([]error, len(d.warnings))
	copy(out, d.warnings)
	return out
}

// Len returns the number of recorded problems.
func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}
	return len(d.warnings)
}

// check turns a validation failure into an error in strict mode and into a
// recorded warning otherwise.
func (d *Diagnostics) check(v Validation, err error) error {
	if v.IsStrict() {
		return err
	}
	d.warn(err)
	return nil
}
