// Package memmap implements the paged byte-addressable register space shared
// by every transceiver standard this project emulates: a fixed 128-byte
// lower page that is always visible, plus a bank of installable 128-byte
// upper pages selected through a page-select byte that lives in the lower
// page itself.
//
// The storage of every installed page is kept materialized at all times;
// switching pages only changes which upper half is addressable at offsets
// 128..255. This matches the hardware being emulated and means page
// switches are O(1) with no copy, per the rationale in the governing spec.
package memmap

import (
	"errors"
	"fmt"
)

const (
	// LowerSize is the size in bytes of the always-visible lower page.
	LowerSize = 128
	// PageSize is the size in bytes of one upper page.
	PageSize = 128
	// AddressSpace is the total byte-addressable range of one device address.
	AddressSpace = LowerSize + PageSize
)

var (
	// ErrOutOfRange is returned when an access targets an offset at or beyond
	// 256, or an unselected/uninstalled page.
	ErrOutOfRange = errors.New("memmap: out of range")
	// ErrAccessDenied is returned by write() when the write touches an RO or
	// Reserved byte and the map's policy is to report that as an error.
	ErrAccessDenied = errors.New("memmap: access denied")
	// ErrCrossPage is returned when a single transfer straddles the 127/128
	// boundary between the lower and upper page, which have independent
	// semantics and cannot be addressed by one transfer.
	ErrCrossPage = errors.New("memmap: transfer crosses lower/upper page boundary")
)

// WritePolicy governs what happens when a host write touches a byte whose
// access is RO or Reserved. Per the standards, SFF devices silently drop the
// offending bytes; CMIS devices report it on the error channel. Either way
// the stored byte never changes — this only controls whether the caller
// learns about it.
type WritePolicy int

const (
	// DropSilently ignores writes to RO/Reserved bytes and returns nil.
	DropSilently WritePolicy = iota
	// ReportError returns ErrAccessDenied when a write touches RO/Reserved
	// bytes.
	ReportError
)

type page struct {
	data   [PageSize]byte
	access [PageSize]Access
}

// pageKey addresses an upper page. CMIS groups pages under banks 0..3;
// SFF-8636 has no banking concept and always uses bank 0.
type pageKey struct {
	bank uint8
	page uint8
}

// Map is one module's register address space: the fixed lower page plus
// every upper page installed via InstallPage, addressed through the current
// page/bank selection.
type Map struct {
	lower       [LowerSize]byte
	lowerAccess [LowerSize]Access
	pages       map[pageKey]*page

	// selectOffset is the lower-page offset of the page-select byte, or -1
	// if this map has no paging (SFF-8472's A0h/A2h maps).
	selectOffset int
	// bankOffset is the lower-page offset of the bank-select byte, or -1 if
	// this standard has no banking (SFF-8636).
	bankOffset int

	curBank uint8
	curPage uint8

	policy WritePolicy
}

// New returns an empty Map. selectOffset is the lower-page offset of the
// page-select byte (127 for SFF-8636 and CMIS). bankOffset is the
// lower-page offset of the bank-select byte, or -1 for standards without
// banking (SFF-8636; SFF-8472 has no upper-page concept at all and passes
// -1 for both, addressing A0h/A2h as two independent maps instead).
func New(selectOffset, bankOffset int, policy WritePolicy) *Map {
	m := &Map{
		pages:        make(map[pageKey]*page),
		selectOffset: selectOffset,
		bankOffset:   bankOffset,
		policy:       policy,
	}
	for i := range m.lowerAccess {
		m.lowerAccess[i] = Reserved
	}
	return m
}

// InstallLower populates the fixed lower page. data and access must each be
// exactly LowerSize bytes.
func (m *Map) InstallLower(data [LowerSize]byte, access [LowerSize]Access) {
	m.lower = data
	m.lowerAccess = access
}

// InstallPage registers a named upper page under (bank, pageNum). data and
// access must each be exactly PageSize bytes. Re-installing the same
// (bank, pageNum) replaces its prior contents.
func (m *Map) InstallPage(bank, pageNum uint8, data [PageSize]byte, access [PageSize]Access) {
	m.pages[pageKey{bank, pageNum}] = &page{data: data, access: access}
}

// SelectPage mutates the page-select byte and the view visible at offsets
// 128..255. It fails with ErrOutOfRange if pageNum has not been installed
// under the current bank.
func (m *Map) SelectPage(pageNum uint8) error {
	if _, ok := m.pages[pageKey{m.curBank, pageNum}]; !ok {
		return fmt.Errorf("%w: page %#x not installed in bank %d", ErrOutOfRange, pageNum, m.curBank)
	}
	m.curPage = pageNum
	if m.selectOffset >= 0 {
		m.lower[m.selectOffset] = pageNum
	}
	return nil
}

// SelectBank mutates the bank-select byte. It fails with ErrOutOfRange on
// maps that do not support banking.
func (m *Map) SelectBank(bank uint8) error {
	if m.bankOffset < 0 {
		return fmt.Errorf("%w: this map has no bank select", ErrOutOfRange)
	}
	m.curBank = bank
	m.lower[m.bankOffset] = bank
	return nil
}

// CurrentPage returns the currently selected (bank, page).
func (m *Map) CurrentPage() (bank, pageNum uint8) {
	return m.curBank, m.curPage
}

// splitRange reports the lower-half and upper-half byte ranges a
// [offset, offset+n) transfer touches, and whether it crosses the boundary.
func splitRange(offset, n int) (lowerLen, upperLen int, crosses bool) {
	end := offset + n
	if offset < LowerSize && end > LowerSize {
		return LowerSize - offset, end - LowerSize, true
	}
	if offset < LowerSize {
		return n, 0, false
	}
	return 0, n, false
}

// Read returns up to n bytes starting at offset. A read may not span the
// 127/128 boundary (ErrCrossPage) and may not reach offset 256 or beyond, or
// address an uninstalled page (ErrOutOfRange).
func (m *Map) Read(offset, n int) ([]byte, error) {
	if offset < 0 || n < 0 || offset+n > AddressSpace {
		return nil, fmt.Errorf("%w: offset=%d len=%d", ErrOutOfRange, offset, n)
	}
	lowerLen, upperLen, crosses := splitRange(offset, n)
	if crosses {
		return nil, ErrCrossPage
	}
	out := make([]byte, n)
	if lowerLen > 0 {
		for i := 0; i < lowerLen; i++ {
			if m.lowerAccess[offset+i] != Reserved {
				out[i] = m.lower[offset+i]
			}
		}
		return out, nil
	}
	pg, ok := m.pages[pageKey{m.curBank, m.curPage}]
	if !ok {
		return nil, fmt.Errorf("%w: no page installed at bank %d page %#x", ErrOutOfRange, m.curBank, m.curPage)
	}
	upperOff := offset - LowerSize
	for i := 0; i < upperLen; i++ {
		idx := upperOff + i
		if pg.access[idx] == Reserved {
			out[i] = 0
			continue
		}
		out[i] = pg.data[idx]
	}
	return out, nil
}

// ReadByte reads a single byte.
func (m *Map) ReadByte(offset int) (byte, error) {
	b, err := m.Read(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// lowerAccessAt reports the access of the lower-page byte at offset.
func (m *Map) lowerAccessAt(offset int) Access {
	return m.lowerAccess[offset]
}

// Write applies data starting at offset, honoring the access mask.
// A multi-byte write is all-or-nothing: if any targeted byte is RO or
// Reserved, no byte in the range is mutated. Whether that condition is
// reported as ErrAccessDenied or silently accepted as a no-op is governed by
// the map's WritePolicy, per the per-standard policy in the governing spec.
func (m *Map) Write(offset int, data []byte) error {
	n := len(data)
	if offset < 0 || offset+n > AddressSpace {
		return fmt.Errorf("%w: offset=%d len=%d", ErrOutOfRange, offset, n)
	}
	lowerLen, upperLen, crosses := splitRange(offset, n)
	if crosses {
		return ErrCrossPage
	}

	if lowerLen > 0 {
		return m.writeLower(offset, data)
	}

	pg, ok := m.pages[pageKey{m.curBank, m.curPage}]
	if !ok {
		return fmt.Errorf("%w: no page installed at bank %d page %#x", ErrOutOfRange, m.curBank, m.curPage)
	}
	upperOff := offset - LowerSize
	blocked := false
	for i := 0; i < upperLen; i++ {
		if !pg.access[upperOff+i].writable() {
			blocked = true
			break
		}
	}
	if blocked {
		if m.policy == ReportError {
			return ErrAccessDenied
		}
		return nil
	}
	copy(pg.data[upperOff:upperOff+upperLen], data)
	return nil
}

func (m *Map) writeLower(offset int, data []byte) error {
	n := len(data)
	blocked := false
	for i := 0; i < n; i++ {
		if !m.lowerAccessAt(offset+i).writable() {
			blocked = true
			break
		}
	}
	if blocked {
		if m.policy == ReportError {
			return ErrAccessDenied
		}
		return nil
	}

	// Simulate the page/bank-select side effects this write would cause, in
	// byte order, before mutating anything: an invalid page/bank selection
	// must leave storage -- including the page-select and bank-select bytes
	// themselves -- completely unchanged, per the all-or-nothing write rule.
	simBank, simPage := m.curBank, m.curPage
	for i := 0; i < n; i++ {
		idx := offset + i
		if m.bankOffset >= 0 && idx == m.bankOffset {
			simBank = data[i]
		}
		if m.selectOffset >= 0 && idx == m.selectOffset {
			if _, ok := m.pages[pageKey{simBank, data[i]}]; !ok {
				if m.policy == ReportError {
					return fmt.Errorf("%w: page %#x not installed in bank %d", ErrOutOfRange, data[i], simBank)
				}
				return nil
			}
			simPage = data[i]
		}
	}

	for i := 0; i < n; i++ {
		idx := offset + i
		copy(m.lower[idx:idx+1], data[i:i+1])
	}
	m.curBank = simBank
	m.curPage = simPage
	return nil
}

// WriteByte writes a single byte. See Write for the all-or-nothing and
// policy semantics.
func (m *Map) WriteByte(offset int, v byte) error {
	return m.Write(offset, []byte{v})
}

// ForceLower writes raw bytes into the lower page ignoring the access mask.
// It exists for the monitoring engine and state machine, which update RO
// telemetry/status fields the host itself may never write.
func (m *Map) ForceLower(offset int, data []byte) {
	copy(m.lower[offset:offset+len(data)], data)
}

// ForcePage writes raw bytes into the named upper page ignoring the access
// mask, regardless of whether that page is currently selected. offset is
// absolute (128..255), matching Write/Read's convention. It exists for the
// monitoring engine, which must keep telemetry coherent across pages the
// host is not currently viewing.
func (m *Map) ForcePage(bank, pageNum uint8, offset int, data []byte) error {
	if offset < LowerSize || offset+len(data) > AddressSpace {
		return fmt.Errorf("%w: offset=%d len=%d", ErrOutOfRange, offset, len(data))
	}
	pg, ok := m.pages[pageKey{bank, pageNum}]
	if !ok {
		return fmt.Errorf("%w: no page installed at bank %d page %#x", ErrOutOfRange, bank, pageNum)
	}
	upperOff := offset - LowerSize
	copy(pg.data[upperOff:upperOff+len(data)], data)
	return nil
}

// ReadPage reads directly from a named page (bypassing current selection),
// used by host-facing helpers that address CMIS banked pages explicitly.
func (m *Map) ReadPage(bank, pageNum uint8, offset, n int) ([]byte, error) {
	if offset < LowerSize {
		return nil, fmt.Errorf("%w: ReadPage only addresses the upper half", ErrOutOfRange)
	}
	pg, ok := m.pages[pageKey{bank, pageNum}]
	if !ok {
		return nil, fmt.Errorf("%w: no page installed at bank %d page %#x", ErrOutOfRange, bank, pageNum)
	}
	upperOff := offset - LowerSize
	if upperOff+n > PageSize {
		return nil, fmt.Errorf("%w: offset=%d len=%d", ErrOutOfRange, offset, n)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		idx := upperOff + i
		if pg.access[idx] == Reserved {
			continue
		}
		out[i] = pg.data[idx]
	}
	return out, nil
}

// HasPage reports whether (bank, pageNum) has been installed.
func (m *Map) HasPage(bank, pageNum uint8) bool {
	_, ok := m.pages[pageKey{bank, pageNum}]
	return ok
}

// LowerBytes returns a copy of the lower page, used by invariant checks and
// tests that verify the lower page stays identical across page switches
// (apart from the page-select byte, which reflects the selection).
func (m *Map) LowerBytes() [LowerSize]byte {
	return m.lower
}
