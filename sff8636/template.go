package sff8636

import (
	"github.com/xcvrsim/xcvrsim/memmap"
	"github.com/xcvrsim/xcvrsim/regfield"
)

// New builds the SFF-8636 map: the fixed lower page plus upper page 00h
// (serial ID). Upper page 03h (channel thresholds/controls) is installed
// separately by NewPage03 so callers that don't need it can skip it. Upper
// pages 01h and 02h are not installed by either function.
func New(cfg Config) *memmap.Map {
	m := memmap.New(OffPageSelect, -1, memmap.DropSilently)

	var lower [memmap.LowerSize]byte
	var a [memmap.LowerSize]memmap.Access
	for i := range a {
		a[i] = memmap.Reserved
	}

	lower[OffIdentifier] = cfg.Identifier
	a[OffIdentifier] = memmap.RO
	a[OffStatus] = memmap.RO
	a[OffStatus+1] = memmap.RO
	for i := 0; i < 19; i++ {
		a[OffIntFlags+i] = memmap.RO
	}
	a[OffTemp] = memmap.RO
	a[OffTemp+1] = memmap.RO
	a[OffVcc] = memmap.RO
	a[OffVcc+1] = memmap.RO
	for i := 0; i < 2*cfg.Channels; i++ {
		a[OffRxPower+i] = memmap.RO
		a[OffTxBias+i] = memmap.RO
		a[OffTxPower+i] = memmap.RO
	}
	a[OffTxDisable] = memmap.RW
	a[OffPageSelect] = memmap.RW

	m.InstallLower(lower, a)

	var p0 [memmap.PageSize]byte
	var p0a [memmap.PageSize]memmap.Access
	for i := range p0a {
		p0a[i] = memmap.Reserved
	}
	rel := func(off int) int { return off - memmap.LowerSize }

	p0[rel(OffIdentifier00)] = cfg.Identifier
	p0a[rel(OffIdentifier00)] = memmap.RO
	p0[rel(OffConnector00)] = cfg.Connector
	p0a[rel(OffConnector00)] = memmap.RO
	copy(p0[rel(OffCompliance00):rel(OffCompliance00)+8], cfg.Compliance[:])
	for i := 0; i < 8; i++ {
		p0a[rel(OffCompliance00)+i] = memmap.RO
	}
	regfield.PutASCII(p0[rel(OffVendorName00):rel(OffVendorName00)+16], cfg.VendorName)
	for i := 0; i < 16; i++ {
		p0a[rel(OffVendorName00)+i] = memmap.RO
	}
	copy(p0[rel(OffVendorOUI00):rel(OffVendorOUI00)+3], cfg.VendorOUI[:])
	for i := 0; i < 3; i++ {
		p0a[rel(OffVendorOUI00)+i] = memmap.RO
	}
	regfield.PutASCII(p0[rel(OffVendorPN00):rel(OffVendorPN00)+16], cfg.VendorPN)
	for i := 0; i < 16; i++ {
		p0a[rel(OffVendorPN00)+i] = memmap.RO
	}
	regfield.PutASCII(p0[rel(OffVendorRev00):rel(OffVendorRev00)+2], cfg.VendorRev)
	p0a[rel(OffVendorRev00)] = memmap.RO
	p0a[rel(OffVendorRev00)+1] = memmap.RO
	regfield.PutU16(p0[rel(OffWavelength00):rel(OffWavelength00)+2], cfg.Wavelength)
	p0a[rel(OffWavelength00)] = memmap.RO
	p0a[rel(OffWavelength00)+1] = memmap.RO
	p0a[rel(OffCCBase00)] = memmap.RO
	regfield.PutASCII(p0[rel(OffVendorSN00):rel(OffVendorSN00)+16], cfg.VendorSN)
	for i := 0; i < 16; i++ {
		p0a[rel(OffVendorSN00)+i] = memmap.RO
	}
	regfield.PutASCII(p0[rel(OffDateCode00):rel(OffDateCode00)+8], cfg.DateCode)
	for i := 0; i < 8; i++ {
		p0a[rel(OffDateCode00)+i] = memmap.RO
	}
	p0a[rel(OffCCExt00)] = memmap.RO

	p0[rel(OffCCBase00)] = regfield.Checksum8(p0[0:rel(OffCCBase00)])
	p0[rel(OffCCExt00)] = regfield.Checksum8(p0[rel(OffCCBase00)+1 : rel(OffCCExt00)])

	m.InstallPage(0, 0x00, p0, p0a)
	_ = m.SelectPage(0x00)
	return m
}

// NewPage03 installs the channel-threshold/control upper page (03h), all
// RW so a host can exercise per-channel TxDisable/threshold overrides; the
// emulator does not evaluate these thresholds itself (SFF-8636 telemetry
// evaluation happens against the lower-page fields monitor.SFF8636Engine
// writes, using the fixed thresholds passed to it).
func NewPage03(m *memmap.Map) {
	var p3 [memmap.PageSize]byte
	var p3a [memmap.PageSize]memmap.Access
	for i := range p3a {
		p3a[i] = memmap.RW
	}
	m.InstallPage(0, 0x03, p3, p3a)
}
