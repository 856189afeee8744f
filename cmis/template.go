package cmis

import (
	"github.com/xcvrsim/xcvrsim/memmap"
	"github.com/xcvrsim/xcvrsim/regfield"
)

// New builds the CMIS lower page plus upper pages 00h (administrative),
// 10h (data-path control) and 11h (data-path state), all in bank 0 (this
// project does not model multi-bank upper pages beyond bank 0, since no
// CMIS feature in the governing spec requires bank switching for anything
// other than the mechanism itself; SelectBank still works against any bank
// a caller installs pages into).
func New(cfg Config) *memmap.Map {
	m := memmap.New(OffPageSelect, OffBankSelect, memmap.ReportError)

	var lower [memmap.LowerSize]byte
	var a [memmap.LowerSize]memmap.Access
	for i := range a {
		a[i] = memmap.Reserved
	}

	lower[OffIdentifier] = cfg.Identifier
	a[OffIdentifier] = memmap.RO
	// Module state starts at MODULE_LOW_PWR (CMIS modules power up with
	// ResetL expected asserted or LPMode expected high).
	lower[OffModuleState] = byte(ModuleLowPwr) << moduleStateShift
	a[OffModuleState] = memmap.RO
	a[OffFlagsSummary] = memmap.RO
	a[OffTemp] = memmap.RO
	a[OffTemp+1] = memmap.RO
	a[OffVcc] = memmap.RO
	a[OffVcc+1] = memmap.RO
	a[OffTempVccFlags] = memmap.RO
	a[OffLowPwrRequestSW] = memmap.RW
	a[OffTxDisable] = memmap.RW
	a[OffRxLOS] = memmap.RO
	a[OffTxFault] = memmap.RO
	a[OffBankSelect] = memmap.RW
	a[OffPageSelect] = memmap.RW

	m.InstallLower(lower, a)

	// Page 00h: administrative / vendor identity.
	var p0 [memmap.PageSize]byte
	var p0a [memmap.PageSize]memmap.Access
	for i := range p0a {
		p0a[i] = memmap.Reserved
	}
	rel := func(off int) int { return off - memmap.LowerSize }

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
	regfield.PutASCII(p0[rel(OffVendorSN00):rel(OffVendorSN00)+16], cfg.VendorSN)
	for i := 0; i < 16; i++ {
		p0a[rel(OffVendorSN00)+i] = memmap.RO
	}
	regfield.PutASCII(p0[rel(OffDateCode00):rel(OffDateCode00)+8], cfg.DateCode)
	for i := 0; i < 8; i++ {
		p0a[rel(OffDateCode00)+i] = memmap.RO
	}
	p0a[rel(OffCCBase00)] = memmap.RO
	p0[rel(OffCCBase00)] = regfield.Checksum8(p0[0:rel(OffCCBase00)])

	m.InstallPage(0, 0x00, p0, p0a)

	// Page 10h: data-path control (host-writable deinit bitmap).
	var p10 [memmap.PageSize]byte
	var p10a [memmap.PageSize]memmap.Access
	for i := range p10a {
		p10a[i] = memmap.Reserved
	}
	p10a[rel(OffDataPathDeinit)] = memmap.RW
	m.InstallPage(0, 0x10, p10, p10a)

	// Page 11h: data-path state plus per-lane bias/power monitors and alarm
	// bitmaps (RO, driven by the state machine / monitoring engine).
	var p11 [memmap.PageSize]byte
	var p11a [memmap.PageSize]memmap.Access
	for i := range p11a {
		p11a[i] = memmap.Reserved
	}
	for lane := 0; lane < cfg.Lanes; lane++ {
		p11a[rel(OffLaneStatus)+lane] = memmap.RO
		p11a[rel(OffTxBiasMonitor)+2*lane] = memmap.RO
		p11a[rel(OffTxBiasMonitor)+2*lane+1] = memmap.RO
		p11a[rel(OffTxPowerMonitor)+2*lane] = memmap.RO
		p11a[rel(OffTxPowerMonitor)+2*lane+1] = memmap.RO
		p11a[rel(OffRxPowerMonitor)+2*lane] = memmap.RO
		p11a[rel(OffRxPowerMonitor)+2*lane+1] = memmap.RO
	}
	p11a[rel(OffTxBiasHighAlarm)] = memmap.RO
	p11a[rel(OffTxBiasLowAlarm)] = memmap.RO
	p11a[rel(OffTxPowerHighAlarm)] = memmap.RO
	p11a[rel(OffTxPowerLowAlarm)] = memmap.RO
	p11a[rel(OffRxPowerHighAlarm)] = memmap.RO
	p11a[rel(OffRxPowerLowAlarm)] = memmap.RO
	m.InstallPage(0, 0x11, p11, p11a)

	_ = m.SelectPage(0x00)
	return m
}
