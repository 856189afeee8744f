// emuctl builds one emulated transceiver in-process and dumps its register
// map to the console, each byte tinted by its own value (see swatch), for
// visually inspecting a module's layout without a host stack attached.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"

	"github.com/xcvrsim/xcvrsim/bus"
	"github.com/xcvrsim/xcvrsim/cmis"
	"github.com/xcvrsim/xcvrsim/memmap"
	"github.com/xcvrsim/xcvrsim/module"
	"github.com/xcvrsim/xcvrsim/monitor"
	"github.com/xcvrsim/xcvrsim/regfield"
	"github.com/xcvrsim/xcvrsim/sff8472"
	"github.com/xcvrsim/xcvrsim/sff8636"
)

// connectorNames and encodingNames decode the A0h connector/encoding bytes
// for display; the demo modules and sfpw-tool-style readers agree on these
// values (SFF-8472 table 4-3 and table 4-2).
var connectorNames = map[byte]string{
	sff8472.ConnectorUnknown:       "unknown",
	sff8472.ConnectorSC:            "SC",
	sff8472.ConnectorLC:            "LC",
	sff8472.ConnectorMPO1x12:       "MPO 1x12",
	sff8472.ConnectorCopperPigtail: "copper pigtail",
	sff8472.ConnectorRJ45:          "RJ45",
	sff8472.ConnectorNoSeparable:   "no separable connector",
}

var encodingNames = map[byte]string{
	sff8472.EncodingUnspecified:    "unspecified",
	sff8472.Encoding8B10B:          "8B/10B",
	sff8472.Encoding4B5B:           "4B/5B",
	sff8472.EncodingNRZ:            "NRZ",
	sff8472.EncodingManchester:     "Manchester",
	sff8472.EncodingSONETScrambled: "SONET scrambled",
	sff8472.Encoding64B66B:         "64B/66B",
}

func decodedName(table map[byte]string, v byte) string {
	if s, ok := table[v]; ok {
		return s
	}
	return fmt.Sprintf("reserved (%#x)", v)
}

func demoModule(family string) (module.Config, error) {
	switch family {
	case "sfp":
		return module.Config{
			Family: module.FamilySFF8472,
			SFF8472: sff8472.Config{
				Identifier: sff8472.IdentifierSFP,
				Connector:  1,
				VendorName: "EMUCORP",
				VendorPN:   "EMU-SFP-001",
				VendorRev:  "A",
				VendorSN:   "EMU000001",
				DateCode:   "260101  ",
				Encoding:   1,
			},
			SFF8472Thresholds: sff8472.DefaultThresholds(),
		}, nil
	case "qsfp":
		return module.Config{
			Family: module.FamilySFF8636,
			SFF8636: sff8636.Config{
				Identifier: sff8636.IdentifierQSFP28,
				Connector:  0x0C,
				Channels:   4,
				VendorName: "EMUCORP",
				VendorPN:   "EMU-QSFP28-001",
				VendorRev:  "A",
				VendorSN:   "EMU000002",
				DateCode:   "260101  ",
			},
			SFF8636Thresholds: monitor.ChannelThresholds{
				TempHighAlarm: 95, TempLowAlarm: -45,
				TempHighWarn: 90, TempLowWarn: -40,
				VccHighAlarm: 3.6, VccLowAlarm: 2.9,
				VccHighWarn: 3.5, VccLowWarn: 3.0,
				BiasHighAlarm: 120, BiasLowAlarm: 2,
				BiasHighWarn: 100, BiasLowWarn: 4,
				PowerHighAlarm: 6.3, PowerLowAlarm: 0.01,
				PowerHighWarn: 5.0, PowerLowWarn: 0.02,
			},
		}, nil
	case "osfp", "qsfp-dd":
		lanes := 8
		return module.Config{
			Family: module.FamilyCMIS,
			CMIS: cmis.Config{
				Identifier:     cmis.IdentifierOSFP,
				Lanes:          lanes,
				VendorName:     "EMUCORP",
				VendorPN:       "EMU-OSFP-001",
				VendorRev:      "A",
				VendorSN:       "EMU000003",
				DateCode:       "260101  ",
				ResetHoldTicks: 2,
				InitTicks:      2,
			},
			CMISThresholds: monitor.ChannelThresholds{
				TempHighAlarm: 95, TempLowAlarm: -45,
				TempHighWarn: 90, TempLowWarn: -40,
				VccHighAlarm: 3.6, VccLowAlarm: 2.9,
				VccHighWarn: 3.5, VccLowWarn: 3.0,
				BiasHighAlarm: 120, BiasLowAlarm: 2,
				BiasHighWarn: 100, BiasLowWarn: 4,
				PowerHighAlarm: 6.3, PowerLowAlarm: 0.01,
				PowerHighWarn: 5.0, PowerLowWarn: 0.02,
			},
		}, nil
	default:
		return module.Config{}, fmt.Errorf("unknown family %q, want sfp, qsfp or osfp", family)
	}
}

// channelCount reports how many optical lanes cfg's family exposes, so the
// demo can drive SetChannelTelemetry across all of them.
func channelCount(cfg module.Config) int {
	switch cfg.Family {
	case module.FamilySFF8472:
		return 1
	case module.FamilySFF8636:
		return cfg.SFF8636.Channels
	case module.FamilyCMIS:
		return cfg.CMIS.Lanes
	default:
		return 0
	}
}

func dumpMap(w io.Writer, title string, m *memmap.Map) {
	fmt.Fprintf(w, "%s\n", title)
	data, _ := m.Read(0, memmap.LowerSize)
	dumpBytes(w, 0, data)
	bank, page := m.CurrentPage()
	if m.HasPage(bank, page) {
		data, _ = m.Read(memmap.LowerSize, memmap.PageSize)
		dumpBytes(w, memmap.LowerSize, data)
	}
}

func dumpBytes(w io.Writer, base int, data []byte) {
	for row := 0; row < len(data); row += 16 {
		fmt.Fprintf(w, "%04x  ", base+row)
		for col := 0; col < 16 && row+col < len(data); col++ {
			fmt.Fprintf(w, "%s%02x\033[0m ", swatch(data[row+col]), data[row+col])
		}
		fmt.Fprintln(w)
	}
}

// swatch picks a background tint from the byte's own value purely so
// adjacent dumps are visually distinguishable; it carries no access-kind
// meaning on its own, since memmap.Map does not expose per-byte access
// outside its own package.
func swatch(v byte) string {
	return ansi256.Default.Block(color.NRGBA{R: v, G: 255 - v, B: 128, A: 255})
}

func mainImpl() error {
	family := flag.String("family", "sfp", "module family to emulate: sfp, qsfp, osfp")
	slot := flag.Int("slot", 0, "bus slot to attach the module at")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	cfg, err := demoModule(*family)
	if err != nil {
		return err
	}
	mod, err := module.New(cfg)
	if err != nil {
		return err
	}

	f := bus.NewFabric()
	if err := f.Attach(*slot, mod); err != nil {
		return err
	}
	defer func() { _ = f.Detach(*slot) }()

	mod.SetTemperature(35.0)
	mod.SetVoltage(3.3)
	for ch := 0; ch < channelCount(cfg); ch++ {
		_ = mod.SetChannelTelemetry(ch, 35, 0.8, 0.5)
	}
	mod.Tick()

	w := colorable.NewColorableStdout()
	fmt.Fprintf(w, "attached %s at slot %d\n\n", *family, *slot)

	switch cfg.Family {
	case module.FamilySFF8472:
		fmt.Fprintf(w, "connector: %s, encoding: %s\n", decodedName(connectorNames, cfg.SFF8472.Connector), decodedName(encodingNames, cfg.SFF8472.Encoding))
		dumpMap(w, "A0h", mustMapA0(mod))
		a2m := mustMapA2(mod)
		dumpMap(w, "A2h", a2m)
		a2, _ := a2m.Read(0, memmap.LowerSize)
		txMW := regfield.RawToPower(regfield.U16(a2[sff8472.OffTxPower:]))
		rxMW := regfield.RawToPower(regfield.U16(a2[sff8472.OffRxPower:]))
		fmt.Fprintf(w, "tx power: %.2f dBm, rx power: %.2f dBm\n", monitor.ToDBm(txMW), monitor.ToDBm(rxMW))
	default:
		dumpMap(w, "lower+current page", mustMap(mod))
	}
	return nil
}

// mustMapA0, mustMapA2 and mustMap return the memory map behind a device
// address via module.MapForInspection, bypassing the bus.Module read/write
// contract a real host driver would use.
func mustMapA0(mod *module.Module) *memmap.Map { return rawMap(mod, module.AddrA0) }
func mustMapA2(mod *module.Module) *memmap.Map { return rawMap(mod, module.AddrA2) }
func mustMap(mod *module.Module) *memmap.Map   { return rawMap(mod, module.SingleDeviceAddress) }

func rawMap(mod *module.Module, addr byte) *memmap.Map {
	// emuctl is a same-process inspector, so it is allowed to peek at the
	// map directly for dumping; a real host only ever sees bytes through
	// ReadRegister/ReadBlock.
	return mod.MapForInspection(addr)
}

func main() {
	log.SetFlags(log.Lmicroseconds)
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "emuctl: %s.\n", err)
		os.Exit(1)
	}
}
