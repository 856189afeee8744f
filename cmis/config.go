package cmis

// Config is the immutable-at-attach configuration for a CMIS module
// (QSFP-DD or OSFP).
type Config struct {
	Identifier byte
	Lanes      int // 8 for OSFP/QSFP-DD

	VendorName string
	VendorOUI  [3]byte
	VendorPN   string
	VendorRev  string
	VendorSN   string
	DateCode   string

	// ResetHoldTicks is how many Tick() calls a held ResetL assertion takes
	// to land the module in MODULE_LOW_PWR. Spec default is 2.
	ResetHoldTicks int
	// InitTicks is how many Tick() calls MODULE_PWR_UP takes to reach
	// MODULE_READY.
	InitTicks int
}

// DefaultConfig fills in the spec's default timing constants; callers still
// must set Identifier/Lanes/vendor fields.
func DefaultConfig() Config {
	return Config{
		ResetHoldTicks: 2,
		InitTicks:      2,
	}
}
