package sff8472

import "testing"

func testConfig() Config {
	return Config{
		Identifier: IdentifierSFP,
		VendorName: "Test Vendor",
		VendorPN:   "TV-SFP-001",
		VendorSN:   "TV000001",
		DateCode:   "260101  ",
	}
}

func TestIdentifierRead(t *testing.T) {
	a0 := NewA0(testConfig())
	b, err := a0.ReadByte(OffIdentifier)
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if b != IdentifierSFP {
		t.Fatalf("identifier = %#x, want %#x", b, IdentifierSFP)
	}
}

func TestVendorNamePadded(t *testing.T) {
	a0 := NewA0(testConfig())
	got, err := a0.Read(OffVendorName, 16)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := "Test Vendor     "
	if string(got) != want {
		t.Fatalf("vendor name = %q, want %q", got, want)
	}
}

func TestCCBaseChecksum(t *testing.T) {
	a0 := NewA0(testConfig())
	lower := a0.LowerBytes()
	var sum byte
	for _, b := range lower[:OffCCBase] {
		sum += b
	}
	got, err := a0.ReadByte(OffCCBase)
	if err != nil {
		t.Fatalf("ReadByte(CC_BASE): %v", err)
	}
	if got != sum {
		t.Fatalf("CC_BASE = %#x, want %#x", got, sum)
	}
}

func TestChecksumStaysLiveAfterFieldEdit(t *testing.T) {
	a0 := NewA0(testConfig())
	a0.ForceLower(OffVendorRev, []byte{'B', '2'})
	RefreshChecksums(a0)
	lower := a0.LowerBytes()
	var sum byte
	for _, b := range lower[:OffCCBase] {
		sum += b
	}
	got, _ := a0.ReadByte(OffCCBase)
	if got != sum {
		t.Fatalf("CC_BASE after edit = %#x, want %#x", got, sum)
	}
}

func TestVendorFieldsAreReadOnly(t *testing.T) {
	a0 := NewA0(testConfig())
	if err := a0.WriteByte(OffIdentifier, 0x00); err != nil {
		t.Fatalf("WriteByte(RO) = %v, want nil (dropped)", err)
	}
	b, _ := a0.ReadByte(OffIdentifier)
	if b != IdentifierSFP {
		t.Fatalf("identifier changed via host write: got %#x", b)
	}
}

func TestThresholdsAreHostWritable(t *testing.T) {
	a2 := NewA2(DefaultThresholds())
	if err := a2.Write(OffThresholds, []byte{0x30, 0x00}); err != nil {
		t.Fatalf("Write(threshold) = %v", err)
	}
	got, err := a2.Read(OffThresholds, 2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got[0] != 0x30 || got[1] != 0x00 {
		t.Fatalf("threshold = %v, want [0x30 0x00]", got)
	}
}
