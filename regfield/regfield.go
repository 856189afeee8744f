// Package regfield holds the byte-encoding helpers shared by every
// standards layout: fixed-width ASCII fields, big-endian integers, the
// Q8.8 temperature format, and the modulo-256 checksums SFF-8472 and CMIS
// both use. None of this is standard-specific; sff8472, sff8636 and cmis
// all build their templates out of these primitives.
package regfield

import "math"

// PutASCII writes s into dst, space-padding or truncating to len(dst), per
// the fixed-width ASCII convention used by every vendor/part/serial field
// in SFF-8472, SFF-8636 and CMIS.
func PutASCII(dst []byte, s string) {
	for i := range dst {
		dst[i] = ' '
	}
	copy(dst, s)
}

// PutU16 encodes v big-endian into dst[0:2].
func PutU16(dst []byte, v uint16) {
	dst[0] = byte(v >> 8)
	dst[1] = byte(v)
}

// U16 decodes a big-endian uint16 from src[0:2].
func U16(src []byte) uint16 {
	return uint16(src[0])<<8 | uint16(src[1])
}

// PutI16 encodes a signed value big-endian into dst[0:2].
func PutI16(dst []byte, v int16) {
	PutU16(dst, uint16(v))
}

// I16 decodes a signed big-endian int16 from src[0:2].
func I16(src []byte) int16 {
	return int16(U16(src))
}

// Checksum8 returns the modulo-256 sum of b, the algorithm behind CC_BASE
// and CC_EXT.
func Checksum8(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return sum
}

// TempToRaw encodes a Celsius temperature as signed Q8.8 (1/256 degree
// resolution), per SFF-8472 Table 9-6 / CMIS Table 8-8.
func TempToRaw(celsius float64) int16 {
	return int16(celsius * 256)
}

// RawToTemp decodes a Q8.8 temperature back to Celsius.
func RawToTemp(raw int16) float64 {
	return float64(raw) / 256
}

// VoltageToRaw encodes volts as unsigned, 100µV per LSB.
func VoltageToRaw(volts float64) uint16 {
	return uint16(volts * 10000)
}

// RawToVoltage decodes a 100µV-per-LSB register back to volts.
func RawToVoltage(raw uint16) float64 {
	return float64(raw) / 10000
}

// BiasToRaw encodes milliamps as unsigned, 2µA per LSB.
func BiasToRaw(milliamps float64) uint16 {
	return uint16(milliamps * 1000 / 2)
}

// RawToBias decodes a 2µA-per-LSB register back to milliamps.
func RawToBias(raw uint16) float64 {
	return float64(raw) * 2 / 1000
}

// PowerToRaw encodes milliwatts as unsigned, 0.1µW per LSB (SFF-8472
// linear optical power encoding; CMIS log encoding is PowerToRawLog).
func PowerToRaw(milliwatts float64) uint16 {
	return uint16(milliwatts * 10000)
}

// RawToPower decodes a 0.1µW-per-LSB register back to milliwatts.
func RawToPower(raw uint16) float64 {
	return float64(raw) / 10000
}

// PowerToRawLog encodes milliwatts as signed Q8.8 decibels relative to 1mW
// (dBm), CMIS's log-scaled optical power encoding (CMIS §8), following the
// same Q8.8 convention TempToRaw uses rather than SFF-8472/SFF-8636's
// linear 0.1µW-per-LSB scale.
func PowerToRawLog(milliwatts float64) int16 {
	if milliwatts <= 0 {
		return math.MinInt16
	}
	dbm := 10 * math.Log10(milliwatts)
	return int16(dbm * 256)
}

// RawToPowerLog decodes a Q8.8 dBm register back to milliwatts.
func RawToPowerLog(raw int16) float64 {
	dbm := float64(raw) / 256
	return math.Pow(10, dbm/10)
}
