package bit

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// CheckedAdd adds two 8 bit unsigned values and detects if an overflow happened.
func CheckedAdd(a, b uint8) (result uint8, overflow bool) {
	overflow = (uint16(a)+uint16(b))&0xFF00 != 0
	result = a + b
	return
}

// CheckedSub subtracts two 8 bit unsigned values and reports whether a was strictly greater than b.
// The machine's "no borrow" flag is only raised on a strict greater-than, so equal operands report false.
func CheckedSub(a, b uint8) (result uint8, greater bool) {
	return a - b, a > b
}

// IsSet will check if the bit at the specified index is Set to 1 or not.
func IsSet(index, byte uint8) bool {
	return ((byte >> index) & 1) == 1
}

// GetBitValue returns a byte set to the value of the bit at the specified index.
func GetBitValue(index, byte uint8) uint8 {
	if IsSet(index, byte) {
		return 1
	}

	return 0
}

// Low returns the low (LSB) part of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value)
}

// High returns the high (MSB) part of a 16 bit number.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// Nibble returns the 4 bit group at the given index of a 16 bit word,
// index 0 being the most significant one.
func Nibble(index uint8, value uint16) uint8 {
	shift := (3 - index&3) * 4
	return uint8(value>>shift) & 0x0F
}

// CombineNibbles packs four 4 bit values into a 16 bit word, most significant first.
func CombineNibbles(n0, n1, n2, n3 uint8) uint16 {
	return uint16(n0&0xF)<<12 | uint16(n1&0xF)<<8 | uint16(n2&0xF)<<4 | uint16(n3&0xF)
}
