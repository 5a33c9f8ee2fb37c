package protocol

// Checksum returns the low byte of the sum of every byte before the checksum
// position.
func Checksum(f Frame) byte {
	return SumChecksum(f[:])
}

// SumChecksum returns the low byte of the sum of data[0:len(data)-1]. The last
// byte is the checksum slot and is not included.
func SumChecksum(data []byte) byte {
	if len(data) == 0 {
		return 0
	}
	var sum uint16
	for _, b := range data[:len(data)-1] {
		sum += uint16(b)
	}
	return byte(sum & 0xFF)
}

// Seal writes the checksum into byte 26.
func (f *Frame) Seal() {
	f[ByteChecksum] = Checksum(*f)
}

// Valid reports whether byte 26 matches the checksum of bytes 0-25.
func (f Frame) Valid() bool {
	return f[ByteChecksum] == Checksum(f)
}
