package protocol

import "testing"

func TestSumChecksum(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{
			name:     "empty data",
			data:     []byte{},
			expected: 0x00,
		},
		{
			name:     "checksum slot only",
			data:     []byte{0xAB},
			expected: 0x00,
		},
		{
			name:     "last byte excluded",
			data:     []byte{0x01, 0x02, 0x03, 0xFF},
			expected: 0x06,
		},
		{
			name:     "wraps at 256",
			data:     []byte{0xFF, 0x02, 0x00},
			expected: 0x01,
		},
		{
			name:     "template",
			data:     Template[:],
			expected: 0x01, // 0x401
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SumChecksum(tt.data)
			if got != tt.expected {
				t.Errorf("SumChecksum() = 0x%02X, want 0x%02X", got, tt.expected)
			}
		})
	}
}

func TestFrameSealAndValid(t *testing.T) {
	f := Template
	f[26] = 0xEE
	if f.Valid() {
		t.Fatal("template placeholder should not validate")
	}

	f.Seal()
	if !f.Valid() {
		t.Fatalf("sealed frame is not valid: %s", f.Hex())
	}
	if f[26] != 0x01 {
		t.Errorf("checksum = 0x%02X, want 0x01", f[26])
	}
}

func TestChecksumDetectsMutation(t *testing.T) {
	f, _ := Build(Request{Mode: ModeCool, Temperature: 22, Fan: FanHigh}, ModelNKE, ToggleState{})

	for i := 0; i < ByteChecksum; i++ {
		mutated := f
		mutated[i] ^= 0x10
		if mutated.Valid() {
			t.Errorf("flipping a bit in byte %d was not detected", i)
		}
		mutated.Seal()
		if mutated[26] == f[26] {
			t.Errorf("resealing after mutating byte %d kept checksum 0x%02X", i, f[26])
		}
	}
}
