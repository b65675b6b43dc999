package assets

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic = 0x07230203

var ErrNotSPIRV = errors.New("not a SPIR-V module")

// LoadShader reads a precompiled SPIR-V binary fully into memory.
// The bytes are otherwise opaque; only the word alignment and magic are checked.
func LoadShader(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load shader %q: %w", path, err)
	}
	if err := CheckSPIRV(b); err != nil {
		return nil, fmt.Errorf("load shader %q: %w", path, err)
	}
	return b, nil
}

// CheckSPIRV validates the size and magic number of a SPIR-V blob.
func CheckSPIRV(b []byte) error {
	if len(b) < 4 || len(b)%4 != 0 {
		return fmt.Errorf("%w: size %d is not a positive multiple of 4", ErrNotSPIRV, len(b))
	}
	if binary.LittleEndian.Uint32(b) != SPIRVMagic {
		return fmt.Errorf("%w: bad magic 0x%08x", ErrNotSPIRV, binary.LittleEndian.Uint32(b))
	}
	return nil
}

// Words reinterprets a validated SPIR-V blob as little-endian 32-bit words.
// It copies, so the result is aligned regardless of the source slice.
func Words(b []byte) []uint32 {
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out
}
