package cpu_test

import (
	"bytes"
	"testing"

	"github.com/weirdfoo/My6502/cpu"
)

func TestFlatMemoryLoadStore(t *testing.T) {
	mem := cpu.NewFlatMemory()

	mem.StoreByte(0x0000, 0x11)
	mem.StoreByte(0xffff, 0x22)

	if mem.LoadByte(0x0000) != 0x11 {
		t.Errorf("LoadByte($0000) incorrect")
	}
	if mem.LoadByte(0xffff) != 0x22 {
		t.Errorf("LoadByte($FFFF) incorrect")
	}
}

func TestFlatMemoryBulk(t *testing.T) {
	mem := cpu.NewFlatMemory()

	src := []byte{0x01, 0x02, 0x03, 0x04}
	mem.StoreBytes(0x2000, src)

	dst := make([]byte, 4)
	mem.LoadBytes(0x2000, dst)
	if !bytes.Equal(src, dst) {
		t.Errorf("LoadBytes incorrect. exp: %v, got: %v", src, dst)
	}

	// Loading past the end of the address space zero-fills the remainder.
	dst = make([]byte, 4)
	mem.StoreByte(0xffff, 0xaa)
	mem.LoadBytes(0xffff, dst)
	if dst[0] != 0xaa || dst[1] != 0 || dst[2] != 0 || dst[3] != 0 {
		t.Errorf("LoadBytes at end of memory incorrect: %v", dst)
	}
}

// LoadAddress wraps its high-byte read within the page when the pointer
// ends in $FF, mimicking the NMOS 6502.
func TestLoadAddressPageWrap(t *testing.T) {
	mem := cpu.NewFlatMemory()

	mem.StoreByte(0x12ff, 0x34)
	mem.StoreByte(0x1300, 0x56)
	mem.StoreByte(0x1200, 0x78)

	if addr := mem.LoadAddress(0x12ff); addr != 0x7834 {
		t.Errorf("LoadAddress($12FF) incorrect. exp: $7834, got: $%04X", addr)
	}
	if addr := mem.LoadAddress(0x12fe); addr != 0x3400|uint16(mem.LoadByte(0x12fe)) {
		t.Errorf("LoadAddress($12FE) incorrect. got: $%04X", addr)
	}
}

func TestStoreAddressPageWrap(t *testing.T) {
	mem := cpu.NewFlatMemory()

	mem.StoreAddress(0x12ff, 0xabcd)
	if mem.LoadByte(0x12ff) != 0xcd || mem.LoadByte(0x1200) != 0xab {
		t.Errorf("StoreAddress($12FF) did not wrap")
	}

	mem.StoreAddress(0x2000, 0x1234)
	if mem.LoadByte(0x2000) != 0x34 || mem.LoadByte(0x2001) != 0x12 {
		t.Errorf("StoreAddress($2000) incorrect")
	}
}
