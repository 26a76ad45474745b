// Package mmio provides 32-bit register access for the MCom-03 clock and
// power drivers. Registers are reached through a RegisterFile, which is
// /dev/mem in production and an in-memory Fake in tests.
package mmio

// RegisterFile is a block of 32-bit registers addressed by byte offset.
type RegisterFile interface {
	Read32(off uintptr) uint32
	Write32(off uintptr, val uint32)
}

// Bus maps a physical address range to a RegisterFile starting at that address.
type Bus interface {
	Map(physAddr uintptr, size int) (RegisterFile, error)
}

type window struct {
	rf   RegisterFile
	base uintptr
}

// Window returns a view of rf shifted by base, so that offset 0 of the view is base in rf.
func Window(rf RegisterFile, base uintptr) RegisterFile {
	if rf == nil {
		return nil
	}
	if w, ok := rf.(*window); ok {
		return &window{rf: w.rf, base: w.base + base}
	}
	return &window{rf: rf, base: base}
}

func (w *window) Read32(off uintptr) uint32 {
	return w.rf.Read32(w.base + off)
}

func (w *window) Write32(off uintptr, val uint32) {
	w.rf.Write32(w.base+off, val)
}

// SetBits does a read-modify-write setting mask at off.
func SetBits(rf RegisterFile, off uintptr, mask uint32) {
	rf.Write32(off, rf.Read32(off)|mask)
}

// ClrBits does a read-modify-write clearing mask at off.
func ClrBits(rf RegisterFile, off uintptr, mask uint32) {
	rf.Write32(off, rf.Read32(off)&^mask)
}
