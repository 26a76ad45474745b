package mmio

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/platinasystems/log"
)

const PAGE_SIZE = 4096

// DevMem is a Bus backed by mappings of a physical memory device.
type DevMem struct {
	file    string
	regions map[uintptr]*region
	// Mappings replaced by a larger one. They stay mapped until Close, since
	// RegisterFiles handed out earlier still point into them.
	retired []*region
}

type region struct {
	buf  mmap.MMap
	offs uintptr
	size int
}

// NewDevMem returns a DevMem mapping from file, usually /dev/mem.
func NewDevMem(file string) *DevMem {
	return &DevMem{
		file:    file,
		regions: make(map[uintptr]*region),
	}
}

// Map maps size bytes at physAddr. Repeated requests for the same address reuse the mapping.
func (dm *DevMem) Map(physAddr uintptr, size int) (RegisterFile, error) {
	if r, ok := dm.regions[physAddr]; ok && r.size >= size {
		return r, nil
	}
	buf, offs, err := mapMem(dm.file, physAddr, size)
	if err != nil {
		return nil, fmt.Errorf("couldn't map %08X: %v", physAddr, err)
	}
	if old, ok := dm.regions[physAddr]; ok {
		dm.retired = append(dm.retired, old)
	}
	r := &region{buf: buf, offs: offs, size: size}
	dm.regions[physAddr] = r
	return r, nil
}

// Flush writes back every mapping.
func (dm *DevMem) Flush() error {
	for addr, r := range dm.regions {
		err := r.buf.Flush()
		if err != nil {
			return fmt.Errorf("couldn't flush %08X: %v", addr, err)
		}
	}
	for _, r := range dm.retired {
		err := r.buf.Flush()
		if err != nil {
			return fmt.Errorf("couldn't flush retired mapping: %v", err)
		}
	}
	return nil
}

// Close unmaps everything. The first error is returned, but all regions are unmapped.
func (dm *DevMem) Close() error {
	var err error
	for addr, r := range dm.regions {
		te := r.buf.Unmap()
		if te != nil && err == nil {
			err = fmt.Errorf("couldn't unmap %08X: %v", addr, te)
		}
		delete(dm.regions, addr)
	}
	for _, r := range dm.retired {
		te := r.buf.Unmap()
		if te != nil && err == nil {
			err = fmt.Errorf("couldn't unmap retired mapping: %v", te)
		}
	}
	dm.retired = nil
	return err
}

// mapMem opens file and uses mmap to map a given physical address into our address space.
// Since the mapping has to start at a page boundary, the physical address is rounded down to the
// nearest page boundary. mapMem returns the mapped memory and the offset that should be used to
// access it (=physAddr%PAGE_SIZE).
func mapMem(file string, physAddr uintptr, size int) (mmap.MMap, uintptr, error) {
	f, err := os.OpenFile(file, os.O_RDWR|os.O_SYNC, os.ModePerm)
	if err != nil {
		return nil, 0, fmt.Errorf("couldn't open %s: %v", file, err)
	}
	defer f.Close() // Ignore error

	pagemask := ^uintptr(PAGE_SIZE - 1)
	mapAddr := physAddr & pagemask
	size += int(physAddr - mapAddr)
	log.Printf("MapRegion(f, %d, RDWR, 0, %08X), physAddr %08X\n", size, int64(mapAddr), physAddr)
	mm, err := mmap.MapRegion(f, size, mmap.RDWR, 0, int64(mapAddr))
	if err != nil {
		return nil, 0, fmt.Errorf("couldn't map region (%v, %v): %v", physAddr, size, err)
	}
	return mm, physAddr & (PAGE_SIZE - 1), nil
}

func (r *region) reg(off uintptr) *uint32 {
	i := r.offs + off
	if off&3 != 0 || i+4 > uintptr(len(r.buf)) {
		panic(fmt.Sprintf("register offset %X outside %d byte mapping", off, r.size))
	}
	return (*uint32)(unsafe.Pointer(&r.buf[i]))
}

func (r *region) Read32(off uintptr) uint32 {
	return atomic.LoadUint32(r.reg(off))
}

func (r *region) Write32(off uintptr, val uint32) {
	atomic.StoreUint32(r.reg(off), val)
}
