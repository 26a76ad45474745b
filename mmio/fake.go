package mmio

// Access is one write seen by a Fake.
type Access struct {
	Off uintptr
	Val uint32
}

// Fake is an in-memory RegisterFile. Registers read as zero until written.
// Hooks let tests model hardware that changes registers on its own, e.g. lock bits.
type Fake struct {
	regs   map[uintptr]uint32
	reads  map[uintptr]int
	writes map[uintptr]int
	log    []Access

	// ReadHook, if set, is called on every Read32 with the stored value. Its result is
	// stored and returned.
	ReadHook func(off uintptr, val uint32) uint32
	// WriteHook, if set, is called on every Write32. Its result is what gets stored.
	WriteHook func(off uintptr, val uint32) uint32
}

func NewFake() *Fake {
	return &Fake{
		regs:   make(map[uintptr]uint32),
		reads:  make(map[uintptr]int),
		writes: make(map[uintptr]int),
	}
}

func (f *Fake) Read32(off uintptr) uint32 {
	f.reads[off]++
	val := f.regs[off]
	if f.ReadHook != nil {
		val = f.ReadHook(off, val)
		f.regs[off] = val
	}
	return val
}

func (f *Fake) Write32(off uintptr, val uint32) {
	f.writes[off]++
	f.log = append(f.log, Access{Off: off, Val: val})
	if f.WriteHook != nil {
		val = f.WriteHook(off, val)
	}
	f.regs[off] = val
}

// Get returns the stored value at off without counting a read.
func (f *Fake) Get(off uintptr) uint32 {
	return f.regs[off]
}

// Set stores val at off without counting a write or calling hooks.
func (f *Fake) Set(off uintptr, val uint32) {
	f.regs[off] = val
}

// Reads returns how many times off has been read.
func (f *Fake) Reads(off uintptr) int {
	return f.reads[off]
}

// Writes returns how many times off has been written.
func (f *Fake) Writes(off uintptr) int {
	return f.writes[off]
}

// Log returns every write in order.
func (f *Fake) Log() []Access {
	return f.log
}

// ResetCounts forgets reads, writes and the write log, keeping register contents.
func (f *Fake) ResetCounts() {
	f.reads = make(map[uintptr]int)
	f.writes = make(map[uintptr]int)
	f.log = nil
}

// FakeBus maps every physical range onto one Fake, addressed by absolute physical address.
type FakeBus struct {
	*Fake
}

func NewFakeBus() *FakeBus {
	return &FakeBus{Fake: NewFake()}
}

func (fb *FakeBus) Map(physAddr uintptr, size int) (RegisterFile, error) {
	return Window(fb.Fake, physAddr), nil
}

// Flush lets a FakeBus stand in for DevMem behind Host.Barrier.
func (fb *FakeBus) Flush() error {
	return nil
}

// FakePlatform is a Platform whose Count advances by Step on every read.
type FakePlatform struct {
	Regs     map[ControlReg]uint32
	Step     uint32
	Barriers int
}

func NewFakePlatform(step uint32) *FakePlatform {
	return &FakePlatform{
		Regs: make(map[ControlReg]uint32),
		Step: step,
	}
}

func (fp *FakePlatform) ReadControl(reg ControlReg) uint32 {
	val := fp.Regs[reg]
	if reg == Count {
		fp.Regs[reg] = val + fp.Step
	}
	return val
}

func (fp *FakePlatform) WriteControl(reg ControlReg, val uint32) {
	fp.Regs[reg] = val
}

func (fp *FakePlatform) Barrier() {
	fp.Barriers++
}
