package graph

import "sync"

// Demangler is the capability the Program uses to turn a mangled symbol
// name into a human-readable one. See package demangle for the concrete
// implementation; Program depends only on this narrow interface so it can
// be tested with a stub and so the demangling strategy (in-process library
// vs. child process) stays an implementation detail.
type Demangler interface {
	Demangle(name string) string
}

type noopDemangler struct{}

func (noopDemangler) Demangle(name string) string { return name }

// prettyClaim tracks which symbol, if any, currently owns a stripped name
// as its PrettyName. Once a second symbol collides on the same stripped
// form the slot becomes ambiguous permanently (see AddObject).
type prettyClaim struct {
	holder    SymID
	ambiguous bool
}

// Program is the sole owner of all Symbol and File records extracted from
// a binary. Every other component (vtable scanner, dominator calculator,
// weight propagator, reporters) holds only symbol ids or *Symbol/*File
// pointers borrowed from here; nothing outlives Program teardown.
type Program struct {
	mu sync.RWMutex

	dem   Demangler
	trace *Trace

	symbols map[SymID]*Symbol
	byName  map[string]*Symbol
	addr    *RangeMap[*Symbol]

	fileOffsets *RangeMap[int64] // value is vmaddr - fileoff for the segment

	files map[string]*File

	entry *Symbol

	nextID    SymID
	totalSize uint64

	claims map[string]*prettyClaim
}

// NewProgram constructs an empty Program. dem may be nil, in which case
// names pass through unchanged (useful for tests that don't care about
// demangling).
func NewProgram(dem Demangler, trace *Trace) *Program {
	if dem == nil {
		dem = noopDemangler{}
	}
	return &Program{
		dem:         dem,
		trace:       trace,
		symbols:     make(map[SymID]*Symbol),
		byName:      make(map[string]*Symbol),
		addr:        NewRangeMap[*Symbol](),
		fileOffsets: NewRangeMap[int64](),
		files:       make(map[string]*File),
		claims:      make(map[string]*prettyClaim),
		nextID:      1,
	}
}

// AddObject adds a symbol to the program. It is idempotent on name: if a
// symbol with this name already exists, the existing record is returned
// unchanged (first-writer wins for attributes; this may silently drop
// differing (addr, size, isData) on a later call for the same name — see
// spec Open Questions).
func (p *Program) AddObject(name string, addr, size uint64, isData bool) *Symbol {
	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.byName[name]; ok {
		return existing
	}

	sym := &Symbol{
		ID:     p.nextID,
		Name:   name,
		Addr:   addr,
		Size:   size,
		IsData: isData,
	}
	p.nextID++
	p.totalSize += size

	sym.Demangled = p.dem.Demangle(name)
	p.claimPrettyName(sym)

	p.symbols[sym.ID] = sym
	p.byName[name] = sym
	if size > 0 {
		p.addr.Add(addr, size, sym)
	}

	if p.trace.Matches(name) {
		p.trace.Logf("add_object: id=%d name=%q addr=0x%x size=%d is_data=%v pretty=%q",
			sym.ID, sym.Name, sym.Addr, sym.Size, sym.IsData, sym.PrettyName)
	}

	return sym
}

// claimPrettyName implements the stripped-name disambiguation described in
// spec §4.4: the first symbol to claim a stripped form gets the short
// name; a later collision forces both the new symbol and the original
// claimant onto their fully demangled names, and the slot is marked
// ambiguous so further collisions don't re-demote anyone.
func (p *Program) claimPrettyName(sym *Symbol) {
	stripped, _ := stripName(sym.Demangled)

	claim, exists := p.claims[stripped]
	if !exists {
		p.claims[stripped] = &prettyClaim{holder: sym.ID}
		sym.PrettyName = stripped
		return
	}

	sym.PrettyName = sym.Demangled

	if claim.ambiguous {
		return
	}

	if holder, ok := p.symbols[claim.holder]; ok {
		holder.PrettyName = holder.Demangled
	}
	claim.ambiguous = true
}

// AddFileMapping records that file offset fileoff corresponds to virtual
// address vmaddr for filesize bytes. Overlapping mappings are
// last-writer-wins, matching RangeMap's general insert semantics.
func (p *Program) AddFileMapping(vmaddr, fileoff, filesize uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	diff := int64(vmaddr) - int64(fileoff)
	p.fileOffsets.Add(vmaddr, filesize, diff)
}

// TryFileOffset converts a virtual address to a file offset using the
// segment mappings recorded via AddFileMapping.
func (p *Program) TryFileOffset(vmaddr uint64) (uint64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	diff, ok := p.fileOffsets.TryGet(vmaddr)
	if !ok {
		return 0, false
	}
	return uint64(int64(vmaddr) - diff), true
}

// SetEntryPoint designates sym as the root for dominator, weight, and
// reachability analysis.
func (p *Program) SetEntryPoint(sym *Symbol) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entry = sym
}

// EntryPoint returns the current entry point, or nil if unset.
func (p *Program) EntryPoint() *Symbol {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.entry
}

// AddRef adds a directed reference edge from -> to, and, when both symbols
// have a known File, the corresponding file-to-file edge. Duplicate edges
// are collapsed; self-edges are recorded but ignored later by weight
// propagation.
func (p *Program) AddRef(from, to *Symbol) {
	if from == nil || to == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addRefLocked(from, to)
}

func (p *Program) addRefLocked(from, to *Symbol) {
	added := from.addRef(to.ID)
	if added && from.File != nil && to.File != nil {
		from.File.addRef(to.File.Name)
	}
	if added && (p.trace.Matches(from.Name) || p.trace.Matches(to.Name)) {
		p.trace.Logf("add_ref: %s (id=%d) -> %s (id=%d)", from.Name, from.ID, to.Name, to.ID)
	}
}

// TryAddRef resolves vmaddr via the address index; if it hits a known
// symbol, adds the edge from -> that symbol. A miss is silent (spec §4.4):
// not every word read during vtable scanning is a pointer to a symbol.
// Returns whether an edge was added.
func (p *Program) TryAddRef(from *Symbol, vmaddr uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	to, ok := p.addr.TryGet(vmaddr)
	if !ok {
		return false
	}
	before := len(from.Refs)
	p.addRefLocked(from, to)
	return len(from.Refs) > before
}

// FindObjectByName looks up a symbol by its (mangled) name.
func (p *Program) FindObjectByName(name string) *Symbol {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.byName[name]
}

// FindObjectByAddr looks up the symbol whose range contains addr.
func (p *Program) FindObjectByAddr(addr uint64) *Symbol {
	p.mu.RLock()
	defer p.mu.RUnlock()
	sym, _ := p.addr.TryGet(addr)
	return sym
}

// GetOrCreateFile returns the File named name, creating it if necessary.
func (p *Program) GetOrCreateFile(name string) *File {
	p.mu.Lock()
	defer p.mu.Unlock()
	if f, ok := p.files[name]; ok {
		return f
	}
	f := &File{Name: name}
	p.files[name] = f
	return f
}

// SetSymbolFile assigns sym to file, adding sym's size to the file's
// SourceLineWeight.
func (p *Program) SetSymbolFile(sym *Symbol, file *File) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sym.File = file
	file.SourceLineWeight += sym.Size
}

// File returns the File named name, or nil if GetOrCreateFile has never
// been called with that name.
func (p *Program) File(name string) *File {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.files[name]
}

// Trace returns the tracing configuration this Program was constructed
// with, or nil. Set once at construction and never mutated afterward, so
// this is safe to read without holding mu. Components built after the
// Program (vtable.Scan) use this to log against the same traced symbol
// rather than taking their own, possibly inconsistent, Trace.
func (p *Program) Trace() *Trace {
	return p.trace
}

// NumSymbols returns the number of symbols added so far.
func (p *Program) NumSymbols() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.symbols)
}

// NextID returns the id that would be assigned to the next new symbol.
// Callers that need a dense id-indexed array can size it with this.
func (p *Program) NextID() SymID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.nextID
}

// TotalSize returns the sum of sizes of all symbols added so far.
func (p *Program) TotalSize() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.totalSize
}

// ForEachSymbol calls fn once per symbol. Iteration order is unspecified.
func (p *Program) ForEachSymbol(fn func(*Symbol)) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, s := range p.symbols {
		fn(s)
	}
}

// ForEachFile calls fn once per file. Iteration order is unspecified.
func (p *Program) ForEachFile(fn func(*File)) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, f := range p.files {
		fn(f)
	}
}

// Symbol returns the symbol with the given id, or nil.
func (p *Program) Symbol(id SymID) *Symbol {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.symbols[id]
}
