package symbol

import (
	"debug/elf"
	"fmt"
	"sort"

	"github.com/getsentry/ftracer/internal/errorutil"
)

type (
	// Entry is a named address range.
	Entry struct {
		Addr uint64
		Size uint64
		Name string
	}

	// Table resolves references to the entry containing them.
	Table struct {
		entries []Entry
	}
)

func NewTable(entries []Entry) *Table {
	sorted := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		sorted = append(sorted, e)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Addr < sorted[j].Addr
	})
	return &Table{entries: sorted}
}

func (t *Table) Resolve(ref uint64) (Symbol, error) {
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Addr > ref
	}) - 1
	if i < 0 {
		return Symbol{}, fmt.Errorf("%w: %s is below every symbol", errorutil.ErrMalformedSymbol, Fallback(ref))
	}
	e := t.entries[i]
	// sized symbols only cover their range, unsized ones run to the next entry
	if e.Size > 0 && ref >= e.Addr+e.Size {
		return Symbol{}, fmt.Errorf("%w: %s is outside %s", errorutil.ErrMalformedSymbol, Fallback(ref), e.Name)
	}
	return Symbol{Name: e.Name, HadOffset: ref != e.Addr}, nil
}

func (t *Table) Len() int {
	return len(t.entries)
}

// LoadELF builds a table from the function symbols of an ELF executable.
func LoadELF(path string) (*Table, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	symbols, err := f.Symbols()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	entries := make([]Entry, 0, len(symbols))
	for _, s := range symbols {
		if elf.ST_TYPE(s.Info) != elf.STT_FUNC || s.Value == 0 {
			continue
		}
		entries = append(entries, Entry{Addr: s.Value, Size: s.Size, Name: s.Name})
	}
	return NewTable(entries), nil
}
