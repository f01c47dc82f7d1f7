package symbol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/getsentry/ftracer/internal/errorutil"
)

type (
	// Symbol is the display name of a function reference.
	Symbol struct {
		Name      string
		HadOffset bool
	}

	// Resolver turns a raw function reference into a Symbol.
	Resolver interface {
		Resolve(ref uint64) (Symbol, error)
	}

	// Annotations resolves references with the address annotations a
	// debugger prints for them, such as "0x401136 <foo+6>".
	Annotations map[uint64]string

	// Chain tries each resolver in turn and returns the first match.
	Chain []Resolver
)

// ParseAnnotated extracts the symbol name out of an annotated address. The
// name is the text between the first '<' and the last '>', without its
// trailing "+offset". When no annotation is found, the trimmed text is
// returned along with ErrMalformedSymbol.
func ParseAnnotated(text string) (Symbol, error) {
	start := strings.IndexByte(text, '<')
	end := strings.LastIndexByte(text, '>')
	if start == -1 || end <= start+1 {
		return Symbol{Name: strings.TrimSpace(text)}, fmt.Errorf("%w: no annotation in %q", errorutil.ErrMalformedSymbol, text)
	}
	name := text[start+1 : end]
	if i := strings.LastIndexByte(name, '+'); i > 0 {
		return Symbol{Name: name[:i], HadOffset: true}, nil
	}
	return Symbol{Name: name}, nil
}

func (a Annotations) Resolve(ref uint64) (Symbol, error) {
	text, exists := a[ref]
	if !exists {
		return Symbol{}, fmt.Errorf("%w: no annotation for %s", errorutil.ErrMalformedSymbol, Fallback(ref))
	}
	return ParseAnnotated(text)
}

func (c Chain) Resolve(ref uint64) (Symbol, error) {
	var best Symbol
	err := fmt.Errorf("%w: no resolver for %s", errorutil.ErrMalformedSymbol, Fallback(ref))
	for _, r := range c {
		s, rerr := r.Resolve(ref)
		if rerr == nil {
			return s, nil
		}
		if best.Name == "" {
			best, err = s, rerr
		}
	}
	return best, err
}

// Fallback returns the text displayed for a reference that can't be resolved.
func Fallback(ref uint64) string {
	return "0x" + strconv.FormatUint(ref, 16)
}
