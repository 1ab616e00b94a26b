package wire

import (
	"fmt"
	"sync"

	"github.com/alxayo/go-arcade/internal/logging"
)

// Registry holds all registered candidate formats in registration order.
// Order is observable: when two formats both decode a packet successfully,
// the one registered first wins (see IdentifyFormat / the Connection Server's
// ambiguity handling).
//
// Concurrency model: formats are expected to be registered during
// initialization (single writer) and queried continuously while serving
// (many readers); an RWMutex protects the slice the same way the teacher's
// stream registry guarded its map.
type Registry struct {
	mu      sync.RWMutex
	formats []Format
	log     *logging.Logger
}

// NewRegistry creates an empty registry. A nil logger falls back to a no-op
// sink.
func NewRegistry(log *logging.Logger) *Registry {
	if log == nil {
		log = logging.NoOp()
	}
	return &Registry{log: log.WithTag("wire.registry")}
}

// Register appends format to the ordered candidate list. There is no
// uniqueness check — registering the same format twice, or two formats with
// the same name, is legal and simply doubles its odds of matching.
func (r *Registry) Register(format Format) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats = append(r.formats, format)
}

// IdentifyFormat returns, in registration order, every registered format
// whose Verify returned true for data. A Verify panic is recovered, logged
// at verbose with a hex/ascii preview, and that format is skipped. If no
// format matches (including the case where the registry is empty), the
// single-element slice {DefaultFormat} is returned — IdentifyFormat is total.
func (r *Registry) IdentifyFormat(data []byte) []Format {
	r.mu.RLock()
	formats := make([]Format, len(r.formats))
	copy(formats, r.formats)
	r.mu.RUnlock()

	var matched []Format
	for _, f := range formats {
		if r.safeVerify(f, data) {
			matched = append(matched, f)
		}
	}
	if len(matched) == 0 {
		return []Format{DefaultFormat}
	}
	return matched
}

func (r *Registry) safeVerify(f Format, data []byte) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
			r.log.Verbose(func() string {
				return fmt.Sprintf("format %q verify panicked: %v (peek: %s)", f.Name(), rec, HexAsciiPeek(data, 20))
			})
		}
	}()
	return f.Verify(data)
}
