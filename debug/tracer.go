package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"loxvm/bytecode"
)

// Tracer prints the value stack and the next instruction before each step of
// the dispatch loop, mirroring clox's DEBUG_TRACE_EXECUTION build flag. It
// is a global, lockable writer that no-ops entirely when disabled, and can
// be narrowed to only the functions whose name matches one of filters.
type Tracer struct {
	enabled bool
	filters []string
	writer  io.Writer
	mu      sync.Mutex
}

var global *Tracer

// Init installs the global tracer used by vm.VM when tracing is requested.
// filters is a set of glob patterns (matched with path/filepath.Match); a
// nil or empty slice traces every function.
func Init(enabled bool, filters []string, writer io.Writer) {
	if writer == nil {
		writer = os.Stderr
	}
	global = &Tracer{enabled: enabled, filters: filters, writer: writer}
}

// Enabled reports whether a global tracer has been installed and turned on.
func Enabled() bool {
	return global != nil && global.enabled
}

// matchesFilter reports whether funcName should be traced.
func (t *Tracer) matchesFilter(funcName string) bool {
	if len(t.filters) == 0 {
		return true
	}
	for _, pattern := range t.filters {
		if matched, _ := filepath.Match(pattern, funcName); matched {
			return true
		}
	}
	return false
}

// Step prints the current stack contents followed by the disassembly of the
// instruction at ip in chunk, so long as funcName (the name of the function
// currently executing) passes the tracer's filter.
func Step(stack []bytecode.Value, chunk *bytecode.Chunk, ip int, funcName string) {
	if global == nil || !global.enabled || !global.matchesFilter(funcName) {
		return
	}
	global.mu.Lock()
	defer global.mu.Unlock()

	fmt.Fprint(global.writer, "          [ ")
	for _, v := range stack {
		fmt.Fprintf(global.writer, "%s ", v.String())
	}
	fmt.Fprintln(global.writer, "]")

	DisassembleInstruction(global.writer, chunk, ip)
}
