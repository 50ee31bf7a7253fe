package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Build flag for debug mode - can be overridden at build time:
// go build -ldflags "-X github.com/emreeduymaz/self-healing-ios/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// debugOutput is the writer for debug output (defaults to nil, meaning no output)
var debugOutput io.Writer

// debugMutex protects access to debug output
var debugMutex sync.Mutex

func init() {
	if EnableDebug == "true" || os.Getenv("SELFHEAL_DEBUG") != "" {
		debugOutput = os.Stderr
	}
}

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// Enabled reports whether debug output is currently active.
func Enabled() bool {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput != nil
}

// Printf writes a formatted debug message when debug output is enabled.
func Printf(format string, args ...interface{}) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	if debugOutput == nil {
		return
	}
	fmt.Fprintf(debugOutput, "[selfheal] "+format+"\n", args...)
}
