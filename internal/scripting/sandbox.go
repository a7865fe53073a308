// Package scripting evaluates user-supplied brightness curves written in
// Lua. Scripts run in a restricted state with no file, OS, or module access
// and a fixed instruction allowance per call.
package scripting

import (
	"context"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit caps the Lua instructions one shade call may run
// when no limit is configured.
const DefaultInstructionLimit = 100_000

// blockedGlobals are base-library functions that reach outside the state.
var blockedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "require", "collectgarbage", "module"}

// allowance is a context whose Done channel closes once it has been polled
// n times. The VM polls Done before every instruction, so the count is an
// instruction budget. A state is driven by one goroutine at a time, so the
// counter needs no synchronisation.
type allowance struct {
	context.Context
	cancel context.CancelFunc
	n      int
}

func (a *allowance) Done() <-chan struct{} {
	a.n--
	if a.n <= 0 {
		a.cancel()
	}
	return a.Context.Done()
}

// newState returns a state with the base, table, string, and math
// libraries only and a budget of instLimit instructions.
func newState(instLimit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	refill(L, instLimit)
	return L
}

// refill replaces whatever budget L had left with a fresh instLimit
// instructions; instLimit <= 0 selects DefaultInstructionLimit.
func refill(L *lua.LState, instLimit int) {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	L.SetContext(&allowance{Context: ctx, cancel: cancel, n: instLimit})
}
