package scripting

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"
)

// CurveFunc is the global a curve script must define: shade(level) -> number.
const CurveFunc = "shade"

// Curve is a loaded brightness curve script. A Curve owns a single LState
// and must not be used from more than one goroutine.
type Curve struct {
	name  string
	L     *lua.LState
	fn    *lua.LFunction
	limit int
}

// LoadCurve runs src in a fresh sandbox and resolves its shade function.
// name identifies the script in errors.
//
// Precondition: maxBrightness > 0; instLimit >= 0 (0 uses DefaultInstructionLimit).
// Postcondition: Returns a Curve the caller must Close, or a non-nil error
// if the script fails to run or defines no shade function.
func LoadCurve(name, src string, maxBrightness, instLimit int) (*Curve, error) {
	L := newState(instLimit)
	RegisterModules(L, maxBrightness)
	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("running curve script %s: %w", name, err)
	}
	fn, ok := L.GetGlobal(CurveFunc).(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("curve script %s: global %q is not a function", name, CurveFunc)
	}
	return &Curve{name: name, L: L, fn: fn, limit: instLimit}, nil
}

// Eval calls shade(level) under a fresh instruction budget.
//
// Postcondition: Returns a finite number, or a non-nil error if the call
// fails, exceeds its budget, or returns anything else.
func (c *Curve) Eval(level int) (float64, error) {
	refill(c.L, c.limit)
	err := c.L.CallByParam(lua.P{Fn: c.fn, NRet: 1, Protect: true}, lua.LNumber(level))
	if err != nil {
		return 0, fmt.Errorf("curve script %s: shade(%d): %w", c.name, level, err)
	}
	ret := c.L.Get(-1)
	c.L.Pop(1)
	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("curve script %s: shade(%d) returned %s, want number", c.name, level, ret.Type())
	}
	v := float64(n)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("curve script %s: shade(%d) returned %v", c.name, level, v)
	}
	return v, nil
}

// Close releases the script's LState.
func (c *Curve) Close() {
	c.L.Close()
}

// Tabulate loads the script and evaluates shade for every level in
// [0, maxBrightness].
//
// Postcondition: Returns maxBrightness+1 values, or a non-nil error.
func Tabulate(name, src string, maxBrightness, instLimit int) ([]float64, error) {
	c, err := LoadCurve(name, src, maxBrightness, instLimit)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	table := make([]float64, maxBrightness+1)
	for level := range table {
		if table[level], err = c.Eval(level); err != nil {
			return nil, err
		}
	}
	return table, nil
}
