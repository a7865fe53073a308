package scripting

import (
	lua "github.com/yuin/gopher-lua"
)

// ModuleName is the global table exposing helpers to curve scripts.
const ModuleName = "mapsvg"

// RegisterModules registers the mapsvg.* Lua table into L:
//
//	mapsvg.max_brightness   highest stored brightness level
//	mapsvg.clamp(v, lo, hi) v limited to [lo, hi]
//	mapsvg.step(level, n)   level rounded down to a multiple of n
//
// Precondition: maxBrightness > 0.
// Postcondition: the mapsvg global is defined in L.
func RegisterModules(L *lua.LState, maxBrightness int) {
	mod := L.NewTable()
	L.SetField(mod, "max_brightness", lua.LNumber(maxBrightness))
	L.SetField(mod, "clamp", L.NewFunction(luaClamp))
	L.SetField(mod, "step", L.NewFunction(luaStep))
	L.SetGlobal(ModuleName, mod)
}

func luaClamp(L *lua.LState) int {
	v := float64(L.CheckNumber(1))
	lo := float64(L.CheckNumber(2))
	hi := float64(L.CheckNumber(3))
	if lo > hi {
		L.ArgError(2, "lo must not exceed hi")
		return 0
	}
	L.Push(lua.LNumber(min(max(v, lo), hi)))
	return 1
}

func luaStep(L *lua.LState) int {
	level := L.CheckInt(1)
	n := L.CheckInt(2)
	if n <= 0 {
		L.ArgError(2, "step must be positive")
		return 0
	}
	L.Push(lua.LNumber(level - level%n))
	return 1
}
