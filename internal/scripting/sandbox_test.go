package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mapsvg/internal/scripting"
)

func TestLoadCurve_NoEscapeFromSandbox(t *testing.T) {
	for _, src := range []string{
		`os.execute("true")`,
		`io.write("x")`,
		`dofile("/etc/passwd")`,
		`loadfile("curve.lua")`,
		`load("return 1")`,
		`require("os")`,
		`debug.getinfo(1)`,
		`collectgarbage()`,
	} {
		t.Run(src, func(t *testing.T) {
			_, err := scripting.LoadCurve("escape.lua", src+"\nfunction shade(l) return l end", 255, 0)
			assert.Error(t, err)
		})
	}
}

func TestCurveEval_SandboxAppliesInsideShade(t *testing.T) {
	c, err := scripting.LoadCurve("late.lua", `function shade(l) return os.time() end`, 255, 0)
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Eval(0)
	assert.Error(t, err)
}

func TestLoadCurve_SafeLibrariesAvailable(t *testing.T) {
	table, err := scripting.Tabulate("libs.lua", `
		local bands = {}
		table.insert(bands, "DIM")
		table.insert(bands, "LIT")
		function shade(l)
			local band = bands[1 + math.floor(l / 128)]
			if string.lower(band) == "dim" then return 0 end
			return 1
		end
	`, 255, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, table[127])
	assert.Equal(t, 1.0, table[128])
}

func TestLoadCurve_RunawayTopLevel(t *testing.T) {
	_, err := scripting.LoadCurve("spin.lua", `while true do end`, 255, 500)
	assert.Error(t, err)
}

func TestTabulate_BudgetIsPerCall(t *testing.T) {
	// Each call runs well under 2000 instructions; all 256 together run far
	// more, so the budget must be refilled for every level.
	table, err := scripting.Tabulate("busy.lua", `
		function shade(l)
			local s = 0
			for i = 1, 50 do s = s + 1 end
			return l / 255
		end
	`, 255, 2000)
	require.NoError(t, err)
	assert.Len(t, table, 256)
}

func TestCurveEval_Property_RunawayAlwaysStopped(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(100, 5000).Draw(rt, "limit")
		c, err := scripting.LoadCurve("spin.lua", `function shade(l) while true do end end`, 255, limit)
		require.NoError(rt, err)
		defer c.Close()
		_, err = c.Eval(rapid.IntRange(0, 255).Draw(rt, "level"))
		assert.Error(rt, err)
	})
}

func TestModules_Clamp(t *testing.T) {
	table, err := scripting.Tabulate("clamp.lua", `
		function shade(l) return mapsvg.clamp(l / 100, 0.25, 2) end
	`, 255, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.25, table[0])
	assert.Equal(t, 0.5, table[50])
	assert.Equal(t, 2.0, table[255])

	_, err = scripting.Tabulate("bad.lua", `function shade(l) return mapsvg.clamp(l, 2, 1) end`, 255, 0)
	assert.ErrorContains(t, err, "lo must not exceed hi")
}

func TestModules_Step(t *testing.T) {
	table, err := scripting.Tabulate("step.lua", `
		function shade(l) return mapsvg.step(l, 32) end
	`, 255, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, table[31])
	assert.Equal(t, 32.0, table[32])
	assert.Equal(t, 224.0, table[255])

	_, err = scripting.Tabulate("zero.lua", `function shade(l) return mapsvg.step(l, 0) end`, 255, 0)
	assert.ErrorContains(t, err, "step must be positive")
}

func TestModules_MaxBrightness(t *testing.T) {
	c, err := scripting.LoadCurve("max.lua", `function shade(l) return mapsvg.max_brightness end`, 100, 0)
	require.NoError(t, err)
	defer c.Close()
	v, err := c.Eval(3)
	require.NoError(t, err)
	assert.Equal(t, 100.0, v)
}
