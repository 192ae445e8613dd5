package pattern_test

import (
	"strconv"
	"testing"

	. "github.com/coreman2200/funtimes-legopi/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var StrobeScenario = []struct {
	Elapsed uint32
	Expect  uint8
}{
	{0, 1},
	{49, 1},
	{50, 0},
	{249, 0},
	{250, 1},
	{299, 1},
	{300, 0},
	{1499, 0},
	{1500, 1},
	{1550, 0},
}

func TestStrobeScenario(t *testing.T) {
	for _, v := range StrobeScenario {
		t.Run("Elapsed "+strconv.FormatUint(uint64(v.Elapsed), 10), func(t *testing.T) {
			assert.Equal(t, v.Expect, StrobeAt(v.Elapsed, 50, 200, 1500))
		})
	}
}

func TestStrobeIsBinaryAndPeriodic(t *testing.T) {
	const period = 1500
	for x := uint32(0); x < period; x++ {
		base := StrobeAt(x, 50, 200, period)
		require.Contains(t, []uint8{0, 1}, base)
		for k := uint32(1); k <= 8; k++ {
			require.Equal(t, base, StrobeAt(k*period+x, 50, 200, period), "x=%d k=%d", x, k)
		}
	}
}

func TestStrobeZeroPeriodDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { StrobeAt(1234, 50, 200, 0) })
	assert.Equal(t, uint8(1), StrobeAt(10, 50, 200, 0))
	assert.Equal(t, uint8(0), StrobeAt(5000, 50, 200, 0))
}

func TestPulseBounds(t *testing.T) {
	for e := uint32(0); e < 12000; e += 10 {
		v := PulseAt(e, 125, 125, 3000)
		require.LessOrEqual(t, v, uint8(250), "elapsed %d", e)
	}
	assert.Equal(t, uint8(125), PulseAt(0, 125, 125, 3000))
	assert.Equal(t, uint8(250), PulseAt(750, 125, 125, 3000))
	assert.Equal(t, uint8(0), PulseAt(2250, 125, 125, 3000))
	assert.Equal(t, uint8(125), PulseAt(1500, 125, 125, 3000))
}

func TestPulseClamps(t *testing.T) {
	assert.Equal(t, uint8(255), PulseAt(750, 200, 200, 3000))
	assert.Equal(t, uint8(0), PulseAt(2250, 200, 50, 3000))
}

func TestPulseRespectsOffsetAndAmplitude(t *testing.T) {
	for e := uint32(0); e < 3000; e += 10 {
		v := PulseAt(e, 40, 100, 1000)
		require.GreaterOrEqual(t, v, uint8(60))
		require.LessOrEqual(t, v, uint8(140))
	}
}

func TestTubelightSequence(t *testing.T) {
	// on=50 gap=200 period=1500 -> bounds 50 250 300 1600 1650 1850 1950 2150
	expect := []struct {
		Elapsed uint32
		Want    uint8
	}{
		{0, 1}, {49, 1},
		{50, 0}, {249, 0},
		{250, 1}, {299, 1},
		{300, 0}, {1599, 0},
		{1600, 1}, {1649, 1},
		{1650, 0}, {1849, 0},
		{1850, 1}, {1949, 1},
		{1950, 0}, {2149, 0},
	}

	var latch bool
	for _, v := range expect {
		assert.Equal(t, v.Want, TubelightAt(v.Elapsed, 50, 200, 1500, &latch), "elapsed %d", v.Elapsed)
		assert.False(t, latch, "latched early at %d", v.Elapsed)
	}

	assert.Equal(t, uint8(1), TubelightAt(2150, 50, 200, 1500, &latch))
	assert.True(t, latch)
}

func TestTubelightLatchIsMonotonic(t *testing.T) {
	var latch bool
	for e := uint32(0); e <= 2200; e += 10 {
		TubelightAt(e, 50, 200, 1500, &latch)
	}
	require.True(t, latch)

	// wrapped and smaller values keep the tube lit
	for _, e := range []uint32{0, 50, 60, 299, 1700, 1960, 11990} {
		assert.Equal(t, uint8(1), TubelightAt(e, 50, 200, 1500, &latch), "elapsed %d", e)
	}
	assert.True(t, latch)
}

func TestTubelightIsRepeatableBeforeLatch(t *testing.T) {
	var a, b bool
	for e := uint32(0); e < 2150; e += 7 {
		assert.Equal(t, TubelightAt(e, 50, 200, 1500, &a), TubelightAt(e, 50, 200, 1500, &b))
	}
	assert.False(t, a)
}

func TestEvalDispatch(t *testing.T) {
	var latch bool
	assert.Equal(t, uint8(1), NewStrobe().Eval(0, nil))
	assert.Equal(t, uint8(125), NewPulse().Eval(0, nil))
	assert.Equal(t, uint8(42), NewConstant(42).Eval(999, nil))
	assert.Equal(t, uint8(1), NewTubelight().Eval(5000, &latch))
	assert.True(t, latch)

	// nil latch never persists
	assert.Equal(t, uint8(0), NewTubelight().Eval(60, nil))
}

func TestBinary(t *testing.T) {
	assert.True(t, NewStrobe().Binary())
	assert.True(t, NewTubelight().Binary())
	assert.False(t, NewPulse().Binary())
	assert.False(t, NewConstant(0).Binary())
}

func TestDuration(t *testing.T) {
	assert.Equal(t, uint32(2150), NewTubelight().Duration())
	assert.Zero(t, NewStrobe().Duration())
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Constant, Strobe, Pulse, Tubelight} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseKind(" Strobe ")
	require.NoError(t, err)
	assert.Equal(t, Strobe, got)

	_, err = ParseKind("sparkle")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, NewStrobe().Validate())
	assert.NoError(t, NewPulse().Validate())
	assert.NoError(t, NewTubelight().Validate())
	assert.NoError(t, NewConstant(255).Validate())

	bad := []Pattern{
		{Kind: Strobe, OnTime: 50, Gap: 200, Period: 0},
		{Kind: Strobe, OnTime: 0, Gap: 200, Period: 1500},
		{Kind: Strobe, OnTime: 500, Gap: 600, Period: 1500},
		{Kind: Pulse, Amplitude: 125, Offset: 125, Period: 0},
		{Kind: Pulse, Amplitude: 200, Offset: 125, Period: 3000},
		{Kind: Tubelight, OnTime: 50, Gap: 200, Period: 200},
		{Kind: Tubelight, OnTime: 0, Gap: 200, Period: 1500},
		{Kind: Kind(9)},
	}
	for i, p := range bad {
		assert.Error(t, p.Validate(), "case %d", i)
	}
}

func TestWraps(t *testing.T) {
	assert.True(t, NewStrobe().Wraps())
	assert.True(t, NewPulse().Wraps())
	assert.True(t, NewConstant(1).Wraps())
	assert.False(t, NewTubelight().Wraps())
}
