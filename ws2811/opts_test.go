package ws2811

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptsValidate(t *testing.T) {
	good := Opts{Channels: []Channel{{Index: 0, GPIO: 18, Count: 8}}}
	assert.NoError(t, good.Validate())

	bad := map[string]Opts{
		"none":      {},
		"index":     {Channels: []Channel{{Index: 2, GPIO: 18, Count: 1}}},
		"dup":       {Channels: []Channel{{Index: 0, GPIO: 18, Count: 1}, {Index: 0, GPIO: 13, Count: 1}}},
		"count":     {Channels: []Channel{{Index: 0, GPIO: 18, Count: 0}}},
		"pin":       {Channels: []Channel{{Index: 0, GPIO: 4, Count: 1}}},
		"negatives": {Freq: -1, Channels: []Channel{{Index: 0, GPIO: 18, Count: 1}}},
	}
	for name, o := range bad {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, o.Validate())
		})
	}
}

func TestOptsDefaults(t *testing.T) {
	o := Opts{}.withDefaults()
	assert.Equal(t, DFLT_FREQ, o.Freq)
	assert.Equal(t, DFLT_DMA, o.DMA)

	o = Opts{Freq: 400000, DMA: 5}.withDefaults()
	assert.Equal(t, 400000, o.Freq)
	assert.Equal(t, 5, o.DMA)
}
