package monitor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHistory(t *testing.T) {
	assert.Equal(t, 10, NewHistory(10).size)
	assert.Equal(t, DefaultHistorySize, NewHistory(0).size)
	assert.Equal(t, DefaultHistorySize, NewHistory(-1).size)
}

func TestHistory_PushAndRead(t *testing.T) {
	h := NewHistory(5)
	assert.Zero(t, h.Count())
	assert.Nil(t, h.BPM(3))

	h.Push(60, 50)
	h.Push(66, 49)
	h.Push(72, 51)

	assert.Equal(t, 3, h.Count())
	assert.Equal(t, []float64{60, 66, 72}, h.BPM(10))
	assert.Equal(t, []float64{66, 72}, h.BPM(2))
	assert.Equal(t, []float64{49, 51}, h.Rate(2))
}

func TestHistory_Wraps(t *testing.T) {
	h := NewHistory(3)
	for bpm := 1; bpm <= 7; bpm++ {
		h.Push(bpm, 0)
	}

	assert.Equal(t, 3, h.Count())
	assert.Equal(t, []float64{5, 6, 7}, h.BPM(3), "oldest first, newest last")
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(3)
	h.Push(72, 50)
	h.Clear()

	assert.Zero(t, h.Count())
	assert.Nil(t, h.Rate(1))
}

func TestHistory_Concurrent(t *testing.T) {
	h := NewHistory(50)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.Push(j, j)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = h.BPM(10)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, h.Count())
}
