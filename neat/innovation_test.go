package neat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInnovationCounter(t *testing.T) {
	counter := NewInnovationCounter(0)

	conn1 := counter.ConnectionInnovation(1, 2)
	conn2 := counter.ConnectionInnovation(1, 2)
	conn3 := counter.ConnectionInnovation(2, 3)

	assert.Equal(t, conn1, conn2)
	assert.Less(t, conn1, conn3)

	neur1 := counter.NeuronInnovation()
	neur2 := counter.NeuronInnovation()
	assert.Less(t, neur1, neur2)
	assert.Less(t, conn3, neur1)
}

func TestInnovationCounterDirectionMatters(t *testing.T) {
	counter := NewInnovationCounter(4)

	ab := counter.ConnectionInnovation(0, 2)
	ba := counter.ConnectionInnovation(2, 0)

	assert.Equal(t, uint32(4), ab)
	assert.Equal(t, uint32(5), ba)
	assert.Equal(t, uint32(6), counter.Next())
}

func TestInnovationCounterNeuronMarkingsIncrease(t *testing.T) {
	counter := NewInnovationCounter(3)
	last := counter.NeuronInnovation()
	assert.Equal(t, uint32(3), last)

	for i := 0; i < 50; i++ {
		var next uint32
		if i%3 == 0 {
			next = counter.ConnectionInnovation(uint32(i), uint32(i+1))
		} else {
			next = counter.NeuronInnovation()
		}
		require.Greater(t, next, last)
		last = next
	}
}

func TestInnovationCounterConcurrentRequests(t *testing.T) {
	counter := NewInnovationCounter(0)

	const workers = 8
	const perWorker = 200
	results := make([][]uint32, workers)
	pairs := make([]uint32, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				results[w] = append(results[w], counter.NeuronInnovation())
			}
			pairs[w] = counter.ConnectionInnovation(100, 200)
		}(w)
	}
	wg.Wait()

	seen := make(map[uint32]bool)
	for _, rs := range results {
		for _, r := range rs {
			require.False(t, seen[r], "marking %d issued twice", r)
			seen[r] = true
		}
	}
	for _, p := range pairs {
		assert.Equal(t, pairs[0], p)
		assert.False(t, seen[p])
	}
	assert.Equal(t, uint32(workers*perWorker+1), counter.Next())
}

func TestInnovationCounterStateRoundTrip(t *testing.T) {
	counter := NewInnovationCounter(4)
	conn := counter.ConnectionInnovation(0, 3)
	counter.NeuronInnovation()

	restored := RestoreInnovationCounter(counter.State())

	assert.Equal(t, counter.Next(), restored.Next())
	assert.Equal(t, conn, restored.ConnectionInnovation(0, 3))
	assert.Equal(t, counter.NeuronInnovation(), restored.NeuronInnovation())

	empty := RestoreInnovationCounter(CounterState{Next: 9})
	assert.Equal(t, uint32(9), empty.ConnectionInnovation(1, 2))
}
