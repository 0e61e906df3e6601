package grader

import "github.com/verte-zerg/chantest/internal/noise"

// scriptedChannel returns queued bytes in order, then falls back to the identity.
type scriptedChannel struct {
	p     float64
	queue []byte
	calls int
}

func (c *scriptedChannel) Transform(b byte) byte {
	c.calls++
	if len(c.queue) == 0 {
		return b
	}
	out := c.queue[0]
	c.queue = c.queue[1:]
	return out
}

func (c *scriptedChannel) Probability() float64 {
	return c.p
}

// fakeProducer hands out the same scripted channel for every request.
type fakeProducer struct {
	ch       *scriptedChannel
	requests []noise.Settings
}

func (f *fakeProducer) Set(noise.Settings) error {
	return nil
}

func (f *fakeProducer) Get() (noise.Transformer, error) {
	return f.ch, nil
}

func (f *fakeProducer) GetWith(settings noise.Settings) (noise.Transformer, error) {
	f.requests = append(f.requests, settings)
	return f.ch, nil
}
