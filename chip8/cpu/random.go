package cpu

import (
	"math/rand/v2"
	"time"
)

// RandomSource provides the random bytes used by the masked random instruction.
type RandomSource interface {
	Uint8() uint8
}

type pcgSource struct {
	r *rand.Rand
}

// NewRandomSource returns a PCG backed source. The same seed always produces the same bytes.
func NewRandomSource(seed uint64) RandomSource {
	return &pcgSource{r: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))}
}

// NewTimeSeededRandomSource returns a source seeded from the wall clock.
func NewTimeSeededRandomSource() RandomSource {
	return NewRandomSource(uint64(time.Now().UnixNano()))
}

func (p *pcgSource) Uint8() uint8 {
	return uint8(p.r.Uint32())
}

// SequenceSource replays a fixed list of bytes, wrapping around at the end.
type SequenceSource struct {
	values []uint8
	pos    int
}

func NewSequenceSource(values ...uint8) *SequenceSource {
	return &SequenceSource{values: values}
}

func (s *SequenceSource) Uint8() uint8 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}
