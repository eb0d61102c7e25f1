package walker

import (
	"fmt"

	"github.com/MJE43/antwalk/internal/engine"
)

// Direction is one of the four axis-aligned unit moves.
type Direction int

const (
	PosX Direction = iota
	PosY
	NegX
	NegY
	numDirections
)

func (d Direction) String() string {
	switch d {
	case PosX:
		return "+x"
	case PosY:
		return "+y"
	case NegX:
		return "-x"
	case NegY:
		return "-y"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// DirectionSource draws directions uniformly from the four moves.
type DirectionSource interface {
	Direction() Direction
}

// StreamSource draws directions from an engine stream. A 4-byte float is a
// multiple of 2^-32, so floor(f*4) hits each direction with probability 1/4.
type StreamSource struct {
	stream *engine.Stream
}

// NewStreamSource returns the direction source for one trial.
func NewStreamSource(seeds engine.Seeds, trial uint64) *StreamSource {
	return &StreamSource{stream: engine.NewStream(seeds, trial)}
}

func (s *StreamSource) Direction() Direction {
	return Direction(s.stream.NextFloat() * float64(numDirections))
}

// Walker is the position and elapsed time of one simulated ant.
type Walker struct {
	X, Y           float64
	Elapsed        float64
	Steps          int
	StepSize       float64
	SecondsPerStep float64

	src DirectionSource
}

// New places a walker at the origin.
func New(stepSize, secondsPerStep float64, src DirectionSource) *Walker {
	return &Walker{
		StepSize:       stepSize,
		SecondsPerStep: secondsPerStep,
		src:            src,
	}
}

// Step moves the walker one step in a random direction. Bounds are the
// caller's concern.
func (w *Walker) Step() {
	switch d := w.src.Direction(); d {
	case PosX:
		w.X += w.StepSize
	case PosY:
		w.Y += w.StepSize
	case NegX:
		w.X -= w.StepSize
	case NegY:
		w.Y -= w.StepSize
	default:
		panic(fmt.Sprintf("walker: source returned %v", d))
	}

	w.Steps++
	w.Elapsed = float64(w.Steps) * w.SecondsPerStep
}
