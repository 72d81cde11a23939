package neat

import (
	"fmt"
	"math"
)

// NeuronClass ranks a neuron between the sensor layer and the output layer.
// Sensors hold the minimum value, outputs the maximum and hidden neurons
// anything strictly in between. Connections always run from a lower class to
// a higher one.
type NeuronClass uint32

const (
	SensorClass NeuronClass = 0
	OutputClass NeuronClass = math.MaxUint32
)

// IsSensor reports whether c is the sensor class.
func (c NeuronClass) IsSensor() bool { return c == SensorClass }

// IsOutput reports whether c is the output class.
func (c NeuronClass) IsOutput() bool { return c == OutputClass }

// IsHidden reports whether c lies strictly between sensor and output.
func (c NeuronClass) IsHidden() bool { return c != SensorClass && c != OutputClass }

// Midpoint returns the class halfway between a and b, rounded down.
func Midpoint(a, b NeuronClass) NeuronClass {
	return NeuronClass((uint64(a) + uint64(b)) / 2)
}

func (c NeuronClass) String() string {
	switch c {
	case SensorClass:
		return "sensor"
	case OutputClass:
		return "output"
	default:
		return fmt.Sprintf("hidden(%d)", uint32(c))
	}
}
