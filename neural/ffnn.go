// Package neural provides feedforward neural network controllers for agents.
package neural

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/flap/config"
)

// Network dimensions fixed by the world's observation and action spaces.
const (
	NumInputs  = 3 // y, distance to gap top, distance to gap bottom
	NumOutputs = 1 // jump signal
)

// FFNN is a two-layer feedforward network with tanh activations.
type FFNN struct {
	W1 *mat.Dense    // hidden x inputs
	B1 *mat.VecDense // hidden biases
	W2 *mat.Dense    // outputs x hidden
	B2 *mat.VecDense // output biases

	// InputScale multiplies every raw input before the first layer.
	InputScale float64
}

// NewFFNN creates a randomly initialized network.
func NewFFNN(rng *rand.Rand, cfg *config.NeuralConfig) *FFNN {
	hidden := cfg.Hidden
	nn := newEmpty(hidden, cfg.InputScale)

	// Xavier initialization
	scale1 := math.Sqrt(2.0 / float64(NumInputs))
	scale2 := math.Sqrt(2.0 / float64(hidden))

	w1 := nn.W1.RawMatrix().Data
	for i := range w1 {
		w1[i] = rng.NormFloat64() * scale1
	}
	w2 := nn.W2.RawMatrix().Data
	for i := range w2 {
		w2[i] = rng.NormFloat64() * scale2
	}

	return nn
}

func newEmpty(hidden int, inputScale float64) *FFNN {
	return &FFNN{
		W1:         mat.NewDense(hidden, NumInputs, nil),
		B1:         mat.NewVecDense(hidden, nil),
		W2:         mat.NewDense(NumOutputs, hidden, nil),
		B2:         mat.NewVecDense(NumOutputs, nil),
		InputScale: inputScale,
	}
}

// Hidden returns the number of hidden units.
func (nn *FFNN) Hidden() int {
	r, _ := nn.W1.Dims()
	return r
}

// Forward computes the network output for already scaled inputs.
// Outputs lie in (-1, 1).
func (nn *FFNN) Forward(x *mat.VecDense) *mat.VecDense {
	hidden := mat.NewVecDense(nn.Hidden(), nil)
	hidden.MulVec(nn.W1, x)
	hidden.AddVec(hidden, nn.B1)
	tanhInPlace(hidden)

	out := mat.NewVecDense(NumOutputs, nil)
	out.MulVec(nn.W2, hidden)
	out.AddVec(out, nn.B2)
	tanhInPlace(out)

	return out
}

// Decide scales the raw observation and returns the network outputs.
func (nn *FFNN) Decide(inputs []float64) ([]float64, error) {
	if len(inputs) != NumInputs {
		return nil, fmt.Errorf("ffnn expects %d inputs, got %d", NumInputs, len(inputs))
	}

	x := mat.NewVecDense(NumInputs, nil)
	for i, v := range inputs {
		x.SetVec(i, v*nn.InputScale)
	}

	out := nn.Forward(x)
	result := make([]float64, NumOutputs)
	copy(result, out.RawVector().Data)
	return result, nil
}

func tanhInPlace(v *mat.VecDense) {
	data := v.RawVector().Data
	for i := range data {
		data[i] = math.Tanh(data[i])
	}
}

// MutateSparse applies sparse per-weight mutation for stable lineages.
// rate: probability each weight mutates (e.g., 0.05)
// sigma: standard deviation of normal perturbation (e.g., 0.08)
// bigRate: probability of a large mutation (e.g., 0.01)
// bigSigma: sigma for large mutations (e.g., 0.4)
// Returns avgAbsDelta: the average absolute delta of all applied mutations.
func (nn *FFNN) MutateSparse(rng *rand.Rand, rate, sigma, bigRate, bigSigma float64) float64 {
	biasRate := rate * 0.5 // biases mutate at half the rate

	var totalDelta float64
	var count int

	perturb := func(data []float64, p float64) {
		for i := range data {
			if rng.Float64() >= p {
				continue
			}
			var delta float64
			if rng.Float64() < bigRate {
				delta = rng.NormFloat64() * bigSigma
			} else {
				delta = rng.NormFloat64() * sigma
			}
			data[i] += delta
			totalDelta += math.Abs(delta)
			count++
		}
	}

	perturb(nn.W1.RawMatrix().Data, rate)
	perturb(nn.B1.RawVector().Data, biasRate)
	perturb(nn.W2.RawMatrix().Data, rate)
	perturb(nn.B2.RawVector().Data, biasRate)

	if count == 0 {
		return 0
	}
	return totalDelta / float64(count)
}

// Clone creates a deep copy of the network.
func (nn *FFNN) Clone() *FFNN {
	return &FFNN{
		W1:         mat.DenseCopyOf(nn.W1),
		B1:         mat.VecDenseCopyOf(nn.B1),
		W2:         mat.DenseCopyOf(nn.W2),
		B2:         mat.VecDenseCopyOf(nn.B2),
		InputScale: nn.InputScale,
	}
}

// NumWeights returns the length of the flat parameter vector for a network
// with the given hidden layer size.
func NumWeights(hidden int) int {
	return hidden*NumInputs + hidden + NumOutputs*hidden + NumOutputs
}

// Weights returns all parameters as one vector: W1, B1, W2, B2 in row-major order.
func (nn *FFNN) Weights() []float64 {
	w := make([]float64, 0, NumWeights(nn.Hidden()))
	w = append(w, nn.W1.RawMatrix().Data...)
	w = append(w, nn.B1.RawVector().Data...)
	w = append(w, nn.W2.RawMatrix().Data...)
	w = append(w, nn.B2.RawVector().Data...)
	return w
}

// SetWeights overwrites all parameters from a vector laid out as Weights returns it.
func (nn *FFNN) SetWeights(w []float64) error {
	if want := NumWeights(nn.Hidden()); len(w) != want {
		return fmt.Errorf("weight vector has %d values, want %d", len(w), want)
	}
	for _, dst := range [][]float64{
		nn.W1.RawMatrix().Data,
		nn.B1.RawVector().Data,
		nn.W2.RawMatrix().Data,
		nn.B2.RawVector().Data,
	} {
		n := copy(dst, w)
		w = w[n:]
	}
	return nil
}

// FromWeights builds a network of the given shape from a flat parameter vector.
func FromWeights(hidden int, inputScale float64, w []float64) (*FFNN, error) {
	if hidden <= 0 {
		return nil, fmt.Errorf("hidden layer size must be positive, got %d", hidden)
	}
	nn := newEmpty(hidden, inputScale)
	if err := nn.SetWeights(w); err != nil {
		return nil, err
	}
	return nn, nil
}

// BrainWeights holds network parameters for serialization.
type BrainWeights struct {
	Hidden     int       `json:"hidden"`
	InputScale float64   `json:"input_scale"`
	Weights    []float64 `json:"weights"` // W1, B1, W2, B2 flattened
}

// MarshalWeights captures the network for JSON serialization.
func (nn *FFNN) MarshalWeights() BrainWeights {
	return BrainWeights{
		Hidden:     nn.Hidden(),
		InputScale: nn.InputScale,
		Weights:    nn.Weights(),
	}
}

// UnmarshalWeights restores a network from its serialized form.
func UnmarshalWeights(bw BrainWeights) (*FFNN, error) {
	return FromWeights(bw.Hidden, bw.InputScale, bw.Weights)
}
