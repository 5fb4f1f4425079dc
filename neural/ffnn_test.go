package neural

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/flap/config"
)

func testNeuralConfig() *config.NeuralConfig {
	return &config.NeuralConfig{Hidden: 6, InputScale: 0.00125}
}

func TestNewFFNN(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng, testNeuralConfig())

	if r, c := nn.W1.Dims(); r != 6 || c != NumInputs {
		t.Errorf("W1 dims = %dx%d, want 6x%d", r, c, NumInputs)
	}
	if r, c := nn.W2.Dims(); r != NumOutputs || c != 6 {
		t.Errorf("W2 dims = %dx%d, want %dx6", r, c, NumOutputs)
	}
	if got := len(nn.Weights()); got != NumWeights(6) {
		t.Errorf("len(Weights()) = %d, want %d", got, NumWeights(6))
	}
}

func TestDecide(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng, testNeuralConfig())

	out, err := nn.Decide([]float64{350, 120, 80})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if len(out) != NumOutputs {
		t.Fatalf("len(out) = %d, want %d", len(out), NumOutputs)
	}
	if out[0] <= -1 || out[0] >= 1 {
		t.Errorf("output %v outside (-1, 1)", out[0])
	}

	again, _ := nn.Decide([]float64{350, 120, 80})
	if again[0] != out[0] {
		t.Error("Decide is not deterministic")
	}
}

func TestDecideWrongArity(t *testing.T) {
	nn := NewFFNN(rand.New(rand.NewSource(1)), testNeuralConfig())
	if _, err := nn.Decide([]float64{1, 2}); err == nil {
		t.Error("expected error for two inputs")
	}
}

func TestDecideKnownWeights(t *testing.T) {
	// One hidden unit that passes input 0 through, one output copying it.
	// Layout: W1 (1x3), B1, W2 (1x1), B2.
	w := []float64{1, 0, 0, 0, 1, 0}
	nn, err := FromWeights(1, 0.01, w)
	if err != nil {
		t.Fatalf("FromWeights: %v", err)
	}

	out, _ := nn.Decide([]float64{50, 0, 0})
	want := math.Tanh(math.Tanh(0.5))
	if math.Abs(out[0]-want) > 1e-12 {
		t.Errorf("out = %v, want %v", out[0], want)
	}
}

func TestMutateSparse(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng, testNeuralConfig())
	before := nn.Weights()

	delta := nn.MutateSparse(rng, 1.0, 0.1, 0, 0)
	if delta <= 0 {
		t.Errorf("avgAbsDelta = %v, want > 0", delta)
	}

	after := nn.Weights()
	changed := 0
	for i := range before {
		if before[i] != after[i] {
			changed++
		}
	}
	// Rate 1 touches every weight; biases mutate at half rate
	if changed < 6*NumInputs+NumOutputs*6 {
		t.Errorf("only %d parameters changed", changed)
	}

	if d := nn.MutateSparse(rng, 0, 0.1, 0, 0); d != 0 {
		t.Errorf("rate 0 should not mutate, avgAbsDelta = %v", d)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng, testNeuralConfig())
	clone := nn.Clone()

	clone.MutateSparse(rng, 1.0, 1.0, 0, 0)

	orig := nn.Weights()
	cloned := clone.Weights()
	same := true
	for i := range orig {
		if orig[i] != cloned[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("mutating the clone should not leave it identical to the original")
	}

	fresh := NewFFNN(rand.New(rand.NewSource(42)), testNeuralConfig()).Weights()
	for i := range orig {
		if orig[i] != fresh[i] {
			t.Fatal("mutating the clone changed the original")
		}
	}
}

func TestSetWeightsLength(t *testing.T) {
	nn := NewFFNN(rand.New(rand.NewSource(1)), testNeuralConfig())
	if err := nn.SetWeights(make([]float64, 3)); err == nil {
		t.Error("expected length error")
	}
	if _, err := FromWeights(0, 1, nil); err == nil {
		t.Error("expected error for empty hidden layer")
	}
}

func TestMarshalWeightsJSON(t *testing.T) {
	nn := NewFFNN(rand.New(rand.NewSource(5)), testNeuralConfig())

	data, err := json.Marshal(nn.MarshalWeights())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var bw BrainWeights
	if err := json.Unmarshal(data, &bw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	restored, err := UnmarshalWeights(bw)
	if err != nil {
		t.Fatalf("UnmarshalWeights: %v", err)
	}

	inputs := []float64{300, 40, 160}
	a, _ := nn.Decide(inputs)
	b, _ := restored.Decide(inputs)
	if a[0] != b[0] {
		t.Errorf("restored network output %v, want %v", b[0], a[0])
	}
}
