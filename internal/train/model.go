package train

import (
	"fmt"
	"math/rand"

	"github.com/ChizhovVadim/brilliant/internal/ml"
)

// Model is a dense network with one ReLU hidden layer and a single logit
// output. A Model is not safe for concurrent use; use ThreadCopy per worker.
type Model struct {
	layer1 *Layer
	layer2 *Layer
	cost   ml.IModelCost
}

func NewModel(rnd *rand.Rand, inputSize, hiddenSize int) *Model {
	return &Model{
		layer1: NewLayer(
			inputSize,
			make([]Neuron, hiddenSize),
			&ml.ReLuActivation{}).
			InitWeightsReLU(rnd),
		layer2: NewLayer(
			hiddenSize,
			make([]Neuron, 1),
			&ml.IdentityActivation{}).
			InitWeightsXavier(rnd),
		cost: &ml.LogitCrossEntropyCost{},
	}
}

func (m *Model) InputSize() int  { return m.layer1.weights.Cols }
func (m *Model) HiddenSize() int { return m.layer1.weights.Rows }

func (m *Model) ThreadCopy() *Model {
	return &Model{
		layer1: m.layer1.ThreadCopy(),
		layer2: m.layer2.ThreadCopy(),
		cost:   m.cost,
	}
}

// Predict returns the logit of the "not brilliant" class.
func (m *Model) Predict(features []float64) float64 {
	m.layer1.Forward(nil, features)
	m.layer2.Forward(m.layer1.outputs, nil)
	return m.layer2.outputs[0].Activation
}

func (m *Model) CalcCost(sample *Sample) float64 {
	var predicted = m.Predict(sample.Features)
	return sample.Weight * m.cost.Cost(predicted, sample.Target)
}

func (m *Model) Train(sample *Sample) {
	var predicted = m.Predict(sample.Features)
	m.layer2.outputs[0].Error = sample.Weight * m.cost.CostPrime(predicted, sample.Target)
	m.layer2.Backward(m.layer1.outputs, nil)
	m.layer1.Backward(nil, sample.Features)
}

func (m *Model) AddGradients(mainModel *Model) {
	if m == mainModel {
		return
	}
	m.layer1.AddGradients(mainModel.layer1)
	m.layer2.AddGradients(mainModel.layer2)
}

func (m *Model) ApplyGradients(learningRate float64) {
	m.layer1.ApplyGradients(learningRate)
	m.layer2.ApplyGradients(learningRate)
}

func (m *Model) matrices() []*ml.Matrix {
	return []*ml.Matrix{&m.layer1.weights, &m.layer1.biases, &m.layer2.weights, &m.layer2.biases}
}

// snapshot copies the current weights.
func (m *Model) snapshot() [][]float64 {
	var result [][]float64
	for _, matrix := range m.matrices() {
		result = append(result, append([]float64(nil), matrix.Data...))
	}
	return result
}

// restore writes weights in place, so thread copies see them too.
func (m *Model) restore(weights [][]float64) {
	for i, matrix := range m.matrices() {
		copy(matrix.Data, weights[i])
	}
}

func (m *Model) Network() *Network {
	return &Network{
		Topology: Topology{
			Inputs:        uint32(m.InputSize()),
			HiddenNeurons: []uint32{uint32(m.HiddenSize())},
			Outputs:       1,
		},
		Weights: []ml.Matrix{m.layer1.weights, m.layer2.weights},
		Biases:  []ml.Matrix{m.layer1.biases, m.layer2.biases},
	}
}

func (m *Model) Save(path string) error {
	return m.Network().Save(path)
}

func NewModelFromNetwork(n *Network) (*Model, error) {
	if len(n.Topology.HiddenNeurons) != 1 || n.Topology.Outputs != 1 {
		return nil, fmt.Errorf("%w: one hidden layer and one output expected", ErrBadNetwork)
	}
	var m = &Model{
		layer1: NewLayer(int(n.Topology.Inputs), make([]Neuron, n.Topology.HiddenNeurons[0]), &ml.ReLuActivation{}),
		layer2: NewLayer(int(n.Topology.HiddenNeurons[0]), make([]Neuron, 1), &ml.IdentityActivation{}),
		cost:   &ml.LogitCrossEntropyCost{},
	}
	m.layer1.weights = n.Weights[0]
	m.layer1.biases = n.Biases[0]
	m.layer2.weights = n.Weights[1]
	m.layer2.biases = n.Biases[1]
	return m, nil
}

func LoadModel(path string) (*Model, error) {
	var n, err = LoadNetwork(path)
	if err != nil {
		return nil, err
	}
	return NewModelFromNetwork(&n)
}
