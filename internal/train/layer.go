package train

import (
	"math/rand"

	"github.com/ChizhovVadim/brilliant/internal/ml"
)

type Neuron struct {
	Activation float64
	Error      float64
	Prime      float64
}

type Layer struct {
	activationFn ml.IActivationFn
	outputs      []Neuron
	weights      ml.Matrix
	biases       ml.Matrix
	wGradients   ml.Gradients
	bGradients   ml.Gradients
}

// ThreadCopy shares weights with l and owns its outputs and gradients.
func (l *Layer) ThreadCopy() *Layer {
	return &Layer{
		activationFn: l.activationFn,
		outputs:      make([]Neuron, len(l.outputs)),
		weights:      l.weights,
		biases:       l.biases,
		wGradients:   ml.NewGradients(l.wGradients.Rows, l.wGradients.Cols),
		bGradients:   ml.NewGradients(l.bGradients.Rows, l.bGradients.Cols),
	}
}

func NewLayer(
	inputSize int,
	outputs []Neuron,
	activationFn ml.IActivationFn,
) *Layer {
	var outputSize = len(outputs)
	return &Layer{
		outputs:      outputs,
		activationFn: activationFn,
		weights:      ml.NewMatrix(outputSize, inputSize),
		biases:       ml.NewMatrix(outputSize, 1),
		wGradients:   ml.NewGradients(outputSize, inputSize),
		bGradients:   ml.NewGradients(outputSize, 1),
	}
}

func (layer *Layer) InitWeightsXavier(rnd *rand.Rand) *Layer {
	var outputSize = layer.weights.Rows
	var inputSize = layer.weights.Cols
	var variance = 2.0 / float64(inputSize+outputSize)
	ml.InitUniform(rnd, layer.weights.Data, variance)
	return layer
}

func (layer *Layer) InitWeightsReLU(rnd *rand.Rand) *Layer {
	var inputSize = layer.weights.Cols
	var variance = 2.0 / float64(inputSize)
	ml.InitUniform(rnd, layer.weights.Data, variance)
	return layer
}

// Forward takes its input either from the previous layer (input1) or from a
// dense feature row (input2).
func (layer *Layer) Forward(input1 []Neuron, input2 []float64) {
	for outputIndex := range layer.outputs {
		var x = layer.biases.Data[outputIndex]
		for inputIndex := range input1 {
			x += layer.weights.Get(outputIndex, inputIndex) * input1[inputIndex].Activation
		}
		for inputIndex, inputValue := range input2 {
			if inputValue == 0 {
				continue
			}
			x += layer.weights.Get(outputIndex, inputIndex) * inputValue
		}
		var n = &layer.outputs[outputIndex]
		n.Activation = layer.activationFn.Sigma(x)
		n.Prime = layer.activationFn.SigmaPrime(x)
	}
}

func (layer *Layer) Backward(input1 []Neuron, input2 []float64) {
	for inputIndex := range input1 {
		input1[inputIndex].Error = 0
	}
	for outputIndex := range layer.outputs {
		var n = &layer.outputs[outputIndex]
		var x = n.Error * n.Prime
		for inputIndex := range input1 {
			input1[inputIndex].Error += layer.weights.Get(outputIndex, inputIndex) * x
		}
	}

	for outputIndex := range layer.outputs {
		var n = &layer.outputs[outputIndex]
		var x = n.Error * n.Prime
		if x == 0 {
			continue
		}
		layer.bGradients.Add(outputIndex, 0, x)

		for inputIndex := range input1 {
			layer.wGradients.Add(outputIndex, inputIndex, x*input1[inputIndex].Activation)
		}
		for inputIndex, inputValue := range input2 {
			if inputValue == 0 {
				continue
			}
			layer.wGradients.Add(outputIndex, inputIndex, x*inputValue)
		}
	}
}

func (layer *Layer) AddGradients(main *Layer) {
	layer.wGradients.AddTo(&main.wGradients)
	layer.bGradients.AddTo(&main.bGradients)
}

func (layer *Layer) ApplyGradients(learningRate float64) {
	layer.wGradients.Apply(&layer.weights, learningRate)
	layer.bGradients.Apply(&layer.biases, learningRate)
}
