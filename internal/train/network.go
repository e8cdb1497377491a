package train

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ChizhovVadim/brilliant/internal/ml"
)

type Topology struct {
	Inputs        uint32
	Outputs       uint32
	HiddenNeurons []uint32
}

func (t *Topology) LayerSize() int {
	return len(t.HiddenNeurons) + 1
}

type Network struct {
	Id       uint32
	Topology Topology
	Weights  []ml.Matrix
	Biases   []ml.Matrix
}

var ErrBadNetwork = errors.New("bad network file")

// Binary format of a network file:
// - All the data is stored in little-endian layout
// - All the matrices are written in column-major
// - The magic number/version consists of 4 bytes:
//   - 66 (which is the ASCII code for B), uint8
//   - 90 (which is the ASCII code for Z), uint8
//   - 2 The major part of the current version number, uint8
//   - 0 The minor part of the current version number, uint8
//
// - 4 bytes (uint32) to denote the network ID
// - 4 bytes (uint32) to denote input size
// - 4 bytes (uint32) to denote output size
// - 4 bytes (uint32) number of hidden layers
// - 4 bytes (uint32) for the size of each hidden layer
// - All weights for a layer as float32, followed by all the biases of the same layer
// - Other layers follow just like the above point
func (n *Network) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var w = bufio.NewWriter(f)
	if err := n.Write(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func (n *Network) Write(w io.Writer) error {
	var buf = []byte{66, 90, 2, 0}
	if _, err := w.Write(buf); err != nil {
		return err
	}

	binary.LittleEndian.PutUint32(buf, n.Id)
	if _, err := w.Write(buf); err != nil {
		return err
	}

	buf = make([]byte, 3*4+4*len(n.Topology.HiddenNeurons))
	binary.LittleEndian.PutUint32(buf[0:], n.Topology.Inputs)
	binary.LittleEndian.PutUint32(buf[4:], n.Topology.Outputs)
	binary.LittleEndian.PutUint32(buf[8:], uint32(len(n.Topology.HiddenNeurons)))
	for i := 0; i < len(n.Topology.HiddenNeurons); i++ {
		binary.LittleEndian.PutUint32(buf[12+4*i:], n.Topology.HiddenNeurons[i])
	}
	if _, err := w.Write(buf); err != nil {
		return err
	}

	for i := 0; i < n.Topology.LayerSize(); i++ {
		if err := writeSlice(w, n.Weights[i].Data); err != nil {
			return err
		}
		if err := writeSlice(w, n.Biases[i].Data); err != nil {
			return err
		}
	}
	return nil
}

func LoadNetwork(path string) (Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return Network{}, err
	}
	defer f.Close()

	net, err := ReadNetwork(bufio.NewReader(f))
	if err != nil {
		return Network{}, fmt.Errorf("load network %v: %w", path, err)
	}
	return net, nil
}

func ReadNetwork(r io.Reader) (Network, error) {
	var buf = make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Network{}, err
	}
	if buf[0] != 66 || buf[1] != 90 {
		return Network{}, fmt.Errorf("%w: magic word does not match", ErrBadNetwork)
	}
	if buf[2] != 2 || buf[3] != 0 {
		return Network{}, fmt.Errorf("%w: version %v.%v is not supported", ErrBadNetwork, buf[2], buf[3])
	}

	if _, err := io.ReadFull(r, buf); err != nil {
		return Network{}, err
	}
	var id = binary.LittleEndian.Uint32(buf)

	buf = make([]byte, 12)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Network{}, err
	}
	var inputs = binary.LittleEndian.Uint32(buf[:4])
	var outputs = binary.LittleEndian.Uint32(buf[4:8])
	var layers = binary.LittleEndian.Uint32(buf[8:])
	if layers > 16 {
		return Network{}, fmt.Errorf("%w: %v hidden layers", ErrBadNetwork, layers)
	}

	buf = make([]byte, 4*layers)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Network{}, err
	}
	var neurons = make([]uint32, layers)
	for i := range neurons {
		neurons[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}

	var net = Network{
		Id: id,
		Topology: Topology{
			Inputs:        inputs,
			Outputs:       outputs,
			HiddenNeurons: neurons,
		},
	}
	var layerSize = net.Topology.LayerSize()
	net.Weights = make([]ml.Matrix, layerSize)
	net.Biases = make([]ml.Matrix, layerSize)

	var inputSize = int(inputs)
	for i := 0; i < layerSize; i++ {
		var outputSize int
		if i == len(neurons) {
			outputSize = int(outputs)
		} else {
			outputSize = int(neurons[i])
		}
		net.Weights[i] = ml.NewMatrix(outputSize, inputSize)
		if err := readSlice(r, net.Weights[i].Data); err != nil {
			return Network{}, err
		}
		net.Biases[i] = ml.NewMatrix(outputSize, 1)
		if err := readSlice(r, net.Biases[i].Data); err != nil {
			return Network{}, err
		}
		inputSize = outputSize
	}
	return net, nil
}

func writeSlice(w io.Writer, data []float64) error {
	var buf = make([]byte, 4)
	for j := range data {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(data[j])))
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func readSlice(r io.Reader, data []float64) error {
	var buf = make([]byte, 4)
	for j := range data {
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		data[j] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf)))
	}
	return nil
}
