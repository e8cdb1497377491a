package domain

// Label values of class.txt. Brilliant moves are labelled 0; label 2 is a
// third class that binary training merges into 1.
const (
	LabelBrilliant    = 0
	LabelNotBrilliant = 1
)

// MoveInfo is one candidate move folder.
type MoveInfo struct {
	Name     string
	Dir      string
	Uci      string
	Fen      string
	Label    int
	HasLabel bool
}

// MoveSample is one dataset row.
type MoveSample struct {
	MoveInfo
	Features []float64
}

// BinaryLabel collapses the ternary label: 2 becomes 1.
func BinaryLabel(label int) int {
	if label >= LabelNotBrilliant {
		return LabelNotBrilliant
	}
	return LabelBrilliant
}
