package dataset

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ChizhovVadim/brilliant/internal/features"
)

// ConfigError is fatal for a batch: no dataset is valid without correct
// normalization statistics.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("normalization statistics %v: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Stats are column means and standard deviations, read-only after load.
type Stats struct {
	Mean []float64
	Std  []float64
}

func LoadStats(meanPath, stdPath string) (*Stats, error) {
	mean, err := loadVector(meanPath, features.VectorSize)
	if err != nil {
		return nil, err
	}
	std, err := loadVector(stdPath, features.VectorSize)
	if err != nil {
		return nil, err
	}
	return &Stats{Mean: mean, Std: std}, nil
}

func loadVector(path string, size int) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	var fields = strings.FieldsFunc(string(data), func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r' || r == ' ' || r == '\t'
	})
	if len(fields) != size {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("%v values expected, found %v", size, len(fields))}
	}
	var result = make([]float64, size)
	for i, field := range fields {
		result[i], err = strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, &ConfigError{Path: path, Err: fmt.Errorf("value %v: %w", i, err)}
		}
	}
	return result, nil
}

// Apply normalizes x in place; columns with zero std are left untouched.
func (s *Stats) Apply(x []float64) {
	for i := range x {
		if s.Std[i] != 0 {
			x[i] = (x[i] - s.Mean[i]) / s.Std[i]
		}
	}
}

// ComputeStats returns column means and population standard deviations.
func ComputeStats(rows [][]float64) (*Stats, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows")
	}
	var size = len(rows[0])
	var mean = make([]float64, size)
	var std = make([]float64, size)
	for _, row := range rows {
		if len(row) != size {
			return nil, fmt.Errorf("row of %v values, %v expected", len(row), size)
		}
		for i, v := range row {
			mean[i] += v
		}
	}
	var n = float64(len(rows))
	for i := range mean {
		mean[i] /= n
	}
	for _, row := range rows {
		for i, v := range row {
			std[i] += (v - mean[i]) * (v - mean[i])
		}
	}
	for i := range std {
		std[i] = math.Sqrt(std[i] / n)
	}
	return &Stats{Mean: mean, Std: std}, nil
}

func SaveStats(s *Stats, meanPath, stdPath string) error {
	if err := saveVector(meanPath, s.Mean); err != nil {
		return err
	}
	return saveVector(stdPath, s.Std)
}

func saveVector(path string, values []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var w = bufio.NewWriter(file)
	var buf []byte
	for i, v := range values {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
	}
	buf = append(buf, '\n')
	if _, err := w.Write(buf); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return file.Close()
}
