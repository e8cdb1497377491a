package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ChizhovVadim/brilliant/internal/domain"
)

// SaveCSV writes one row per move: name, label (empty when unlabelled),
// then the features.
func SaveCSV(path string, samples []domain.MoveSample) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var bw = bufio.NewWriter(file)
	if err := WriteCSV(bw, samples); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return file.Close()
}

func WriteCSV(w io.Writer, samples []domain.MoveSample) error {
	var cw = csv.NewWriter(w)
	var record []string
	for _, sample := range samples {
		record = record[:0]
		var label string
		if sample.HasLabel {
			label = strconv.Itoa(sample.Label)
		}
		record = append(record, sample.Name, label)
		for _, v := range sample.Features {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func LoadCSV(path string) ([]domain.MoveSample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file)
}

func ReadCSV(r io.Reader) ([]domain.MoveSample, error) {
	var cr = csv.NewReader(bufio.NewReader(r))
	cr.ReuseRecord = true
	var result []domain.MoveSample
	for line := 1; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("line %v: name and label expected", line)
		}
		var sample = domain.MoveSample{
			MoveInfo: domain.MoveInfo{Name: record[0]},
			Features: make([]float64, len(record)-2),
		}
		if record[1] != "" {
			sample.Label, err = strconv.Atoi(record[1])
			if err != nil {
				return nil, fmt.Errorf("line %v: bad label %q", line, record[1])
			}
			sample.HasLabel = true
		}
		for i, field := range record[2:] {
			sample.Features[i], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %v: feature %v: %w", line, i, err)
			}
		}
		result = append(result, sample)
	}
	return result, nil
}

// Matrix returns the feature rows of samples.
func Matrix(samples []domain.MoveSample) [][]float64 {
	var result = make([][]float64, len(samples))
	for i := range samples {
		result[i] = samples[i].Features
	}
	return result
}
