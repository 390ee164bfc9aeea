package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Problem is a calibration problem file.
//
// Conventions:
// - deposit and swap quotes are in percent (e.g., 4.30 means 4.30%)
// - spread quotes are in bp
// - tenors are "2D", "1W", "3M", "10Y"; node and instrument dates roll from the anchor
type Problem struct {
	ID       string `yaml:"id" json:"id"`
	Anchor   string `yaml:"anchor" json:"anchor"` // "2025-01-02"
	Calendar string `yaml:"calendar" json:"calendar"`
	DayCount string `yaml:"day_count" json:"day_count"`

	Algorithm       string  `yaml:"algorithm" json:"algorithm"`
	Underdetermined string  `yaml:"underdetermined" json:"underdetermined"`
	Tolerance       float64 `yaml:"tolerance" json:"tolerance"`
	MaxIterations   int     `yaml:"max_iterations" json:"max_iterations"`
	Lambda          float64 `yaml:"lambda" json:"lambda"`
	Workers         int     `yaml:"workers" json:"workers"`

	Curves      []CurveSpec      `yaml:"curves" json:"curves"`
	Composites  []CompositeSpec  `yaml:"composites" json:"composites"`
	Instruments []InstrumentSpec `yaml:"instruments" json:"instruments"`

	// Risk instruments are priced off the calibrated curves and reported with their
	// sensitivity to each quote. Their quotes are ignored.
	Risk []InstrumentSpec `yaml:"risk" json:"risk"`
}

// CurveSpec is a calibrated curve with a node at the anchor and one per tenor.
type CurveSpec struct {
	ID            string   `yaml:"id" json:"id"`
	Interpolation string   `yaml:"interpolation" json:"interpolation"`
	Tenors        []string `yaml:"tenors" json:"tenors"`

	// Values are initial node values, anchor first. Defaults to 1 everywhere.
	Values []float64 `yaml:"values" json:"values"`
}

// CompositeSpec combines calibrated curves, or earlier composites, into one curve.
type CompositeSpec struct {
	ID          string   `yaml:"id" json:"id"`
	Curves      []string `yaml:"curves" json:"curves"`
	Composition string   `yaml:"composition" json:"composition"`
}

// InstrumentSpec is one quoted instrument. Type is deposit, swap or spread.
type InstrumentSpec struct {
	Type  string  `yaml:"type" json:"type"`
	Label string  `yaml:"label" json:"label"`
	Quote float64 `yaml:"quote" json:"quote"`

	// Index sets calendar, day count, frequency, spot lag and pay delay defaults.
	Index string `yaml:"index" json:"index"`

	// deposit
	Curve string `yaml:"curve" json:"curve"`

	// swap
	Discount   string `yaml:"discount" json:"discount"`
	Forecast   string `yaml:"forecast" json:"forecast"`
	Frequency  string `yaml:"frequency" json:"frequency"` // defaults to the index convention, else 1Y
	PayDelay   *int   `yaml:"pay_delay" json:"pay_delay"`
	EndOfMonth bool   `yaml:"end_of_month" json:"end_of_month"`

	// deposit and swap
	Start    string `yaml:"start" json:"start"` // forward start tenor, optional
	Tenor    string `yaml:"tenor" json:"tenor"`
	DayCount string `yaml:"day_count" json:"day_count"`

	// spread
	A *InstrumentSpec `yaml:"a" json:"a"`
	B *InstrumentSpec `yaml:"b" json:"b"`
}

// ReadProblem reads a problem from path, or from r when path is empty or "-".
func ReadProblem(path string, r io.Reader) (*Problem, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(r)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read problem: %w", err)
	}
	return ParseProblem(data)
}

// ParseProblem decodes a JSON or YAML problem. Unknown fields are rejected.
func ParseProblem(data []byte) (*Problem, error) {
	var p Problem
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty problem")
	}

	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to parse JSON problem: %w", err)
		}
		return &p, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(trimmed))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse YAML problem: %w", err)
	}
	return &p, nil
}
