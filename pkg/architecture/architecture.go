// Package architecture estimates the size of a feed-forward network
// from its layer widths.
//
// An architecture is written as a bracketed list of layer widths, like
//
//	[64, 128, 1]
//
// which describes three layers connected by two dense (fully-connected) layers.
package architecture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"
	"strconv"
)

// bytes per parameter. Parameters are stored as 32-bit floats.
const bytesPerParameter = 4

const bytesPerMB = 1024 * 1024

// Layers is an ordered list of layer widths, from the input layer to the output layer.
type Layers []int64

func (l Layers) String() string {
	b := new(bytes.Buffer)
	b.WriteByte('[')
	for nth, w := range l {
		if 0 < nth {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatInt(w, 10))
	}
	b.WriteByte(']')
	return b.String()
}

// Metrics are the estimations for an architecture.
type Metrics struct {
	TotalParameters     int64   `json:"totalParameters"`
	TrainableParameters int64   `json:"trainableParameters"`
	ModelSizeMB         float64 `json:"modelSizeMB"`
	LayerCount          int     `json:"layerCount"`
}

var ErrParse = errors.New("architecture: parse error")

// ParseError is returned when an architecture text cannot be decoded into Layers.
//
// errors.Is(err, ErrParse) is true for any ParseError.
type ParseError struct {
	// Text is the architecture text as given.
	Text string

	// Reason tells what is wrong in Text.
	Reason string

	// Cause is the underlying decoder error, if any.
	Cause error
}

func (pe *ParseError) Error() string {
	if pe.Cause != nil {
		return fmt.Sprintf("%s: %s (%q): %s", ErrParse, pe.Reason, pe.Text, pe.Cause)
	}
	return fmt.Sprintf("%s: %s (%q)", ErrParse, pe.Reason, pe.Text)
}

func (pe *ParseError) Is(err error) bool {
	return err == ErrParse
}

func (pe *ParseError) Unwrap() error {
	return pe.Cause
}

// Parse decodes architecture text into Layers.
//
// The text should be a JSON array of positive integers.
//
// # Returns
//
// - Layers: decoded layer widths. It has at least one element.
//
// - error: *ParseError when text is malformed, empty, or has a non-integer or non-positive width,
// or when the parameter count of the architecture does not fit in int64.
func Parse(text string) (Layers, error) {
	dec := json.NewDecoder(bytes.NewBufferString(text))
	dec.UseNumber()

	raw := []any{}
	if err := dec.Decode(&raw); err != nil {
		return nil, &ParseError{Text: text, Reason: "not a list of integers", Cause: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Text: text, Reason: "trailing characters after list"}
	}
	if len(raw) == 0 {
		return nil, &ParseError{Text: text, Reason: "no layers"}
	}

	layers := make(Layers, len(raw))
	for nth, item := range raw {
		n, ok := item.(json.Number)
		if !ok {
			return nil, &ParseError{
				Text: text, Reason: fmt.Sprintf("layer #%d is not a number: %v", nth, item),
			}
		}
		w, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return nil, &ParseError{
				Text: text, Reason: fmt.Sprintf("layer #%d is not an integer: %s", nth, n), Cause: err,
			}
		}
		if w <= 0 {
			return nil, &ParseError{
				Text: text, Reason: fmt.Sprintf("layer #%d should be positive, but %d", nth, w),
			}
		}
		layers[nth] = w
	}

	if _, ok := countParameters(layers); !ok {
		return nil, &ParseError{Text: text, Reason: "too many parameters"}
	}

	return layers, nil
}

// Compute calculates Metrics of layers.
//
// Each pair of adjacent layers (a, b) is a dense layer with a*b weights and b biases.
// All parameters are trainable.
//
// layers should be validated by Parse. For layers with a non-positive width or
// too many parameters, the result is meaningless.
func Compute(layers Layers) Metrics {
	total, _ := countParameters(layers)
	return Metrics{
		TotalParameters:     total,
		TrainableParameters: total,
		ModelSizeMB:         round2(float64(total) * bytesPerParameter / bytesPerMB),
		LayerCount:          len(layers),
	}
}

// ComputeText is Parse then Compute.
func ComputeText(text string) (Metrics, error) {
	layers, err := Parse(text)
	if err != nil {
		return Metrics{}, err
	}
	return Compute(layers), nil
}

// countParameters sums up parameters of dense layers between adjacent layers.
//
// ok is false when the sum overflows int64.
func countParameters(layers Layers) (total int64, ok bool) {
	var sum uint64
	for i := 0; i+1 < len(layers); i++ {
		in, out := uint64(layers[i]), uint64(layers[i+1])

		hi, weights := bits.Mul64(in, out)
		if hi != 0 {
			return 0, false
		}
		params, carry := bits.Add64(weights, out, 0)
		if carry != 0 {
			return 0, false
		}
		sum, carry = bits.Add64(sum, params, 0)
		if carry != 0 {
			return 0, false
		}
	}
	if math.MaxInt64 < sum {
		return 0, false
	}
	return int64(sum), true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
