package bench

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Sample maps metric names to the values one benchmark execution reported.
type Sample map[string]float64

// Keys returns the metric names in sorted order.
func (s Sample) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// parseSample decodes exactly one JSON object whose values are all numbers.
func parseSample(r io.Reader) (Sample, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	if raw == nil {
		return nil, errors.New("expected a JSON object, got null")
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON object")
	}

	sample := make(Sample, len(raw))

	for name, v := range raw {
		num, ok := v.(json.Number)
		if !ok {
			return nil, fmt.Errorf("metric %q: expected a number, got %T", name, v)
		}

		f, err := strconv.ParseFloat(string(num), 64)
		if err != nil {
			return nil, fmt.Errorf("metric %q: %w", name, err)
		}

		sample[name] = f
	}

	return sample, nil
}

func parseSampleBytes(b []byte) (Sample, error) {
	return parseSample(bytes.NewReader(b))
}
