package classify

import (
	"fmt"
	"sort"
)

// LabelEncoder maps disease label strings to stable integer codes.
// Codes are assigned 0..K-1 over the sorted distinct label set and carry
// no ordering semantics. An encoder is fit once per training run and is
// immutable afterwards.
type LabelEncoder struct {
	Classes []string `msgpack:"classes"`

	index map[string]int
}

// NewLabelEncoder creates an unfitted encoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// NewLabelEncoderFromClasses reconstructs an encoder from a persisted
// class list.
func NewLabelEncoderFromClasses(classes []string) *LabelEncoder {
	enc := &LabelEncoder{Classes: classes}
	enc.buildIndex()
	return enc
}

// Fit assigns codes over the distinct labels in sorted order.
func (e *LabelEncoder) Fit(labels []string) {
	seen := make(map[string]struct{}, len(labels))
	classes := make([]string, 0, len(labels))
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		classes = append(classes, label)
	}
	sort.Strings(classes)

	e.Classes = classes
	e.buildIndex()
}

// Encode returns the integer code for a label.
func (e *LabelEncoder) Encode(label string) (int, error) {
	if e.index == nil {
		e.buildIndex()
	}
	code, ok := e.index[label]
	if !ok {
		return 0, fmt.Errorf("classify: unknown label %q", label)
	}
	return code, nil
}

// Decode returns the label for an integer code.
func (e *LabelEncoder) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.Classes) {
		return "", fmt.Errorf("classify: label code %d out of range", code)
	}
	return e.Classes[code], nil
}

// Len returns the number of distinct classes.
func (e *LabelEncoder) Len() int {
	return len(e.Classes)
}

func (e *LabelEncoder) buildIndex() {
	e.index = make(map[string]int, len(e.Classes))
	for i, class := range e.Classes {
		e.index[class] = i
	}
}
