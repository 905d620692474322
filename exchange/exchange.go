// Package exchange defines the YAML document format used to dump a tuned
// scale for inspection or hand off to another tool: a tagged union of a
// "scale" document (root-relative cents per key) and a "dump" document
// (absolute Hz per key).
package exchange

import (
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/chase3718/microtune/tuning"
)

// Kind discriminates the two document shapes.
type Kind string

const (
	KindScale Kind = "scale"
	KindDump  Kind = "dump"
)

// ScaleItem is one key's offset from the document's root, in cents.
type ScaleItem struct {
	Key   int     `yaml:"key"`
	Cents float64 `yaml:"cents"`
}

// ScaleDocument expresses a tuned scale relative to a root key/pitch, the
// same shape a human would write by hand to describe a scale.
type ScaleDocument struct {
	RootKeyMIDINumber int         `yaml:"root_key_midi_number"`
	RootPitchInHz     float64     `yaml:"root_pitch_in_hz"`
	Items             []ScaleItem `yaml:"items"`
}

// DumpItem is one key's absolute pitch.
type DumpItem struct {
	Key     int     `yaml:"key"`
	PitchHz float64 `yaml:"pitch_hz"`
}

// DumpDocument is a flat absolute-pitch dump, for inspection or for
// feeding into tools that don't understand the root-relative form.
type DumpDocument struct {
	Items []DumpItem `yaml:"items"`
}

// Document is the tagged union written to and read from YAML; exactly one
// of Scale or Dump is set, matching Kind.
type Document struct {
	Kind  Kind           `yaml:"kind"`
	Scale *ScaleDocument `yaml:"scale,omitempty"`
	Dump  *DumpDocument  `yaml:"dump,omitempty"`
}

// NewScaleDocument builds a ScaleDocument covering [firstKey, lastKey] of
// ts, relative to rootKey.
func NewScaleDocument(ts *tuning.TunedScale, rootKey, firstKey, lastKey int) (*Document, error) {
	rootPitch, ok := ts.KeyPitch(rootKey)
	if !ok {
		return nil, fmt.Errorf("exchange: root key %d is not mapped", rootKey)
	}

	doc := &ScaleDocument{
		RootKeyMIDINumber: rootKey,
		RootPitchInHz:     rootPitch.Hz(),
	}
	for key := firstKey; key <= lastKey; key++ {
		p, ok := ts.KeyPitch(key)
		if !ok {
			continue
		}
		doc.Items = append(doc.Items, ScaleItem{Key: key, Cents: rootPitch.RatioTo(p).Cents()})
	}
	return &Document{Kind: KindScale, Scale: doc}, nil
}

// NewDumpDocument builds a DumpDocument covering [firstKey, lastKey] of
// ts.
func NewDumpDocument(ts *tuning.TunedScale, firstKey, lastKey int) *Document {
	doc := &DumpDocument{}
	for key := firstKey; key <= lastKey; key++ {
		p, ok := ts.KeyPitch(key)
		if !ok {
			continue
		}
		doc.Items = append(doc.Items, DumpItem{Key: key, PitchHz: p.Hz()})
	}
	return &Document{Kind: KindDump, Dump: doc}
}

// Marshal renders doc as YAML.
func Marshal(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

// Unmarshal parses a YAML document, validating that Kind matches
// whichever of Scale/Dump is populated.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("exchange: unmarshal: %w", err)
	}
	switch doc.Kind {
	case KindScale:
		if doc.Scale == nil {
			return nil, fmt.Errorf("exchange: kind %q declared but no scale document present", doc.Kind)
		}
	case KindDump:
		if doc.Dump == nil {
			return nil, fmt.Errorf("exchange: kind %q declared but no dump document present", doc.Kind)
		}
	default:
		return nil, fmt.Errorf("exchange: unknown document kind %q", doc.Kind)
	}
	return &doc, nil
}
