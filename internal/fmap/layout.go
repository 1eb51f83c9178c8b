// Package fmap reads and writes the theater weather snapshot format: a flat
// array of 32-bit words holding a small header followed by one block per
// field.
package fmap

import (
	"fmt"

	"github.com/couchcryptid/theater-wx-engine/internal/domain"
)

// Supported versions.
const (
	MinVersion uint32 = 1
	MaxVersion uint32 = 8
)

const (
	wordSize   = 4
	headerSize = 11
	cells      = domain.Cells
)

// Header word offsets.
const (
	wordVersion = iota
	wordDimX
	wordDimY
	wordAirmassDirection
	wordAirmassSpeed
	wordTurbulenceTop
	wordTurbulenceBottom
	wordContrails
)

// Kind is the word interpretation of a field.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
)

// Capability records whether a version carries a field and where it starts.
type Capability struct {
	Present bool
	Offset  int
	Kind    Kind
}

func at(offset int, kind Kind) Capability {
	return Capability{Present: true, Offset: offset, Kind: kind}
}

// Layout is the field map of one version.
type Layout struct {
	Version       uint32
	Type          Capability
	Pressure      Capability
	Temperature   Capability
	WindSpeed     Capability
	WindDirection Capability
	CloudBase     Capability
	CloudCover    Capability
	CloudSize     Capability
	CloudType     Capability
	Shower        Capability
	Visibility    Capability
	Fog           Capability
	Words         int
}

// common is the field map shared by every version.
var common = Layout{
	Type:          at(headerSize, KindInt),
	Pressure:      at(3492, KindFloat),
	Temperature:   at(6973, KindFloat),
	WindSpeed:     at(10454, KindFloat),
	WindDirection: at(45264, KindFloat),
	CloudBase:     at(80074, KindFloat),
	CloudCover:    at(83555, KindInt),
	CloudSize:     at(87036, KindFloat),
	CloudType:     at(90517, KindInt),
	Words:         93998,
}

// LayoutFor returns the field map of a version.
func LayoutFor(version uint32) (Layout, error) {
	if version < MinVersion || version > MaxVersion {
		return Layout{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	l := common
	l.Version = version
	switch {
	case version == 8:
		l.Shower = at(93998, KindInt)
		l.Visibility = at(97479, KindFloat)
		l.Fog = at(100960, KindFloat)
		l.Words = 104441
	case version >= 5:
		l.Visibility = at(93998, KindFloat)
		l.Words = 97479
	}
	return l, nil
}

// Size returns the byte length of a snapshot of the given version.
func Size(version uint32) (int, error) {
	l, err := LayoutFor(version)
	if err != nil {
		return 0, err
	}
	return l.Words * wordSize, nil
}

// Fields reports the optional fields the layout carries.
func (l Layout) Fields() domain.FieldSet {
	var s domain.FieldSet
	if l.Shower.Present {
		s |= domain.FieldShower
	}
	if l.Visibility.Present {
		s |= domain.FieldVisibility
	}
	if l.Fog.Present {
		s |= domain.FieldFog
	}
	return s
}
