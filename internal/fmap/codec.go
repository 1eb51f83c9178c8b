package fmap

import (
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/theater-wx-engine/internal/domain"
)

// Ext is the snapshot file extension.
const Ext = ".fmap"

// Codec converts between frames and snapshot buffers. A nil Order is
// detected from the version word on decode and little-endian on encode.
type Codec struct {
	Order binary.ByteOrder
}

// DetectOrder returns the byte order under which the version word of buf is
// a supported version, preferring little-endian.
func DetectOrder(buf []byte) binary.ByteOrder {
	if len(buf) < wordSize {
		return binary.LittleEndian
	}
	if v := binary.BigEndian.Uint32(buf); v >= MinVersion && v <= MaxVersion {
		if le := binary.LittleEndian.Uint32(buf); le < MinVersion || le > MaxVersion {
			return binary.BigEndian
		}
	}
	return binary.LittleEndian
}

type words struct {
	buf   []byte
	order binary.ByteOrder
}

func (w words) at(i int) uint32 { return w.order.Uint32(w.buf[i*wordSize:]) }

func (w words) float(i int) float64 { return float64(math.Float32frombits(w.at(i))) }

func (w words) put(i int, v uint32) { w.order.PutUint32(w.buf[i*wordSize:], v) }

func (w words) putFloat(i int, v float64) { w.put(i, math.Float32bits(float32(v))) }

// Decode replaces f with the contents of buf. Fields the version does not
// carry are left zero and absent from f.Fields. Pressure and temperature
// extrema are recomputed.
func (c Codec) Decode(buf []byte, f *domain.Frame) error {
	order := c.Order
	if order == nil {
		order = DetectOrder(buf)
	}
	if len(buf) < headerSize*wordSize {
		return fmt.Errorf("%w: %d bytes, header needs %d", ErrShortBuffer, len(buf), headerSize*wordSize)
	}
	w := words{buf: buf, order: order}

	layout, err := LayoutFor(w.at(wordVersion))
	if err != nil {
		return err
	}
	if x, y := w.at(wordDimX), w.at(wordDimY); x != domain.GridX || y != domain.GridY {
		return fmt.Errorf("%w: %dx%d", ErrDimension, x, y)
	}
	if len(buf) < layout.Words*wordSize {
		return fmt.Errorf("%w: %d bytes, version %d needs %d", ErrShortBuffer, len(buf), layout.Version, layout.Words*wordSize)
	}

	f.Reset()
	f.Version = layout.Version
	f.Fields = layout.Fields()
	f.Airmass = domain.Vector{
		Direction: float64(w.at(wordAirmassDirection)),
		Speed:     w.float(wordAirmassSpeed),
	}
	f.Turbulence = domain.Layer{Top: w.at(wordTurbulenceTop), Bottom: w.at(wordTurbulenceBottom)}
	for i := range f.Contrails {
		f.Contrails[i] = w.at(wordContrails + i)
	}

	readInteger(w, layout.Type, &f.Type)
	readScalar(w, layout.Pressure, &f.Pressure, &f.Analytics.Pressure)
	readScalar(w, layout.Temperature, &f.Temperature, &f.Analytics.Temperature)
	readWind(w, layout.WindSpeed, layout.WindDirection, &f.Wind)
	readScalar(w, layout.CloudBase, &f.Cloud.Base, nil)
	readInteger(w, layout.CloudCover, &f.Cloud.Cover)
	readScalar(w, layout.CloudSize, &f.Cloud.Size, nil)
	readInteger(w, layout.CloudType, &f.Cloud.Type)
	readInteger(w, layout.Shower, &f.Shower)
	readScalar(w, layout.Visibility, &f.Visibility, nil)
	readScalar(w, layout.Fog, &f.Fog, nil)
	return nil
}

func readScalar(w words, c Capability, dst *domain.Scalar, track *domain.Extrema) {
	if !c.Present {
		return
	}
	for y := range domain.GridY {
		for x := range domain.GridX {
			v := w.float(c.Offset + y*domain.GridX + x)
			dst[y][x] = v
			if track != nil {
				track.Observe(v)
			}
		}
	}
}

func readInteger(w words, c Capability, dst *domain.Integer) {
	if !c.Present {
		return
	}
	for y := range domain.GridY {
		for x := range domain.GridX {
			dst[y][x] = int32(w.at(c.Offset + y*domain.GridX + x))
		}
	}
}

func readWind(w words, speed, direction Capability, dst *domain.WindField) {
	for y := range domain.GridY {
		for x := range domain.GridX {
			for level := range domain.WindLevels {
				i := windIndex(x, y, level)
				dst[y][x][level] = domain.Vector{
					Direction: w.float(direction.Offset + i),
					Speed:     w.float(speed.Offset + i),
				}
			}
		}
	}
}

func windIndex(x, y, level int) int {
	return y*domain.GridX*domain.WindLevels + x*domain.WindLevels + level
}

// Encode writes f in the version 8 layout regardless of the version it was
// loaded from.
func (c Codec) Encode(f *domain.Frame) []byte {
	order := c.Order
	if order == nil {
		order = binary.LittleEndian
	}
	layout, _ := LayoutFor(MaxVersion)
	w := words{buf: make([]byte, layout.Words*wordSize), order: order}

	w.put(wordVersion, layout.Version)
	w.put(wordDimX, domain.GridX)
	w.put(wordDimY, domain.GridY)
	w.put(wordAirmassDirection, uint32(max(f.Airmass.Direction, 0)))
	w.putFloat(wordAirmassSpeed, f.Airmass.Speed)
	w.put(wordTurbulenceTop, f.Turbulence.Top)
	w.put(wordTurbulenceBottom, f.Turbulence.Bottom)
	for i, v := range f.Contrails {
		w.put(wordContrails+i, v)
	}

	for y := range domain.GridY {
		for x := range domain.GridX {
			i := y*domain.GridX + x
			w.put(layout.Type.Offset+i, uint32(f.Type[y][x]))
			w.putFloat(layout.Pressure.Offset+i, f.Pressure[y][x])
			w.putFloat(layout.Temperature.Offset+i, f.Temperature[y][x])
			w.putFloat(layout.CloudBase.Offset+i, f.Cloud.Base[y][x])
			w.put(layout.CloudCover.Offset+i, uint32(f.Cloud.Cover[y][x]))
			w.putFloat(layout.CloudSize.Offset+i, f.Cloud.Size[y][x])
			w.put(layout.CloudType.Offset+i, uint32(f.Cloud.Type[y][x]))
			w.put(layout.Shower.Offset+i, uint32(f.Shower[y][x]))
			w.putFloat(layout.Visibility.Offset+i, f.Visibility[y][x])
			w.putFloat(layout.Fog.Offset+i, f.Fog[y][x])
			for level := range domain.WindLevels {
				wi := windIndex(x, y, level)
				w.putFloat(layout.WindSpeed.Offset+wi, f.Wind[y][x][level].Speed)
				w.putFloat(layout.WindDirection.Offset+wi, f.Wind[y][x][level].Direction)
			}
		}
	}
	return w.buf
}

// TimeFromFilename recovers the time tag from a snapshot name such as
// "261200.fmap".
func TimeFromFilename(name string) (domain.TimeTag, error) {
	base := filepath.Base(name)
	tag, err := domain.ParseTimeTag(strings.TrimSuffix(base, filepath.Ext(base)))
	if err != nil {
		return domain.TimeTag{}, fmt.Errorf("fmap filename %q: %w", name, err)
	}
	return tag, nil
}

// Filename returns the snapshot name for a time tag.
func Filename(tag domain.TimeTag) string { return tag.String() + Ext }
