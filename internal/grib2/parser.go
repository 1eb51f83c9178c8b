package grib2

import (
	"fmt"
	"log/slog"
	"time"
)

// Parser walks the messages of a complete GRIB2 buffer.
type Parser struct {
	cur    *Cursor
	logger *slog.Logger
	count  int
}

// NewParser creates a parser over buf. A nil logger discards diagnostics.
func NewParser(buf []byte, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{cur: NewCursor(buf), logger: logger}
}

// More reports whether unread octets remain.
func (p *Parser) More() bool { return !p.cur.Exhausted() }

// Offset returns the absolute offset of the next message.
func (p *Parser) Offset() int { return p.cur.Offset() }

// Next parses one message and leaves the cursor at the start of the next.
// It always makes progress: a message with a bad indicator is skipped to the
// next GRIB tag (or the end of the buffer), and a message whose sections do
// not end at the declared length is resynchronised to that length.
func (p *Parser) Next() *Message {
	start := p.cur.Offset()
	m := &Message{Index: p.count, Offset: start}
	p.count++

	if !p.readIndicator(m) {
		m.diagnose(fmt.Errorf("%w: %q at offset %d", ErrBadIndicator, m.Indicator.Tag, start))
		if next := p.cur.Find(indicatorTag); next >= 0 {
			p.cur.Seek(next)
		} else {
			p.cur.Seek(p.cur.Len())
		}
		p.report(m)
		return m
	}

	p.readIdentification(m)
	p.readLocalUse(m)
	p.readGrid(m)
	p.readProduct(m)
	p.readRepresentation(m)
	p.readBitmap(m)
	p.readData(m)
	p.readEnd(m)

	if m.Indicator.Length >= indicatorLength {
		end := start + int(min(m.Indicator.Length, uint64(p.cur.Len())))
		if end != p.cur.Offset() {
			m.diagnose(fmt.Errorf("%w: declared end %d, sections ended at %d", ErrLengthMismatch, end, p.cur.Offset()))
			p.cur.Seek(end)
		}
	}

	p.report(m)
	return m
}

// Scan parses every message in the buffer, calling fn for each. It returns
// the number of messages seen.
func (p *Parser) Scan(fn func(*Message)) int {
	n := 0
	for p.More() {
		before := p.cur.Offset()
		m := p.Next()
		if p.cur.Offset() == before {
			m.diagnose(fmt.Errorf("%w: offset %d", ErrNoProgress, before))
			p.report(m)
			fn(m)
			return n + 1
		}
		fn(m)
		n++
	}
	return n
}

func (p *Parser) report(m *Message) {
	for _, err := range m.Diagnostics {
		p.logger.Warn("grib2 diagnostic",
			"message", m.Index,
			"offset", m.Offset,
			"error", err,
		)
	}
}

func (p *Parser) readIndicator(m *Message) bool {
	c := p.cur
	m.Indicator.Tag = c.Tag(1, 4)
	if !m.Indicator.Valid() {
		return false
	}
	m.Indicator.Discipline = uint8(c.Uint(7, 7))
	m.Indicator.Edition = uint8(c.Uint(8, 8))
	m.Indicator.Length = c.Uint(9, 16)
	c.Advance(indicatorLength)
	return true
}

// gate checks the section-number octet and returns the header. A mismatch
// leaves the cursor where it is.
func (p *Parser) gate(m *Message, number uint8, required bool) (Header, bool) {
	c := p.cur
	if c.Remaining() < 5 || uint8(c.Uint(5, 5)) != number {
		if required {
			m.diagnose(fmt.Errorf("%w: section %d at offset %d", ErrSectionMissing, number, c.Offset()))
		}
		return Header{}, false
	}
	length := uint32(c.Uint(1, 4))
	if length < 5 {
		m.diagnose(fmt.Errorf("%w: section %d declares length %d", ErrSectionMissing, number, length))
		return Header{}, false
	}
	return Header{Present: true, Offset: c.Offset(), Length: length}, true
}

func (p *Parser) readIdentification(m *Message) {
	h, ok := p.gate(m, sectionIdentification, true)
	if !ok {
		return
	}
	c := p.cur
	m.Identification = Identification{
		Header:          h,
		Center:          uint16(c.Uint(6, 7)),
		Subcenter:       uint16(c.Uint(8, 9)),
		MasterTable:     uint8(c.Uint(10, 10)),
		LocalTable:      uint8(c.Uint(11, 11)),
		RefSignificance: uint8(c.Uint(12, 12)),
		Year:            uint16(c.Uint(13, 14)),
		Month:           uint8(c.Uint(15, 15)),
		Day:             uint8(c.Uint(16, 16)),
		Hour:            uint8(c.Uint(17, 17)),
		Minute:          uint8(c.Uint(18, 18)),
		Second:          uint8(c.Uint(19, 19)),
		Status:          uint8(c.Uint(20, 20)),
		DataType:        uint8(c.Uint(21, 21)),
	}
	c.Advance(int(h.Length))
}

func (p *Parser) readLocalUse(m *Message) {
	h, ok := p.gate(m, sectionLocalUse, false)
	if !ok {
		return
	}
	m.LocalUse = LocalUse{Header: h}
	p.cur.Advance(int(h.Length))
}

func (p *Parser) readGrid(m *Message) {
	h, ok := p.gate(m, sectionGrid, true)
	if !ok {
		return
	}
	c := p.cur
	m.Grid = GridDefinition{
		Header:             h,
		Source:             uint8(c.Uint(6, 6)),
		Points:             uint32(c.Uint(7, 10)),
		ListOctets:         uint8(c.Uint(11, 11)),
		ListInterpretation: uint8(c.Uint(12, 12)),
		Template:           uint16(c.Uint(13, 14)),
	}
	switch m.Grid.Template {
	case 0:
		m.Grid.LatLon = &LatLonGrid{
			EarthShape:      uint8(c.Uint(15, 15)),
			RadiusScale:     uint8(c.Uint(16, 16)),
			RadiusValue:     uint32(c.Uint(17, 20)),
			MajorScale:      uint8(c.Uint(21, 21)),
			MajorValue:      uint32(c.Uint(22, 25)),
			MinorScale:      uint8(c.Uint(26, 26)),
			MinorValue:      uint32(c.Uint(27, 30)),
			Ni:              uint32(c.Uint(31, 34)),
			Nj:              uint32(c.Uint(35, 38)),
			BasicAngle:      uint32(c.Uint(39, 42)),
			Subdivisions:    uint32(c.Uint(43, 46)),
			La1:             int32(c.Int(47, 50)),
			Lo1:             int32(c.Int(51, 54)),
			ResolutionFlags: uint8(c.Uint(55, 55)),
			La2:             int32(c.Int(56, 59)),
			Lo2:             int32(c.Int(60, 63)),
			Di:              uint32(c.Uint(64, 67)),
			Dj:              uint32(c.Uint(68, 71)),
			ScanningMode:    uint8(c.Uint(72, 72)),
		}
	default:
		m.diagnose(fmt.Errorf("%w: grid definition 3.%d", ErrUnsupportedTemplate, m.Grid.Template))
	}
	c.Advance(int(h.Length))
}

func (p *Parser) readProduct(m *Message) {
	h, ok := p.gate(m, sectionProduct, true)
	if !ok {
		return
	}
	c := p.cur
	m.Product = ProductDefinition{
		Header:      h,
		Coordinates: uint16(c.Uint(6, 7)),
		Template:    uint16(c.Uint(8, 9)),
	}
	switch m.Product.Template {
	case 0, 8:
		prod := &Product{
			Category:          uint8(c.Uint(10, 10)),
			Number:            uint8(c.Uint(11, 11)),
			ProcessType:       uint8(c.Uint(12, 12)),
			BackgroundProcess: uint8(c.Uint(13, 13)),
			ForecastProcess:   uint8(c.Uint(14, 14)),
			CutoffHours:       uint16(c.Uint(15, 16)),
			CutoffMinutes:     uint8(c.Uint(17, 17)),
			TimeUnit:          uint8(c.Uint(18, 18)),
			ForecastTime:      uint32(c.Uint(19, 22)),
			First: Surface{
				Type:   uint8(c.Uint(23, 23)),
				Factor: uint8(c.Uint(24, 24)),
				Scaled: uint32(c.Uint(25, 28)),
			},
			Second: Surface{
				Type:   uint8(c.Uint(29, 29)),
				Factor: uint8(c.Uint(30, 30)),
				Scaled: uint32(c.Uint(31, 34)),
			},
		}
		if m.Product.Template == 8 {
			prod.Interval = &StatisticalInterval{
				End: time.Date(int(c.Uint(35, 36)), time.Month(c.Uint(37, 37)), int(c.Uint(38, 38)),
					int(c.Uint(39, 39)), int(c.Uint(40, 40)), int(c.Uint(41, 41)), 0, time.UTC),
				Ranges:  uint8(c.Uint(42, 42)),
				Missing: uint32(c.Uint(43, 46)),
			}
		}
		m.Product.Product = prod
	default:
		m.diagnose(fmt.Errorf("%w: product definition 4.%d", ErrUnsupportedTemplate, m.Product.Template))
	}
	c.Advance(int(h.Length))
}

func (p *Parser) readRepresentation(m *Message) {
	h, ok := p.gate(m, sectionRepresentation, true)
	if !ok {
		return
	}
	c := p.cur
	m.Representation = DataRepresentation{
		Header:   h,
		Points:   uint32(c.Uint(6, 9)),
		Template: uint16(c.Uint(10, 11)),
	}
	switch m.Representation.Template {
	case 0:
		m.Representation.Simple = &SimplePacking{
			Reference:    c.Float32(12, 15),
			BinaryScale:  int16(c.Int(16, 17)),
			DecimalScale: int16(c.Int(18, 19)),
			Bits:         uint8(c.Uint(20, 20)),
			FieldType:    uint8(c.Uint(21, 21)),
		}
	default:
		m.diagnose(fmt.Errorf("%w: data representation 5.%d", ErrUnsupportedTemplate, m.Representation.Template))
	}
	c.Advance(int(h.Length))
}

func (p *Parser) readBitmap(m *Message) {
	h, ok := p.gate(m, sectionBitmap, false)
	if !ok {
		return
	}
	c := p.cur
	m.Bitmap = Bitmap{Header: h, Indicator: uint8(c.Uint(6, 6))}
	if m.Bitmap.Indicator == 0 {
		m.Bitmap.Bits = c.Octets(7, int(h.Length))
	}
	c.Advance(int(h.Length))
}

func (p *Parser) readData(m *Message) {
	h, ok := p.gate(m, sectionData, true)
	if !ok {
		return
	}
	c := p.cur
	m.Data = Data{Header: h, Payload: c.Octets(6, int(h.Length))}
	c.Advance(int(h.Length))
}

func (p *Parser) readEnd(m *Message) {
	c := p.cur
	m.End = End{Offset: c.Offset(), Tag: c.Tag(1, endLength)}
	if m.End.Tag != endTag {
		m.diagnose(fmt.Errorf("%w: end tag %q at offset %d", ErrSectionMissing, m.End.Tag, c.Offset()))
		return
	}
	m.End.Present = true
	c.Advance(endLength)
}
