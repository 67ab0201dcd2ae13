package utils

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/setanarut/pixlato/palette"
	"github.com/setanarut/pixlato/quantize"
	"golang.org/x/image/riff"
)

// ErrPaletteFormat is returned for palette files that cannot be parsed.
var ErrPaletteFormat = errors.New("unsupported palette format")

var (
	riffType = riff.FourCC{'R', 'I', 'F', 'F'}
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

const (
	gplHeader  = "GIMP Palette"
	jascHeader = "JASC-PAL"
)

// LoadPalette reads a palette file. GIMP (.gpl), JASC and RIFF (.pal) and
// plain hex (.hex, one rrggbb per line) files are recognized.
func LoadPalette(path string) (palette.Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return palette.Palette{}, fmt.Errorf("could not read palette %q: %w", path, err)
	}

	var p palette.Palette
	switch {
	case bytes.HasPrefix(data, riffType[:]):
		p, err = ReadRIFF(bytes.NewReader(data))
	case bytes.HasPrefix(data, []byte(gplHeader)):
		p, err = ReadGPL(bytes.NewReader(data))
	case bytes.HasPrefix(data, []byte(jascHeader)):
		p, err = ReadJASC(bytes.NewReader(data))
	case strings.EqualFold(filepath.Ext(path), ".hex"):
		p, err = ReadHex(bytes.NewReader(data))
	default:
		err = ErrPaletteFormat
	}
	if err != nil {
		return palette.Palette{}, fmt.Errorf("could not load palette %q: %w", path, err)
	}
	if p.Len() == 0 {
		return palette.Palette{}, fmt.Errorf("palette %q: %w", path, quantize.ErrEmptyPalette)
	}
	return p, nil
}

// ReadGPL parses a GIMP palette. Lines that do not start with three
// integers are skipped.
func ReadGPL(r io.Reader) (palette.Palette, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() || !strings.HasPrefix(strings.TrimSpace(sc.Text()), gplHeader) {
		return palette.Palette{}, fmt.Errorf("missing %q header: %w", gplHeader, ErrPaletteFormat)
	}
	var p palette.Palette
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "Name:") || strings.HasPrefix(line, "Columns:") {
			continue
		}
		if c, ok := parseTriple(strings.Fields(line)); ok {
			p.Append(c)
		}
	}
	return p, sc.Err()
}

// WriteGPL writes p as a GIMP palette named name.
func WriteGPL(w io.Writer, p palette.Palette, name string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\nName: %s\nColumns: 0\n#\n", gplHeader, name)
	for i, c := range p.Colors() {
		fmt.Fprintf(bw, "%3d %3d %3d\tIndex %d\n", c.R, c.G, c.B, i)
	}
	return bw.Flush()
}

// SaveGPL writes p as a GIMP palette file.
func SaveGPL(p palette.Palette, name, filename string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", filename, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("could not close %q: %w", filename, cerr)
		}
	}()
	return WriteGPL(f, p, name)
}

// ReadJASC parses a JASC-PAL text palette. The version and count lines
// are not checked.
func ReadJASC(r io.Reader) (palette.Palette, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() || !strings.HasPrefix(strings.TrimSpace(sc.Text()), jascHeader) {
		return palette.Palette{}, fmt.Errorf("missing %q header: %w", jascHeader, ErrPaletteFormat)
	}
	var p palette.Palette
	for line := 1; sc.Scan(); line++ {
		if line < 3 {
			continue
		}
		if c, ok := parseTriple(strings.Fields(sc.Text())); ok {
			p.Append(c)
		}
	}
	return p, sc.Err()
}

// ReadHex parses one rrggbb color per line, with or without a leading #.
func ReadHex(r io.Reader) (palette.Palette, error) {
	sc := bufio.NewScanner(r)
	var p palette.Palette
	for sc.Scan() {
		s := strings.TrimPrefix(strings.TrimSpace(sc.Text()), "#")
		if len(s) != 6 {
			continue
		}
		v, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			continue
		}
		p.Append(palette.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)})
	}
	return p, sc.Err()
}

// ReadRIFF parses a Microsoft RIFF palette. Colors of every data chunk are
// appended in order.
func ReadRIFF(r io.Reader) (palette.Palette, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return palette.Palette{}, fmt.Errorf("could not open RIFF stream: %w", err)
	} else if formType != palType {
		return palette.Palette{}, fmt.Errorf("RIFF content type %q: %w", string(formType[:]), ErrPaletteFormat)
	}

	var p palette.Palette
	for chunk := 0; ; chunk++ {
		id, _, data, err := rd.Next()
		if err == io.EOF {
			return p, nil
		} else if err != nil {
			return p, fmt.Errorf("could not read chunk %d: %w", chunk, err)
		}
		if id != dataType {
			continue
		}
		if err := readRIFFData(data, &p); err != nil {
			return p, fmt.Errorf("could not read chunk %d: %w", chunk, err)
		}
	}
}

func readRIFFData(r io.Reader, p *palette.Palette) error {
	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return fmt.Errorf("could not read header: %w", err)
	}
	if ver := binary.BigEndian.Uint16(head[:2]); ver != 3 {
		return fmt.Errorf("palette version %d: %w", ver, ErrPaletteFormat)
	}
	count := binary.LittleEndian.Uint16(head[2:])
	var entry [4]byte
	for i := range count {
		if _, err := io.ReadFull(r, entry[:]); err != nil {
			return fmt.Errorf("could not read color %d/%d: %w", i, count, err)
		}
		p.Append(palette.Color{R: entry[0], G: entry[1], B: entry[2]})
	}
	return nil
}

// WriteRIFF writes p as a single-chunk RIFF palette.
func WriteRIFF(w io.Writer, p palette.Palette) error {
	n := p.Len()
	chunk := 4 + n*4
	buf := make([]byte, 0, 20+chunk)
	buf = append(buf, riffType[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(4+8+chunk))
	buf = append(buf, palType[:]...)
	buf = append(buf, dataType[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(chunk))
	buf = append(buf, 0x00, 0x03)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(n))
	for _, c := range p.Colors() {
		buf = append(buf, c.R, c.G, c.B, 0x00)
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("could not write RIFF palette: %w", err)
	}
	return nil
}

func parseTriple(fields []string) (palette.Color, bool) {
	if len(fields) < 3 {
		return palette.Color{}, false
	}
	var v [3]uint8
	for i := range v {
		n, err := strconv.ParseUint(fields[i], 10, 8)
		if err != nil {
			return palette.Color{}, false
		}
		v[i] = uint8(n)
	}
	return palette.Color{R: v[0], G: v[1], B: v[2]}, true
}
