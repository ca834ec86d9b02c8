package raster

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadASCIIFile reads an ESRI ASCII grid from disk.
func ReadASCIIFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "raster: open %s", path)
	}
	defer func() { _ = f.Close() }()
	return ReadASCII(f)
}

// ReadASCII parses an ESRI ASCII grid: key/value header lines followed by
// whitespace-separated values.
func ReadASCII(r io.Reader) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	sc.Split(bufio.ScanWords)

	var h header
	var pending string
	for sc.Scan() {
		tok := sc.Text()
		if _, err := strconv.ParseFloat(tok, 64); err == nil {
			pending = tok
			break
		}
		if !sc.Scan() {
			return nil, eris.Errorf("raster: header key %q has no value", tok)
		}
		if err := h.set(tok, sc.Text()); err != nil {
			return nil, eris.Wrapf(err, "raster: header %s", tok)
		}
	}
	g, err := h.grid()
	if err != nil {
		return nil, err
	}

	want := g.Cols * g.Rows
	push := func(tok string) error {
		v, err := atof(tok)
		if err != nil {
			return eris.Wrapf(err, "raster: cell %d", len(g.Values))
		}
		g.Values = append(g.Values, h.value(v))
		return nil
	}
	if pending != "" {
		if err := push(pending); err != nil {
			return nil, err
		}
	}
	for len(g.Values) < want && sc.Scan() {
		if err := push(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "raster: read ascii grid")
	}
	if len(g.Values) != want {
		return nil, eris.Errorf("raster: expected %d cells, read %d", want, len(g.Values))
	}
	return g, nil
}

// ReadFloatFile reads an ESRI float grid: path is the .flt body, whose
// header lives beside it with a .hdr extension.
func ReadFloatFile(path string) (*Grid, error) {
	hdrPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".hdr"
	hf, err := os.Open(hdrPath)
	if err != nil {
		return nil, eris.Wrapf(err, "raster: open header %s", hdrPath)
	}
	defer func() { _ = hf.Close() }()

	h := header{littleEndian: true}
	sc := bufio.NewScanner(hf)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		if err := h.set(fields[0], fields[1]); err != nil {
			return nil, eris.Wrapf(err, "raster: header %s", fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrapf(err, "raster: read header %s", hdrPath)
	}

	body, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "raster: open %s", path)
	}
	defer func() { _ = body.Close() }()
	return readFloat(bufio.NewReader(body), &h)
}

func readFloat(r io.Reader, h *header) (*Grid, error) {
	g, err := h.grid()
	if err != nil {
		return nil, err
	}
	var order binary.ByteOrder = binary.LittleEndian
	if !h.littleEndian {
		order = binary.BigEndian
	}
	row := make([]byte, 4*g.Cols)
	for i := 0; i < g.Rows; i++ {
		if _, err := io.ReadFull(r, row); err != nil {
			return nil, eris.Wrapf(err, "raster: read row %d", i)
		}
		for c := 0; c < g.Cols; c++ {
			v := float64(math.Float32frombits(order.Uint32(row[4*c:])))
			g.Values = append(g.Values, h.value(v))
		}
	}
	return g, nil
}

func atoi(s string) (int, error) { return strconv.Atoi(strings.TrimSpace(s)) }

func atof(s string) (float64, error) { return strconv.ParseFloat(strings.TrimSpace(s), 64) }
