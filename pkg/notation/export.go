// Portable export and import for full link sets. Three formats are spoken:
// native notation text, a JSON array of {id, source, target} objects, and
// delimited tabular text with the header id,source,target. Import detects
// the format by structural sniffing and transparently handles
// zstd-compressed payloads.
package notation

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/klauspost/compress/zstd"

	"github.com/linkforge/doublets/pkg/links"
)

// Format identifies an interchange format.
type Format int

const (
	// FormatNotation is the native link text.
	FormatNotation Format = iota

	// FormatJSON is a JSON array of {id, source, target} objects.
	FormatJSON

	// FormatCSV is tabular text with the header id,source,target.
	FormatCSV
)

// csvHeader is the required first record of tabular exports.
var csvHeader = []string{"id", "source", "target"}

// zstdMagic is the frame header every zstd payload starts with.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// String returns the format's CLI name.
func (f Format) String() string {
	switch f {
	case FormatNotation:
		return "notation"
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	}
	return "unknown"
}

// ParseFormat maps a CLI name to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "notation":
		return FormatNotation, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	}
	return FormatNotation, fmt.Errorf("unknown format %q (valid: notation, json, csv): %w", s, links.ErrInvalidArgument)
}

// Export renders the link set in the given format.
func Export(ls []links.Link, f Format) ([]byte, error) {
	switch f {
	case FormatNotation:
		return []byte(FormatLinks(ls) + "\n"), nil

	case FormatJSON:
		if ls == nil {
			ls = []links.Link{}
		}
		out, err := json.MarshalIndent(ls, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal links: %w", err)
		}
		return append(out, '\n'), nil

	case FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(csvHeader); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		for _, l := range ls {
			rec := []string{
				strconv.FormatUint(uint64(l.ID), 10),
				strconv.FormatUint(uint64(l.Source), 10),
				strconv.FormatUint(uint64(l.Target), 10),
			}
			if err := w.Write(rec); err != nil {
				return nil, fmt.Errorf("write record: %w", err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("flush csv: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown format %d: %w", f, links.ErrInvalidArgument)
}

// ExportCompressed renders the link set and wraps it in a zstd frame.
func ExportCompressed(ls []links.Link, f Format) ([]byte, error) {
	plain, err := Export(ls, f)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(plain, nil), nil
}

// Detect sniffs the format of uncompressed payload data: a leading '[' or
// '{' means JSON; a first line that carries a comma and does not open with
// '(' means tabular; anything else is notation.
func Detect(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return FormatJSON
	}
	firstLine := trimmed
	if i := bytes.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	if bytes.IndexByte(firstLine, ',') >= 0 && (len(firstLine) == 0 || firstLine[0] != '(') {
		return FormatCSV
	}
	return FormatNotation
}

// Import parses a link set, auto-detecting the format. A zstd frame is
// decompressed first. The detected format is returned alongside the links.
func Import(data []byte) ([]links.Link, Format, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, FormatNotation, fmt.Errorf("init zstd: %w", err)
		}
		defer dec.Close()
		plain, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, FormatNotation, fmt.Errorf("%w: bad zstd frame: %v", links.ErrParse, err)
		}
		data = plain
	}

	f := Detect(data)
	ls, err := importAs(data, f)
	if err != nil {
		return nil, f, err
	}
	return ls, f, nil
}

// importAs parses data in a known format.
func importAs(data []byte, f Format) ([]links.Link, error) {
	switch f {
	case FormatNotation:
		return ParseLinks(string(data))

	case FormatJSON:
		var ls []links.Link
		if err := json.Unmarshal(data, &ls); err != nil {
			return nil, fmt.Errorf("%w: bad JSON: %v", links.ErrParse, err)
		}
		if ls == nil {
			ls = []links.Link{}
		}
		return ls, nil

	case FormatCSV:
		r := csv.NewReader(bytes.NewReader(data))
		records, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("%w: bad tabular text: %v", links.ErrParse, err)
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("%w: missing header", links.ErrParse)
		}
		header := records[0]
		if len(header) != 3 || header[0] != "id" || header[1] != "source" || header[2] != "target" {
			return nil, fmt.Errorf("%w: header must be id,source,target", links.ErrParse)
		}
		ls := []links.Link{}
		for _, rec := range records[1:] {
			if len(rec) != 3 {
				return nil, fmt.Errorf("%w: row needs 3 fields", links.ErrParse)
			}
			var l links.Link
			if l.ID, err = parseID(rec[0]); err != nil {
				return nil, err
			}
			if l.Source, err = parseID(rec[1]); err != nil {
				return nil, err
			}
			if l.Target, err = parseID(rec[2]); err != nil {
				return nil, err
			}
			ls = append(ls, l)
		}
		return ls, nil
	}
	return nil, fmt.Errorf("unknown format %d: %w", f, links.ErrInvalidArgument)
}
