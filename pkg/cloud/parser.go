package cloud

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/philipparndt/gosplat/pkg/geometry"
)

// PLY scalar property sizes in bytes, keyed by type name.
// Both the classic and the int8/uint8-style names appear in the wild.
var propertySizes = map[string]int{
	"char": 1, "int8": 1,
	"uchar": 1, "uint8": 1,
	"short": 2, "int16": 2,
	"ushort": 2, "uint16": 2,
	"int": 4, "int32": 4,
	"uint": 4, "uint32": 4,
	"float": 4, "float32": 4,
	"double": 8, "float64": 8,
}

type plyProperty struct {
	name     string
	typeName string
	size     int
}

type plyHeader struct {
	ascii       bool
	vertexCount int
	properties  []plyProperty
}

// Parse reads a PLY point-cloud file and returns a Cloud.
// Both ASCII and binary little-endian formats are supported. Vertex elements
// may carry arbitrary scalar property lists (COLMAP and OpenSplat both emit
// extra per-point attributes); x, y and z are required, red/green/blue are
// picked up when present and everything else is skipped.
func Parse(filename string) (*Cloud, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	c, err := parse(file)
	if err != nil {
		return nil, err
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return c, nil
}

func parse(r io.Reader) (*Cloud, error) {
	reader := bufio.NewReader(r)

	header, err := parseHeader(reader)
	if err != nil {
		return nil, err
	}

	if header.ascii {
		return parseASCII(reader, header)
	}
	return parseBinary(reader, header)
}

// parseHeader consumes everything up to and including end_header
func parseHeader(reader *bufio.Reader) (*plyHeader, error) {
	magic, err := readHeaderLine(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if magic != "ply" {
		return nil, fmt.Errorf("not a PLY file (got %q)", magic)
	}

	header := &plyHeader{vertexCount: -1}
	inVertexElement := false

	for {
		line, err := readHeaderLine(reader)
		if err != nil {
			return nil, fmt.Errorf("unexpected end of header: %w", err)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "comment", "obj_info":
			// ignored

		case "format":
			if len(fields) < 2 {
				return nil, fmt.Errorf("malformed format line: %q", line)
			}
			switch fields[1] {
			case "ascii":
				header.ascii = true
			case "binary_little_endian":
				header.ascii = false
			default:
				return nil, fmt.Errorf("unsupported PLY format: %s", fields[1])
			}

		case "element":
			if len(fields) < 3 {
				return nil, fmt.Errorf("malformed element line: %q", line)
			}
			if fields[1] == "vertex" {
				if header.vertexCount >= 0 {
					return nil, fmt.Errorf("duplicate vertex element")
				}
				count, err := strconv.Atoi(fields[2])
				if err != nil || count < 0 {
					return nil, fmt.Errorf("invalid vertex count: %q", fields[2])
				}
				header.vertexCount = count
				inVertexElement = true
			} else {
				if header.vertexCount < 0 {
					// Vertex data must come first in the data section for the
					// streaming reader below to find it.
					return nil, fmt.Errorf("vertex element must precede %q", fields[1])
				}
				inVertexElement = false
			}

		case "property":
			if !inVertexElement {
				continue
			}
			if len(fields) >= 2 && fields[1] == "list" {
				return nil, fmt.Errorf("list property on vertex element is not supported")
			}
			if len(fields) < 3 {
				return nil, fmt.Errorf("malformed property line: %q", line)
			}
			size, ok := propertySizes[fields[1]]
			if !ok {
				return nil, fmt.Errorf("unknown property type: %s", fields[1])
			}
			header.properties = append(header.properties, plyProperty{
				name:     fields[2],
				typeName: fields[1],
				size:     size,
			})

		case "end_header":
			if header.vertexCount < 0 {
				return nil, fmt.Errorf("missing vertex element")
			}
			if err := checkCoordinates(header); err != nil {
				return nil, err
			}
			return header, nil

		default:
			return nil, fmt.Errorf("unexpected header line: %q", line)
		}
	}
}

func checkCoordinates(header *plyHeader) error {
	for _, name := range []string{"x", "y", "z"} {
		found := false
		for _, p := range header.properties {
			if p.name == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("vertex element is missing the %q property", name)
		}
	}
	return nil
}

func readHeaderLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (h *plyHeader) hasColor() bool {
	found := 0
	for _, p := range h.properties {
		switch p.name {
		case "red", "green", "blue":
			found++
		}
	}
	return found == 3
}

// parseASCII parses the vertex data of an ASCII PLY file
func parseASCII(reader *bufio.Reader, header *plyHeader) (*Cloud, error) {
	c := NewCloud("")
	hasColor := header.hasColor()
	if hasColor {
		c.Colors = make([]RGB, 0, header.vertexCount)
	}

	scanner := bufio.NewScanner(reader)
	for i := 0; i < header.vertexCount; i++ {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("error reading vertex %d: %w", i, err)
			}
			return nil, fmt.Errorf("unexpected end of file at vertex %d", i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < len(header.properties) {
			return nil, fmt.Errorf("vertex %d has %d values, expected %d", i, len(fields), len(header.properties))
		}

		var px, py, pz float64
		var color RGB
		for j, prop := range header.properties {
			switch prop.name {
			case "x", "y", "z":
				v, err := strconv.ParseFloat(fields[j], 64)
				if err != nil {
					return nil, fmt.Errorf("invalid %s at vertex %d: %w", prop.name, i, err)
				}
				switch prop.name {
				case "x":
					px = v
				case "y":
					py = v
				case "z":
					pz = v
				}
			case "red", "green", "blue":
				v, err := strconv.ParseUint(fields[j], 10, 8)
				if err != nil {
					return nil, fmt.Errorf("invalid %s at vertex %d: %w", prop.name, i, err)
				}
				switch prop.name {
				case "red":
					color.R = uint8(v)
				case "green":
					color.G = uint8(v)
				case "blue":
					color.B = uint8(v)
				}
			}
		}

		c.AddPoint(geometry.NewVector3(px, py, pz))
		if hasColor {
			c.Colors = append(c.Colors, color)
		}
	}

	return c, nil
}

// parseBinary parses the vertex data of a binary little-endian PLY file
func parseBinary(reader *bufio.Reader, header *plyHeader) (*Cloud, error) {
	c := NewCloud("")
	hasColor := header.hasColor()
	if hasColor {
		c.Colors = make([]RGB, 0, header.vertexCount)
	}

	rowSize := 0
	for _, p := range header.properties {
		rowSize += p.size
	}
	row := make([]byte, rowSize)

	for i := 0; i < header.vertexCount; i++ {
		if _, err := io.ReadFull(reader, row); err != nil {
			return nil, fmt.Errorf("failed to read vertex %d: %w", i, err)
		}

		var px, py, pz float64
		var color RGB
		offset := 0
		for _, prop := range header.properties {
			switch prop.name {
			case "x", "y", "z":
				v, err := readFloat(row[offset:offset+prop.size], prop)
				if err != nil {
					return nil, fmt.Errorf("vertex %d: %w", i, err)
				}
				switch prop.name {
				case "x":
					px = v
				case "y":
					py = v
				case "z":
					pz = v
				}
			case "red", "green", "blue":
				if prop.size == 1 {
					switch prop.name {
					case "red":
						color.R = row[offset]
					case "green":
						color.G = row[offset]
					case "blue":
						color.B = row[offset]
					}
				}
			}
			offset += prop.size
		}

		c.AddPoint(geometry.NewVector3(px, py, pz))
		if hasColor {
			c.Colors = append(c.Colors, color)
		}
	}

	return c, nil
}

func readFloat(data []byte, prop plyProperty) (float64, error) {
	switch prop.size {
	case 4:
		bits := binary.LittleEndian.Uint32(data)
		return float64(math.Float32frombits(bits)), nil
	case 8:
		bits := binary.LittleEndian.Uint64(data)
		return math.Float64frombits(bits), nil
	}
	return 0, fmt.Errorf("coordinate property %s has non-float type %s", prop.name, prop.typeName)
}
