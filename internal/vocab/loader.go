package vocab

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Load reads a vocabulary in the word2vec interchange format, either
// text ("count dim" header, then "key v1..vD" lines) or binary (same
// header, then key + D little-endian float32s per record). The variant
// is sniffed from the content.
func Load(path string) (*Vocabulary, error) {
	if path == "" {
		return nil, fmt.Errorf("no vocabulary path configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening vocabulary: %w", err)
	}
	defer f.Close()

	v, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary %s: %w", path, err)
	}
	return v, nil
}

// Read parses a word2vec-format stream.
func Read(r io.Reader) (*Vocabulary, error) {
	br := bufio.NewReaderSize(r, 1<<20)

	header, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	fields := strings.Fields(header)
	if len(fields) != 2 {
		return nil, fmt.Errorf("malformed header %q", strings.TrimSpace(header))
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil || count < 0 {
		return nil, fmt.Errorf("malformed vocabulary count %q", fields[0])
	}
	dim, err := strconv.Atoi(fields[1])
	if err != nil || dim <= 0 {
		return nil, fmt.Errorf("malformed vector dimension %q", fields[1])
	}

	binaryFormat, err := sniffBinary(br, dim)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, count)
	data := make([]float32, 0, count*dim)
	if binaryFormat {
		keys, data, err = readBinary(br, count, dim, keys, data)
	} else {
		keys, data, err = readText(br, count, dim, keys, data)
	}
	if err != nil {
		return nil, err
	}
	return New(keys, data, dim)
}

// sniffBinary peeks past the first record's key: raw float32 bytes are
// effectively never all ASCII-numeric text, which text vectors are.
func sniffBinary(br *bufio.Reader, dim int) (bool, error) {
	window := dim * 4
	if window > 512 {
		window = 512
	}
	peek, err := br.Peek(window + 64)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return false, fmt.Errorf("sniffing format: %w", err)
	}
	if len(peek) == 0 {
		return false, nil
	}

	i := 0
	for i < len(peek) && peek[i] == '\n' {
		i++
	}
	for i < len(peek) && peek[i] != ' ' {
		i++
	}
	i++ // past the separating space
	end := i + window
	if end > len(peek) {
		end = len(peek)
	}
	for ; i < end; i++ {
		switch c := peek[i]; {
		case c >= '0' && c <= '9':
		case c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E':
		case c == ' ' || c == '\n' || c == '\r' || c == '\t':
		default:
			return true, nil
		}
	}
	return false, nil
}

func readText(br *bufio.Reader, count, dim int, keys []string, data []float32) ([]string, []float32, error) {
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		line++
		fields := strings.Fields(text)
		if len(fields) != dim+1 {
			return nil, nil, fmt.Errorf("record %d: expected %d values, got %d", line, dim, len(fields)-1)
		}
		keys = append(keys, fields[0])
		for _, f := range fields[1:] {
			val, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, nil, fmt.Errorf("record %d: bad value %q: %w", line, f, err)
			}
			data = append(data, float32(val))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	if len(keys) != count {
		return nil, nil, fmt.Errorf("header promised %d records, found %d", count, len(keys))
	}
	return keys, data, nil
}

func readBinary(br *bufio.Reader, count, dim int, keys []string, data []float32) ([]string, []float32, error) {
	buf := make([]byte, dim*4)
	for i := 0; i < count; i++ {
		key, err := readBinaryKey(br)
		if err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, nil, fmt.Errorf("record %d (%s): %w", i+1, key, err)
		}
		keys = append(keys, key)
		for j := 0; j < dim; j++ {
			data = append(data, math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4:])))
		}
	}
	return keys, data, nil
}

// readBinaryKey collects bytes up to the separating space, skipping the
// newlines some writers emit between records.
func readBinaryKey(br *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		b, err := br.ReadByte()
		if err != nil {
			return "", err
		}
		if b == '\n' && sb.Len() == 0 {
			continue
		}
		if b == ' ' {
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
}
