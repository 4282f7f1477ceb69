package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/born-ml/qsim/internal/circuit"
)

// ReaderOptions configures Read.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// Read decodes a .qsim checkpoint with strict validation.
func Read(r io.Reader) (circuit.Values, *Header, error) {
	return ReadWithOptions(r, ReaderOptions{ValidationLevel: ValidationStrict})
}

// ReadWithOptions decodes a .qsim checkpoint.
func ReadWithOptions(r io.Reader, opts ReaderOptions) (circuit.Values, *Header, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, nil, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, nil, ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(fixed[4:8]); version != FormatVersion {
		return nil, nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}
	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	if headerSize > MaxHeaderSize {
		return nil, nil, ErrHeaderTooLarge
	}
	if dataSize > uint64(MaxParamCount)*1024*valueSize {
		return nil, nil, &ValidationError{Type: "data_too_large", Details: fmt.Sprintf("%d bytes", dataSize)}
	}
	var stored [ChecksumSize]byte
	copy(stored[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	if _, err := io.CopyN(io.Discard, r, int64(alignment(int(headerSize)))); err != nil {
		return nil, nil, fmt.Errorf("failed to skip padding: %w", err)
	}
	data := make([]byte, dataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, nil, fmt.Errorf("failed to read parameter data: %w", err)
	}

	if !opts.SkipChecksumValidation && checksumOf(headerJSON, data) != stored {
		return nil, nil, ErrChecksumMismatch
	}

	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}
	if err := ValidateHeader(&header, int64(dataSize), opts.ValidationLevel); err != nil {
		return nil, nil, fmt.Errorf("validation failed: %w", err)
	}

	values := make(circuit.Values, len(header.Params))
	for _, p := range header.Params {
		if err := checkRegion(p, int64(dataSize)); err != nil {
			return nil, nil, err
		}
		vals := make([]float64, p.Count)
		for i := range vals {
			off := p.Offset + int64(i)*valueSize
			vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[off : off+valueSize]))
		}
		values[p.Name] = vals
	}
	return values, &header, nil
}

// LoadFile reads a .qsim checkpoint from path.
func LoadFile(path string) (circuit.Values, *Header, error) {
	//nolint:gosec // G304: checkpoint paths come from the user
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return Read(file)
}
