package serialization

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/born-ml/qsim/internal/circuit"
)

// Version is the qsim version recorded in written headers.
const Version = "0.1.0"

// Write encodes values and header in .qsim format.
//
// The Params, FormatVersion and QsimVersion fields of header are filled in by
// Write; CreatedAt is set when zero. Parameters are stored in sorted name
// order.
func Write(w io.Writer, values circuit.Values, header Header) error {
	header.FormatVersion = FormatVersion
	header.QsimVersion = Version
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	// Calculate parameter offsets and encode the data section.
	names := values.Names()
	header.Params = make([]ParamMeta, 0, len(names))
	var data bytes.Buffer
	for _, name := range names {
		if err := ValidateParamName(name); err != nil {
			return err
		}
		vals := values[name]
		if len(vals) == 0 {
			return &ValidationError{Type: "empty_param", Param: name, Details: "no bound values"}
		}
		header.Params = append(header.Params, ParamMeta{
			Name:   name,
			Count:  len(vals),
			Offset: int64(data.Len()),
			Size:   int64(len(vals) * valueSize),
		})
		for _, v := range vals {
			var buf [valueSize]byte
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			data.Write(buf[:])
		}
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if header.Checkpoint != nil {
		flags |= FlagHasCheckpoint
	}

	// Fixed header.
	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(data.Len()))
	checksum := checksumOf(headerJSON, data.Bytes())
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if padding := alignment(len(headerJSON)); padding > 0 {
		if _, err := w.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}
	if _, err := w.Write(data.Bytes()); err != nil {
		return fmt.Errorf("failed to write parameter data: %w", err)
	}
	return nil
}

// SaveFile writes a .qsim checkpoint to path.
func SaveFile(path string, values circuit.Values, header Header) (err error) {
	//nolint:gosec // G304: checkpoint paths come from the user
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()
	return Write(file, values, header)
}

// checksumOf computes the SHA-256 checksum of the JSON header followed by the
// data section.
func checksumOf(headerJSON, data []byte) [ChecksumSize]byte {
	h := sha256.New()
	h.Write(headerJSON)
	h.Write(data)
	var sum [ChecksumSize]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// alignment returns the padding after a header of headerSize bytes.
func alignment(headerSize int) int {
	pos := FixedHeaderSize + headerSize
	return (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment
}
