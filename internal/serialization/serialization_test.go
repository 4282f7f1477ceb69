package serialization

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/born-ml/qsim/internal/circuit"
)

// TestWriteRead_RoundTrip verifies values and checkpoint metadata survive a
// write/read cycle.
func TestWriteRead_RoundTrip(t *testing.T) {
	values := circuit.Values{
		"theta": {0.25, -1.5, 3.0},
		"phi":   {1e-12},
	}
	header := Header{
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Metadata:  map[string]string{"ansatz": "layered"},
		Checkpoint: &CheckpointMeta{
			Step:          42,
			Energy:        -1.25,
			Mode:          "adjoint",
			OptimizerType: "adam",
		},
	}

	var buf bytes.Buffer
	if err := Write(&buf, values, header); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if buf.Len()%HeaderAlignment != (3+1)*valueSize%HeaderAlignment {
		t.Errorf("data section is not aligned: file size %d", buf.Len())
	}

	got, gotHeader, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	for name, want := range values {
		if len(got[name]) != len(want) {
			t.Fatalf("%s: got %v, want %v", name, got[name], want)
		}
		for i := range want {
			if got[name][i] != want[i] {
				t.Errorf("%s[%d] = %v, want %v", name, i, got[name][i], want[i])
			}
		}
	}
	if gotHeader.Checkpoint == nil || gotHeader.Checkpoint.Step != 42 || gotHeader.Checkpoint.Energy != -1.25 {
		t.Errorf("checkpoint = %+v", gotHeader.Checkpoint)
	}
	if gotHeader.Metadata["ansatz"] != "layered" {
		t.Errorf("metadata = %v", gotHeader.Metadata)
	}
	if gotHeader.QsimVersion != Version || gotHeader.FormatVersion != FormatVersion {
		t.Errorf("version fields = %q, %d", gotHeader.QsimVersion, gotHeader.FormatVersion)
	}
}

// TestRead_ChecksumMismatch verifies that corrupted data is rejected.
func TestRead_ChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, circuit.Values{"a": {1}}, Header{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	raw := buf.Bytes()
	raw[len(raw)-1] ^= 0xff

	_, _, err := Read(bytes.NewReader(raw))
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}

	// Skipping the checksum accepts the corrupted value.
	if _, _, err := ReadWithOptions(bytes.NewReader(raw), ReaderOptions{SkipChecksumValidation: true}); err != nil {
		t.Errorf("expected no error without checksum validation, got %v", err)
	}
}

// TestRead_InvalidMagic verifies magic byte checking.
func TestRead_InvalidMagic(t *testing.T) {
	raw := make([]byte, FixedHeaderSize)
	copy(raw, "BORN")
	if _, _, err := Read(bytes.NewReader(raw)); !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}
}

// TestWrite_InvalidValues verifies that empty bindings and bad names are
// rejected.
func TestWrite_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		values circuit.Values
	}{
		{"empty values", circuit.Values{"a": {}}},
		{"empty name", circuit.Values{"": {1}}},
		{"control character", circuit.Values{"a\x00b": {1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Write(&buf, tt.values, Header{})
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

// TestValidateParamOffsets checks overlap, bounds and size validation.
func TestValidateParamOffsets(t *testing.T) {
	tests := []struct {
		name     string
		params   []ParamMeta
		dataSize int64
		wantType string
	}{
		{
			name: "valid",
			params: []ParamMeta{
				{Name: "a", Count: 2, Offset: 0, Size: 16},
				{Name: "b", Count: 1, Offset: 16, Size: 8},
			},
			dataSize: 24,
		},
		{
			name: "overlap",
			params: []ParamMeta{
				{Name: "a", Count: 2, Offset: 0, Size: 16},
				{Name: "b", Count: 1, Offset: 8, Size: 8},
			},
			dataSize: 24,
			wantType: "offset_overlap",
		},
		{
			name:     "out of bounds",
			params:   []ParamMeta{{Name: "a", Count: 2, Offset: 8, Size: 16}},
			dataSize: 16,
			wantType: "out_of_bounds",
		},
		{
			name:     "size mismatch",
			params:   []ParamMeta{{Name: "a", Count: 2, Offset: 0, Size: 8}},
			dataSize: 16,
			wantType: "size_mismatch",
		},
		{
			name:     "count overflows size",
			params:   []ParamMeta{{Name: "a", Count: 1<<61 + 1, Offset: 0, Size: 8}},
			dataSize: 8,
			wantType: "count_too_large",
		},
		{
			name:     "negative offset",
			params:   []ParamMeta{{Name: "a", Count: 1, Offset: -8, Size: 8}},
			dataSize: 16,
			wantType: "negative_offset",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParamOffsets(tt.params, tt.dataSize)
			if tt.wantType == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Type != tt.wantType {
				t.Errorf("expected %s, got %v", tt.wantType, err)
			}
		})
	}
}

// TestValidateHeader_DuplicateNames verifies duplicate parameters are rejected.
func TestValidateHeader_DuplicateNames(t *testing.T) {
	h := &Header{Params: []ParamMeta{
		{Name: "a", Count: 1, Offset: 0, Size: 8},
		{Name: "a", Count: 1, Offset: 8, Size: 8},
	}}
	if err := ValidateHeader(h, 16, ValidationNormal); err == nil {
		t.Error("expected duplicate name error")
	}
	if err := ValidateHeader(h, 16, ValidationNone); err != nil {
		t.Errorf("ValidationNone should skip checks, got %v", err)
	}
}

// TestSaveLoadFile verifies the file helpers.
func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.qsim")
	values := circuit.Values{"x": {0.5}}
	if err := SaveFile(path, values, Header{}); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	got, header, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if got["x"][0] != 0.5 {
		t.Errorf("x = %v, want [0.5]", got["x"])
	}
	if header.Checkpoint != nil {
		t.Errorf("unexpected checkpoint %+v", header.Checkpoint)
	}
}

// rawCheckpoint assembles a .qsim file around a hand-written JSON header with
// a valid checksum.
func rawCheckpoint(headerJSON string, data []byte) []byte {
	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	checksum := checksumOf([]byte(headerJSON), data)
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	var buf bytes.Buffer
	buf.Write(fixed)
	buf.WriteString(headerJSON)
	buf.Write(make([]byte, alignment(len(headerJSON))))
	buf.Write(data)
	return buf.Bytes()
}

// TestRead_OversizedCount verifies that a parameter count whose byte size
// overflows int64 is rejected instead of being allocated.
func TestRead_OversizedCount(t *testing.T) {
	raw := rawCheckpoint(
		`{"format_version":1,"params":[{"name":"a","count":2305843009213693953,"offset":0,"size":8}]}`,
		make([]byte, valueSize),
	)

	for _, level := range []ValidationLevel{ValidationStrict, ValidationNormal, ValidationNone} {
		_, _, err := ReadWithOptions(bytes.NewReader(raw), ReaderOptions{ValidationLevel: level})
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Type != "count_too_large" {
			t.Errorf("level %d: expected count_too_large, got %v", level, err)
		}
	}
}

// TestRead_RegionOutsideData verifies the reader's bounds check when header
// validation is disabled.
func TestRead_RegionOutsideData(t *testing.T) {
	raw := rawCheckpoint(
		`{"format_version":1,"params":[{"name":"a","count":1,"offset":8,"size":8}]}`,
		make([]byte, valueSize),
	)
	_, _, err := ReadWithOptions(bytes.NewReader(raw), ReaderOptions{ValidationLevel: ValidationNone})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Type != "out_of_bounds" {
		t.Errorf("expected out_of_bounds, got %v", err)
	}
}
