package serialization

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize   = 16 * 1024 * 1024 // maximum header size
	MaxParamCount   = 100_000          // maximum number of parameters in a file
	MaxParamNameLen = 1024             // maximum parameter name length
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict performs all validation checks (default).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks names and counts only.
	ValidationNormal
	// ValidationNone skips validation. Use only with trusted input.
	ValidationNone
)

// ValidateParamOffsets checks parameter regions for overlaps, inconsistent
// sizes and out-of-bounds access.
func ValidateParamOffsets(params []ParamMeta, dataSize int64) error {
	sorted := make([]ParamMeta, len(params))
	copy(sorted, params)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, p := range sorted {
		if p.Offset < 0 || p.Size < 0 || p.Count < 1 {
			return &ValidationError{
				Type:    "negative_offset",
				Param:   p.Name,
				Details: fmt.Sprintf("offset=%d, size=%d, count=%d", p.Offset, p.Size, p.Count),
			}
		}
		if err := checkCount(p, dataSize); err != nil {
			return err
		}
		if p.Size != int64(p.Count)*valueSize {
			return &ValidationError{
				Type:    "size_mismatch",
				Param:   p.Name,
				Details: fmt.Sprintf("%d values need %d bytes, got %d", p.Count, int64(p.Count)*valueSize, p.Size),
			}
		}
		if p.Offset > dataSize-p.Size {
			return &ValidationError{
				Type:    "out_of_bounds",
				Param:   p.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", p.Offset, p.Size, dataSize),
			}
		}
		if i < len(sorted)-1 {
			next := sorted[i+1]
			if p.Offset+p.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Param:   p.Name,
					Param2:  next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						p.Offset, p.Offset+p.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}
	return nil
}

// checkCount bounds p.Count by the number of values the data section can hold,
// so that byte sizes derived from it cannot overflow.
func checkCount(p ParamMeta, dataSize int64) error {
	if int64(p.Count) > dataSize/valueSize {
		return &ValidationError{
			Type:    "count_too_large",
			Param:   p.Name,
			Details: fmt.Sprintf("count %d exceeds data_size %d", p.Count, dataSize),
		}
	}
	return nil
}

// checkRegion verifies that the values of p lie inside a data section of
// dataSize bytes. The reader runs it at every validation level.
func checkRegion(p ParamMeta, dataSize int64) error {
	if p.Offset < 0 || p.Count < 1 {
		return &ValidationError{
			Type:    "negative_offset",
			Param:   p.Name,
			Details: fmt.Sprintf("offset=%d, count=%d", p.Offset, p.Count),
		}
	}
	if err := checkCount(p, dataSize); err != nil {
		return err
	}
	if p.Offset > dataSize-int64(p.Count)*valueSize {
		return &ValidationError{Type: "out_of_bounds", Param: p.Name, Details: "region outside data section"}
	}
	return nil
}

// ValidateParamName rejects empty, oversized and control-character names.
func ValidateParamName(name string) error {
	if name == "" {
		return &ValidationError{Type: "invalid_name", Details: "empty parameter name"}
	}
	if len(name) > MaxParamNameLen {
		return &ValidationError{
			Type:    "name_too_long",
			Param:   name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxParamNameLen),
		}
	}
	if strings.ContainsFunc(name, func(r rune) bool { return r < 0x20 || r == 0x7f }) {
		return &ValidationError{
			Type:    "invalid_name",
			Param:   name,
			Details: "contains control character",
		}
	}
	return nil
}

// ValidateHeader performs header validation at the given level.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}

	if len(h.Params) > MaxParamCount {
		return &ValidationError{
			Type:    "too_many_params",
			Details: fmt.Sprintf("got %d, max %d", len(h.Params), MaxParamCount),
		}
	}

	seen := make(map[string]bool, len(h.Params))
	for _, p := range h.Params {
		if err := ValidateParamName(p.Name); err != nil {
			return err
		}
		if seen[p.Name] {
			return &ValidationError{Type: "duplicate_name", Param: p.Name, Details: "parameter stored twice"}
		}
		seen[p.Name] = true
	}

	if level == ValidationStrict {
		return ValidateParamOffsets(h.Params, dataSize)
	}
	return nil
}
