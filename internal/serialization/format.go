package serialization

import "time"

// Format constants.
const (
	MagicBytes      = "QSIM"
	FormatVersion   = 1
	HeaderAlignment = 64   // Align parameter data to 64 bytes
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size (32 bytes)
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
	valueSize       = 8    // float64
)

// Flags for the .qsim format.
const (
	FlagHasCheckpoint uint32 = 1 << 0 // bit 0: optimizer state included
	FlagHasMetadata   uint32 = 1 << 1 // bit 1: custom metadata included
)

// Header represents the JSON header in a .qsim file.
type Header struct {
	FormatVersion int               `json:"format_version"`       // Version of the .qsim format
	QsimVersion   string            `json:"qsim_version"`         // Version of qsim that created this file
	CreatedAt     time.Time         `json:"created_at"`           // When the file was created
	Params        []ParamMeta       `json:"params"`               // Parameter layout
	Metadata      map[string]string `json:"metadata"`             // Custom metadata
	Checkpoint    *CheckpointMeta   `json:"checkpoint,omitempty"` // Optimization state (optional)
}

// CheckpointMeta describes the optimization run a checkpoint was taken from.
type CheckpointMeta struct {
	Step            int            `json:"step"`             // Optimization step number
	Energy          float64        `json:"energy"`           // Total energy at checkpoint
	Mode            string         `json:"mode"`             // Differentiation mode
	OptimizerType   string         `json:"optimizer_type"`   // Optimizer type ("sgd", "adam")
	OptimizerConfig map[string]any `json:"optimizer_config"` // Optimizer hyperparameters
}

// ParamMeta describes one named parameter in the data section.
type ParamMeta struct {
	Name   string `json:"name"`   // Parameter name
	Count  int    `json:"count"`  // Number of bound values (1 or the batch size)
	Offset int64  `json:"offset"` // Offset in the data section in bytes
	Size   int64  `json:"size"`   // Size in bytes
}
