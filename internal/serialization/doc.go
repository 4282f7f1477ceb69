// Package serialization provides the native .qsim format for saving and
// loading circuit parameter checkpoints.
//
// The .qsim format is a small binary container for circuit.Values and the
// state of the variational loop that produced them:
//
//	Format Structure:
//	  [0x00: Magic "QSIM"]
//	  [0x04: Version (uint32 LE)]
//	  [0x08: Flags (uint32 LE)]
//	  [0x0C: Reserved (uint32)]
//	  [0x10: Header Size (uint64 LE)]
//	  [0x18: Data Size (uint64 LE)]
//	  [0x20: SHA-256 of header and data (32 bytes)]
//	  [0x40: Header: JSON metadata]
//	  [Parameter data: float64 LE, 64-byte aligned]
//
// Example usage:
//
//	// Save parameters after an optimization run
//	header := serialization.Header{Checkpoint: &serialization.CheckpointMeta{Step: 200, Energy: e}}
//	if err := serialization.SaveFile("vqe.qsim", values, header); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Resume later
//	values, header, err := serialization.LoadFile("vqe.qsim")
package serialization
