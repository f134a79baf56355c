package gltf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Common errors returned by the GLB container split.
var (
	errGLBTooSmall    = errors.New("GLB container too small")
	errInvalidMagic   = errors.New("invalid GLB magic number")
	errInvalidVersion = errors.New("invalid GLB version: must be 2")
	errMissingJSON    = errors.New("GLB container missing JSON chunk")
)

// glbHeader is the header of a GLB container (12 bytes).
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
type glbHeader struct {
	Magic   uint32 // Must be 0x46546C67 ("glTF" in ASCII)
	Version uint32 // Must be 2
	Length  uint32 // Total container length
}

// glbChunkHeader is the header of a GLB chunk (8 bytes).
type glbChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32 // 0x4E4F534A for JSON, 0x004E4942 for BIN
}

// GLB magic number and chunk type constants
const (
	glbMagic     = 0x46546C67 // "glTF" in little-endian ASCII
	glbVersion   = 2
	glbChunkJSON = 0x4E4F534A // "JSON" in little-endian ASCII
	glbChunkBIN  = 0x004E4942 // "BIN\0" in little-endian ASCII
)

// IsGLB reports whether data starts with the GLB magic number.
//
// Parameters:
//   - data: candidate container bytes
//
// Returns:
//   - bool: true if data is a GLB binary container
func IsGLB(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == glbMagic
}

// SplitGLB splits a GLB binary container into its JSON chunk and optional
// binary chunk. The binary chunk is nil when the container carries none.
//
// Parameters:
//   - data: the complete GLB container bytes
//
// Returns:
//   - []byte: the JSON chunk (the glTF document)
//   - []byte: the BIN chunk (the embedded buffer payload) or nil
//   - error: error if the container is malformed
func SplitGLB(data []byte) ([]byte, []byte, error) {
	if len(data) < 12 {
		return nil, nil, errGLBTooSmall
	}

	r := bytes.NewReader(data)

	var header glbHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, nil, fmt.Errorf("failed to read GLB header: %w", err)
	}

	if header.Magic != glbMagic {
		return nil, nil, errInvalidMagic
	}
	if header.Version != glbVersion {
		return nil, nil, errInvalidVersion
	}

	var jsonData []byte
	var binData []byte

	for {
		var chunkHeader glbChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunkHeader); err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, fmt.Errorf("failed to read chunk header: %w", err)
		}

		chunkData := make([]byte, chunkHeader.ChunkLength)
		if _, err := io.ReadFull(r, chunkData); err != nil {
			return nil, nil, fmt.Errorf("failed to read chunk data: %w", err)
		}

		switch chunkHeader.ChunkType {
		case glbChunkJSON:
			jsonData = chunkData
		case glbChunkBIN:
			binData = chunkData
		}
	}

	if jsonData == nil {
		return nil, nil, errMissingJSON
	}

	return jsonData, binData, nil
}
