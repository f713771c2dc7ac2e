package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kbvlyon/visitsync/internal/model"
)

// ErrChecksumMismatch is returned when stored data does not match its checksum.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// DomainSnapshot separates snapshot checksums from any other hashed content.
const DomainSnapshot = "visitsync/snapshot/v1"

// EncodeSnapshot serializes s without HTML escaping, so that names with
// "&" or "<" are stored as typed. The output is deterministic.
func EncodeSnapshot(s *model.Snapshot) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// DecodeSnapshot parses data written by EncodeSnapshot.
func DecodeSnapshot(data string) (*model.Snapshot, error) {
	var s model.Snapshot
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// Checksum returns the hex SHA-256 of data, with domain separation.
// Format: SHA256(domain + 0x00 + data)
func Checksum(data string) string {
	h := sha256.New()
	h.Write([]byte(DomainSnapshot))
	h.Write([]byte{0x00})
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// Verify checks data against a checksum from Checksum.
func Verify(data, checksum string) error {
	if got := Checksum(data); got != checksum {
		return fmt.Errorf("%w: stored %s, computed %s", ErrChecksumMismatch, checksum, got)
	}
	return nil
}
