package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
)

// Digest is a fixed-size fingerprint of file content. It is a value type
// comparable for equality; two files with equal digests are treated as
// identical by the deduplication logic.
type Digest [32]byte

// DigestOf computes the content digest of a byte slice
func DigestOf(content []byte) Digest {
	return sha256.Sum256(content)
}

// String returns the hex representation of the digest
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest is the zero value (no content recorded)
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// MarshalJSON encodes the digest as a hex string
func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a hex string digest
func (d *Digest) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(raw) != len(d) {
		return errors.New("digest has wrong length")
	}
	copy(d[:], raw)
	return nil
}

// FileShard holds the extracted index data for exactly one source file.
// Shards are the unit of both persistence and incremental merge: a
// translation unit's extraction result decomposes into one shard per file it
// touched.
type FileShard struct {
	Path      string      `json:"path"`   // Absolute path, also the storage key
	Digest    Digest      `json:"digest"` // Content digest the data was extracted from
	HadErrors bool        `json:"had_errors"`
	Deps      []string    `json:"deps,omitempty"` // Absolute paths of files this file's TU also touched
	Symbols   []Symbol    `json:"symbols,omitempty"`
	Refs      []Reference `json:"refs,omitempty"`
}

// ExtractionResult is the full output of extracting one translation unit:
// a shard per touched file, tagged with whether extraction reported errors.
type ExtractionResult struct {
	MainFile  string
	Shards    map[string]*FileShard // Keyed by absolute file path
	HadErrors bool
}
