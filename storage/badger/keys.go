package badger

import (
	"encoding/binary"
	"fmt"
)

// Key prefixes for different data types
const (
	feedbackPrefix  = "fbkevt:"
	feedbackIDSeq   = "fbkevtseq"
	modelPrefix     = "rnkmdl:"
	embeddingPrefix = "embcch:"
)

// makeFeedbackKey generates a key for a feedback event by append sequence.
// Format: prefix:seq
func makeFeedbackKey(seq uint64) []byte {
	buf := make([]byte, len(feedbackPrefix)+8)
	offset := copy(buf, feedbackPrefix)
	// Write in BigEndian order so lexicographic sort matches append order
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeModelKey generates a key for a ranker model by version.
// Format: prefix:version
func makeModelKey(version uint64) []byte {
	buf := make([]byte, len(modelPrefix)+8)
	offset := copy(buf, modelPrefix)
	binary.BigEndian.PutUint64(buf[offset:], version)
	return buf
}

// modelVersionFromKey extracts the version from a model key.
func modelVersionFromKey(key []byte) (uint64, error) {
	if len(key) != len(modelPrefix)+8 {
		return 0, fmt.Errorf("malformed model key %q", key)
	}
	return binary.BigEndian.Uint64(key[len(modelPrefix):]), nil
}

// makeEmbeddingProfilePrefix generates the key prefix for all entries of a profile.
// The id is length prefixed so that no profile's prefix covers another's keys.
// Format: prefix:len(id):id
func makeEmbeddingProfilePrefix(profileID string) []byte {
	buf := make([]byte, len(embeddingPrefix)+2+len(profileID))
	offset := copy(buf, embeddingPrefix)
	binary.BigEndian.PutUint16(buf[offset:], uint16(len(profileID)))
	offset += 2
	copy(buf[offset:], profileID)
	return buf
}

// makeEmbeddingKey generates the key for one (profile, kind) entry.
// Format: prefix:len(id):id:kind
func makeEmbeddingKey(profileID, kind string) []byte {
	p := makeEmbeddingProfilePrefix(profileID)
	buf := make([]byte, len(p)+len(kind))
	offset := copy(buf, p)
	copy(buf[offset:], kind)
	return buf
}
