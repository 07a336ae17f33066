package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// SpriteExtension is the only file extension the bot watches.
const SpriteExtension = ".dmi"

// DiffStatus describes how one sprite state changed between revisions.
type DiffStatus string

const (
	DiffEqual   DiffStatus = "Equal"
	DiffAdded   DiffStatus = "Added"
	DiffRemoved DiffStatus = "Removed"
	DiffChanged DiffStatus = "Changed"
)

// SubImageDiff is the comparison result for one named state inside a sprite file.
// Before/After hold PNG bytes and are nil when that side has no image.
type SubImageDiff struct {
	Key        string
	Status     DiffStatus
	Before     []byte
	After      []byte
	BeforeHash string
	AfterHash  string
}

// FetchState is the outcome of retrieving one side of a changed file.
type FetchState int

const (
	FetchPresent FetchState = iota
	FetchAbsent
	FetchError
)

func (s FetchState) String() string {
	switch s {
	case FetchPresent:
		return "present"
	case FetchAbsent:
		return "absent"
	default:
		return "error"
	}
}

// FetchResult holds one side of a changed file. Content is only set when
// State is FetchPresent; Err only when State is FetchError.
type FetchResult struct {
	State   FetchState
	Content []byte
	Err     error
}

// Present builds a FetchResult holding content.
func Present(content []byte) FetchResult {
	return FetchResult{State: FetchPresent, Content: content}
}

// Absent builds a FetchResult for a file missing at the requested ref.
func Absent() FetchResult {
	return FetchResult{State: FetchAbsent}
}

// Failed builds a FetchResult for a transport failure.
func Failed(err error) FetchResult {
	return FetchResult{State: FetchError, Err: err}
}

// SpritePair is a changed path with both sides resolved and ready to compare.
// A nil side means the file does not exist at that ref.
type SpritePair struct {
	Path   string
	Before []byte
	After  []byte
}

// ContentHash returns the hex SHA-256 digest used as an image's storage key.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
