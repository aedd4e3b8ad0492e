package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed hashes.
// The version suffix enables future algorithm migration.
const (
	DomainState  = "unidir/state/v1"
	DomainAction = "unidir/action/v1"
	DomainEntry  = "unidir/entry/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StateHash returns the content hash of a state value.
// Equal states (after JSON encoding) hash identically across processes.
func StateHash(state any) (string, error) {
	canonical, err := Marshal(state)
	if err != nil {
		return "", fmt.Errorf("StateHash: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}

// ActionHash returns the content hash of an action's rendering.
func ActionHash(action string) string {
	return hashWithDomain(DomainAction, []byte(action))
}

// EntryID computes the content-addressed ID of a journal entry: one reduced
// action at a logical time within a session.
func EntryID(sessionID string, seq int64, action, stateHash string) (string, error) {
	canonical, err := Marshal(map[string]any{
		"session_id": sessionID,
		"seq":        seq,
		"action":     action,
		"state_hash": stateHash,
	})
	if err != nil {
		return "", fmt.Errorf("EntryID: %w", err)
	}
	return hashWithDomain(DomainEntry, canonical), nil
}

// MustStateHash is like StateHash but panics on error.
// Use only in tests or when the state is known to be encodable.
func MustStateHash(state any) string {
	h, err := StateHash(state)
	if err != nil {
		panic(err)
	}
	return h
}
