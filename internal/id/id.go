// Package id generates prefixed identifiers for chats and messages.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for persisted entities.
const (
	PrefixChat    = "chat"
	PrefixMessage = "msg"
)

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "chat-V1StGXR8_Z5jdHi6B-myT")
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewChatID returns a fresh chat identifier.
func NewChatID() (string, error) {
	return Generate(PrefixChat)
}

// NewMessageID returns a fresh message identifier.
func NewMessageID() (string, error) {
	return Generate(PrefixMessage)
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use only where failure should crash the program (e.g. test fixtures).
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
