// Package id provides centralized ID generation for the filesystem service.
//
// IDs are prefixed ULIDs:
//   - Lexicographic sortability: creation order is visible in logs
//   - Prefixed types: item_*, sess_*, job_*, conn_* make ids self-describing
//   - Type safety: separate string types prevent passing a session id as an item id
//
// Seed items are the exception: they use their display name as id so that the
// fixed starting hierarchy can be addressed by name-paths.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ItemID identifies a node in the virtual filesystem tree
type ItemID string

// SessionID identifies a terminal session
type SessionID string

// JobID identifies a background job entry (metadata only)
type JobID string

// ConnID identifies a WebSocket connection
type ConnID string

const (
	ItemPrefix    = "item"
	SessionPrefix = "sess"
	JobPrefix     = "job"
	ConnPrefix    = "conn"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the shared generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{
		entropy: rand.Reader,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewItemID generates a new filesystem item ID
func NewItemID() ItemID {
	return ItemID(Default().GenerateWithPrefix(ItemPrefix))
}

// NewSessionID generates a new terminal session ID
func NewSessionID() SessionID {
	return SessionID(Default().GenerateWithPrefix(SessionPrefix))
}

// NewJobID generates a new job ID
func NewJobID() JobID {
	return JobID(Default().GenerateWithPrefix(JobPrefix))
}

// NewConnID generates a new WebSocket connection ID
func NewConnID() ConnID {
	return ConnID(Default().GenerateWithPrefix(ConnPrefix))
}

func (id ItemID) String() string    { return string(id) }
func (id SessionID) String() string { return string(id) }
func (id JobID) String() string     { return string(id) }
func (id ConnID) String() string    { return string(id) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := Parse(id)
	return err == nil
}

// IsGenerated reports whether s is a prefixed ULID (as opposed to a seed id).
func IsGenerated(s string) bool {
	prefix, rest, ok := strings.Cut(s, "_")
	if !ok || prefix == "" {
		return false
	}
	return IsValid(rest)
}

// HasPrefix reports whether s is a ULID generated with the given prefix
func HasPrefix(s, prefix string) bool {
	rest, ok := strings.CutPrefix(s, prefix+"_")
	return ok && IsValid(rest)
}

// Parse parses a ULID string
func Parse(id string) (ulid.ULID, error) {
	return ulid.Parse(id)
}
