// Package history implements a checksummed ring-buffer command history,
// persisted as CBOR and backing the shell's `!`-prefixed recall syntax
// and the HISTORY variable.
package history

import (
	"os"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/mysh-lang/mysh/pkgs/errors"
)

// Entry is one recorded command line plus a checksum used to drop
// consecutive duplicates without comparing full strings.
type Entry struct {
	Line     string
	Checksum [blake2b.Size256]byte
}

// History is a fixed-capacity ring buffer of Entry, oldest entries
// dropped first once Limit is reached.
type History struct {
	Limit   int
	entries []Entry
}

// New builds an empty History bounded to limit entries (0 means
// unbounded).
func New(limit int) *History {
	return &History{Limit: limit}
}

func checksum(line string) [blake2b.Size256]byte {
	return blake2b.Sum256([]byte(line))
}

// Add appends line unless it is identical (by checksum) to the most
// recent entry, then trims to Limit.
func (h *History) Add(line string) {
	sum := checksum(line)
	if n := len(h.entries); n > 0 && h.entries[n-1].Checksum == sum {
		return
	}
	h.entries = append(h.entries, Entry{Line: line, Checksum: sum})
	if h.Limit > 0 && len(h.entries) > h.Limit {
		h.entries = h.entries[len(h.entries)-h.Limit:]
	}
}

// Entries returns every recorded line, oldest first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Line
	}
	return out
}

// Recall resolves a `!`-prefixed recall expression: "!" alone is the
// previous command, "!n" is the 1-indexed nth command, and "!prefix" is
// the most recent command starting with prefix.
func (h *History) Recall(spec string) (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if spec == "!" {
		return h.entries[len(h.entries)-1].Line, true
	}
	prefix := strings.TrimPrefix(spec, "!")
	if n, ok := parsePositiveInt(prefix); ok {
		if n < 1 || n > len(h.entries) {
			return "", false
		}
		return h.entries[n-1].Line, true
	}
	for i := len(h.entries) - 1; i >= 0; i-- {
		if strings.HasPrefix(h.entries[i].Line, prefix) {
			return h.entries[i].Line, true
		}
	}
	return "", false
}

func parsePositiveInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// Load decodes a CBOR-encoded history file written by Save. A missing
// file yields an empty History, not an error.
func Load(path string, limit int) (*History, error) {
	h := New(limit)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return h, errors.Wrap(errors.ErrIO, "reading history file "+path, err)
	}
	if err := cbor.Unmarshal(data, &h.entries); err != nil {
		return h, errors.Wrap(errors.ErrIO, "decoding history file "+path, err)
	}
	return h, nil
}

// Save CBOR-encodes the current entries to path.
func (h *History) Save(path string) error {
	data, err := cbor.Marshal(h.entries)
	if err != nil {
		return errors.Wrap(errors.ErrIO, "encoding history", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrIO, "writing history file "+path, err)
	}
	return nil
}
