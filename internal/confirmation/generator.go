// Package confirmation produces the human-facing booking references
// printed on itineraries.  References are short, upper-case and avoid
// visually ambiguous characters.  Global uniqueness is enforced by a
// unique constraint at the storage layer; on a collision the caller
// simply generates again.
package confirmation

import (
    "crypto/rand"
    "fmt"
)

// DefaultPrefix is the fixed reference prefix for this carrier.
const DefaultPrefix = "AV"

// DefaultLength is the number of random characters after the prefix.
// 8 characters over a 32-symbol alphabet give 32^8 ≈ 1.1e12 codes,
// which makes collisions astronomically unlikely rather than merely
// detectable.
const DefaultLength = 8

// alphabet omits 0/O and 1/I to keep references unambiguous when read
// aloud or typed from a printout.
const alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// Generator produces booking references with a fixed prefix.
type Generator struct {
    prefix string
    length int
}

// NewGenerator returns a Generator using the carrier defaults.
func NewGenerator() *Generator {
    return &Generator{prefix: DefaultPrefix, length: DefaultLength}
}

// NewGeneratorWith returns a Generator with a custom prefix and random
// suffix length.  Length must be positive.
func NewGeneratorWith(prefix string, length int) *Generator {
    if length <= 0 {
        length = DefaultLength
    }
    return &Generator{prefix: prefix, length: length}
}

// Generate returns a fresh reference such as "AV7KQ2MH9T".  Randomness
// comes from crypto/rand; an error is only possible when the system
// entropy source fails.
func (g *Generator) Generate() (string, error) {
    b := make([]byte, g.length)
    if _, err := rand.Read(b); err != nil {
        return "", fmt.Errorf("confirmation: read random bytes: %w", err)
    }
    for i := range b {
        b[i] = alphabet[int(b[i])%len(alphabet)]
    }
    return g.prefix + string(b), nil
}
