package reconcile

import (
	"strings"

	"github.com/google/uuid"
)

// mintedIDLength is the fixed length of minted field identifiers. The tokens
// are random hex without separators, structurally distinct from the numeric
// identifiers the target environment allocates itself.
const mintedIDLength = 21

// Minter issues collision-safe identifiers for fields introduced during a
// single reconciliation run. Not safe for concurrent use; the pipeline is
// strictly sequential.
type Minter struct {
	issued map[string]bool
}

// NewMinter returns a Minter with an empty issued set.
func NewMinter() *Minter {
	return &Minter{issued: make(map[string]bool)}
}

// Reserve marks identifiers as taken so Mint never returns them. The schema
// reconciler reserves every identifier already present in the target schema
// before minting.
func (m *Minter) Reserve(ids ...string) {
	for _, id := range ids {
		m.issued[id] = true
	}
}

// Mint returns a fresh 21-character identifier unique within this run.
func (m *Minter) Mint() string {
	for {
		token := strings.ReplaceAll(uuid.NewString(), "-", "")[:mintedIDLength]
		if m.issued[token] {
			continue
		}
		m.issued[token] = true
		return token
	}
}
