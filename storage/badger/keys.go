package badger

import (
	"fmt"

	"github.com/ghanashyam9348/adeguard/core"
)

// Key prefixes for different data types
const (
	embeddingPrefix  = "embrec"
	assignmentPrefix = "asgrec"
	indexMetaKey     = "idxmeta"
)

// makeEmbeddingKey generates a key for an embedding record by ID.
func makeEmbeddingKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", embeddingPrefix, id))
}

// makeAssignmentKey generates a key for an assignment record by ID.
func makeAssignmentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", assignmentPrefix, id))
}

// makeIndexMetaKey generates the key for the index metadata record.
func makeIndexMetaKey() []byte {
	return []byte(indexMetaKey)
}
