// Package ids mints the identifiers painel stamps on requests and audit
// events. ULIDs rather than random UUIDs: the timestamp prefix keeps log
// lines and audit trails sortable by arrival without a second column.
package ids

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// The monotonic reader is not safe for concurrent use, and every request
// goes through here, so access stays behind a mutex.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a fresh request/audit correlation id.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
