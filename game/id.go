// a fast unique time-based ID, after the ObjectId of the mongo mgo driver
package game

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash"
)

// idCounter is atomically incremented for every new id.
var idCounter atomic.Uint32

// machineID is derived from the hostname once. An unknown hostname only
// makes ids from different machines easier to confuse.
var machineID = func() uint32 {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	return uint32(xxhash.Sum64String(hostname))
}()

func newGameID() string {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint32(b[8:12], machineID^uint32(os.Getpid()))
	binary.BigEndian.PutUint32(b[12:16], idCounter.Add(1))
	return fmt.Sprintf("%016x", xxhash.Sum64(b[:]))
}
