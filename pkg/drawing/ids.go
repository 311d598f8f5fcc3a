package drawing

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// suffixLen is the number of base36 characters after the timestamp.
const suffixLen = 9

// IDGenerator returns a new drawing ID with the given prefix.
type IDGenerator func(prefix string, now time.Time) string

// NewID formats an ID as <prefix>_<epoch-ms>_<9 base36 chars>.
// The suffix comes from the random bits of a version 4 UUID.
func NewID(prefix string, now time.Time) string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[8:])

	suffix := strconv.FormatUint(n, 36)
	if len(suffix) < suffixLen {
		suffix = strings.Repeat("0", suffixLen-len(suffix)) + suffix
	}
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), suffix[len(suffix)-suffixLen:])
}
