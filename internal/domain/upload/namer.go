package upload

import (
	"math/rand/v2"
	"strconv"
	"sync"
	"time"
)

const randomSpace = 1_000_000_000

// Namer generates "<kind>-<unix millis>-<random>[.ext]" file names. The
// timestamp never goes backwards within one Namer even if the wall clock
// does.
type Namer struct {
	now  func() time.Time
	intn func(int) int

	mu   sync.Mutex
	last int64
}

func NewNamer() *Namer {
	return &Namer{now: time.Now, intn: rand.IntN}
}

// Name returns the directory and generated file name for originalName.
func (n *Namer) Name(kind Kind, originalName string) (string, string) {
	ms := n.millis()
	name := kind.Name + "-" + strconv.FormatInt(ms, 10) + "-" + strconv.Itoa(n.intn(randomSpace))
	if ext := Extension(originalName); ext != "" {
		name += "." + ext
	}
	return kind.Directory, name
}

func (n *Namer) millis() int64 {
	ms := n.now().UnixMilli()

	n.mu.Lock()
	defer n.mu.Unlock()
	if ms < n.last {
		ms = n.last
	}
	n.last = ms
	return ms
}
