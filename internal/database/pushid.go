package database

import (
	"math/rand"
	"sync"
	"time"
)

// Push key alphabet, ordered by ASCII value so keys compare the same way
// the server orders children.
const pushChars = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

var (
	pushMu       sync.Mutex
	pushLastTime int64
	pushLastRand [12]int
)

// NewPushKey generates a 20-character push key: 8 characters of epoch-ms
// timestamp followed by 12 random characters. Keys generated later always
// sort after keys generated earlier; within the same millisecond the
// random suffix is incremented instead of re-rolled, keeping order stable.
func NewPushKey() string {
	pushMu.Lock()
	defer pushMu.Unlock()

	now := time.Now().UnixMilli()
	if now == pushLastTime {
		// Same millisecond: bump the previous suffix.
		for i := 11; i >= 0; i-- {
			pushLastRand[i]++
			if pushLastRand[i] < 64 {
				break
			}
			pushLastRand[i] = 0
		}
	} else {
		for i := range pushLastRand {
			pushLastRand[i] = rand.Intn(64)
		}
	}
	pushLastTime = now

	var key [20]byte
	ts := now
	for i := 7; i >= 0; i-- {
		key[i] = pushChars[ts%64]
		ts /= 64
	}
	for i, r := range pushLastRand {
		key[8+i] = pushChars[r]
	}
	return string(key[:])
}
