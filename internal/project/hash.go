package project

import (
	"crypto/sha256"
	"strconv"
)

// Digest - фиксированный 256 битный хеш (совместим с source.File.Hash)
type Digest [32]byte

// Combine строит ключ кеша: H( content || dep1 || dep2 ... ).
// Порядок deps должен быть детерминированным.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Fingerprint hashes the settings that change check results, so cached
// diagnostics are dropped when they change.
func (c CheckConfig) Fingerprint() Digest {
	h := sha256.New()
	_, _ = h.Write([]byte(strconv.FormatBool(c.WarningsAsErrors)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(strconv.FormatBool(c.StrictGuards)))
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
