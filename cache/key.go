package cache

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// NewKey builds a stable Key from a URL and any discriminating parameters.
// The URL stays readable in logs; the parameters are folded into a short
// hash so keys stay bounded no matter how many there are.
func NewKey(url string, params ...string) Key {
	if len(params) == 0 {
		return Key(url)
	}
	d := xxhash.New()
	for _, p := range params {
		d.WriteString(p)
		d.WriteString("\x00")
	}
	return Key(url + "#" + fmt.Sprintf("%016x", d.Sum64()))
}

// KeyURL reports the URL part of a key built by NewKey.
func KeyURL(k Key) string {
	s := string(k)
	if i := strings.LastIndexByte(s, '#'); i != -1 {
		return s[:i]
	}
	return s
}
