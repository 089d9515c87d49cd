package codec

import (
	"fmt"
	"sort"
	"sync"
)

// Codec describes a binary-to-text codec.
//
// Codec packages register themselves in init():
//
//	codec.MustRegister(codec.Codec{ ... })
//
// A program must import the codec package for registration to occur.
type Codec struct {
	Name        string
	Description string

	// Prefix is the legacy single-character marker stripped by Decode.
	// Encode never emits it.
	Prefix byte

	Encode func([]byte) string

	// Decode accepts the legacy prefix.
	Decode func(string) ([]byte, error)

	// DecodeRaw is the exact inverse of Encode; it performs no prefix handling.
	DecodeRaw func(string) ([]byte, error)
}

var (
	mu     sync.RWMutex
	codecs = map[string]Codec{}
)

// Register registers a codec.
func Register(c Codec) error {
	if c.Name == "" {
		return fmt.Errorf("codec: name is required")
	}
	if c.Encode == nil {
		return fmt.Errorf("codec: %q missing Encode", c.Name)
	}
	if c.Decode == nil || c.DecodeRaw == nil {
		return fmt.Errorf("codec: %q missing Decode", c.Name)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := codecs[c.Name]; exists {
		return fmt.Errorf("codec: %q already registered", c.Name)
	}
	codecs[c.Name] = c
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(c Codec) {
	if err := Register(c); err != nil {
		panic(err)
	}
}

// Lookup returns the named codec.
func Lookup(name string) (Codec, error) {
	mu.RLock()
	c, ok := codecs[name]
	mu.RUnlock()
	if !ok {
		return Codec{}, Errorf(KindValue, RuleUnknownCodec, "", "unknown codec %q", name)
	}
	return c, nil
}

// List returns all registered codecs, sorted by name.
func List() []Codec {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Codec, 0, len(codecs))
	for _, c := range codecs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns registered codec names, sorted.
func Names() []string {
	cs := List()
	n := make([]string, 0, len(cs))
	for _, c := range cs {
		n = append(n, c.Name)
	}
	return n
}
