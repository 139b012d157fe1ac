package agent

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// registrySize bounds the registry. The key space is small in practice
// (distinct endpoint/model/stage-instruction combinations), so entries are
// effectively never evicted.
const registrySize = 64

// Registry is an explicit keyed cache of constructed agents. Lookups and
// insertions are safe for concurrent use.
type Registry struct {
	cache *lru.Cache[string, *Agent]
}

// NewRegistry creates an empty registry.
func NewRegistry() (*Registry, error) {
	cache, err := lru.New[string, *Agent](registrySize)
	if err != nil {
		return nil, err
	}
	return &Registry{cache: cache}, nil
}

// GetOrCreate returns the agent registered under key, constructing and
// registering it with build on first use.
func (r *Registry) GetOrCreate(key string, build func() *Agent) *Agent {
	if a, ok := r.cache.Get(key); ok {
		return a
	}
	a := build()
	if existing, ok, _ := r.cache.PeekOrAdd(key, a); ok {
		return existing
	}
	return a
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Fingerprint derives a stable registry key from the full agent
// configuration: endpoint, model, credential, instructions, tool set, and
// output-token ceiling. The credential participates hashed, never verbatim.
func Fingerprint(endpoint, model, credential, instructions string, tools []ToolSpec, maxTokens int) string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name
	}
	sort.Strings(names)

	h := sha256.New()
	for _, part := range []string{
		endpoint,
		model,
		credential,
		instructions,
		strings.Join(names, ","),
		strconv.Itoa(maxTokens),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
