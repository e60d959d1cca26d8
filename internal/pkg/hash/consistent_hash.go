package hash

import (
	"sort"
	"strconv"
	"sync"

	"github.com/spaolacci/murmur3"
)

const (
	_topWeight   = 100
	_minReplicas = 100
)

type (
	Func func(data []byte) uint64
	// ConsistentHash maps keys onto a weighted ring of named nodes.
	// A key keeps its node as long as the node set does not change.
	ConsistentHash struct {
		lock     sync.RWMutex
		ring     map[uint64]string
		nodes    map[string]int
		keys     []uint64
		hashFunc Func
		replicas int
	}
)

// ConsistentHashOption defines a function type for configuring ConsistentHash.
type ConsistentHashOption func(c *ConsistentHash)

// WithReplicas sets the number of virtual nodes for a node of full weight.
func WithReplicas(replicas int) ConsistentHashOption {
	return func(c *ConsistentHash) {
		c.replicas = replicas
	}
}

// WithHashFunc sets the hash function for the ConsistentHash.
func WithHashFunc(hashFunc Func) ConsistentHashOption {
	return func(c *ConsistentHash) {
		c.hashFunc = hashFunc
	}
}

// NewConsistentHash creates and returns a new instance of ConsistentHash.
// default using hash function murmur3 64-bit and 100 replicas
func NewConsistentHash(opts ...ConsistentHashOption) *ConsistentHash {
	c := &ConsistentHash{
		ring:     make(map[uint64]string),
		nodes:    make(map[string]int),
		hashFunc: murmur3.Sum64,
		replicas: _minReplicas,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add adds the node with full weight.
func (h *ConsistentHash) Add(node string) {
	h.AddWithWeight(node, _topWeight)
}

// AddWithWeight adds the node with a weight in [1, 100]; the share of keys
// it receives is proportional to the weight.
func (h *ConsistentHash) AddWithWeight(node string, weight int) {
	if weight <= 0 {
		return
	}
	if weight > _topWeight {
		weight = _topWeight
	}
	replicas := h.replicas * weight / _topWeight
	if replicas < 1 {
		replicas = 1
	}

	h.Remove(node)

	h.lock.Lock()
	defer h.lock.Unlock()

	h.nodes[node] = replicas
	for i := 0; i < replicas; i++ {
		hash := h.hashFunc([]byte(node + "#" + strconv.Itoa(i)))
		if _, taken := h.ring[hash]; taken {
			continue
		}
		h.keys = append(h.keys, hash)
		h.ring[hash] = node
	}

	sort.Slice(h.keys, func(i, j int) bool {
		return h.keys[i] < h.keys[j]
	})
}

// Get returns the node responsible for key.
func (h *ConsistentHash) Get(key string) (string, bool) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	if len(h.keys) == 0 {
		return "", false
	}

	hash := h.hashFunc([]byte(key))
	index := sort.Search(len(h.keys), func(i int) bool {
		return h.keys[i] >= hash
	}) % len(h.keys)

	return h.ring[h.keys[index]], true
}

// Nodes returns the registered node names in sorted order.
func (h *ConsistentHash) Nodes() []string {
	h.lock.RLock()
	defer h.lock.RUnlock()

	names := make([]string, 0, len(h.nodes))
	for name := range h.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove removes the node from the ring.
func (h *ConsistentHash) Remove(node string) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if _, ok := h.nodes[node]; !ok {
		return
	}

	keys := h.keys[:0]
	for _, k := range h.keys {
		if h.ring[k] == node {
			delete(h.ring, k)
			continue
		}
		keys = append(keys, k)
	}
	h.keys = keys
	delete(h.nodes, node)
}
