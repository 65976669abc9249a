// Package style serves exemplar snippets of a persona's writing. Each
// persona has a directory of source texts (letters, diaries); the texts
// are split into snippet-sized chunks once at load time and sampled at
// random per conversation turn, so consecutive turns quote different
// passages.
package style

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atelier-ai/atelier-engine/pkg/apperrors"
	"github.com/atelier-ai/atelier-engine/pkg/chunker"
)

// DefaultSnippetChars is the chunk size used when none is configured.
const DefaultSnippetChars = 800

// Sampler holds the per-persona exemplar pools.
type Sampler struct {
	pools  map[string][]string
	logger *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSampler creates an empty sampler. Pools are added with LoadDir.
func NewSampler(logger *zap.Logger) *Sampler {
	return &Sampler{
		pools:  make(map[string][]string),
		logger: logger.Named("style"),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed replaces the random source. Tests use this for determinism.
func (s *Sampler) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd = rand.New(rand.NewSource(seed))
}

// LoadDir reads every .txt file under dir, chunks the contents, and
// registers the resulting pool for the persona. snippetChars <= 0 uses
// the default.
func (s *Sampler) LoadDir(persona, dir string, snippetChars int) error {
	if snippetChars <= 0 {
		snippetChars = DefaultSnippetChars
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading style dir for %s: %w", persona, err)
	}

	var pool []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		pool = append(pool, chunker.Split(string(raw), snippetChars)...)
	}

	if len(pool) == 0 {
		return fmt.Errorf("no exemplar texts for %s in %s", persona, dir)
	}

	s.AddPool(persona, pool)
	s.logger.Info("style pool loaded",
		zap.String("persona", persona),
		zap.Int("snippets", len(pool)))
	return nil
}

// AddPool registers a prebuilt pool, replacing any existing one.
func (s *Sampler) AddPool(persona string, pool []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[persona] = pool
}

// Sample returns k distinct random exemplars for the persona. A pool
// smaller than k comes back whole, shuffled.
func (s *Sampler) Sample(persona string, k int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool, ok := s.pools[persona]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownPersona, persona)
	}
	if k > len(pool) {
		k = len(pool)
	}

	out := make([]string, 0, k)
	for _, i := range s.rnd.Perm(len(pool))[:k] {
		out = append(out, pool[i])
	}
	return out, nil
}
