package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrCapabilityUnavailable is returned by every embedding call when the
// capability failed to initialize.
var ErrCapabilityUnavailable = errors.New("embedding capability unavailable")

const probeTimeout = 30 * time.Second

// Capability is the process-wide embedding handle. It is built once at
// startup; when initialization fails it stays unavailable for the life of
// the process. Successful embeddings are memoized in an LRU cache.
type Capability struct {
	embedder Embedder
	provider string
	err      error
	cache    *lru.Cache[string, []float32]
	logger   *slog.Logger
}

// NewCapability builds the configured embedder and probes it with a single
// request. Failures are recorded, not returned.
func NewCapability(ctx context.Context, opts EmbedderOptions, cacheSize int, logger *slog.Logger) *Capability {
	if logger == nil {
		logger = slog.Default()
	}
	embedder, err := NewEmbedder(ctx, opts)
	if err != nil {
		logger.Warn("embedding capability unavailable", slog.String("provider", opts.Provider), slog.String("error", err.Error()))
		return UnavailableCapability(err)
	}

	c := NewCapabilityWithEmbedder(embedder, opts.Provider, cacheSize, logger)
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if _, err := embedder.Embed(probeCtx, []string{"ping"}); err != nil {
		embedCallsTotal.WithLabelValues(opts.Provider, "error").Inc()
		logger.Warn("embedding capability unavailable", slog.String("provider", opts.Provider), slog.String("error", err.Error()))
		return UnavailableCapability(fmt.Errorf("probe %s embedder: %w", opts.Provider, err))
	}
	logger.Info("embedding capability ready", slog.String("provider", opts.Provider), slog.String("model", opts.Model))
	return c
}

// NewCapabilityWithEmbedder wraps an already constructed embedder without
// probing it.
func NewCapabilityWithEmbedder(embedder Embedder, provider string, cacheSize int, logger *slog.Logger) *Capability {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Capability{embedder: embedder, provider: provider, logger: logger}
	if embedder == nil {
		c.err = errors.New("no embedder configured")
		return c
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, []float32](cacheSize)
		if err == nil {
			c.cache = cache
		}
	}
	return c
}

// UnavailableCapability returns a capability that fails every call with
// ErrCapabilityUnavailable wrapping cause.
func UnavailableCapability(cause error) *Capability {
	if cause == nil {
		cause = errors.New("not initialized")
	}
	return &Capability{err: cause, logger: slog.Default()}
}

// Available reports whether embeddings can be computed.
func (c *Capability) Available() bool {
	return c != nil && c.err == nil && c.embedder != nil
}

// Err returns the initialization failure, if any.
func (c *Capability) Err() error {
	if c == nil {
		return ErrCapabilityUnavailable
	}
	if c.err != nil {
		return fmt.Errorf("%w: %v", ErrCapabilityUnavailable, c.err)
	}
	if c.embedder == nil {
		return ErrCapabilityUnavailable
	}
	return nil
}

// Provider names the configured embedding provider.
func (c *Capability) Provider() string {
	if c == nil {
		return ""
	}
	return c.provider
}

// Embed returns one vector per text, serving repeated texts from the cache.
func (c *Capability) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if !c.Available() {
		return nil, c.Err()
	}
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if c.cache != nil {
			if v, ok := c.cache.Get(cacheKey(text)); ok {
				embedCacheTotal.WithLabelValues("hit").Inc()
				out[i] = v
				continue
			}
			embedCacheTotal.WithLabelValues("miss").Inc()
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := c.embedder.Embed(ctx, missing)
	if err != nil {
		embedCallsTotal.WithLabelValues(c.provider, "error").Inc()
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	embedCallsTotal.WithLabelValues(c.provider, "ok").Inc()
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(vecs), len(missing))
	}
	for j, v := range vecs {
		out[missingIdx[j]] = v
		if c.cache != nil {
			c.cache.Add(cacheKey(missing[j]), v)
		}
	}
	return out, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Cosine returns the cosine similarity of a and b, or 0 when either vector
// has zero length or the dimensions differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
