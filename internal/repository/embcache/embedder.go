package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ayat/internal/db"
	"github.com/kailas-cloud/ayat/internal/domain"
	"github.com/kailas-cloud/ayat/internal/domain/vector"
)

var cacheKeyPrefix = domain.KeyPrefix + "emb_cache:"

const cacheFormatV1 byte = 1

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedEmbedder caches provider embeddings in a key-value store.
// Only successful provider responses reach the cache; fallback vectors are built
// above this layer and never stored.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	namespace  string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// namespace separates providers/models sharing one store; ttl 0 means no expiry.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Embedder,
	s store,
	namespace string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	return &CachedEmbedder{
		inner:      inner,
		store:      s,
		namespace:  namespace,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Embed returns a cached embedding or calls the inner embedder.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if res, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return res, nil
	}

	c.incCache("miss")

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	c.putToCache(ctx, key, result)
	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports it.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (c *CachedEmbedder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(c.namespace + "\x00" + text))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) getFromCache(ctx context.Context, key string) (domain.EmbeddingResult, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return domain.EmbeddingResult{}, false
	}
	if len(data) == 0 {
		return domain.EmbeddingResult{}, false
	}

	qv, processed, err := decode(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return domain.EmbeddingResult{}, false
	}
	return domain.EmbeddingResult{Vector: qv, ProcessedText: processed}, true
}

func (c *CachedEmbedder) putToCache(ctx context.Context, key string, res domain.EmbeddingResult) {
	data := encode(res.Vector, res.ProcessedText)
	var err error
	if c.ttl > 0 {
		err = c.store.SetWithTTL(ctx, key, data, c.ttl)
	} else {
		err = c.store.Set(ctx, key, data)
	}
	if err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

// encode layout (little endian):
//
//	version u8 | dense_len u32 | dense f32... | sparse_len u32 | indices u32... | values f32... | processed text
func encode(qv vector.QueryVector, processed string) []byte {
	n := len(qv.Sparse.Indices)
	buf := make([]byte, 0, 1+4+len(qv.Dense)*4+4+n*8+len(processed))
	buf = append(buf, cacheFormatV1)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(qv.Dense)))
	for _, f := range qv.Dense {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(f)))
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(n))
	for _, idx := range qv.Sparse.Indices {
		buf = binary.LittleEndian.AppendUint32(buf, idx)
	}
	for _, v := range qv.Sparse.Values {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(v)))
	}
	return append(buf, processed...)
}

func decode(data []byte) (vector.QueryVector, string, error) {
	if len(data) < 9 || data[0] != cacheFormatV1 {
		return vector.QueryVector{}, "", fmt.Errorf("invalid embedding cache data: unsupported header")
	}
	r := data[1:]

	readU32 := func() (uint32, bool) {
		if len(r) < 4 {
			return 0, false
		}
		v := binary.LittleEndian.Uint32(r)
		r = r[4:]
		return v, true
	}

	denseLen, _ := readU32()
	if uint64(len(r)) < uint64(denseLen)*4+4 {
		return vector.QueryVector{}, "", fmt.Errorf("invalid embedding cache data: dense truncated")
	}
	dense := make([]float64, denseLen)
	for i := range dense {
		u, _ := readU32()
		dense[i] = float64(math.Float32frombits(u))
	}

	sparseLen, _ := readU32()
	if uint64(len(r)) < uint64(sparseLen)*8 {
		return vector.QueryVector{}, "", fmt.Errorf("invalid embedding cache data: sparse truncated")
	}
	var sv vector.SparseVector
	if sparseLen > 0 {
		sv.Indices = make([]uint32, sparseLen)
		sv.Values = make([]float64, sparseLen)
		for i := range sv.Indices {
			sv.Indices[i], _ = readU32()
		}
		for i := range sv.Values {
			u, _ := readU32()
			sv.Values[i] = float64(math.Float32frombits(u))
		}
	}

	return vector.QueryVector{Dense: dense, Sparse: sv}, string(r), nil
}
