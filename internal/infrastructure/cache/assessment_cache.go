package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/coverledger/coverledger-backend/internal/domain/risk"
	"github.com/coverledger/coverledger-backend/internal/domain/values"
)

// AssessmentCache keeps recent risk scores keyed by wallet address so repeat
// quote requests within the TTL skip model inference.
type AssessmentCache struct {
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// cachedAssessment is the wire form stored in Redis
type cachedAssessment struct {
	Score        float64  `json:"score"`
	Factors      []string `json:"factors"`
	ModelVersion string   `json:"model_version"`
	AssessedAt   int64    `json:"assessed_at"`
}

// NewAssessmentCache creates a risk assessment cache with the default TTL
func NewAssessmentCache(cache Cache, logger *zap.Logger) *AssessmentCache {
	return &AssessmentCache{
		cache:  cache,
		ttl:    RiskScoreTTL,
		logger: logger,
	}
}

// Get returns the cached assessment for a wallet, or ok=false on a miss.
// Cache errors are logged and treated as misses.
func (c *AssessmentCache) Get(ctx context.Context, wallet values.WalletAddress) (*risk.Assessment, bool) {
	var cached cachedAssessment
	err := c.cache.GetJSON(ctx, c.key(wallet), &cached)
	if err != nil {
		var notFound ErrCacheKeyNotFound
		if !errors.As(err, &notFound) {
			c.logger.Warn("assessment cache read failed",
				zap.String("wallet", wallet.String()),
				zap.Error(err))
		}
		return nil, false
	}

	return &risk.Assessment{
		Score:        cached.Score,
		Factors:      cached.Factors,
		ModelVersion: cached.ModelVersion,
		AssessedAt:   time.Unix(cached.AssessedAt, 0).UTC(),
	}, true
}

// Put stores an assessment for a wallet. Failures are logged, not returned,
// since the cache is an optimization only.
func (c *AssessmentCache) Put(ctx context.Context, wallet values.WalletAddress, a *risk.Assessment) {
	cached := cachedAssessment{
		Score:        a.Score,
		Factors:      a.Factors,
		ModelVersion: a.ModelVersion,
		AssessedAt:   a.AssessedAt.Unix(),
	}

	if err := c.cache.SetJSON(ctx, c.key(wallet), cached, c.ttl); err != nil {
		c.logger.Warn("assessment cache write failed",
			zap.String("wallet", wallet.String()),
			zap.Error(err))
	}
}

// Invalidate drops the cached assessment for a wallet
func (c *AssessmentCache) Invalidate(ctx context.Context, wallet values.WalletAddress) {
	if err := c.cache.Delete(ctx, c.key(wallet)); err != nil {
		c.logger.Warn("assessment cache invalidation failed",
			zap.String("wallet", wallet.String()),
			zap.Error(err))
	}
}

func (c *AssessmentCache) key(wallet values.WalletAddress) string {
	return RiskScorePrefix + wallet.String()
}
