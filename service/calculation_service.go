package service

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"loan-workout/domain"
	"loan-workout/observability"
	"loan-workout/repository"
)

// CalculationRequest is everything a one-shot calculation needs.
type CalculationRequest struct {
	Loan    domain.LoanSnapshot      `json:"loan"`
	Request domain.ResolutionRequest `json:"request"`
	Inputs  domain.EditableInputs    `json:"inputs"`
}

// CalculationService computes DerivedMetrics without a session. Results are
// cached under a digest of the request.
type CalculationService struct {
	cache   repository.CacheRepository
	log     *logrus.Logger
	metrics *observability.Metrics
	legacy  bool
}

func NewCalculationService(
	cache repository.CacheRepository,
	log *logrus.Logger,
	metrics *observability.Metrics,
	legacyArrears bool,
) *CalculationService {
	return &CalculationService{cache: cache, log: log, metrics: metrics, legacy: legacyArrears}
}

func (s *CalculationService) Calculate(ctx context.Context, req CalculationRequest) (domain.DerivedMetrics, error) {
	if err := validateInputs(req.Inputs); err != nil {
		return domain.DerivedMetrics{}, err
	}

	key, err := s.cacheKey(req)
	if err != nil {
		return domain.DerivedMetrics{}, err
	}
	if cached, ok := s.cache.Get(ctx, key); ok {
		var m domain.DerivedMetrics
		if err := gob.NewDecoder(bytes.NewBufferString(cached)).Decode(&m); err == nil {
			s.metrics.ObserveCache(true)
			return m, nil
		}
		s.log.WithField("key", key).Warn("discarding undecodable cached calculation")
	}
	s.metrics.ObserveCache(false)

	engine, err := NewEngine(WithLegacyArrearsFallthrough(s.legacy))
	if err != nil {
		return domain.DerivedMetrics{}, err
	}
	engine.LoadSnapshot(req.Loan, req.Request)
	engine.HydrateOption(req.Inputs)
	m := engine.Metrics()

	// Caching is not critical.
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		s.log.WithError(err).Warn("failed to encode calculation for cache")
	} else if err := s.cache.Set(ctx, key, buf.String(), CalculationCacheTTL); err != nil {
		s.log.WithError(err).Warn("failed to cache calculation")
	}
	return m, nil
}

func (s *CalculationService) cacheKey(req CalculationRequest) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode calculation request: %w", err)
	}
	digest := xxhash.New()
	digest.Write(raw)
	digest.WriteString(strconv.FormatBool(s.legacy))
	return strconv.FormatUint(digest.Sum64(), 16), nil
}
