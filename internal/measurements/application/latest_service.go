package application

import (
	"context"
	"errors"
	"log"

	measurements "plantwatch/internal/measurements/domain"
)

// LatestReader reads the latest-per-sensor view from the store.
type LatestReader interface {
	ListLatest(ctx context.Context) ([]measurements.LatestReading, error)
}

// LatestCache is an optional read-through cache for the latest view.
type LatestCache interface {
	Get(ctx context.Context) ([]measurements.LatestReading, bool, error)
	Set(ctx context.Context, view []measurements.LatestReading) error
}

// LatestService serves the latest-reading view, consulting the cache first
// when one is configured. Cache failures degrade to the store.
type LatestService struct {
	reader LatestReader
	cache  LatestCache
	logger *log.Logger
}

// NewLatestService constructs the service. cache may be nil.
func NewLatestService(reader LatestReader, cache LatestCache, logger *log.Logger) (*LatestService, error) {
	if reader == nil {
		return nil, errors.New("latest service: nil reader")
	}
	return &LatestService{reader: reader, cache: cache, logger: logger}, nil
}

// Latest returns the most recent measurement per sensor.
func (s *LatestService) Latest(ctx context.Context) ([]measurements.LatestReading, error) {
	if s == nil {
		return nil, errors.New("latest service: nil service")
	}
	if s.cache != nil {
		view, ok, err := s.cache.Get(ctx)
		if err != nil && s.logger != nil {
			s.logger.Printf("latest cache read error: %v", err)
		}
		if ok {
			return view, nil
		}
	}
	view, err := s.reader.ListLatest(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, view); err != nil && s.logger != nil {
			s.logger.Printf("latest cache write error: %v", err)
		}
	}
	return view, nil
}
