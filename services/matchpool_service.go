package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/bilwininc-ship-it/aianaliz/internal/apperror"
	"github.com/bilwininc-ship-it/aianaliz/internal/database"
	"github.com/bilwininc-ship-it/aianaliz/internal/types/fixture"
)

const (
	apiKeyConfigPath = "remoteConfig/API_FOOTBALL_KEY"
	fetchPause       = 500 * time.Millisecond // provider rate-limit courtesy
	pruneAge         = 3 * time.Hour
	refreshInterval  = 6 * time.Hour // advisory only
)

// FixtureSource supplies normalized fixtures for a calendar date.
// Implemented by internal/football; tests inject a stub.
type FixtureSource interface {
	FetchFixturesForDate(ctx context.Context, apiKey, date string) ([]fixture.Record, error)
}

// MatchPoolService refreshes the fixture pool from the provider and
// prunes fixtures past their useful window.
type MatchPoolService struct {
	db     database.Store
	source FixtureSource

	pause time.Duration
	now   func() time.Time
}

func NewMatchPoolService(db database.Store, source FixtureSource) *MatchPoolService {
	return &MatchPoolService{
		db:     db,
		source: source,
		pause:  fetchPause,
		now:    time.Now,
	}
}

// RefreshPool fetches today's and tomorrow's fixtures, upserts them at
// their (date, fixtureId) keys, overwrites the pool metadata and prunes
// expired fixtures. A failed fetch for one day degrades to zero matches
// for that day instead of aborting the refresh.
func (s *MatchPoolService) RefreshPool(ctx context.Context) (*fixture.RefreshSummary, error) {
	var apiKey string
	if err := s.db.Get(ctx, apiKeyConfigPath, &apiKey); err != nil {
		return nil, apperror.Wrap(apperror.Internal, "Remote config okunamadı", err)
	}
	if apiKey == "" {
		return nil, apperror.New(apperror.Unavailable, "API_FOOTBALL_KEY bulunamadı")
	}

	now := s.now()
	dates := []string{
		now.Format("2006-01-02"),
		now.AddDate(0, 0, 1).Format("2006-01-02"),
	}

	totalMatches := 0
	leagueSet := make(map[int64]struct{})

	for i, date := range dates {
		if i > 0 {
			select {
			case <-time.After(s.pause):
			case <-ctx.Done():
				return nil, apperror.Wrap(apperror.Internal, "Güncelleme iptal edildi", ctx.Err())
			}
		}

		records, err := s.source.FetchFixturesForDate(ctx, apiKey, date)
		if err != nil {
			log.Printf("Fixture fetch failed for %s: %v", date, err)
			continue
		}
		if len(records) == 0 {
			continue
		}

		updates := make(map[string]interface{}, len(records))
		for _, r := range records {
			updates[fmt.Sprintf("%s/%d", r.Date, r.FixtureID)] = r
			leagueSet[r.LeagueID] = struct{}{}
		}
		if err := s.db.Update(ctx, "matchPool", updates); err != nil {
			return nil, apperror.Wrap(apperror.Internal, "Match pool yazılamadı", err)
		}

		totalMatches += len(records)
		log.Printf("Match pool: %d fixtures written for %s", len(records), date)
	}

	leagues := make([]int64, 0, len(leagueSet))
	for id := range leagueSet {
		leagues = append(leagues, id)
	}
	sort.Slice(leagues, func(i, j int) bool { return leagues[i] < leagues[j] })

	meta := fixture.PoolMetadata{
		LastUpdate:   database.ServerTimestamp,
		TotalMatches: totalMatches,
		Leagues:      leagues,
		LeagueCount:  len(leagues),
		NextUpdate:   now.UnixMilli() + refreshInterval.Milliseconds(),
	}
	if err := s.db.Set(ctx, "poolMetadata", meta); err != nil {
		return nil, apperror.Wrap(apperror.Internal, "Pool metadata yazılamadı", err)
	}

	deleted, err := s.PruneExpired(ctx)
	if err != nil {
		return nil, err
	}
	if deleted > 0 {
		log.Printf("Match pool: %d expired fixtures removed", deleted)
	}

	log.Printf("Match pool updated: %d fixtures across %d leagues", totalMatches, len(leagues))
	return &fixture.RefreshSummary{
		TotalMatches: totalMatches,
		Leagues:      len(leagues),
		Timestamp:    now.UTC().Format(time.RFC3339),
	}, nil
}

// PruneExpired deletes every fixture whose kickoff timestamp is older
// than now minus the prune window. All deletions go out as one
// multi-location update.
func (s *MatchPoolService) PruneExpired(ctx context.Context) (int, error) {
	var pool map[string]map[string]fixture.Record
	if err := s.db.Get(ctx, "matchPool", &pool); err != nil {
		return 0, apperror.Wrap(apperror.Internal, "Match pool okunamadı", err)
	}

	cutoff := s.now().UnixMilli() - pruneAge.Milliseconds()
	updates := make(map[string]interface{})
	for date, matches := range pool {
		for id, m := range matches {
			if m.Timestamp < cutoff {
				updates[date+"/"+id] = nil
			}
		}
	}
	if len(updates) == 0 {
		return 0, nil
	}
	if err := s.db.Update(ctx, "matchPool", updates); err != nil {
		return 0, apperror.Wrap(apperror.Internal, "Eski maçlar silinemedi", err)
	}
	return len(updates), nil
}

// PoolStatus returns the last refresh summary stored at poolMetadata.
func (s *MatchPoolService) PoolStatus(ctx context.Context) (*fixture.PoolMetadata, error) {
	var meta *fixture.PoolMetadata
	if err := s.db.Get(ctx, "poolMetadata", &meta); err != nil {
		return nil, apperror.Wrap(apperror.Internal, "Pool metadata okunamadı", err)
	}
	if meta == nil {
		return nil, apperror.New(apperror.NotFound, "Match pool henüz güncellenmedi")
	}
	return meta, nil
}
