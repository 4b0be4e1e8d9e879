package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/scoretrack/scoretrack-backend/internal/config"
	"github.com/scoretrack/scoretrack-backend/internal/model"
	"github.com/scoretrack/scoretrack-backend/internal/repository"
)

// statsTTL bounds how stale the cached teacher dashboard counters can be.
const statsTTL = 30 * time.Second

// ScoreStore is the score persistence needed by ScoreService.
type ScoreStore interface {
	CreateBatch(ctx context.Context, batch *model.ScoreBatch, rows []model.ValidScoreRow) error
	ListSeries(ctx context.Context, studentID, studentEmail, teacherID string) ([]model.ScorePoint, error)
	StatsForTeacher(ctx context.Context, teacherID string) (*repository.TeacherStats, error)
}

// ScoreService runs the ingestion pipeline and the read-side aggregation.
type ScoreService struct {
	scores ScoreStore
	conns  ConnectionStore
	users  UserStore
	rdb    *redis.Client
	log    zerolog.Logger
}

// NewScoreService creates a new ScoreService.
func NewScoreService(scores ScoreStore, conns ConnectionStore, users UserStore, rdb *redis.Client, log zerolog.Logger) *ScoreService {
	return &ScoreService{
		scores: scores,
		conns:  conns,
		users:  users,
		rdb:    rdb,
		log:    log.With().Str("component", "score_service").Logger(),
	}
}

// Ingest validates decoded rows and persists the accepted ones as one batch.
// Invalid rows are counted and skipped, never fatal; a batch where every row
// was skipped is still recorded as an upload session. Rows are keyed by the
// student's email and do not require an account or a connection to exist yet.
// Ingestion is not idempotent: re-uploading the same file duplicates scores.
func (s *ScoreService) Ingest(ctx context.Context, teacherID string, rows []model.RawRow) (*model.IngestReport, error) {
	accepted := make([]model.ValidScoreRow, 0, len(rows))
	skipped := 0

	for _, raw := range rows {
		v := model.ValidateRow(raw)
		if !v.Valid() {
			skipped++
			s.log.Debug().Str("reason", v.Reason).Msg("Row skipped")
			continue
		}
		accepted = append(accepted, *v.Row)
	}

	batch := &model.ScoreBatch{
		TeacherID:     teacherID,
		AcceptedCount: len(accepted),
		SkippedCount:  skipped,
	}
	if err := s.scores.CreateBatch(ctx, batch, accepted); err != nil {
		return nil, fmt.Errorf("persist batch: %w", err)
	}

	s.invalidateStats(ctx, teacherID)

	s.log.Info().
		Str("teacher_id", teacherID).
		Str("batch_id", batch.ID).
		Int("accepted", batch.AcceptedCount).
		Int("skipped", batch.SkippedCount).
		Msg("Score batch ingested")

	return &model.IngestReport{
		BatchID:       batch.ID,
		TeacherID:     teacherID,
		AcceptedCount: batch.AcceptedCount,
		SkippedCount:  batch.SkippedCount,
	}, nil
}

// SeriesForStudent builds one ConnectionSeries per connection the student
// holds, most recent connection first. Scores within a series are ordered by
// recording time ascending; a connection without scores yields an empty
// series, not a missing entry. The latest value and its band are derived on
// every read.
func (s *ScoreService) SeriesForStudent(ctx context.Context, studentID string) ([]model.ConnectionSeries, error) {
	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}

	conns, err := s.conns.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}

	series := make([]model.ConnectionSeries, 0, len(conns))
	for _, c := range conns {
		points, err := s.scores.ListSeries(ctx, studentID, student.Email, c.TeacherID)
		if err != nil {
			return nil, fmt.Errorf("list scores: %w", err)
		}
		if points == nil {
			points = []model.ScorePoint{}
		}

		cs := model.ConnectionSeries{
			ConnectionID: c.ID,
			TeacherID:    c.TeacherID,
			TeacherName:  c.TeacherName,
			Subject:      c.Subject,
			TeacherCode:  c.TeacherCode,
			Scores:       points,
		}
		if len(points) > 0 {
			latest := points[len(points)-1].Value
			cs.Latest = &latest
			cs.LatestBand = model.BandFor(latest)
		}
		series = append(series, cs)
	}
	return series, nil
}

// StatsForTeacher returns the teacher dashboard counters, cached briefly in
// Redis and invalidated on ingest.
func (s *ScoreService) StatsForTeacher(ctx context.Context, teacherID string) (*repository.TeacherStats, error) {
	key := config.CacheKey.TeacherStatsKey(teacherID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			stats := &repository.TeacherStats{}
			if err := json.Unmarshal([]byte(cached), stats); err == nil {
				return stats, nil
			}
		}
	}

	stats, err := s.scores.StatsForTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.rdb.Set(ctx, key, payload, statsTTL).Err(); err != nil {
				s.log.Warn().Err(err).Msg("Stats cache write failed")
			}
		}
	}
	return stats, nil
}

func (s *ScoreService) invalidateStats(ctx context.Context, teacherID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.TeacherStatsKey(teacherID)).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Stats cache invalidation failed")
	}
}
