package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/marksheet-analytics/internal/apperror"
	"github.com/stemsi/marksheet-analytics/internal/config"
	"github.com/stemsi/marksheet-analytics/internal/dataset"
	"github.com/stemsi/marksheet-analytics/internal/metrics"
	"github.com/stemsi/marksheet-analytics/internal/model"
)

// cachedDataset is the Redis representation of an uploaded dataset. The
// normalized table is stored and re-validated on load, which is idempotent.
type cachedDataset struct {
	FileName string         `json:"file_name"`
	Table    *dataset.Table `json:"table"`
}

// DatasetService validates uploads and keeps them in Redis for later
// analysis requests.
type DatasetService struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

func NewDatasetService(rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *DatasetService {
	return &DatasetService{
		rdb: rdb,
		ttl: cfg.DatasetTTL,
		log: log.With().Str("component", "dataset_service").Logger(),
	}
}

// Upload reads and validates the file and caches it under a new id.
func (s *DatasetService) Upload(ctx context.Context, fileName string, r io.Reader) (*model.DatasetSummary, error) {
	ds, err := readAndValidate(fileName, r)
	if err != nil {
		_, code := apperror.Classify(err)
		metrics.ObserveUpload(string(code), 0)
		return nil, err
	}

	id := uuid.New().String()
	raw, err := json.Marshal(cachedDataset{FileName: fileName, Table: ds.Table()})
	if err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.DatasetKey(id), raw, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("cache dataset: %w", err)
	}
	metrics.ObserveUpload(metrics.OutcomeOK, ds.Len())

	s.log.Info().
		Str("dataset_id", id).
		Str("file", fileName).
		Int("rows", ds.Len()).
		Strs("subjects", ds.Subjects()).
		Msg("Dataset cached")

	return summarize(id, fileName, ds, time.Now().Add(s.ttl)), nil
}

// Load returns the cached dataset or dataset.ErrNotFound.
func (s *DatasetService) Load(ctx context.Context, id string) (*dataset.Dataset, error) {
	ds, _, err := s.load(ctx, id)
	return ds, err
}

// Summary describes a cached dataset and when it expires.
func (s *DatasetService) Summary(ctx context.Context, id string) (*model.DatasetSummary, error) {
	ds, fileName, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	ttl, err := s.rdb.TTL(ctx, config.CacheKey.DatasetKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("dataset ttl: %w", err)
	}
	return summarize(id, fileName, ds, time.Now().Add(ttl)), nil
}

// Delete drops a cached dataset. Deleting an unknown id is not an error.
func (s *DatasetService) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, config.CacheKey.DatasetKey(id)).Err()
}

func (s *DatasetService) load(ctx context.Context, id string) (*dataset.Dataset, string, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.DatasetKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, "", fmt.Errorf("%w: %s", dataset.ErrNotFound, id)
		}
		return nil, "", fmt.Errorf("load dataset: %w", err)
	}

	var c cachedDataset
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, "", fmt.Errorf("decode dataset %s: %w", id, err)
	}
	if c.Table == nil {
		return nil, "", fmt.Errorf("decode dataset %s: empty table", id)
	}

	ds, err := dataset.Validate(c.Table)
	if err != nil {
		s.log.Error().Err(err).Str("dataset_id", id).Msg("Cached dataset no longer validates")
		return nil, "", fmt.Errorf("revalidate dataset %s: %w", id, err)
	}
	return ds, c.FileName, nil
}

func readAndValidate(fileName string, r io.Reader) (*dataset.Dataset, error) {
	tbl, err := dataset.ReadFile(fileName, r)
	if err != nil {
		return nil, err
	}
	return dataset.Validate(tbl)
}

func summarize(id, fileName string, ds *dataset.Dataset, expiresAt time.Time) *model.DatasetSummary {
	return &model.DatasetSummary{
		ID:              id,
		FileName:        fileName,
		Columns:         ds.Columns(),
		Subjects:        ds.Subjects(),
		TeacherSubjects: nonNil(ds.TeacherSubjects()),
		Rows:            ds.Len(),
		ExpiresAt:       expiresAt.UTC().Truncate(time.Second),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
