package videos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-video/catalog-backend/internal/criteria"
	"github.com/aura-video/catalog-backend/internal/models"
)

// Repository handles video persistence and querying.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a video repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const videoColumns = `v.id, v.title, v.thumbnail_url, v.duration, v.views, v.created_at, v.updated_at,
	COALESCE(array_agg(t.name ORDER BY vt.position) FILTER (WHERE t.name IS NOT NULL), '{}') AS tags`

// List resolves list criteria against the store. Criteria are re-normalized
// at this boundary; callers cannot hand in unnormalized input by accident.
// Title matching is case-insensitive substring; a non-empty tag set matches
// videos carrying at least one of the requested tags (union, not
// intersection).
func (r *Repository) List(ctx context.Context, crit criteria.ListCriteria) ([]models.Video, error) {
	c := crit.Normalize()

	dir := "DESC"
	if c.OrderBy == criteria.SortOldest {
		dir = "ASC"
	}
	q := fmt.Sprintf(`SELECT %s
		FROM videos v
		LEFT JOIN video_tags vt ON vt.video_id = v.id
		LEFT JOIN tags t ON t.id = vt.tag_id
		WHERE v.title ILIKE '%%' || $1 || '%%'
		  AND (cardinality($2::text[]) = 0 OR EXISTS (
			SELECT 1 FROM video_tags vt2
			JOIN tags t2 ON t2.id = vt2.tag_id
			WHERE vt2.video_id = v.id AND t2.name = ANY($2)))
		GROUP BY v.id
		ORDER BY v.created_at %s`, videoColumns, dir)

	rows, err := r.pool.Query(ctx, q, escapeLike(c.SearchQuery), c.Tags)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	list := make([]models.Video, 0)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// Create validates the input and persists the video together with its tag
// associations in one transaction; on any failure nothing is written. Tag
// names are lowercased here, the persistence boundary, and attached with
// upsert-by-name semantics: the unique constraint on tags.name resolves
// concurrent creations of the same new tag to a single row.
func (r *Repository) Create(ctx context.Context, in criteria.CreateInput) (*models.Video, error) {
	return r.create(ctx, in, time.Time{})
}

// CreateAt is Create with an explicit creation instant, for seeding.
func (r *Repository) CreateAt(ctx context.Context, in criteria.CreateInput, createdAt time.Time) (*models.Video, error) {
	return r.create(ctx, in, createdAt)
}

func (r *Repository) create(ctx context.Context, in criteria.CreateInput, createdAt time.Time) (*models.Video, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id string
	insertVideo := `INSERT INTO videos (title, thumbnail_url, duration, views)
		VALUES ($1, $2, $3, $4) RETURNING id`
	args := []any{in.Title, in.ThumbnailURL, in.Duration.Int(), in.Views.IntOr(0)}
	if !createdAt.IsZero() {
		insertVideo = `INSERT INTO videos (title, thumbnail_url, duration, views, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`
		args = append(args, createdAt)
	}
	if err := tx.QueryRow(ctx, insertVideo, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}

	const upsertTag = `INSERT INTO tags (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`
	const attachTag = `INSERT INTO video_tags (video_id, tag_id, position)
		VALUES ($1, $2, $3) ON CONFLICT (video_id, tag_id) DO NOTHING`

	for i, raw := range in.Tags {
		name := criteria.NormalizeTag(raw)
		if name == "" {
			continue
		}
		var tagID string
		if err := tx.QueryRow(ctx, upsertTag, name).Scan(&tagID); err != nil {
			return nil, fmt.Errorf("upsert tag %q: %w", name, err)
		}
		if _, err := tx.Exec(ctx, attachTag, id, tagID, i); err != nil {
			return nil, fmt.Errorf("attach tag %q: %w", name, err)
		}
	}

	video, err := getByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return video, nil
}

// GetByID returns one shaped video.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Video, error) {
	return getByID(ctx, r.pool, id)
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getByID(ctx context.Context, q querier, id string) (*models.Video, error) {
	query := fmt.Sprintf(`SELECT %s
		FROM videos v
		LEFT JOIN video_tags vt ON vt.video_id = v.id
		LEFT JOIN tags t ON t.id = vt.tag_id
		WHERE v.id = $1
		GROUP BY v.id`, videoColumns)
	v, err := scanVideo(q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	return &v, nil
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var v models.Video
	err := row.Scan(&v.ID, &v.Title, &v.ThumbnailURL, &v.Duration, &v.Views, &v.CreatedAt, &v.UpdatedAt, &v.Tags)
	if v.Tags == nil {
		v.Tags = []string{}
	}
	return v, err
}

// escapeLike neutralizes LIKE metacharacters in user search input so they
// match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
