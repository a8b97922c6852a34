package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Panjavaishnavi/news-app/internal/apperr"
	"github.com/Panjavaishnavi/news-app/internal/domain"
	"github.com/Panjavaishnavi/news-app/internal/repository"
)

// No declared foreign keys: a news row outlives a deleted category or
// author, and the enrichment joins below tolerate the dangling reference.
const createNewsTable = `
CREATE TABLE IF NOT EXISTS news (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	image TEXT NOT NULL DEFAULT '',
	category_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const selectEnrichedNews = `
SELECT n.id, n.title, n.description, n.image, n.category_id, n.user_id, n.created_at, n.updated_at,
       c.title AS category_title, u.username AS author
FROM news n
LEFT JOIN categories c ON n.category_id = c.id
LEFT JOIN users u ON n.user_id = u.id
`

type NewsRepository struct {
	db *sql.DB
}

func NewNewsRepository(db *sql.DB) repository.NewsRepository {
	return &NewsRepository{db: db}
}

func (r *NewsRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createNewsTable); err != nil {
		return fmt.Errorf("create news table: %w", err)
	}
	return nil
}

func (r *NewsRepository) List(ctx context.Context) ([]domain.News, error) {
	rows, err := r.db.QueryContext(ctx, selectEnrichedNews+`ORDER BY n.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()
	return collectNews(rows)
}

func (r *NewsRepository) Get(ctx context.Context, id int64) (*domain.News, error) {
	row := r.db.QueryRowContext(ctx, selectEnrichedNews+`WHERE n.id = ?`, id)
	news, err := scanNews(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return news, nil
}

func (r *NewsRepository) ListByCategory(ctx context.Context, categoryID int64) ([]domain.News, error) {
	rows, err := r.db.QueryContext(ctx, selectEnrichedNews+`WHERE n.category_id = ? ORDER BY n.id DESC`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list news by category: %w", err)
	}
	defer rows.Close()
	return collectNews(rows)
}

func (r *NewsRepository) Create(ctx context.Context, news *domain.News) (int64, error) {
	now := time.Now().UTC()
	news.CreatedAt = now
	news.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO news (title, description, image, category_id, user_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		news.Title,
		news.Description,
		news.Image,
		news.CategoryID,
		news.UserID,
		news.CreatedAt,
		news.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert news: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("news last insert id: %w", err)
	}
	news.ID = id
	return id, nil
}

// Update rewrites every content field; callers resupply unchanged values.
// user_id is deliberately left alone so the original author survives edits.
func (r *NewsRepository) Update(ctx context.Context, news *domain.News) error {
	news.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
UPDATE news SET title = ?, description = ?, image = ?, category_id = ?, updated_at = ?
WHERE id = ?`,
		news.Title,
		news.Description,
		news.Image,
		news.CategoryID,
		news.UpdatedAt,
		news.ID,
	)
	if err != nil {
		return fmt.Errorf("update news: %w", err)
	}
	return nil
}

func (r *NewsRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM news WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete news: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("news rows affected: %w", err)
	}
	return affected > 0, nil
}

func collectNews(rows *sql.Rows) ([]domain.News, error) {
	var items []domain.News
	for rows.Next() {
		news, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *news)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate news: %w", err)
	}
	return items, nil
}

func scanNews(row interface {
	Scan(dest ...any) error
}) (*domain.News, error) {
	var news domain.News
	var categoryTitle, author sql.NullString
	if err := row.Scan(
		&news.ID,
		&news.Title,
		&news.Description,
		&news.Image,
		&news.CategoryID,
		&news.UserID,
		&news.CreatedAt,
		&news.UpdatedAt,
		&categoryTitle,
		&author,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan news: %w", err)
	}
	if categoryTitle.Valid {
		news.CategoryTitle = &categoryTitle.String
	}
	if author.Valid {
		news.Author = &author.String
	}
	return &news, nil
}
