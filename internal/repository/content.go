package repository

import (
	"context"

	"github.com/Panjavaishnavi/news-app/internal/domain"
)

// CategoryRepository defines persistence operations for Category entities.
type CategoryRepository interface {
	Init(ctx context.Context) error
	List(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, id int64) (*domain.Category, error)
	Create(ctx context.Context, title string) (int64, error)
	Update(ctx context.Context, id int64, title string) error
	// Delete reports whether a row was actually removed; a missing id is
	// not an error.
	Delete(ctx context.Context, id int64) (bool, error)
}

// NewsRepository defines persistence operations for News entities. Reads
// return rows enriched with the category title and author username.
type NewsRepository interface {
	Init(ctx context.Context) error
	List(ctx context.Context) ([]domain.News, error)
	Get(ctx context.Context, id int64) (*domain.News, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]domain.News, error)
	Create(ctx context.Context, news *domain.News) (int64, error)
	Update(ctx context.Context, news *domain.News) error
	Delete(ctx context.Context, id int64) (bool, error)
}
