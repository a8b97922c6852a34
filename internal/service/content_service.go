package service

import (
	"context"
	"strings"

	"github.com/Panjavaishnavi/news-app/internal/apperr"
	"github.com/Panjavaishnavi/news-app/internal/domain"
	"github.com/Panjavaishnavi/news-app/internal/repository"
)

// NewsInput carries the writable fields of a news article. Updates rewrite
// all of them; callers must resupply values they want to keep.
type NewsInput struct {
	Title       string
	Description string
	Image       string
	CategoryID  int64
}

// ContentService coordinates category and news operations backed by
// repositories.
type ContentService interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CreateCategory(ctx context.Context, title string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, title string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) (bool, error)

	ListNews(ctx context.Context) ([]domain.News, error)
	GetNewsByID(ctx context.Context, id int64) (*domain.News, error)
	GetNewsByCategory(ctx context.Context, categoryID int64) ([]domain.News, error)
	CreateNews(ctx context.Context, input NewsInput, callerUserID int64) (*domain.News, error)
	UpdateNews(ctx context.Context, id int64, input NewsInput) (*domain.News, error)
	DeleteNews(ctx context.Context, id int64) error
}

type contentService struct {
	categories repository.CategoryRepository
	news       repository.NewsRepository
}

func NewContentService(categories repository.CategoryRepository, news repository.NewsRepository) ContentService {
	return &contentService{
		categories: categories,
		news:       news,
	}
}

func (s *contentService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *contentService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categories.Get(ctx, id)
}

func (s *contentService) CreateCategory(ctx context.Context, title string) (*domain.Category, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.NewValidation("Title is required")
	}
	id, err := s.categories.Create(ctx, title)
	if err != nil {
		return nil, err
	}
	return &domain.Category{ID: id, Title: title}, nil
}

func (s *contentService) UpdateCategory(ctx context.Context, id int64, title string) (*domain.Category, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.NewValidation("Title is required")
	}
	if _, err := s.categories.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.categories.Update(ctx, id, title); err != nil {
		return nil, err
	}
	return &domain.Category{ID: id, Title: title}, nil
}

func (s *contentService) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	return s.categories.Delete(ctx, id)
}

func (s *contentService) ListNews(ctx context.Context) ([]domain.News, error) {
	return s.news.List(ctx)
}

func (s *contentService) GetNewsByID(ctx context.Context, id int64) (*domain.News, error) {
	return s.news.Get(ctx, id)
}

// GetNewsByCategory does not verify the category exists; an unknown id
// yields an empty list.
func (s *contentService) GetNewsByCategory(ctx context.Context, categoryID int64) ([]domain.News, error) {
	return s.news.ListByCategory(ctx, categoryID)
}

func (s *contentService) CreateNews(ctx context.Context, input NewsInput, callerUserID int64) (*domain.News, error) {
	if err := validateNewsInput(input); err != nil {
		return nil, err
	}

	// The author is always the authenticated caller; a user_id in the
	// request body is ignored.
	news := &domain.News{
		Title:       input.Title,
		Description: input.Description,
		Image:       input.Image,
		CategoryID:  input.CategoryID,
		UserID:      callerUserID,
	}
	id, err := s.news.Create(ctx, news)
	if err != nil {
		return nil, err
	}

	// re-read for the category/author enrichment
	return s.news.Get(ctx, id)
}

func (s *contentService) UpdateNews(ctx context.Context, id int64, input NewsInput) (*domain.News, error) {
	if err := validateNewsInput(input); err != nil {
		return nil, err
	}

	existing, err := s.news.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.Image = input.Image
	existing.CategoryID = input.CategoryID
	if err := s.news.Update(ctx, existing); err != nil {
		return nil, err
	}

	return s.news.Get(ctx, id)
}

func (s *contentService) DeleteNews(ctx context.Context, id int64) error {
	if _, err := s.news.Get(ctx, id); err != nil {
		return err
	}
	deleted, err := s.news.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.ErrNotFound
	}
	return nil
}

func validateNewsInput(input NewsInput) error {
	var messages []string
	if strings.TrimSpace(input.Title) == "" {
		messages = append(messages, "Title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		messages = append(messages, "Description is required")
	}
	if input.CategoryID == 0 {
		messages = append(messages, "Category ID is required")
	}
	if len(messages) > 0 {
		return &apperr.ValidationError{Messages: messages}
	}
	return nil
}
