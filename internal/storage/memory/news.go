package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
)

func (r repo) GetNews(_ context.Context, id uuid.UUID) (*models.News, error) {
	const op = "storage.memory.GetNews"

	var out models.News
	err := r.read(func(t *tables) error {
		n, ok := t.news[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		out = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r repo) ListNews(_ context.Context, filter models.NewsFilter) ([]models.News, error) {
	var out []models.News

	_ = r.read(func(t *tables) error {
		for _, n := range t.news {
			if filter.Trashed.Match(n.DeletedAt) {
				out = append(out, n)
			}
		}
		return nil
	})

	sortNews(out)
	return out, nil
}

func (r repo) CreateNews(_ context.Context, news *models.News) error {
	const op = "storage.memory.CreateNews"

	return r.write(func(t *tables) error {
		if _, ok := t.news[news.ID]; ok {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		if err := checkNews(t, news); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		t.news[news.ID] = *news
		return nil
	})
}

func (r repo) UpdateNews(_ context.Context, news *models.News) error {
	const op = "storage.memory.UpdateNews"

	return r.write(func(t *tables) error {
		if _, ok := t.news[news.ID]; !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		if err := checkNews(t, news); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		t.news[news.ID] = *news
		return nil
	})
}

func (r repo) SetNewsDeletedAt(_ context.Context, id uuid.UUID, at *time.Time) error {
	const op = "storage.memory.SetNewsDeletedAt"

	return r.write(func(t *tables) error {
		n, ok := t.news[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		n.DeletedAt = at
		t.news[id] = n
		return nil
	})
}

func checkNews(t *tables, news *models.News) error {
	for _, other := range t.news {
		if other.ID != news.ID && other.Slug == news.Slug {
			return response.WithDetail(response.ErrConflict, "slug is already taken")
		}
	}
	if _, ok := t.users[news.AdminID]; !ok {
		return response.WithDetail(response.ErrNotFound, "admin not found")
	}
	return nil
}

// sortNews orders by event date, undated items last, then newest first.
func sortNews(list []models.News) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].EventDate, list[j].EventDate
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
