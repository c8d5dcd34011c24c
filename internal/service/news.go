package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"tutor-portal/api"
	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	excerptLength  = 160
	slugSuffixSize = 4
	slugAlphabet   = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
	slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)
)

func (s *Service) ListNews(ctx context.Context, q api.NewsListQuery) (*api.NewsListResponse, error) {
	const op = "service.ListNews"

	mode := models.WithoutTrashed
	switch {
	case q.OnlyTrashed:
		mode = models.OnlyTrashed
	case q.WithTrashed:
		mode = models.WithTrashed
	}

	list, err := s.store.ListNews(ctx, models.NewsFilter{Trashed: mode})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	search := strings.TrimSpace(q.Search)

	data := make([]api.NewsResponse, 0, len(list))
	for _, n := range list {
		if search != "" && n.ID.String() != search && !containsFold(n.Title, search) {
			continue
		}
		data = append(data, s.toNewsResponse(n))
	}

	live, err := s.store.ListNews(ctx, models.NewsFilter{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.NewsListResponse{News: data, Stats: newsStats(live)}, nil
}

func newsStats(list []models.News) api.NewsStats {
	stats := api.NewsStats{Total: len(list)}
	for _, n := range list {
		if n.IsPublished {
			stats.Published++
		}
	}
	return stats
}

// CreateNews publishes by default. The slug is the title plus a short random
// suffix, so equal titles never collide.
func (s *Service) CreateNews(ctx context.Context, adminID uuid.UUID, req *api.NewsRequest) (*api.NewsResponse, error) {
	const op = "service.CreateNews"

	suffix, err := randomString(slugSuffixSize, slugAlphabet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	n := &models.News{
		ID:          uuid.New(),
		AdminID:     adminID,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.applyNews(op, n, req); err != nil {
		return nil, err
	}
	n.Slug = joinLabel("-", false, Slugify(n.Title), suffix)

	if err := s.store.CreateNews(ctx, n); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := s.toNewsResponse(*n)
	return &resp, nil
}

// UpdateNews keeps the slug so published links stay valid.
func (s *Service) UpdateNews(ctx context.Context, id uuid.UUID, req *api.NewsRequest) (*api.NewsResponse, error) {
	const op = "service.UpdateNews"

	n, err := s.store.GetNews(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if n.DeletedAt != nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	if err := s.applyNews(op, n, req); err != nil {
		return nil, err
	}
	n.UpdatedAt = s.now()

	if err := s.store.UpdateNews(ctx, n); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := s.toNewsResponse(*n)
	return &resp, nil
}

func (s *Service) DeleteNews(ctx context.Context, id uuid.UUID) error {
	const op = "service.DeleteNews"

	n, err := s.store.GetNews(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n.DeletedAt != nil {
		return nil
	}

	now := s.now()
	if err := s.store.SetNewsDeletedAt(ctx, id, &now); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) RestoreNews(ctx context.Context, id uuid.UUID) (*api.NewsResponse, error) {
	const op = "service.RestoreNews"

	n, err := s.store.GetNews(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if n.DeletedAt != nil {
		if err := s.store.SetNewsDeletedAt(ctx, id, nil); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		n.DeletedAt = nil
	}

	resp := s.toNewsResponse(*n)
	return &resp, nil
}

func (s *Service) applyNews(op string, n *models.News, req *api.NewsRequest) error {
	n.Title = strings.TrimSpace(req.Title)
	n.Subtitle = optionalString(req.Subtitle)
	n.Body = req.Body
	n.Type = models.NewsType(req.Type)

	// the subtitle doubles as the teaser, otherwise the start of the body
	n.Excerpt = n.Subtitle
	if n.Excerpt == nil {
		excerpt := Excerpt(n.Body, excerptLength)
		n.Excerpt = optionalString(&excerpt)
	}

	n.EventDate = nil
	if v := optionalString(req.EventDate); v != nil {
		date, err := parseDate(*v, s.loc)
		if err != nil {
			return badRequest(op, "event_date is not a valid date")
		}
		n.EventDate = &date
	}

	if req.IsPublished != nil {
		n.IsPublished = *req.IsPublished
	}

	return nil
}

// Slugify lowercases s, folds accents to ASCII and joins the words with
// dashes.
func Slugify(s string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}

	slug := slugSeparators.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-")
}

// Excerpt strips markup from body and cuts it to at most limit runes,
// marking the cut with "...".
func Excerpt(body string, limit int) string {
	text := strings.Join(strings.Fields(tagPattern.ReplaceAllString(body, " ")), " ")

	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return strings.TrimRight(string(r[:limit]), " ") + "..."
}

func (s *Service) toNewsResponse(n models.News) api.NewsResponse {
	display := models.DateOf(n.CreatedAt, s.loc)
	if n.EventDate != nil {
		display = *n.EventDate
	}

	return api.NewsResponse{
		ID:          n.ID,
		AdminID:     n.AdminID,
		Title:       n.Title,
		Subtitle:    n.Subtitle,
		Slug:        n.Slug,
		Excerpt:     n.Excerpt,
		Body:        n.Body,
		Type:        string(n.Type),
		EventDate:   formatDate(n.EventDate),
		DisplayDate: DateLabel(display, s.locale),
		IsPublished: n.IsPublished,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
		DeletedAt:   n.DeletedAt,
	}
}
