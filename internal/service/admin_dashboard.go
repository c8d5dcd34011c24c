package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"tutor-portal/api"
	"tutor-portal/internal/models"
)

const (
	adminRecentLimit  = 5
	adminGrowthMonths = 6
)

// AdminDashboard collects the portal-wide counters, the latest news and
// students, and six months of sign-ups ending with the current month.
func (s *Service) AdminDashboard(ctx context.Context) (*api.AdminDashboardResponse, error) {
	const op = "service.AdminDashboard"

	users, err := s.store.ListUsers(ctx, models.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	students, err := s.store.ListStudents(ctx, models.StudentFilter{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	news, err := s.store.ListNews(ctx, models.NewsFilter{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	loans, err := s.store.ListLoans(ctx, models.LoanFilter{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var stats api.AdminStats

	stats.Users.Total = len(users)
	for _, u := range users {
		if u.IsActive {
			stats.Users.Active++
		}
	}

	stats.Students.Total = len(students)
	for _, st := range students {
		if st.Status == models.StudentActive {
			stats.Students.Active++
		}
	}

	stats.News = newsStats(news)

	stats.Books = len(books)
	categories := make(map[string]struct{})
	for _, b := range books {
		if c := strings.TrimSpace(deref(b.Category)); c != "" {
			categories[c] = struct{}{}
		}
	}
	stats.BookCategories = len(categories)

	for _, l := range loans {
		switch l.Status {
		case models.LoanBorrowed:
			stats.Loans.Active++
		case models.LoanOverdue:
			stats.Loans.Overdue++
		case models.LoanReturned:
			stats.Loans.Returned++
		}
	}

	// the store already returns the newest event first
	recentNews := make([]api.NewsResponse, 0, adminRecentLimit)
	for _, n := range news[:min(len(news), adminRecentLimit)] {
		recentNews = append(recentNews, s.toNewsResponse(n))
	}

	latest := append([]models.Student(nil), students...)
	sort.SliceStable(latest, func(i, j int) bool {
		return latest[i].CreatedAt.After(latest[j].CreatedAt)
	})
	recentStudents := make([]api.StudentResponse, 0, adminRecentLimit)
	for _, st := range latest[:min(len(latest), adminRecentLimit)] {
		recentStudents = append(recentStudents, toStudentResponse(st))
	}

	return &api.AdminDashboardResponse{
		Stats:          stats,
		RecentNews:     recentNews,
		RecentStudents: recentStudents,
		Growth:         s.growth(users, students),
	}, nil
}

func (s *Service) growth(users []models.User, students []models.Student) api.Growth {
	months, ok := monthAbbr[s.locale]
	if !ok {
		months = monthAbbr["en"]
	}

	now := s.now().In(s.loc)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc).AddDate(0, -(adminGrowthMonths - 1), 0)

	g := api.Growth{
		Labels:   make([]string, adminGrowthMonths),
		Users:    make([]int, adminGrowthMonths),
		Students: make([]int, adminGrowthMonths),
	}
	for i := range adminGrowthMonths {
		g.Labels[i] = months[first.AddDate(0, i, 0).Month()-1]
	}

	bucket := func(t time.Time) int {
		t = t.In(s.loc)
		return (t.Year()-first.Year())*12 + int(t.Month()) - int(first.Month())
	}

	for _, u := range users {
		if i := bucket(u.CreatedAt); i >= 0 && i < adminGrowthMonths {
			g.Users[i]++
		}
	}
	for _, st := range students {
		if i := bucket(st.CreatedAt); i >= 0 && i < adminGrowthMonths {
			g.Students[i]++
		}
	}

	return g
}
