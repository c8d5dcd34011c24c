package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tutor-portal/api"
	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
)

func (s *Service) ListBooks(ctx context.Context, q api.BookListQuery) (*api.BookListResponse, error) {
	const op = "service.ListBooks"

	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	loans, err := s.store.ListLoans(ctx, models.LoanFilter{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users, err := s.loanUsers(ctx, loans)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	counts := make(map[uuid.UUID]int)
	borrowers := make(map[uuid.UUID][]api.BorrowerRef)
	for _, l := range loans {
		counts[l.BookID]++
		if l.Active() {
			borrowers[l.BookID] = append(borrowers[l.BookID], borrowerRef(l, users))
		}
	}

	search := strings.TrimSpace(q.Search)
	status := models.BookStatus(strings.TrimSpace(q.Status))

	var stats api.BookStats
	data := make([]api.BookResponse, 0, len(books))
	for _, b := range books {
		stats.Total++
		switch b.Status {
		case models.BookAvailable:
			stats.Available++
		case models.BookBorrowed:
			stats.Borrowed++
		case models.BookMaintenance:
			stats.Maintenance++
		case models.BookLost:
			stats.Lost++
		}

		if status != "" && b.Status != status {
			continue
		}
		if q.Lendable && !b.Lendable() {
			continue
		}
		if search != "" &&
			!containsFold(b.Title, search) &&
			!containsFold(deref(b.Author), search) &&
			!containsFold(deref(b.Code), search) {
			continue
		}

		resp := s.toBookResponse(b)
		resp.LoansCount = counts[b.ID]
		if refs, ok := borrowers[b.ID]; ok {
			resp.Borrowers = refs
		}
		data = append(data, resp)
	}

	return &api.BookListResponse{Books: data, Stats: stats}, nil
}

func (s *Service) CreateBook(ctx context.Context, req *api.BookRequest) (*api.BookResponse, error) {
	const op = "service.CreateBook"

	now := s.now()
	b := &models.Book{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}

	available := req.TotalStock
	if req.AvailableStock != nil {
		available = *req.AvailableStock
	}
	if err := applyBook(op, b, req, available); err != nil {
		return nil, err
	}

	if err := s.store.CreateBook(ctx, b); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := s.toBookResponse(*b)
	return &resp, nil
}

// UpdateBook keeps the shelf count unless the request sets it. Copies out on
// loan still bound it from above.
func (s *Service) UpdateBook(ctx context.Context, id uuid.UUID, req *api.BookRequest) (*api.BookResponse, error) {
	const op = "service.UpdateBook"

	var saved models.Book

	err := s.store.WithTx(ctx, func(repo Repository) error {
		b, err := repo.GetBook(ctx, id)
		if err != nil {
			return err
		}

		out, err := repo.ListLoans(ctx, models.LoanFilter{BookID: &id, Active: true})
		if err != nil {
			return err
		}
		if req.TotalStock < len(out) {
			return badRequest(op, "total_stock is lower than the copies on loan")
		}

		available := min(b.AvailableStock, req.TotalStock-len(out))
		if req.AvailableStock != nil {
			available = *req.AvailableStock
		}
		if available > req.TotalStock-len(out) {
			return badRequest(op, "available_stock exceeds the copies on the shelf")
		}
		if err := applyBook(op, b, req, available); err != nil {
			return err
		}
		b.UpdatedAt = s.now()

		if err := repo.UpdateBook(ctx, b); err != nil {
			return err
		}

		saved = *b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := s.toBookResponse(saved)
	return &resp, nil
}

// DeleteBook removes the book and its loan history.
func (s *Service) DeleteBook(ctx context.Context, id uuid.UUID) error {
	const op = "service.DeleteBook"

	if err := s.store.DeleteBook(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func applyBook(op string, b *models.Book, req *api.BookRequest, available int) error {
	if available > req.TotalStock {
		return badRequest(op, "available_stock must not exceed total_stock")
	}

	b.Code = optionalString(req.Code)
	b.Title = strings.TrimSpace(req.Title)
	b.Author = optionalString(req.Author)
	b.Category = optionalString(req.Category)
	b.PublishedYear = req.PublishedYear
	b.TotalPages = req.TotalPages
	b.Description = optionalString(req.Description)
	b.TotalStock = req.TotalStock
	b.AvailableStock = available

	// an available book with an empty shelf is out on loan
	b.Status = models.BookStatus(req.Status)
	if b.Status == models.BookAvailable && available == 0 {
		b.Status = models.BookBorrowed
	}

	return nil
}

func (s *Service) ListLoans(ctx context.Context, q api.LoanListQuery) (*api.LoanListResponse, error) {
	const op = "service.ListLoans"

	loans, err := s.store.ListLoans(ctx, models.LoanFilter{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	bookByID := make(map[uuid.UUID]models.Book, len(books))
	for _, b := range books {
		bookByID[b.ID] = b
	}

	users, err := s.loanUsers(ctx, loans)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	search := strings.TrimSpace(q.Search)
	status := models.LoanStatus(strings.TrimSpace(q.Status))

	var stats api.LoanStats
	data := make([]api.LoanResponse, 0, len(loans))
	for _, l := range loans {
		switch l.Status {
		case models.LoanBorrowed:
			stats.Active++
		case models.LoanOverdue:
			stats.Overdue++
		case models.LoanReturned:
			stats.Returned++
		}

		if status != "" && l.Status != status {
			continue
		}

		resp := s.toLoanResponse(l, bookByID[l.BookID], users)
		if search != "" &&
			!containsFold(resp.BookTitle, search) &&
			!containsFold(deref(resp.Borrower.Name), search) {
			continue
		}
		data = append(data, resp)
	}

	return &api.LoanListResponse{Loans: data, Stats: stats}, nil
}

// BorrowBook lends one copy. The loan and the stock change commit together.
func (s *Service) BorrowBook(ctx context.Context, issuerID uuid.UUID, req *api.BorrowRequest) (*api.LoanResponse, error) {
	const op = "service.BorrowBook"

	borrowedAt, err := parseDate(req.BorrowedAt, s.loc)
	if err != nil {
		return nil, badRequest(op, "borrowed_at is not a valid date")
	}

	var dueAt *time.Time
	if v := optionalString(req.DueAt); v != nil {
		due, err := parseDate(*v, s.loc)
		if err != nil {
			return nil, badRequest(op, "due_at is not a valid date")
		}
		if due.Before(borrowedAt) {
			return nil, badRequest(op, "due_at must not be before borrowed_at")
		}
		dueAt = &due
	}

	now := s.now()
	issuer := issuerID
	loan := &models.Loan{
		ID:            uuid.New(),
		BookID:        req.BookID,
		BorrowerName:  optionalString(req.BorrowerName),
		BorrowerEmail: optionalString(req.BorrowerEmail),
		IssuedBy:      &issuer,
		BorrowedAt:    borrowedAt,
		DueAt:         dueAt,
		Status:        models.LoanBorrowed,
		Notes:         optionalString(req.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var book models.Book
	users := make(map[uuid.UUID]models.User)

	err = s.store.WithTx(ctx, func(repo Repository) error {
		b, err := repo.GetBook(ctx, req.BookID)
		if err != nil {
			return err
		}
		if !b.Lendable() {
			return badRequest(op, "book is not available for borrowing")
		}

		if req.UserID != nil {
			u, err := repo.GetUser(ctx, *req.UserID)
			if err != nil {
				return err
			}
			loan.UserID = &u.ID
			if loan.BorrowerName == nil {
				loan.BorrowerName = &u.Name
			}
			if loan.BorrowerEmail == nil && u.Email != "" {
				loan.BorrowerEmail = &u.Email
			}
			users[u.ID] = *u
		}

		if err := repo.CreateLoan(ctx, loan); err != nil {
			return err
		}

		b.AvailableStock--
		if b.AvailableStock == 0 {
			b.Status = models.BookBorrowed
		}
		b.UpdatedAt = now
		if err := repo.UpdateBook(ctx, b); err != nil {
			return err
		}

		book = *b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := s.toLoanResponse(*loan, book, users)
	return &resp, nil
}

// UpdateLoan closes a loan and puts the copy back on the shelf, or flags it
// overdue. Closed loans cannot change.
func (s *Service) UpdateLoan(ctx context.Context, id uuid.UUID, req *api.LoanUpdateRequest) (*api.LoanResponse, error) {
	const op = "service.UpdateLoan"

	var (
		saved models.Loan
		book  models.Book
	)

	err := s.store.WithTx(ctx, func(repo Repository) error {
		loan, err := repo.GetLoan(ctx, id)
		if err != nil {
			return err
		}
		if loan.DeletedAt != nil {
			return response.ErrNotFound
		}
		if !loan.Active() {
			return badRequest(op, "book was already returned")
		}

		now := s.now()
		if req.Notes != nil {
			loan.Notes = optionalString(req.Notes)
		}
		loan.UpdatedAt = now

		switch models.LoanStatus(req.Status) {
		case models.LoanReturned:
			returnedAt := models.DateOf(now, s.loc)
			if v := optionalString(req.ReturnedAt); v != nil {
				returnedAt, err = parseDate(*v, s.loc)
				if err != nil {
					return badRequest(op, "returned_at is not a valid date")
				}
			}
			if returnedAt.Before(loan.BorrowedAt) {
				return badRequest(op, "returned_at must not be before borrowed_at")
			}
			loan.ReturnedAt = &returnedAt
			loan.Status = models.LoanReturned

			b, err := shelveCopy(ctx, repo, loan.BookID, now)
			if err != nil {
				return err
			}
			book = *b
		case models.LoanOverdue:
			loan.Status = models.LoanOverdue

			b, err := repo.GetBook(ctx, loan.BookID)
			if err != nil {
				return err
			}
			book = *b
		default:
			return badRequest(op, "status must be returned or overdue")
		}

		if err := repo.UpdateLoan(ctx, loan); err != nil {
			return err
		}

		saved = *loan
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users, err := s.loanUsers(ctx, []models.Loan{saved})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := s.toLoanResponse(saved, book, users)
	return &resp, nil
}

// DeleteLoan soft-deletes the loan. A copy still out goes back on the shelf.
func (s *Service) DeleteLoan(ctx context.Context, id uuid.UUID) error {
	const op = "service.DeleteLoan"

	err := s.store.WithTx(ctx, func(repo Repository) error {
		loan, err := repo.GetLoan(ctx, id)
		if err != nil {
			return err
		}
		if loan.DeletedAt != nil {
			return nil
		}

		now := s.now()
		if loan.Active() {
			if _, err := shelveCopy(ctx, repo, loan.BookID, now); err != nil {
				return err
			}
		}

		return repo.SetLoanDeletedAt(ctx, id, &now)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// shelveCopy returns one copy to the book, never beyond its total stock.
func shelveCopy(ctx context.Context, repo Repository, bookID uuid.UUID, now time.Time) (*models.Book, error) {
	b, err := repo.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	b.AvailableStock = min(b.AvailableStock+1, b.TotalStock)
	if b.Status == models.BookBorrowed {
		b.Status = models.BookAvailable
	}
	b.UpdatedAt = now

	if err := repo.UpdateBook(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// loanUsers loads the registered borrowers of loans.
func (s *Service) loanUsers(ctx context.Context, loans []models.Loan) (map[uuid.UUID]models.User, error) {
	out := make(map[uuid.UUID]models.User)
	for _, l := range loans {
		if l.UserID == nil {
			continue
		}
		if _, ok := out[*l.UserID]; ok {
			continue
		}

		u, err := s.store.GetUser(ctx, *l.UserID)
		if isNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[u.ID] = *u
	}
	return out, nil
}

// borrowerRef prefers the linked account and falls back to the walk-in
// name and email typed at the desk.
func borrowerRef(l models.Loan, users map[uuid.UUID]models.User) api.BorrowerRef {
	ref := api.BorrowerRef{UserID: l.UserID, Name: l.BorrowerName, Email: l.BorrowerEmail}
	if l.UserID == nil {
		return ref
	}
	if u, ok := users[*l.UserID]; ok {
		ref.Name = &u.Name
		if u.Email != "" {
			ref.Email = &u.Email
		}
	}
	return ref
}

func (s *Service) toBookResponse(b models.Book) api.BookResponse {
	return api.BookResponse{
		ID:             b.ID,
		Code:           b.Code,
		Title:          b.Title,
		Author:         b.Author,
		Category:       b.Category,
		Status:         string(b.Status),
		StatusLabel:    StatusLabel(string(b.Status), s.locale),
		PublishedYear:  b.PublishedYear,
		TotalPages:     b.TotalPages,
		TotalStock:     b.TotalStock,
		AvailableStock: b.AvailableStock,
		Description:    b.Description,
		Borrowers:      []api.BorrowerRef{},
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func (s *Service) toLoanResponse(l models.Loan, b models.Book, users map[uuid.UUID]models.User) api.LoanResponse {
	today := models.DateOf(s.now(), s.loc)

	return api.LoanResponse{
		ID:          l.ID,
		BookID:      l.BookID,
		BookTitle:   b.Title,
		BookCode:    b.Code,
		Borrower:    borrowerRef(l, users),
		IssuedBy:    l.IssuedBy,
		BorrowedAt:  l.BorrowedAt.Format(api.DateLayout),
		DueAt:       formatDate(l.DueAt),
		ReturnedAt:  formatDate(l.ReturnedAt),
		Status:      string(l.Status),
		StatusLabel: StatusLabel(string(l.Status), s.locale),
		PastDue:     l.Active() && l.DueAt != nil && l.DueAt.Before(today),
		Notes:       l.Notes,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}
