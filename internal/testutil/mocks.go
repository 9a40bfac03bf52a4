package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	mu         sync.Mutex
	ByID       map[uuid.UUID]*domain.User
	ByUsername map[string]*domain.User
	CreateFn   func(user *domain.User) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		ByID:       make(map[uuid.UUID]*domain.User),
		ByUsername: make(map[string]*domain.User),
	}
}

// Create creates a new user, enforcing username uniqueness
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ByUsername[user.Username]; ok {
		return nil, domain.ErrUsernameTaken
	}

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.ByID[user.ID] = user
	m.ByUsername[user.Username] = user
	return user, nil
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByUsername retrieves a user by username
func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.ByUsername[username]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// Update updates an existing user
func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ByID[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	user.UpdatedAt = time.Now()
	m.ByID[user.ID] = user
	m.ByUsername[user.Username] = user
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ByID[user.ID] = user
	m.ByUsername[user.Username] = user
}

// MockAuthTokenRepository is a mock implementation of domain.AuthTokenRepository
type MockAuthTokenRepository struct {
	mu          sync.Mutex
	Tokens      map[uuid.UUID]*domain.AuthToken
	ByHash      map[string]*domain.AuthToken
	LastUsedIDs []uuid.UUID
	CreateFn    func(token *domain.AuthToken) error
}

// NewMockAuthTokenRepository creates a new MockAuthTokenRepository
func NewMockAuthTokenRepository() *MockAuthTokenRepository {
	return &MockAuthTokenRepository{
		Tokens: make(map[uuid.UUID]*domain.AuthToken),
		ByHash: make(map[string]*domain.AuthToken),
	}
}

// Create stores a new auth token
func (m *MockAuthTokenRepository) Create(ctx context.Context, token *domain.AuthToken) error {
	if m.CreateFn != nil {
		return m.CreateFn(token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	token.ID = uuid.New()
	token.CreatedAt = time.Now()
	m.Tokens[token.ID] = token
	m.ByHash[token.TokenHash] = token
	return nil
}

// GetByHash retrieves a non-revoked token by hash
func (m *MockAuthTokenRepository) GetByHash(ctx context.Context, hash string) (*domain.AuthToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, ok := m.ByHash[hash]
	if !ok || token.RevokedAt != nil {
		return nil, domain.ErrAuthTokenNotFound
	}
	return token, nil
}

// Revoke marks a token as revoked
func (m *MockAuthTokenRepository) Revoke(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, ok := m.Tokens[id]
	if !ok || token.UserID != userID || token.RevokedAt != nil {
		return domain.ErrAuthTokenNotFound
	}
	now := time.Now()
	token.RevokedAt = &now
	return nil
}

// RevokeAllForUser revokes every active token of a user
func (m *MockAuthTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for _, token := range m.Tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

// UpdateLastUsed records the token IDs whose last_used_at was touched
func (m *MockAuthTokenRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, ok := m.Tokens[id]
	if !ok {
		return domain.ErrAuthTokenNotFound
	}
	now := time.Now()
	token.LastUsedAt = &now
	m.LastUsedIDs = append(m.LastUsedIDs, id)
	return nil
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	mu         sync.Mutex
	Categories map[uuid.UUID]*domain.Category
	order      []uuid.UUID
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[uuid.UUID]*domain.Category),
	}
}

// Create stores a new category
func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	category.ID = uuid.New()
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	m.Categories[category.ID] = category
	m.order = append(m.order, category.ID)
	return category, nil
}

// GetByID retrieves a category owned by the user
func (m *MockCategoryRepository) GetByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if category, ok := m.Categories[id]; ok && category.UserID == userID {
		return category, nil
	}
	return nil, domain.ErrCategoryNotFound
}

// GetByUser retrieves categories for a user with pagination
func (m *MockCategoryRepository) GetByUser(ctx context.Context, userID uuid.UUID, filters *domain.ListFilters) (*domain.PaginatedCategories, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	owned := make([]*domain.Category, 0)
	for _, id := range m.order {
		if category, ok := m.Categories[id]; ok && category.UserID == userID {
			owned = append(owned, category)
		}
	}

	page, pageSize := filters.Normalize()
	start, end := pageBounds(len(owned), page, pageSize)

	return &domain.PaginatedCategories{
		Data:       owned[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: int64(len(owned)),
		TotalPages: domain.TotalPages(int64(len(owned)), pageSize),
	}, nil
}

// Update renames a category owned by the user
func (m *MockCategoryRepository) Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, name string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	category, ok := m.Categories[id]
	if !ok || category.UserID != userID {
		return nil, domain.ErrCategoryNotFound
	}
	category.Name = name
	category.UpdatedAt = time.Now()
	return category, nil
}

// Delete removes a category owned by the user
func (m *MockCategoryRepository) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	category, ok := m.Categories[id]
	if !ok || category.UserID != userID {
		return domain.ErrCategoryNotFound
	}
	delete(m.Categories, id)
	return nil
}

// MockIncomeRepository is a mock implementation of domain.IncomeRepository
type MockIncomeRepository struct {
	mu      sync.Mutex
	Incomes map[uuid.UUID]*domain.Income
	order   []uuid.UUID
}

// NewMockIncomeRepository creates a new MockIncomeRepository
func NewMockIncomeRepository() *MockIncomeRepository {
	return &MockIncomeRepository{
		Incomes: make(map[uuid.UUID]*domain.Income),
	}
}

// Create stores a new income
func (m *MockIncomeRepository) Create(ctx context.Context, income *domain.Income) (*domain.Income, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	income.ID = uuid.New()
	income.CreatedAt = time.Now()
	income.UpdatedAt = income.CreatedAt
	m.Incomes[income.ID] = income
	m.order = append(m.order, income.ID)
	return income, nil
}

// GetByID retrieves an income owned by the user
func (m *MockIncomeRepository) GetByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Income, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if income, ok := m.Incomes[id]; ok && income.UserID == userID {
		copied := *income
		return &copied, nil
	}
	return nil, domain.ErrIncomeNotFound
}

// GetByUser retrieves incomes for a user with pagination
func (m *MockIncomeRepository) GetByUser(ctx context.Context, userID uuid.UUID, filters *domain.ListFilters) (*domain.PaginatedIncomes, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	owned := make([]*domain.Income, 0)
	for _, id := range m.order {
		if income, ok := m.Incomes[id]; ok && income.UserID == userID {
			owned = append(owned, income)
		}
	}

	page, pageSize := filters.Normalize()
	start, end := pageBounds(len(owned), page, pageSize)

	return &domain.PaginatedIncomes{
		Data:       owned[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: int64(len(owned)),
		TotalPages: domain.TotalPages(int64(len(owned)), pageSize),
	}, nil
}

// Update updates an income owned by the user
func (m *MockIncomeRepository) Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, data *domain.UpdateIncomeData) (*domain.Income, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	income, ok := m.Incomes[id]
	if !ok || income.UserID != userID {
		return nil, domain.ErrIncomeNotFound
	}
	income.Name = data.Name
	income.Amount = data.Amount
	income.OccurredOn = data.OccurredOn
	income.UpdatedAt = time.Now()
	copied := *income
	return &copied, nil
}

// Delete removes an income owned by the user
func (m *MockIncomeRepository) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	income, ok := m.Incomes[id]
	if !ok || income.UserID != userID {
		return domain.ErrIncomeNotFound
	}
	delete(m.Incomes, id)
	return nil
}

// MockExpenseRepository is a mock implementation of domain.ExpenseRepository
type MockExpenseRepository struct {
	mu       sync.Mutex
	Expenses map[uuid.UUID]*domain.Expense
	order    []uuid.UUID
}

// NewMockExpenseRepository creates a new MockExpenseRepository
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{
		Expenses: make(map[uuid.UUID]*domain.Expense),
	}
}

// Create stores a new expense
func (m *MockExpenseRepository) Create(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expense.ID = uuid.New()
	expense.CreatedAt = time.Now()
	expense.UpdatedAt = expense.CreatedAt
	m.Expenses[expense.ID] = expense
	m.order = append(m.order, expense.ID)
	return expense, nil
}

// GetByID retrieves an expense owned by the user
func (m *MockExpenseRepository) GetByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expense, ok := m.Expenses[id]; ok && expense.UserID == userID {
		copied := *expense
		return &copied, nil
	}
	return nil, domain.ErrExpenseNotFound
}

// GetByUser retrieves expenses for a user with pagination
func (m *MockExpenseRepository) GetByUser(ctx context.Context, userID uuid.UUID, filters *domain.ListFilters) (*domain.PaginatedExpenses, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	owned := make([]*domain.Expense, 0)
	for _, id := range m.order {
		if expense, ok := m.Expenses[id]; ok && expense.UserID == userID {
			owned = append(owned, expense)
		}
	}

	page, pageSize := filters.Normalize()
	start, end := pageBounds(len(owned), page, pageSize)

	return &domain.PaginatedExpenses{
		Data:       owned[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: int64(len(owned)),
		TotalPages: domain.TotalPages(int64(len(owned)), pageSize),
	}, nil
}

// Update updates an expense owned by the user
func (m *MockExpenseRepository) Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, data *domain.UpdateExpenseData) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expense, ok := m.Expenses[id]
	if !ok || expense.UserID != userID {
		return nil, domain.ErrExpenseNotFound
	}
	expense.Name = data.Name
	expense.Amount = data.Amount
	expense.OccurredOn = data.OccurredOn
	expense.CategoryID = data.CategoryID
	expense.UpdatedAt = time.Now()
	copied := *expense
	return &copied, nil
}

// Delete removes an expense owned by the user
func (m *MockExpenseRepository) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	expense, ok := m.Expenses[id]
	if !ok || expense.UserID != userID {
		return domain.ErrExpenseNotFound
	}
	delete(m.Expenses, id)
	return nil
}

// SetReceiptImageID links or unlinks a receipt image on an expense
func (m *MockExpenseRepository) SetReceiptImageID(ctx context.Context, userID uuid.UUID, id uuid.UUID, imageID *string) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expense, ok := m.Expenses[id]
	if !ok || expense.UserID != userID {
		return nil, domain.ErrExpenseNotFound
	}
	expense.ReceiptImageID = imageID
	expense.UpdatedAt = time.Now()
	copied := *expense
	return &copied, nil
}

// MockSummaryRepository is a mock implementation of domain.SummaryRepository.
// UpdateTotalWithCount adjusts counts against the stored row, mirroring the
// in-database atomic increment.
type MockSummaryRepository struct {
	mu            sync.Mutex
	Summaries     map[uuid.UUID]*domain.Summary
	GetByUserFn   func(userID uuid.UUID) (*domain.Summary, error)
	UpdateTotalFn func(userID uuid.UUID, kind domain.EntryKind, total decimal.Decimal) (*domain.Summary, error)
}

// NewMockSummaryRepository creates a new MockSummaryRepository
func NewMockSummaryRepository() *MockSummaryRepository {
	return &MockSummaryRepository{
		Summaries: make(map[uuid.UUID]*domain.Summary),
	}
}

// GetByUser retrieves the summary row for a user
func (m *MockSummaryRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.Summary, error) {
	if m.GetByUserFn != nil {
		return m.GetByUserFn(userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if summary, ok := m.Summaries[userID]; ok {
		copied := *summary
		return &copied, nil
	}
	return nil, domain.ErrSummaryNotFound
}

// Create inserts the summary row for a user
func (m *MockSummaryRepository) Create(ctx context.Context, summary *domain.Summary) (*domain.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Summaries[summary.UserID]; ok {
		return nil, fmt.Errorf("summary already exists for user %s", summary.UserID)
	}

	summary.ID = uuid.New()
	summary.CreatedAt = time.Now()
	summary.UpdatedAt = summary.CreatedAt
	m.Summaries[summary.UserID] = summary
	copied := *summary
	return &copied, nil
}

// UpdateTotal replaces the running total for one entry kind
func (m *MockSummaryRepository) UpdateTotal(ctx context.Context, userID uuid.UUID, kind domain.EntryKind, total decimal.Decimal) (*domain.Summary, error) {
	if m.UpdateTotalFn != nil {
		return m.UpdateTotalFn(userID, kind, total)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	summary, ok := m.Summaries[userID]
	if !ok {
		return nil, domain.ErrSummaryNotFound
	}
	summary.SetTotal(kind, total)
	summary.UpdatedAt = time.Now()
	copied := *summary
	return &copied, nil
}

// UpdateTotalWithCount replaces the total and adjusts the count atomically
func (m *MockSummaryRepository) UpdateTotalWithCount(ctx context.Context, userID uuid.UUID, kind domain.EntryKind, total decimal.Decimal, countDelta int64) (*domain.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	summary, ok := m.Summaries[userID]
	if !ok {
		return nil, domain.ErrSummaryNotFound
	}
	summary.SetTotal(kind, total)
	summary.BumpCount(kind, countDelta)
	summary.UpdatedAt = time.Now()
	copied := *summary
	return &copied, nil
}

// MockTxRunner is a mock implementation of domain.TxRunner that runs the
// function directly, without a database
type MockTxRunner struct {
	mu    sync.Mutex
	Calls int
}

// NewMockTxRunner creates a new MockTxRunner
func NewMockTxRunner() *MockTxRunner {
	return &MockTxRunner{}
}

// WithinTx runs fn with the given context
func (m *MockTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	return fn(ctx)
}

// MockEventPublisher records published events per user
type MockEventPublisher struct {
	mu     sync.Mutex
	Events map[uuid.UUID][]websocket.Event
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		Events: make(map[uuid.UUID][]websocket.Event),
	}
}

// Publish records the event
func (m *MockEventPublisher) Publish(userID uuid.UUID, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events[userID] = append(m.Events[userID], event)
}

// EventsFor returns the events recorded for a user
func (m *MockEventPublisher) EventsFor(userID uuid.UUID) []websocket.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]websocket.Event, len(m.Events[userID]))
	copy(events, m.Events[userID])
	return events
}

// MockReceiptRepository is a mock implementation of storage.ReceiptRepository
type MockReceiptRepository struct {
	mu       sync.Mutex
	Objects  map[string][]byte
	UploadFn func(objectPath string) (string, error)
}

// NewMockReceiptRepository creates a new MockReceiptRepository
func NewMockReceiptRepository() *MockReceiptRepository {
	return &MockReceiptRepository{
		Objects: make(map[string][]byte),
	}
}

// Upload stores the object data in memory
func (m *MockReceiptRepository) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadFn != nil {
		return m.UploadFn(objectPath)
	}

	content, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectPath] = content
	return "mock://" + objectPath, nil
}

// Delete removes the object from memory
func (m *MockReceiptRepository) Delete(ctx context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectPath)
	return nil
}

// GeneratePresignedURL returns a stable fake URL for the object
func (m *MockReceiptRepository) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	return "mock://presigned/" + objectPath, nil
}

// HasObject reports whether an object exists (helper for tests)
func (m *MockReceiptRepository) HasObject(objectPath string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Objects[objectPath]
	return ok
}

// pageBounds returns the slice bounds for one page of a list of n items
func pageBounds(n int, page, pageSize int32) (int, int) {
	start := int(page-1) * int(pageSize)
	if start > n {
		start = n
	}
	end := start + int(pageSize)
	if end > n {
		end = n
	}
	return start, end
}
