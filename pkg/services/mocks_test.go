package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/propertyconnect/engine/pkg/apperrors"
	"github.com/propertyconnect/engine/pkg/models"
)

// The fakes below are in-memory stand-ins for the pgx repositories. They
// apply the same typed outcomes (ErrNotFound, ErrConflict) so service
// branching can be exercised without a database. A mutex guards each store
// because detached enrichment tasks write concurrently with the test body.

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperrors.ErrConflict
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type memBuyerRepo struct {
	mu     sync.Mutex
	buyers map[uuid.UUID]*models.Buyer // keyed by user ID
}

func newMemBuyerRepo() *memBuyerRepo {
	return &memBuyerRepo{buyers: make(map[uuid.UUID]*models.Buyer)}
}

func (r *memBuyerRepo) Create(_ context.Context, buyer *models.Buyer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.buyers[buyer.UserID]; ok {
		return apperrors.ErrConflict
	}
	if buyer.ID == uuid.Nil {
		buyer.ID = uuid.New()
	}
	r.buyers[buyer.UserID] = buyer
	return nil
}

func (r *memBuyerRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Buyer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	buyer, ok := r.buyers[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return buyer, nil
}

func (r *memBuyerRepo) UpdatePreferences(_ context.Context, buyer *models.Buyer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.buyers[buyer.UserID]; !ok {
		return apperrors.ErrNotFound
	}
	r.buyers[buyer.UserID] = buyer
	return nil
}

func (r *memBuyerRepo) SetSavedProperties(_ context.Context, userID uuid.UUID, saved []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	buyer, ok := r.buyers[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	buyer.SavedProperties = saved
	return nil
}

type memAgentRepo struct {
	mu     sync.Mutex
	agents map[uuid.UUID]*models.Agent
}

func newMemAgentRepo() *memAgentRepo {
	return &memAgentRepo{agents: make(map[uuid.UUID]*models.Agent)}
}

func (r *memAgentRepo) Create(_ context.Context, agent *models.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agents {
		if a.LicenseNumber == agent.LicenseNumber || a.UserID == agent.UserID {
			return apperrors.ErrConflict
		}
	}
	if agent.ID == uuid.Nil {
		agent.ID = uuid.New()
	}
	r.agents[agent.ID] = agent
	return nil
}

func (r *memAgentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agent, ok := r.agents[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return agent, nil
}

func (r *memAgentRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agents {
		if a.UserID == userID {
			return a, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memAgentRepo) GetByLicense(_ context.Context, licenseNumber string) (*models.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agents {
		if a.LicenseNumber == licenseNumber {
			return a, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memAgentRepo) Update(_ context.Context, agent *models.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[agent.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.agents[agent.ID] = agent
	return nil
}

func (r *memAgentRepo) List(_ context.Context, filters *models.AgentFilters) ([]*models.Agent, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*models.Agent{}
	for _, a := range r.agents {
		if filters.ActiveOnly && !a.IsActive {
			continue
		}
		if filters.MinRating > 0 && a.Rating < filters.MinRating {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Rating > result[j].Rating })
	return result, len(result), nil
}

func (r *memAgentRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	agent, ok := r.agents[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	agent.IsActive = active
	return nil
}

func (r *memAgentRepo) SetRating(_ context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	agent, ok := r.agents[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	agent.Rating = rating
	agent.ReviewCount = reviewCount
	return nil
}

type memPropertyRepo struct {
	mu         sync.Mutex
	properties map[uuid.UUID]*models.Property
}

func newMemPropertyRepo() *memPropertyRepo {
	return &memPropertyRepo{properties: make(map[uuid.UUID]*models.Property)}
}

func (r *memPropertyRepo) Create(_ context.Context, property *models.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if property.ID == uuid.Nil {
		property.ID = uuid.New()
	}
	property.CreatedAt = time.Now()
	property.UpdatedAt = property.CreatedAt
	r.properties[property.ID] = property
	return nil
}

func (r *memPropertyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	property, ok := r.properties[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return property, nil
}

func (r *memPropertyRepo) Update(_ context.Context, property *models.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.properties[property.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.properties[property.ID] = property
	return nil
}

func (r *memPropertyRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.properties[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.properties, id)
	return nil
}

func (r *memPropertyRepo) Search(_ context.Context, filters *models.PropertyFilters) ([]*models.Property, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*models.Property{}
	for _, p := range r.properties {
		if filters.AgentID != nil && p.AgentID != *filters.AgentID {
			continue
		}
		if len(filters.Statuses) > 0 && !contains(filters.Statuses, p.Status) {
			continue
		}
		if filters.VerifiedOnly && !p.IsVerified {
			continue
		}
		if filters.Query != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(filters.Query)) {
			continue
		}
		if filters.City != "" && !strings.Contains(strings.ToLower(p.City), strings.ToLower(filters.City)) {
			continue
		}
		result = append(result, p)
	}
	return result, len(result), nil
}

func (r *memPropertyRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*models.Property{}
	for _, id := range ids {
		if p, ok := r.properties[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *memPropertyRepo) ListFeatured(_ context.Context, limit int) ([]*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*models.Property{}
	for _, p := range r.properties {
		if p.IsFeatured && p.Status == models.PropertyStatusActive && len(result) < limit {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *memPropertyRepo) ListRecent(_ context.Context, limit int) ([]*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*models.Property{}
	for _, p := range r.properties {
		if p.Status == models.PropertyStatusActive && len(result) < limit {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *memPropertyRepo) CountByStatus(_ context.Context, agentID uuid.UUID) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int{}
	for _, p := range r.properties {
		if p.AgentID == agentID {
			counts[p.Status]++
		}
	}
	return counts, nil
}

func (r *memPropertyRepo) Stats(_ context.Context) (*models.PropertyStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &models.PropertyStats{}
	sum := 0.0
	for _, p := range r.properties {
		stats.Total++
		sum += p.Price
		switch p.Status {
		case models.PropertyStatusActive:
			stats.Active++
		case models.PropertyStatusPending:
			stats.Pending++
		case models.PropertyStatusSold:
			stats.Sold++
		case models.PropertyStatusWithdrawn:
			stats.Withdrawn++
		}
	}
	if stats.Total > 0 {
		stats.AveragePrice = sum / float64(stats.Total)
	}
	return stats, nil
}

func (r *memPropertyRepo) SetVerification(_ context.Context, id uuid.UUID, txHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	property, ok := r.properties[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	property.IsVerified = true
	property.BlockchainTxHash = &txHash
	return nil
}

func (r *memPropertyRepo) SetTxHash(_ context.Context, id uuid.UUID, txHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	property, ok := r.properties[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	property.BlockchainTxHash = &txHash
	return nil
}

func (r *memPropertyRepo) SetLocalInsights(_ context.Context, id uuid.UUID, insights json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	property, ok := r.properties[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	property.LocalInsights = insights
	return nil
}

func (r *memPropertyRepo) SetAIAnalysis(_ context.Context, id uuid.UUID, analysis json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	property, ok := r.properties[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	property.AIAnalysis = analysis
	return nil
}

type memTransactionRepo struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]*models.Transaction
}

func newMemTransactionRepo() *memTransactionRepo {
	return &memTransactionRepo{transactions: make(map[uuid.UUID]*models.Transaction)}
}

func (r *memTransactionRepo) Create(_ context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	tx.CreatedAt = time.Now()
	r.transactions[tx.ID] = tx
	return nil
}

func (r *memTransactionRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return tx, nil
}

func (r *memTransactionRepo) ListByBuyer(_ context.Context, buyerID uuid.UUID) ([]*models.Transaction, error) {
	return r.listBy(func(tx *models.Transaction) bool { return tx.BuyerID == buyerID })
}

func (r *memTransactionRepo) ListByAgent(_ context.Context, agentID uuid.UUID) ([]*models.Transaction, error) {
	return r.listBy(func(tx *models.Transaction) bool { return tx.AgentID == agentID })
}

func (r *memTransactionRepo) ListByProperty(_ context.Context, propertyID uuid.UUID) ([]*models.Transaction, error) {
	return r.listBy(func(tx *models.Transaction) bool { return tx.PropertyID == propertyID })
}

func (r *memTransactionRepo) listBy(match func(*models.Transaction) bool) ([]*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*models.Transaction{}
	for _, tx := range r.transactions {
		if match(tx) {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (r *memTransactionRepo) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	tx.Status = status
	if status == models.TransactionStatusCompleted {
		now := time.Now()
		tx.CompletedAt = &now
	} else {
		tx.CompletedAt = nil
	}
	return nil
}

func (r *memTransactionRepo) SetContractHash(_ context.Context, id uuid.UUID, contractHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	tx.ContractHash = &contractHash
	return nil
}

type memReviewRepo struct {
	mu      sync.Mutex
	reviews []*models.Review
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{}
}

func (r *memReviewRepo) Create(_ context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.CreatedAt = time.Now()
	r.reviews = append(r.reviews, review)
	return nil
}

func (r *memReviewRepo) ListByAgent(_ context.Context, agentID uuid.UUID, page, limit int) ([]*models.Review, int, error) {
	return r.listBy(func(rv *models.Review) bool {
		return rv.AgentID != nil && *rv.AgentID == agentID
	})
}

func (r *memReviewRepo) ListByProperty(_ context.Context, propertyID uuid.UUID, page, limit int) ([]*models.Review, int, error) {
	return r.listBy(func(rv *models.Review) bool {
		return rv.PropertyID != nil && *rv.PropertyID == propertyID
	})
}

func (r *memReviewRepo) listBy(match func(*models.Review) bool) ([]*models.Review, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*models.Review{}
	for _, rv := range r.reviews {
		if match(rv) {
			result = append(result, rv)
		}
	}
	return result, len(result), nil
}

func (r *memReviewRepo) AgentRating(_ context.Context, agentID uuid.UUID) (float64, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum, count := 0, 0
	for _, rv := range r.reviews {
		if rv.AgentID != nil && *rv.AgentID == agentID {
			sum += rv.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

type memMetricRepo struct {
	mu      sync.Mutex
	metrics []*models.AgentMetric
}

func newMemMetricRepo() *memMetricRepo {
	return &memMetricRepo{}
}

func (r *memMetricRepo) ListByAgent(_ context.Context, agentID uuid.UUID) ([]*models.AgentMetric, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*models.AgentMetric{}
	for _, m := range r.metrics {
		if m.AgentID == agentID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *memMetricRepo) Upsert(_ context.Context, metric *models.AgentMetric) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.metrics {
		if m.AgentID == metric.AgentID && m.Month == metric.Month && m.Year == metric.Year {
			r.metrics[i] = metric
			return nil
		}
	}
	if metric.ID == uuid.Nil {
		metric.ID = uuid.New()
	}
	r.metrics = append(r.metrics, metric)
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
