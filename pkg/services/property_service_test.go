package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/apperrors"
	"github.com/propertyconnect/engine/pkg/chain"
	"github.com/propertyconnect/engine/pkg/config"
	"github.com/propertyconnect/engine/pkg/models"
	"github.com/propertyconnect/engine/pkg/validation"
)

type propertyFixture struct {
	properties   *memPropertyRepo
	agents       *memAgentRepo
	transactions *memTransactionRepo
	svc          PropertyService
}

func newPropertyFixture() *propertyFixture {
	f := &propertyFixture{
		properties:   newMemPropertyRepo(),
		agents:       newMemAgentRepo(),
		transactions: newMemTransactionRepo(),
	}
	notary := chain.NewNotary(&config.EthereumConfig{}, zap.NewNop())
	f.svc = NewPropertyService(f.properties, f.agents, f.transactions, notary, nil, zap.NewNop())
	return f
}

func (f *propertyFixture) addAgent(t *testing.T) *models.Agent {
	t.Helper()
	agent := &models.Agent{
		UserID:        uuid.New(),
		LicenseNumber: uuid.NewString(),
		IsActive:      true,
	}
	require.NoError(t, f.agents.Create(context.Background(), agent))
	return agent
}

func listingCreateRequest() *validation.PropertyCreateRequest {
	return &validation.PropertyCreateRequest{
		Title:       "Craftsman Near the Park",
		Description: "Three bedroom craftsman with a restored porch.",
		Type:        "HOUSE",
		Price:       450000,
		Area:        1800,
		Address:     "12 Mockingbird Lane",
		City:        "Austin",
		State:       "TX",
		ZipCode:     "78701",
		Coordinates: validation.Coordinates{Lat: 30.2672, Lng: -97.7431},
		Images:      []string{"https://cdn.example.com/1.jpg"},
	}
}

func TestPropertyService_Create(t *testing.T) {
	f := newPropertyFixture()
	agent := f.addAgent(t)

	property, err := f.svc.Create(context.Background(), agent.UserID, listingCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusActive, property.Status)
	assert.Equal(t, "USD", property.Currency)
	assert.Equal(t, "sqft", property.AreaUnit)
	assert.Equal(t, "US", property.Country)
	assert.Equal(t, agent.ID, property.AgentID)
	require.NotNil(t, property.Agent)
	assert.Equal(t, agent.UserID, property.Agent.UserID)
	assert.NotNil(t, property.Amenities)
}

func TestPropertyService_Create_WithoutAgentProfile(t *testing.T) {
	f := newPropertyFixture()

	_, err := f.svc.Create(context.Background(), uuid.New(), listingCreateRequest())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestPropertyService_Create_RunsEnrichment(t *testing.T) {
	f := newPropertyFixture()
	agent := f.addAgent(t)

	property, err := f.svc.Create(context.Background(), agent.UserID, listingCreateRequest())
	require.NoError(t, err)

	// The notary and analysis tasks run detached; their writes land in the
	// store shortly after the call returns.
	require.Eventually(t, func() bool {
		f.properties.mu.Lock()
		defer f.properties.mu.Unlock()
		stored := f.properties.properties[property.ID]
		return stored.BlockchainTxHash != nil && stored.AIAnalysis != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPropertyService_Update(t *testing.T) {
	f := newPropertyFixture()
	agent := f.addAgent(t)
	property, err := f.svc.Create(context.Background(), agent.UserID, listingCreateRequest())
	require.NoError(t, err)

	newPrice := 425000.0
	newStatus := models.PropertyStatusPending
	updated, err := f.svc.Update(context.Background(), property.ID, agent.UserID, &validation.PropertyUpdateRequest{
		Price:  &newPrice,
		Status: &newStatus,
	})
	require.NoError(t, err)
	assert.Equal(t, 425000.0, updated.Price)
	assert.Equal(t, models.PropertyStatusPending, updated.Status)
	assert.Equal(t, "Craftsman Near the Park", updated.Title)
}

func TestPropertyService_Update_NotOwner(t *testing.T) {
	f := newPropertyFixture()
	agent := f.addAgent(t)
	property, err := f.svc.Create(context.Background(), agent.UserID, listingCreateRequest())
	require.NoError(t, err)

	other := f.addAgent(t)
	newPrice := 1.0
	_, err = f.svc.Update(context.Background(), property.ID, other.UserID, &validation.PropertyUpdateRequest{
		Price: &newPrice,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestPropertyService_Delete(t *testing.T) {
	f := newPropertyFixture()
	agent := f.addAgent(t)
	property, err := f.svc.Create(context.Background(), agent.UserID, listingCreateRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), property.ID, agent.UserID))

	_, err = f.svc.GetByID(context.Background(), property.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPropertyService_Delete_OpenSaleBlocks(t *testing.T) {
	f := newPropertyFixture()
	agent := f.addAgent(t)
	property, err := f.svc.Create(context.Background(), agent.UserID, listingCreateRequest())
	require.NoError(t, err)

	sale := &models.Transaction{
		Type:       models.TransactionTypeSale,
		Amount:     property.Price,
		Status:     models.TransactionStatusPending,
		BuyerID:    uuid.New(),
		PropertyID: property.ID,
		AgentID:    agent.ID,
	}
	require.NoError(t, f.transactions.Create(context.Background(), sale))

	err = f.svc.Delete(context.Background(), property.ID, agent.UserID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// A cancelled sale no longer pins the listing.
	require.NoError(t, f.transactions.SetStatus(context.Background(), sale.ID, models.TransactionStatusCancelled))
	require.NoError(t, f.svc.Delete(context.Background(), property.ID, agent.UserID))
}

func TestPropertyService_Recommend_SearchesActiveOnly(t *testing.T) {
	f := newPropertyFixture()
	agent := f.addAgent(t)

	active, err := f.svc.Create(context.Background(), agent.UserID, listingCreateRequest())
	require.NoError(t, err)

	sold, err := f.svc.Create(context.Background(), agent.UserID, listingCreateRequest())
	require.NoError(t, err)
	soldStatus := models.PropertyStatusSold
	_, err = f.svc.Update(context.Background(), sold.ID, agent.UserID, &validation.PropertyUpdateRequest{
		Status: &soldStatus,
	})
	require.NoError(t, err)

	results, total, err := f.svc.Recommend(context.Background(), "craftsman", "Austin", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, results, 1)
	assert.Equal(t, active.ID, results[0].ID)
}

func TestPropertyService_ListByAgent(t *testing.T) {
	f := newPropertyFixture()
	agent := f.addAgent(t)
	other := f.addAgent(t)

	_, err := f.svc.Create(context.Background(), agent.UserID, listingCreateRequest())
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), other.UserID, listingCreateRequest())
	require.NoError(t, err)

	listings, total, err := f.svc.ListByAgent(context.Background(), agent.UserID, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, listings, 1)
	assert.Equal(t, agent.ID, listings[0].AgentID)
}

func TestPropertyService_ListByAgent_InvalidStatus(t *testing.T) {
	f := newPropertyFixture()
	agent := f.addAgent(t)

	_, _, err := f.svc.ListByAgent(context.Background(), agent.UserID, "EXPIRED", 1, 10)
	assert.ErrorContains(t, err, "invalid status filter")
}

func TestPropertyService_ListByAgent_WithoutProfile(t *testing.T) {
	f := newPropertyFixture()

	_, _, err := f.svc.ListByAgent(context.Background(), uuid.New(), "", 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestEstimateRates(t *testing.T) {
	analysis := estimateRates(&models.Property{Price: 500000, Area: 2000})
	assert.InDelta(t, 250.0, analysis.PricePerUnit, 0.001)
	assert.InDelta(t, 450000.0, analysis.PriceBandLow, 0.001)
	assert.InDelta(t, 550000.0, analysis.PriceBandHi, 0.001)
	assert.Equal(t, "low", analysis.Confidence)

	// Zero area must not divide.
	assert.Zero(t, estimateRates(&models.Property{Price: 500000}).PricePerUnit)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, 10, normalizeLimit(0))
	assert.Equal(t, 10, normalizeLimit(-5))
	assert.Equal(t, 25, normalizeLimit(25))
	assert.Equal(t, 100, normalizeLimit(500))
}
