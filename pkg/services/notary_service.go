package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/apperrors"
	"github.com/propertyconnect/engine/pkg/chain"
	"github.com/propertyconnect/engine/pkg/models"
	"github.com/propertyconnect/engine/pkg/repositories"
	"github.com/propertyconnect/engine/pkg/validation"
)

// VerificationResult is the outcome of an explicit title verification.
type VerificationResult struct {
	Property        *models.Property `json:"property"`
	TransactionHash string           `json:"transactionHash"`
	PropertyHash    string           `json:"propertyHash"`
}

// OnChainVerification is the confirmation detail for a verified listing.
// Block number and depth are filled from the provider when one is
// configured; otherwise the payload stays simulated.
type OnChainVerification struct {
	Verified      bool      `json:"verified"`
	TxHash        string    `json:"txHash,omitempty"`
	BlockNumber   int64     `json:"blockNumber,omitempty"`
	Confirmations int64     `json:"confirmations,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// VerificationStatus is the public verification view of a listing.
type VerificationStatus struct {
	PropertyID       uuid.UUID            `json:"propertyId"`
	IsVerified       bool                 `json:"isVerified"`
	BlockchainTxHash *string              `json:"blockchainTxHash,omitempty"`
	VerificationDate time.Time            `json:"verificationDate"`
	OnChain          *OnChainVerification `json:"onChainVerification"`
}

// ContractResult is the outcome of starting a sale contract.
type ContractResult struct {
	Transaction     *models.Transaction `json:"transaction"`
	ContractAddress string              `json:"contractAddress"`
	Terms           string              `json:"terms"`
}

// NotaryService provides on-chain title verification and sale contracts.
type NotaryService interface {
	// VerifyProperty records the listing hash on-chain and marks the
	// listing verified. Owner-only; a second call fails with
	// ErrAlreadyVerified.
	VerifyProperty(ctx context.Context, propertyID, userID uuid.UUID) (*VerificationResult, error)
	Status(ctx context.Context, propertyID uuid.UUID) (*VerificationStatus, error)
	ListVerified(ctx context.Context, page, limit int) ([]*models.Property, int, error)
	// CreateContract opens a PENDING sale transaction for the listing at
	// its current price and attaches a contract address. Owner-only.
	CreateContract(ctx context.Context, userID uuid.UUID, req *validation.CreateContractRequest) (*ContractResult, error)
	// GetTransaction is restricted to the buyer and the listing agent.
	GetTransaction(ctx context.Context, transactionID, userID uuid.UUID) (*models.Transaction, error)
	// ListTransactions returns the principal's purchases plus, for agents,
	// the sales brokered through their profile.
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error)
	// UpdateTransactionStatus completes or cancels a PENDING sale. Only the
	// listing agent may move it; completion marks the listing SOLD and rolls
	// the sale into the agent's monthly metrics.
	UpdateTransactionStatus(ctx context.Context, transactionID, userID uuid.UUID, status string) (*models.Transaction, error)
	NetworkInfo(ctx context.Context) *chain.NetworkInfo
}

type notaryService struct {
	notary       *chain.Notary
	properties   repositories.PropertyRepository
	users        repositories.UserRepository
	agents       repositories.AgentRepository
	transactions repositories.TransactionRepository
	metrics      repositories.MetricRepository
	logger       *zap.Logger
}

func NewNotaryService(
	notary *chain.Notary,
	properties repositories.PropertyRepository,
	users repositories.UserRepository,
	agents repositories.AgentRepository,
	transactions repositories.TransactionRepository,
	metrics repositories.MetricRepository,
	logger *zap.Logger,
) NotaryService {
	return &notaryService{
		notary:       notary,
		properties:   properties,
		users:        users,
		agents:       agents,
		transactions: transactions,
		metrics:      metrics,
		logger:       logger.Named("notary-service"),
	}
}

var _ NotaryService = (*notaryService)(nil)

func (s *notaryService) VerifyProperty(ctx context.Context, propertyID, userID uuid.UUID) (*VerificationResult, error) {
	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.Agent == nil || property.Agent.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	if property.IsVerified {
		return nil, apperrors.ErrAlreadyVerified
	}

	propertyHash, err := s.notary.HashProperty(property)
	if err != nil {
		return nil, err
	}
	txHash, err := s.notary.SubmitVerification(ctx, property)
	if err != nil {
		return nil, err
	}

	if err := s.properties.SetVerification(ctx, propertyID, txHash); err != nil {
		return nil, err
	}
	property.IsVerified = true
	property.BlockchainTxHash = &txHash

	s.logger.Info("verified property title",
		zap.String("property_id", propertyID.String()),
		zap.String("tx_hash", txHash))

	return &VerificationResult{
		Property:        property,
		TransactionHash: txHash,
		PropertyHash:    propertyHash,
	}, nil
}

func (s *notaryService) Status(ctx context.Context, propertyID uuid.UUID) (*VerificationStatus, error) {
	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	status := &VerificationStatus{
		PropertyID:       property.ID,
		IsVerified:       property.IsVerified,
		BlockchainTxHash: property.BlockchainTxHash,
		VerificationDate: property.UpdatedAt,
	}
	if property.IsVerified {
		status.OnChain = &OnChainVerification{
			Verified:  true,
			Timestamp: property.UpdatedAt,
		}
		if property.BlockchainTxHash != nil {
			status.OnChain.TxHash = *property.BlockchainTxHash

			conf, err := s.notary.Confirmation(ctx, *property.BlockchainTxHash)
			if err != nil {
				// Provider trouble degrades to the local view.
				s.logger.Warn("confirmation probe failed",
					zap.String("tx_hash", *property.BlockchainTxHash),
					zap.Error(err))
			} else if conf != nil {
				status.OnChain.BlockNumber = conf.BlockNumber
				status.OnChain.Confirmations = conf.Confirmations
			}
		}
	}
	return status, nil
}

func (s *notaryService) ListVerified(ctx context.Context, page, limit int) ([]*models.Property, int, error) {
	filters := &models.PropertyFilters{
		VerifiedOnly: true,
		Statuses:     []string{models.PropertyStatusActive},
		Page:         page,
		Limit:        limit,
	}
	return s.properties.Search(ctx, filters)
}

func (s *notaryService) CreateContract(ctx context.Context, userID uuid.UUID, req *validation.CreateContractRequest) (*ContractResult, error) {
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}
	buyerID, err := uuid.Parse(req.BuyerID)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}

	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.Agent == nil || property.Agent.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	if _, err := s.users.GetByID(ctx, buyerID); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		Type:       models.TransactionTypeSale,
		Amount:     property.Price,
		Status:     models.TransactionStatusPending,
		BuyerID:    buyerID,
		PropertyID: propertyID,
		AgentID:    property.AgentID,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, err
	}

	address, err := s.notary.CreateContract(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := s.transactions.SetContractHash(ctx, tx.ID, address); err != nil {
		return nil, err
	}
	tx.ContractHash = &address

	return &ContractResult{
		Transaction:     tx,
		ContractAddress: address,
		Terms:           req.Terms,
	}, nil
}

func (s *notaryService) GetTransaction(ctx context.Context, transactionID, userID uuid.UUID) (*models.Transaction, error) {
	tx, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	property, err := s.properties.GetByID(ctx, tx.PropertyID)
	if err != nil {
		return nil, err
	}

	isBuyer := tx.BuyerID == userID
	isListingAgent := property.Agent != nil && property.Agent.UserID == userID
	if !isBuyer && !isListingAgent {
		return nil, apperrors.ErrForbidden
	}

	tx.Property = property
	buyer, err := s.users.GetByID(ctx, tx.BuyerID)
	if err != nil {
		return nil, err
	}
	tx.Buyer = buyer.Public()

	return tx, nil
}

func (s *notaryService) ListTransactions(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	result, err := s.transactions.ListByBuyer(ctx, userID)
	if err != nil {
		return nil, err
	}

	agent, err := s.agents.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return result, nil
		}
		return nil, err
	}
	brokered, err := s.transactions.ListByAgent(ctx, agent.ID)
	if err != nil {
		return nil, err
	}
	return append(result, brokered...), nil
}

func (s *notaryService) UpdateTransactionStatus(ctx context.Context, transactionID, userID uuid.UUID, status string) (*models.Transaction, error) {
	tx, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	property, err := s.properties.GetByID(ctx, tx.PropertyID)
	if err != nil {
		return nil, err
	}
	if property.Agent == nil || property.Agent.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	// Only an open sale can move; completed and cancelled are terminal.
	if tx.Status != models.TransactionStatusPending {
		return nil, apperrors.ErrConflict
	}

	if err := s.transactions.SetStatus(ctx, transactionID, status); err != nil {
		return nil, err
	}
	tx.Status = status

	if status == models.TransactionStatusCompleted {
		now := time.Now().UTC()
		tx.CompletedAt = &now

		property.Status = models.PropertyStatusSold
		if err := s.properties.Update(ctx, property); err != nil {
			return nil, err
		}
		if err := s.rollUpSale(ctx, tx, now); err != nil {
			// The sale stands either way; the rollup is repairable.
			s.logger.Warn("failed to roll up sale metrics",
				zap.String("transaction_id", tx.ID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("updated transaction status",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("status", status))
	return tx, nil
}

// rollUpSale folds a completed sale into the agent's metric slot for the
// completion month.
func (s *notaryService) rollUpSale(ctx context.Context, tx *models.Transaction, completedAt time.Time) error {
	metric := &models.AgentMetric{
		AgentID: tx.AgentID,
		Month:   int(completedAt.Month()),
		Year:    completedAt.Year(),
	}
	existing, err := s.metrics.ListByAgent(ctx, tx.AgentID)
	if err != nil {
		return err
	}
	for _, m := range existing {
		if m.Month == metric.Month && m.Year == metric.Year {
			metric = m
			break
		}
	}
	metric.PropertiesSold++
	metric.TotalRevenue += tx.Amount
	return s.metrics.Upsert(ctx, metric)
}

func (s *notaryService) NetworkInfo(ctx context.Context) *chain.NetworkInfo {
	return s.notary.NetworkInfo(ctx)
}
