// Package chain provides the title notary. It hashes listing data with
// Keccak-256 and records verification references. Transaction submission is
// simulated until a signing wallet is wired in; network reads go to the
// configured Ethereum JSON-RPC endpoint when one is set.
package chain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"

	"github.com/propertyconnect/engine/pkg/config"
	"github.com/propertyconnect/engine/pkg/models"
)

// zeroAddress is reported when no verification contract is configured.
const zeroAddress = "0x0000000000000000000000000000000000000000"

// NetworkInfo describes the notary's view of the chain.
type NetworkInfo struct {
	NetworkID       int64  `json:"networkId"`
	ChainID         int64  `json:"chainId"`
	BlockNumber     int64  `json:"blockNumber"`
	GasPrice        string `json:"gasPrice"`
	IsConnected     bool   `json:"isConnected"`
	NodeVersion     string `json:"nodeVersion"`
	ContractAddress string `json:"contractAddress"`
}

// Notary hashes listings and records title verifications.
type Notary struct {
	rpc             *rpcClient
	contractAddress string
	logger          *zap.Logger
}

// NewNotary creates a notary from the Ethereum config. With an empty RPC URL
// the notary stays fully simulated.
func NewNotary(cfg *config.EthereumConfig, logger *zap.Logger) *Notary {
	n := &Notary{
		contractAddress: cfg.ContractAddress,
		logger:          logger.Named("notary"),
	}
	if cfg.RPCURL != "" {
		n.rpc = newRPCClient(cfg.RPCURL)
	}
	return n
}

// HashProperty computes the canonical Keccak-256 digest over the fields that
// identify a listing's title. The digest is stable for a given listing state.
func (n *Notary) HashProperty(property *models.Property) (string, error) {
	payload := struct {
		ID      string  `json:"id"`
		Title   string  `json:"title"`
		Address string  `json:"address"`
		Price   float64 `json:"price"`
		AgentID string  `json:"agentId"`
	}{
		ID:      property.ID.String(),
		Title:   property.Title,
		Address: property.Address,
		Price:   property.Price,
		AgentID: property.AgentID.String(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode property for hashing: %w", err)
	}

	digest := sha3.NewLegacyKeccak256()
	digest.Write(data)
	return "0x" + hex.EncodeToString(digest.Sum(nil)), nil
}

// SubmitVerification records the property hash on-chain and returns the
// transaction hash. Submission is simulated: a random 32-byte hash stands in
// for a real signed transaction.
func (n *Notary) SubmitVerification(ctx context.Context, property *models.Property) (string, error) {
	propertyHash, err := n.HashProperty(property)
	if err != nil {
		return "", err
	}

	txHash, err := randomHex(32)
	if err != nil {
		return "", err
	}

	n.logger.Info("recorded title verification",
		zap.String("property_id", property.ID.String()),
		zap.String("property_hash", propertyHash),
		zap.String("tx_hash", txHash))
	return txHash, nil
}

// CreateContract returns the address of the escrow contract for a sale.
// Deployment is simulated with a random 20-byte address.
func (n *Notary) CreateContract(ctx context.Context, tx *models.Transaction) (string, error) {
	address, err := randomHex(20)
	if err != nil {
		return "", err
	}

	n.logger.Info("created sale contract",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("contract_address", address))
	return address, nil
}

// TxConfirmation is the receipt-derived depth of a notarization transaction.
type TxConfirmation struct {
	BlockNumber   int64 `json:"blockNumber"`
	Confirmations int64 `json:"confirmations"`
}

// Confirmation resolves the receipt for txHash and computes its depth
// against the current head. Returns nil without error when no provider is
// configured or the transaction has not been mined.
func (n *Notary) Confirmation(ctx context.Context, txHash string) (*TxConfirmation, error) {
	if n.rpc == nil {
		return nil, nil
	}

	raw, err := n.rpc.call(ctx, "eth_getTransactionReceipt", txHash)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var receipt struct {
		BlockNumber string `json:"blockNumber"`
	}
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, fmt.Errorf("unexpected eth_getTransactionReceipt result: %w", err)
	}
	if receipt.BlockNumber == "" {
		return nil, nil
	}

	block, err := parseQuantity("eth_getTransactionReceipt", receipt.BlockNumber)
	if err != nil {
		return nil, err
	}
	head, err := n.rpc.callUint(ctx, "eth_blockNumber")
	if err != nil {
		return nil, err
	}

	confirmations := head - block + 1
	if confirmations < 0 {
		confirmations = 0
	}
	return &TxConfirmation{BlockNumber: block, Confirmations: confirmations}, nil
}

// NetworkInfo reports chain state. With an RPC endpoint configured the
// chain ID, head block and gas price come from the node; otherwise mainnet
// defaults are reported with IsConnected false.
func (n *Notary) NetworkInfo(ctx context.Context) *NetworkInfo {
	info := &NetworkInfo{
		NetworkID:       1,
		ChainID:         1,
		GasPrice:        "20000000000",
		NodeVersion:     "Geth/v1.10.0",
		ContractAddress: n.contractAddress,
	}
	if info.ContractAddress == "" {
		info.ContractAddress = zeroAddress
	}
	if n.rpc == nil {
		return info
	}

	chainID, err := n.rpc.callUint(ctx, "eth_chainId")
	if err != nil {
		n.logger.Warn("chain id probe failed", zap.Error(err))
		return info
	}
	info.ChainID = chainID
	info.NetworkID = chainID
	info.IsConnected = true

	if block, err := n.rpc.callUint(ctx, "eth_blockNumber"); err == nil {
		info.BlockNumber = block
	} else {
		n.logger.Warn("block number probe failed", zap.Error(err))
	}
	if price, err := n.rpc.callUint(ctx, "eth_gasPrice"); err == nil {
		info.GasPrice = fmt.Sprintf("%d", price)
	}
	if version, err := n.rpc.callString(ctx, "web3_clientVersion"); err == nil {
		info.NodeVersion = version
	}

	return info
}

func randomHex(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random hash: %w", err)
	}
	return "0x" + hex.EncodeToString(buf), nil
}
