package config

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"go-supplychain-ledger/internal/chain"
)

// Config captures runtime configuration for the API server and the ledger
// gateway. Everything is read from the environment; godotenv loads .env
// in main before this runs.
type Config struct {
	Port string

	LedgerRPCURL    string
	SupplyChainAddr common.Address
	DocumentsAddr   common.Address
	PaymentsAddr    common.Address
	SenderKey       *ecdsa.PrivateKey
	GasLimit        uint64
	TxTimeout       time.Duration
	LedgerDisabled  bool // run without a ledger connection (local dev)
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:         getenvDefault("PORT", "3000"),
		LedgerRPCURL: getenvDefault("LEDGER_RPC_URL", "http://localhost:8545"),
		GasLimit:     3_000_000,
		TxTimeout:    90 * time.Second,
	}

	cfg.SupplyChainAddr = common.HexToAddress(os.Getenv("SUPPLY_CHAIN_ADDRESS"))
	cfg.DocumentsAddr = common.HexToAddress(os.Getenv("DOCUMENT_VERIFICATION_ADDRESS"))
	cfg.PaymentsAddr = common.HexToAddress(os.Getenv("PAYMENT_CONTRACT_ADDRESS"))

	if raw := os.Getenv("LEDGER_GAS_LIMIT"); raw != "" {
		limit, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse LEDGER_GAS_LIMIT: %w", err)
		}
		cfg.GasLimit = limit
	}
	if raw := os.Getenv("LEDGER_TX_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse LEDGER_TX_TIMEOUT: %w", err)
		}
		cfg.TxTimeout = timeout
	}

	if raw := strings.TrimPrefix(os.Getenv("LEDGER_SENDER_KEY"), "0x"); raw != "" {
		key, err := ethcrypto.HexToECDSA(raw)
		if err != nil {
			return nil, fmt.Errorf("parse LEDGER_SENDER_KEY: %w", err)
		}
		cfg.SenderKey = key
	} else {
		cfg.LedgerDisabled = true
	}

	return cfg, nil
}

// ChainConfig translates the loaded settings into the gateway's config.
func (c *Config) ChainConfig() chain.Config {
	return chain.Config{
		Addresses: map[chain.Contract]common.Address{
			chain.ContractSupplyChain: c.SupplyChainAddr,
			chain.ContractDocuments:   c.DocumentsAddr,
			chain.ContractPayments:    c.PaymentsAddr,
		},
		SenderKey: c.SenderKey,
		GasLimit:  c.GasLimit,
		TxTimeout: c.TxTimeout,
	}
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
