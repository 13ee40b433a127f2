package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// Backend is the subset of the Ethereum RPC surface the gateway uses. It is
// satisfied by *ethclient.Client and by test doubles.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Dial connects to the ledger RPC endpoint.
func Dial(endpoint string) (*ethclient.Client, error) {
	if endpoint == "" {
		return nil, errors.New("ledger endpoint required")
	}
	return ethclient.Dial(endpoint)
}

// Config holds everything the gateway needs to reach the three deployed
// contracts. The client handle and sender key are injected explicitly; the
// gateway never reads ambient account state.
type Config struct {
	Addresses map[Contract]common.Address
	SenderKey *ecdsa.PrivateKey
	GasLimit  uint64
	TxTimeout time.Duration
}

// Gateway wraps all ledger access: it submits signed transactions, waits for
// inclusion, decodes emitted events & performs read-only calls.
type Gateway struct {
	backend      Backend
	addrs        map[Contract]common.Address
	key          *ecdsa.PrivateKey
	sender       common.Address
	gasLimit     uint64
	txTimeout    time.Duration
	pollInterval time.Duration
	log          *zap.Logger
}

const (
	defaultGasLimit     = 3_000_000
	defaultTxTimeout    = 90 * time.Second
	defaultPollInterval = 500 * time.Millisecond
)

func NewGateway(backend Backend, cfg Config, log *zap.Logger) (*Gateway, error) {
	if backend == nil {
		return nil, errors.New("ledger backend required")
	}
	if cfg.SenderKey == nil {
		return nil, errors.New("ledger sender key required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	g := &Gateway{
		backend:      backend,
		addrs:        cfg.Addresses,
		key:          cfg.SenderKey,
		sender:       crypto.PubkeyToAddress(cfg.SenderKey.PublicKey),
		gasLimit:     cfg.GasLimit,
		txTimeout:    cfg.TxTimeout,
		pollInterval: defaultPollInterval,
		log:          log,
	}
	if g.gasLimit == 0 {
		g.gasLimit = defaultGasLimit
	}
	if g.txTimeout <= 0 {
		g.txTimeout = defaultTxTimeout
	}
	return g, nil
}

// Sender returns the default sending account.
func (g *Gateway) Sender() common.Address { return g.sender }

// Event is a decoded log entry emitted by a contract during a submission.
type Event struct {
	Name string
	Args map[string]interface{}
}

// Receipt is the outcome of a successful submission.
type Receipt struct {
	TxHash string
	Events []Event
}

// EventInt64 extracts a uint256 argument from the first event with the given
// name, typically the chain-assigned identifier of a freshly created record.
func (r *Receipt) EventInt64(event, arg string) (int64, bool) {
	for _, ev := range r.Events {
		if ev.Name != event {
			continue
		}
		if v, ok := ev.Args[arg].(*big.Int); ok {
			return v.Int64(), true
		}
	}
	return 0, false
}

// SubmitOpts adjusts a single submission. Key overrides the configured
// sender; Value attaches native funds to the transaction (payable methods).
type SubmitOpts struct {
	Key   *ecdsa.PrivateKey
	Value *big.Int
}

// Submit packs and signs a contract method call, sends it, and blocks until
// the transaction is mined or the configured timeout elapses. Every failure
// mode collapses into a *RemoteError; there is no partial success.
func (g *Gateway) Submit(ctx context.Context, contract Contract, method string, opts SubmitOpts, args ...interface{}) (*Receipt, error) {
	cabi, addr, err := g.resolve(contract)
	if err != nil {
		return nil, remoteErr(method, err)
	}
	key := g.key
	if opts.Key != nil {
		key = opts.Key
	}
	sender := crypto.PubkeyToAddress(key.PublicKey)
	value := opts.Value
	if value == nil {
		value = new(big.Int)
	}

	ctx, cancel := context.WithTimeout(ctx, g.txTimeout)
	defer cancel()

	input, err := cabi.Pack(method, args...)
	if err != nil {
		return nil, remoteErr(method, fmt.Errorf("pack arguments: %w", err))
	}
	nonce, err := g.backend.PendingNonceAt(ctx, sender)
	if err != nil {
		return nil, remoteErr(method, fmt.Errorf("fetch nonce: %w", err))
	}
	gasPrice, err := g.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, remoteErr(method, fmt.Errorf("suggest gas price: %w", err))
	}
	chainID, err := g.backend.ChainID(ctx)
	if err != nil {
		return nil, remoteErr(method, fmt.Errorf("fetch chain id: %w", err))
	}

	tx := types.NewTransaction(nonce, addr, value, g.gasLimit, gasPrice, input)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return nil, remoteErr(method, fmt.Errorf("sign transaction: %w", err))
	}
	if err := g.backend.SendTransaction(ctx, signed); err != nil {
		return nil, remoteErr(method, err)
	}

	g.log.Debug("ledger transaction submitted",
		zap.String("contract", string(contract)),
		zap.String("method", method),
		zap.String("tx", signed.Hash().Hex()))

	receipt, err := g.waitMined(ctx, signed.Hash())
	if err != nil {
		return nil, remoteErr(method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, remoteErr(method, fmt.Errorf("execution reverted (tx %s)", signed.Hash().Hex()))
	}

	return &Receipt{
		TxHash: signed.Hash().Hex(),
		Events: g.decodeEvents(cabi, addr, receipt.Logs),
	}, nil
}

// Call performs a read-only contract call and unpacks the result into out.
// Calls are always safe to retry; errors propagate without recovery.
func (g *Gateway) Call(ctx context.Context, contract Contract, method string, out interface{}, args ...interface{}) error {
	cabi, addr, err := g.resolve(contract)
	if err != nil {
		return err
	}
	input, err := cabi.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("pack %s arguments: %w", method, err)
	}
	raw, err := g.backend.CallContract(ctx, ethereum.CallMsg{From: g.sender, To: &addr, Data: input}, nil)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	if out == nil {
		return nil
	}
	if err := cabi.UnpackIntoInterface(out, method, raw); err != nil {
		return fmt.Errorf("unpack %s result: %w", method, err)
	}
	return nil
}

// NetworkInfo describes the connected ledger for diagnostics.
type NetworkInfo struct {
	ChainID     int64  `json:"chain_id"`
	BlockNumber uint64 `json:"block_number"`
	GasPrice    string `json:"gas_price"`
	Sender      string `json:"sender"`
}

// Info reports chain id, head block and current gas price.
func (g *Gateway) Info(ctx context.Context) (*NetworkInfo, error) {
	chainID, err := g.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch chain id: %w", err)
	}
	head, err := g.backend.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch block number: %w", err)
	}
	gasPrice, err := g.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}
	return &NetworkInfo{
		ChainID:     chainID.Int64(),
		BlockNumber: head,
		GasPrice:    gasPrice.String(),
		Sender:      g.sender.Hex(),
	}, nil
}

func (g *Gateway) resolve(contract Contract) (abi.ABI, common.Address, error) {
	cabi, ok := contractABIs[contract]
	if !ok {
		return abi.ABI{}, common.Address{}, fmt.Errorf("unknown contract %q", contract)
	}
	addr, ok := g.addrs[contract]
	if !ok {
		return abi.ABI{}, common.Address{}, fmt.Errorf("no address configured for contract %q", contract)
	}
	return cabi, addr, nil
}

func (g *Gateway) waitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()
	for {
		receipt, err := g.backend.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("fetch receipt: %w", err)
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, errTxNotMined
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (g *Gateway) decodeEvents(cabi abi.ABI, addr common.Address, logs []*types.Log) []Event {
	var events []Event
	for _, entry := range logs {
		if entry == nil || entry.Address != addr || len(entry.Topics) == 0 {
			continue
		}
		for name, ev := range cabi.Events {
			if entry.Topics[0] != ev.ID {
				continue
			}
			args := map[string]interface{}{}
			if err := cabi.UnpackIntoMap(args, name, entry.Data); err != nil {
				g.log.Warn("decode event data", zap.String("event", name), zap.Error(err))
				continue
			}
			var indexed abi.Arguments
			for _, in := range ev.Inputs {
				if in.Indexed {
					indexed = append(indexed, in)
				}
			}
			if len(indexed) > 0 {
				if err := abi.ParseTopicsIntoMap(args, indexed, entry.Topics[1:]); err != nil {
					g.log.Warn("decode event topics", zap.String("event", name), zap.Error(err))
					continue
				}
			}
			events = append(events, Event{Name: name, Args: args})
		}
	}
	return events
}
