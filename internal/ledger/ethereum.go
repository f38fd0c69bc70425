package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"sigil/internal/platform/config"
	"sigil/pkg/domain"
	"sigil/pkg/platform/circuit"
	"sigil/pkg/platform/sentinel"
)

const defaultProbeInterval = 30 * time.Second

// EthereumLedger anchors and queries documents on the registry contract.
// Reads go through eth_call; anchoring submits a transaction signed with the
// service key. A circuit breaker guards the RPC endpoint: while open, calls
// fail fast with sentinel.ErrUnavailable and a single probe per interval is
// let through so the circuit can close again.
type EthereumLedger struct {
	backend  bind.ContractBackend
	contract common.Address
	abi      abi.ABI
	bound    *bind.BoundContract
	auth     *bind.TransactOpts
	timeout  time.Duration
	breaker  *circuit.Breaker
	logger   *slog.Logger
	now      func() time.Time

	probeMu    sync.Mutex
	probeEvery time.Duration
	nextProbe  time.Time
}

// Option configures an EthereumLedger.
type Option func(*EthereumLedger)

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(l *EthereumLedger) {
		if b != nil {
			l.breaker = b
		}
	}
}

// WithProbeInterval sets how often an open circuit lets a probe through.
func WithProbeInterval(d time.Duration) Option {
	return func(l *EthereumLedger) {
		if d > 0 {
			l.probeEvery = d
		}
	}
}

// WithClock overrides the probe-window clock.
func WithClock(now func() time.Time) Option {
	return func(l *EthereumLedger) {
		if now != nil {
			l.now = now
		}
	}
}

// Dial connects to the configured RPC endpoint and binds the registry
// contract.
func Dial(ctx context.Context, cfg config.LedgerConfig, logger *slog.Logger, opts ...Option) (*EthereumLedger, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("ledger rpc url is required")
	}
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial ledger rpc: %w", err)
	}
	return NewEthereumLedger(client, cfg, logger, opts...)
}

// NewEthereumLedger binds the registry contract over an existing backend.
// The signing key is optional; without it the ledger is read-only and
// AnchorDocument fails.
func NewEthereumLedger(backend bind.ContractBackend, cfg config.LedgerConfig, logger *slog.Logger, opts ...Option) (*EthereumLedger, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("registry contract address %q is not a hex address", cfg.ContractAddress)
	}
	parsed, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		return nil, fmt.Errorf("parse registry abi: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	l := &EthereumLedger{
		backend:    backend,
		contract:   common.HexToAddress(cfg.ContractAddress),
		abi:        parsed,
		timeout:    cfg.CallTimeout,
		breaker:    circuit.New("ledger"),
		logger:     logger,
		now:        time.Now,
		probeEvery: defaultProbeInterval,
	}
	l.bound = bind.NewBoundContract(l.contract, parsed, backend, backend, backend)

	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("parse ledger signing key: %w", err)
		}
		if cfg.ChainID <= 0 {
			return nil, errors.New("ledger chain id is required for signing")
		}
		auth, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(cfg.ChainID))
		if err != nil {
			return nil, fmt.Errorf("build ledger transactor: %w", err)
		}
		l.auth = auth
	}

	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// CanAccessDocument asks the contract whether caller may open the document.
func (l *EthereumLedger) CanAccessDocument(ctx context.Context, documentID string, caller domain.Address) (bool, error) {
	if err := l.guard(); err != nil {
		return false, err
	}
	data, err := l.abi.Pack("canAccess", documentKey(documentID), caller.Common())
	if err != nil {
		return false, fmt.Errorf("pack canAccess call: %w", err)
	}

	res, err := l.call(ctx, data)
	if err != nil {
		return false, fmt.Errorf("ledger access check: %v: %w", err, sentinel.ErrUnavailable)
	}
	out, err := l.abi.Unpack("canAccess", res)
	if err != nil {
		return false, fmt.Errorf("decode canAccess result: %v: %w", err, sentinel.ErrUnavailable)
	}
	allowed, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("canAccess returned %T, want bool: %w", out[0], sentinel.ErrUnavailable)
	}
	return allowed, nil
}

// AnchorDocument records the document on chain and returns the transaction
// hash. The document id and content hash are fixed into the contract entry;
// issuer and recipient drive the contract's access rules.
func (l *EthereumLedger) AnchorDocument(ctx context.Context, documentID, contentHash string, issuer, recipient domain.Address) (string, error) {
	if l.auth == nil {
		return "", errors.New("ledger is read-only: anchoring requires a signing key")
	}
	digest, err := hexutil.Decode(contentHash)
	if err != nil || len(digest) != common.HashLength {
		return "", fmt.Errorf("content hash %q is not a 32-byte hex digest", contentHash)
	}
	if err := l.guard(); err != nil {
		return "", err
	}

	callCtx, cancel := l.callContext(ctx)
	defer cancel()

	opts := *l.auth
	opts.Context = callCtx
	tx, err := l.bound.Transact(&opts, "anchorDocument",
		documentKey(documentID), common.BytesToHash(digest), issuer.Common(), recipient.Common())
	l.record(err)
	if err != nil {
		return "", fmt.Errorf("anchor document: %v: %w", err, sentinel.ErrUnavailable)
	}
	return tx.Hash().Hex(), nil
}

// DocumentEntry reads the document's on-chain record. A zero content hash
// means the contract has no entry for the id.
func (l *EthereumLedger) DocumentEntry(ctx context.Context, documentID string) (*Entry, error) {
	if err := l.guard(); err != nil {
		return nil, err
	}
	data, err := l.abi.Pack("getDocument", documentKey(documentID))
	if err != nil {
		return nil, fmt.Errorf("pack getDocument call: %w", err)
	}

	res, err := l.call(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("ledger document read: %v: %w", err, sentinel.ErrUnavailable)
	}
	out, err := l.abi.Unpack("getDocument", res)
	if err != nil || len(out) != 4 {
		return nil, fmt.Errorf("decode getDocument result: %v: %w", err, sentinel.ErrUnavailable)
	}

	digest, ok := out[0].([32]byte)
	if !ok {
		return nil, fmt.Errorf("getDocument returned %T, want bytes32: %w", out[0], sentinel.ErrUnavailable)
	}
	if digest == ([32]byte{}) {
		return nil, fmt.Errorf("document %s has no ledger entry: %w", documentID, sentinel.ErrNotFound)
	}
	issuer, _ := out[1].(common.Address)
	recipient, _ := out[2].(common.Address)
	anchoredAt, ok := out[3].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("getDocument returned %T, want uint256: %w", out[3], sentinel.ErrUnavailable)
	}

	return &Entry{
		ContentHash: hexutil.Encode(digest[:]),
		Issuer:      toAddress(issuer),
		Recipient:   toAddress(recipient),
		AnchoredAt:  time.Unix(anchoredAt.Int64(), 0).UTC(),
	}, nil
}

func (l *EthereumLedger) call(ctx context.Context, data []byte) ([]byte, error) {
	callCtx, cancel := l.callContext(ctx)
	defer cancel()

	res, err := l.backend.CallContract(callCtx, ethereum.CallMsg{To: &l.contract, Data: data}, nil)
	l.record(err)
	return res, err
}

func (l *EthereumLedger) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, l.timeout)
}

// guard fails fast while the circuit is open, admitting one probe per
// interval so recoveries are noticed.
func (l *EthereumLedger) guard() error {
	if !l.breaker.IsOpen() {
		return nil
	}
	l.probeMu.Lock()
	defer l.probeMu.Unlock()
	now := l.now()
	if now.Before(l.nextProbe) {
		return fmt.Errorf("ledger circuit open: %w", sentinel.ErrUnavailable)
	}
	l.nextProbe = now.Add(l.probeEvery)
	return nil
}

// record feeds the call outcome to the breaker. Caller-side cancellation
// says nothing about ledger health and is not counted.
func (l *EthereumLedger) record(err error) {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		if _, change := l.breaker.RecordFailure(); change.Opened {
			l.probeMu.Lock()
			l.nextProbe = l.now().Add(l.probeEvery)
			l.probeMu.Unlock()
			l.logger.Warn("ledger circuit opened", "breaker", l.breaker.Name())
		}
		return
	}
	if _, change := l.breaker.RecordSuccess(); change.Closed {
		l.logger.Info("ledger circuit closed", "breaker", l.breaker.Name())
	}
}
