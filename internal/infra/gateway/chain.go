package gateway

import (
	"context"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/attestia/notary"
	"github.com/attestia/notary/internal/domain"
)

var tracer = otel.Tracer("chain")

// notaryABI is the minimal contract surface: storeHash writes a content hash,
// verifyHash reads back its block timestamp (0 when absent).
const notaryABI = `[
	{
		"inputs": [{"internalType": "bytes32", "name": "hash", "type": "bytes32"}],
		"name": "storeHash",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "bytes32", "name": "hash", "type": "bytes32"}],
		"name": "verifyHash",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "bytes32", "name": "", "type": "bytes32"}],
		"name": "timestamps",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

// ChainGateway talks to the notary contract over JSON-RPC. Confirmed
// timestamps are immutable on chain, so positive lookups are cached.
type ChainGateway struct {
	client  *ethclient.Client
	abi     abi.ABI
	address common.Address
	rpcURL  string
	cache   *cache.Cache
}

func NewChainGateway(rpcURL, contractAddress string) (*ChainGateway, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to rpc endpoint")
	}

	parsed, err := abi.JSON(strings.NewReader(notaryABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse contract abi")
	}

	return &ChainGateway{
		client:  client,
		abi:     parsed,
		address: common.HexToAddress(contractAddress),
		rpcURL:  rpcURL,
		cache:   cache.New(10*time.Minute, 15*time.Minute),
	}, nil
}

// VerifyHash returns the unix timestamp recorded for hashHex, or 0 when the
// hash is not on chain.
func (g *ChainGateway) VerifyHash(ctx context.Context, hashHex string) (int64, error) {
	ctx, span := tracer.Start(ctx, "Chain.Gateway.VerifyHash")
	defer span.End()

	if cached, found := g.cache.Get(hashHex); found {
		return cached.(int64), nil
	}

	hash32, err := notary.HashToBytes32(hashHex)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	data, err := g.abi.Pack("verifyHash", hash32)
	if err != nil {
		span.RecordError(err)
		return 0, errors.Wrap(err, "failed to pack verifyHash call")
	}

	res, err := g.client.CallContract(ctx, ethereum.CallMsg{To: &g.address, Data: data}, nil)
	if err != nil {
		span.RecordError(errors.Wrap(err, "verifyHash call failed"))
		return 0, errors.Wrap(err, "verifyHash call failed")
	}

	out, err := g.abi.Unpack("verifyHash", res)
	if err != nil {
		span.RecordError(err)
		return 0, errors.Wrap(err, "failed to unpack verifyHash result")
	}

	ts := out[0].(*big.Int).Int64()

	// Absent hashes may be stored later, only cache confirmed ones.
	if ts > 0 {
		g.cache.Set(hashHex, ts, cache.DefaultExpiration)
	}

	return ts, nil
}

// StoreHashTx builds the unsigned storeHash transaction payload for the
// caller's wallet to sign and submit.
func (g *ChainGateway) StoreHashTx(hashHex string) (notary.ChainTx, error) {
	hash32, err := notary.HashToBytes32(hashHex)
	if err != nil {
		return notary.ChainTx{}, err
	}

	data, err := g.abi.Pack("storeHash", hash32)
	if err != nil {
		return notary.ChainTx{}, errors.Wrap(err, "failed to pack storeHash call")
	}

	return notary.ChainTx{
		To:   g.address.Hex(),
		Data: hexutil.Encode(data),
	}, nil
}

// EstimateGas asks the node for a storeHash gas estimate and falls back to a
// fixed default when the node cannot provide one.
func (g *ChainGateway) EstimateGas(ctx context.Context, hashHex, from string) (uint64, error) {
	ctx, span := tracer.Start(ctx, "Chain.Gateway.EstimateGas")
	defer span.End()

	hash32, err := notary.HashToBytes32(hashHex)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	data, err := g.abi.Pack("storeHash", hash32)
	if err != nil {
		span.RecordError(err)
		return 0, errors.Wrap(err, "failed to pack storeHash call")
	}

	gas, err := g.client.EstimateGas(ctx, ethereum.CallMsg{
		From: common.HexToAddress(from),
		To:   &g.address,
		Data: data,
	})
	if err != nil {
		span.RecordError(err)
		slog.Debug(
			"gas estimation failed, using default",
			slog.String("error", err.Error()),
			slog.String("module", "chain"),
		)
		return domain.DefaultGasEstimate, nil
	}

	return gas, nil
}

func (g *ChainGateway) ContractInfo() notary.ContractInfo {
	return notary.ContractInfo{
		ContractAddress: g.address.Hex(),
		RPCURL:          g.rpcURL,
	}
}
