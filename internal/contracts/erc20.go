package contracts

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// erc20ABI covers the standard token surface plus the wrapped-native
// deposit/withdraw entry points.
const erc20ABI = `[
  {"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
  {"name":"symbol","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"name":"deposit","type":"function","stateMutability":"payable","inputs":[],"outputs":[]},
  {"name":"withdraw","type":"function","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]}
]`

// ERC20 is a bound token contract. The wrapped-native token uses the same
// binding; Deposit and Withdraw simply revert on plain tokens.
type ERC20 struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewERC20 binds a token contract at address.
func NewERC20(address common.Address, backend bind.ContractBackend) (*ERC20, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}
	return &ERC20{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// Address returns the token contract address.
func (e *ERC20) Address() common.Address { return e.address }

// Decimals reads the token's decimal precision.
func (e *ERC20) Decimals(ctx context.Context) (int32, error) {
	var out []interface{}
	if err := e.contract.Call(&bind.CallOpts{Context: ctx}, &out, "decimals"); err != nil {
		return 0, fmt.Errorf("failed to read decimals of %s: %w", e.address.Hex(), err)
	}
	return int32(*abi.ConvertType(out[0], new(uint8)).(*uint8)), nil
}

// Symbol reads the token's symbol.
func (e *ERC20) Symbol(ctx context.Context) (string, error) {
	var out []interface{}
	if err := e.contract.Call(&bind.CallOpts{Context: ctx}, &out, "symbol"); err != nil {
		return "", fmt.Errorf("failed to read symbol of %s: %w", e.address.Hex(), err)
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

// BalanceOf reads owner's token balance.
func (e *ERC20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	var out []interface{}
	if err := e.contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", owner); err != nil {
		return nil, fmt.Errorf("failed to read balance of %s: %w", owner.Hex(), err)
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// Allowance reads the amount spender may move on owner's behalf.
func (e *ERC20) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	var out []interface{}
	if err := e.contract.Call(&bind.CallOpts{Context: ctx}, &out, "allowance", owner, spender); err != nil {
		return nil, fmt.Errorf("failed to read allowance of %s: %w", owner.Hex(), err)
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// Approve grants spender the right to move amount tokens.
func (e *ERC20) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	return e.contract.Transact(opts, "approve", spender, amount)
}

// Deposit wraps native currency; the amount travels as the call value.
func (e *ERC20) Deposit(opts *bind.TransactOpts) (*types.Transaction, error) {
	return e.contract.Transact(opts, "deposit")
}

// Withdraw unwraps amount back to native currency.
func (e *ERC20) Withdraw(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return e.contract.Transact(opts, "withdraw", amount)
}
