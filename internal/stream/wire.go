// Package stream defines the wire format of the upstream datahub webhook:
// batches of filtered Solana transactions, each pairing program log lines
// with the instructions that produced them.
package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
)

// ErrShape is returned when a transaction does not carry the accounts or
// balances a decoder expects. Upstream filters occasionally ship truncated
// instructions, so this is a skip condition, not a fault.
var ErrShape = errors.New("unexpected transaction shape")

// Batch is the body of one webhook delivery.
type Batch struct {
	Txs      []Tx     `json:"txs"`
	Metadata Metadata `json:"metadata"`
}

// Metadata describes the slot range and stream that produced a batch.
type Metadata struct {
	BatchEndRange       uint64 `json:"batch_end_range"`
	BatchStartRange     uint64 `json:"batch_start_range"`
	Dataset             string `json:"dataset"`
	EndRange            int64  `json:"end_range"` // -1 means never end
	KeepDistanceFromTip uint64 `json:"keep_distance_from_tip"`
	Network             string `json:"network"`
	StartRange          uint64 `json:"start_range"`
	StreamID            string `json:"stream_id"`
	StreamName          string `json:"stream_name"`
	StreamRegion        string `json:"stream_region"`
}

// Tx is one filtered transaction. Logs and Ixs are pairwise: the log at
// index i was emitted by the invocation at index i, after upstream
// filtering has aligned them.
type Tx struct {
	BlkTs     int64               `json:"blkTs"`
	Slot      uint64              `json:"slot"`
	Signature string              `json:"signature"`
	Logs      []string            `json:"logs"`
	Ixs       []ProgramInvocation `json:"ixs"`
}

// ProgramInvocation is an instruction tagged with its program.
type ProgramInvocation struct {
	ProgramID   string      `json:"programId"`
	Instruction Instruction `json:"instruction"`
}

// Instruction carries the instruction accounts with their surrounding
// balances, the base58 instruction data, and the top-level index of the
// instruction within its transaction.
type Instruction struct {
	Accounts []IxAccount `json:"accounts"`
	Data     string      `json:"data"`
	Index    uint64      `json:"index"`
}

// IxAccount is one instruction account with pre- and post-balances.
type IxAccount struct {
	Pubkey  string `json:"pubkey"`
	PreAmt  Amt    `json:"preAmt"`
	PostAmt Amt    `json:"postAmt"`
}

// Amt is an account balance. Token is nil for plain system accounts.
type Amt struct {
	Sol   uint64    `json:"sol"`
	Token *TokenAmt `json:"token"`
}

// TokenAmt is an SPL token balance. The upstream serializes the raw
// amount as a decimal string to survive 64-bit-unsafe JSON consumers.
type TokenAmt struct {
	Mint     string `json:"mint"`
	Decimals uint8  `json:"decimals"`
	Amt      uint64 `json:"amt"`
}

func (a *TokenAmt) UnmarshalJSON(data []byte) error {
	var raw struct {
		Mint     string `json:"mint"`
		Decimals uint8  `json:"decimals"`
		Amt      string `json:"amt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amt, err := strconv.ParseUint(raw.Amt, 10, 64)
	if err != nil {
		return fmt.Errorf("token amt %q: %w", raw.Amt, err)
	}
	a.Mint = raw.Mint
	a.Decimals = raw.Decimals
	a.Amt = amt
	return nil
}

func (a TokenAmt) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Mint     string `json:"mint"`
		Decimals uint8  `json:"decimals"`
		Amt      string `json:"amt"`
	}{a.Mint, a.Decimals, strconv.FormatUint(a.Amt, 10)})
}

// Account parses the pubkey of the account at index i.
// Returns ErrShape if the instruction has fewer accounts.
func Account(accounts []IxAccount, i int) (solana.PublicKey, error) {
	if i < 0 || i >= len(accounts) {
		return solana.PublicKey{}, fmt.Errorf("%w: want account %d, have %d", ErrShape, i, len(accounts))
	}
	pk, err := solana.PublicKeyFromBase58(accounts[i].Pubkey)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: account %d %q: %v", ErrShape, i, accounts[i].Pubkey, err)
	}
	return pk, nil
}

// PostToken returns the post-transaction token balance of the account at
// index i. Returns ErrShape if the account is missing or holds no token.
func PostToken(accounts []IxAccount, i int) (*TokenAmt, error) {
	if i < 0 || i >= len(accounts) {
		return nil, fmt.Errorf("%w: want account %d, have %d", ErrShape, i, len(accounts))
	}
	tok := accounts[i].PostAmt.Token
	if tok == nil {
		return nil, fmt.Errorf("%w: account %d has no token balance", ErrShape, i)
	}
	return tok, nil
}

// TokenMint returns the mint of the account at index i, preferring the
// pre-balance and falling back to the post-balance. Returns ErrShape when
// neither side carries a token.
func TokenMint(accounts []IxAccount, i int) (string, error) {
	if i < 0 || i >= len(accounts) {
		return "", fmt.Errorf("%w: want account %d, have %d", ErrShape, i, len(accounts))
	}
	if tok := accounts[i].PreAmt.Token; tok != nil {
		return tok.Mint, nil
	}
	if tok := accounts[i].PostAmt.Token; tok != nil {
		return tok.Mint, nil
	}
	return "", fmt.Errorf("%w: account %d has no token balance", ErrShape, i)
}
