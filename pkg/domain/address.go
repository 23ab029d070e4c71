package domain

import (
	"github.com/ethereum/go-ethereum/common"

	dErrors "brique/pkg/domain-errors"
)

// Address is a 20-byte wallet address. It aliases the ethereum address type so
// hex parsing, checksumming and zero-value semantics match what wallets send.
type Address = common.Address

// Fingerprint is a 32-byte content hash committed for a KYC document bundle.
// Only the fingerprint is ever stored on the ledger, never the documents.
type Fingerprint = common.Hash

// ZeroAddress is the null wallet address. It is rejected everywhere an actual
// party is required.
var ZeroAddress Address

// ZeroFingerprint is the empty document hash, rejected on KYC submission.
var ZeroFingerprint Fingerprint

// ParseAddress validates and decodes a hex wallet address.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return ZeroAddress, dErrors.New(dErrors.CodeInvalidInput, "wallet address cannot be empty")
	}
	if !common.IsHexAddress(s) {
		return ZeroAddress, dErrors.New(dErrors.CodeInvalidInput, "invalid wallet address")
	}
	return common.HexToAddress(s), nil
}

// ParseFingerprint validates and decodes a 32-byte hex document fingerprint.
func ParseFingerprint(s string) (Fingerprint, error) {
	if s == "" {
		return ZeroFingerprint, dErrors.New(dErrors.CodeInvalidInput, "fingerprint cannot be empty")
	}
	b, err := decodeHex32(s)
	if err != nil {
		return ZeroFingerprint, err
	}
	return common.BytesToHash(b), nil
}

func decodeHex32(s string) ([]byte, error) {
	raw := s
	if len(raw) >= 2 && raw[0] == '0' && (raw[1] == 'x' || raw[1] == 'X') {
		raw = raw[2:]
	}
	if len(raw) != common.HashLength*2 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "fingerprint must be a 32-byte hex string")
	}
	b := common.FromHex(s)
	if len(b) != common.HashLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "fingerprint must be a 32-byte hex string")
	}
	return b, nil
}
