// Package events carries ledger lifecycle events from domain logic to
// external consumers (the presentation layer reacts to these instead of
// polling reads).
package events

import (
	"context"
	"time"

	id "brique/pkg/domain"
)

// Event is emitted from domain logic to capture key ledger actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Wallet    string    `json:"wallet,omitempty"`
	AssetID   string    `json:"asset_id,omitempty"`
	SaleID    string    `json:"sale_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`

	// Purchase settlement breakdown, set for purchase and withdrawal events.
	Quantity uint64 `json:"quantity,omitempty"`
	Cost     uint64 `json:"cost,omitempty"`
	Change   uint64 `json:"change,omitempty"`
	Amount   uint64 `json:"amount,omitempty"`

	// Fingerprint of the KYC submission, hex-encoded. Never the documents.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Action names a ledger event.
type Action string

const (
	ActionInvestorVerified    Action = "investor_verified"
	ActionInvestorRevoked     Action = "investor_revoked"
	ActionKYCSubmitted        Action = "kyc_submitted"
	ActionKYCApproved         Action = "kyc_approved"
	ActionKYCRejected         Action = "kyc_rejected"
	ActionAssetCreated        Action = "asset_created"
	ActionAssetActivated      Action = "asset_activated"
	ActionAssetDeactivated    Action = "asset_deactivated"
	ActionTransfersPaused     Action = "transfers_paused"
	ActionTransfersUnpaused   Action = "transfers_unpaused"
	ActionSaleCreated         Action = "sale_created"
	ActionSaleActivated       Action = "sale_activated"
	ActionSaleDeactivated     Action = "sale_deactivated"
	ActionPurchaseExecuted    Action = "purchase_executed"
	ActionWithdrawalExecuted  Action = "withdrawal_executed"
	ActionSharesTransferred   Action = "shares_transferred"
	ActionSharesMinted        Action = "shares_minted"
	ActionSharesBurned        Action = "shares_burned"
)

// Publisher is the port services emit through. Implementations must not block
// the ledger operation: emission failures are logged, never propagated into a
// committed state change.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// For builds a minimally-populated event. Callers fill the payload fields.
func For(action Action, wallet id.Address) Event {
	return Event{
		Timestamp: time.Now(),
		Action:    action,
		Wallet:    wallet.Hex(),
	}
}
