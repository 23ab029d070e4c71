package models

import (
	"time"

	id "brique/pkg/domain"
)

// Status is the per-wallet request state. SUBMITTED is entered only from
// NONE (or REJECTED, via resubmission); APPROVED and REJECTED are decisions.
type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

// Request is one KYC submission per wallet. Only the document fingerprint is
// retained, never the documents.
type Request struct {
	Wallet      id.Address
	Fingerprint id.Fingerprint
	Approved    bool
	Rejected    bool
	SubmittedAt time.Time
	DecidedAt   time.Time
}

func (r *Request) Status() Status {
	switch {
	case r.Approved:
		return StatusApproved
	case r.Rejected:
		return StatusRejected
	default:
		return StatusSubmitted
	}
}

func (r *Request) Decided() bool {
	return r.Approved || r.Rejected
}
