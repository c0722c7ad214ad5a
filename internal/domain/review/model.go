package review

import "time"

// Status is one stop in the application lattice:
// none -> pending -> {granted, rejected, cancelled}. The terminal states end
// the cycle; a fresh request overwrites the row and starts a new one.
type Status string

const (
	StatusNone      Status = "none"
	StatusPending   Status = "pending"
	StatusGranted   Status = "granted"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Application maps to the review_application table. One row per
// (patient, insurer) pair, reused across cycles; prior cycles are not kept.
type Application struct {
	PatientID   string    `db:"patient_id" json:"patient_id"`
	InsurerID   string    `db:"insurer_id" json:"insurer_id"`
	Status      Status    `db:"status" json:"status"`
	Reason      string    `db:"reason" json:"reason"`
	RequestedAt time.Time `db:"requested_at" json:"requested_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Totals holds the running per-status counters. They move with every
// transition inside its transaction and are never recomputed by scanning.
type Totals struct {
	Pending   int64 `db:"pending" json:"pending"`
	Granted   int64 `db:"granted" json:"granted"`
	Rejected  int64 `db:"rejected" json:"rejected"`
	Cancelled int64 `db:"cancelled" json:"cancelled"`
}
