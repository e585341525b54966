// Package idempotency replays the first response of a write request when a
// client retries it with the same Idempotency-Key header.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// DefaultTTL is how long completed records are replayed.
const DefaultTTL = 24 * time.Hour

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ReservationState is the outcome of Reserve.
type ReservationState int

const (
	// ReservationStateNew means the caller owns the key and should run the handler.
	ReservationStateNew ReservationState = iota
	// ReservationStateCompleted means a stored response must be replayed.
	ReservationStateCompleted
	// ReservationStatePending means another request is still running with this key.
	ReservationStatePending
)

type Reservation struct {
	State  ReservationState
	Record Record
}

// Record is what the stores persist per key.
type Record struct {
	Fingerprint    string    `json:"fingerprint"`
	Status         Status    `json:"status"`
	ResponseStatus int       `json:"responseStatus,omitempty"`
	ContentType    string    `json:"contentType,omitempty"`
	ResponseBody   []byte    `json:"responseBody,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// Response is the handler output captured for replay.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

type Store interface {
	Reserve(ctx context.Context, key, fingerprint string, now time.Time, ttl time.Duration) (Reservation, error)
	SaveResponse(ctx context.Context, key, fingerprint string, resp Response, now time.Time, ttl time.Duration) error
	Release(ctx context.Context, key, fingerprint string) error
}

// ErrFingerprintMismatch is returned when a key is reused for a different request.
var ErrFingerprintMismatch = errors.New("idempotency: key reserved for a different request")

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func pendingRecord(fingerprint string, now time.Time, ttl time.Duration) Record {
	return Record{
		Fingerprint: fingerprint,
		Status:      StatusPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}

func completedRecord(prev Record, fingerprint string, resp Response, now time.Time, ttl time.Duration) Record {
	created := prev.CreatedAt
	if created.IsZero() {
		created = now
	}
	body := make([]byte, len(resp.Body))
	copy(body, resp.Body)
	return Record{
		Fingerprint:    fingerprint,
		Status:         StatusCompleted,
		ResponseStatus: resp.Status,
		ContentType:    resp.ContentType,
		ResponseBody:   body,
		CreatedAt:      created,
		ExpiresAt:      now.Add(ttl),
	}
}

func stateOf(record Record) ReservationState {
	if record.Status == StatusCompleted {
		return ReservationStateCompleted
	}
	return ReservationStatePending
}
