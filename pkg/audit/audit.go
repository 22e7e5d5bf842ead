package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Outcome reasons stored with every login attempt.
const (
	ReasonOK           = "ok"
	ReasonUnknownEmail = "unknown_email"
	ReasonInactive     = "inactive"
	ReasonBadPassword  = "bad_password"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type LoginEvent struct {
	MongoID primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	ID      string             `json:"id" bson:"-"`
	UserID  int64              `json:"user_id" bson:"user_id"`
	Email   string             `json:"email" bson:"email"`
	IP      string             `json:"ip" bson:"ip"`
	Success bool               `json:"success" bson:"success"`
	Reason  string             `json:"reason" bson:"reason"`
	At      time.Time          `json:"at" bson:"at"`
}

type Recorder interface {
	Record(ctx context.Context, e *LoginEvent) error
}

type Reader interface {
	Recent(ctx context.Context, limit int) ([]*LoginEvent, error)
}

// ClampLimit maps a requested page size onto 1..MaxLimit; zero or negative
// values select DefaultLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
