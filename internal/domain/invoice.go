package domain

import (
	"time"

	"github.com/google/uuid"
)

// Invoice is a bill issued against a project. Amount is in whole guaraníes.
type Invoice struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	Amount    int64
	IssuedAt  time.Time
	Verified  bool
	CreatedAt time.Time
}
