package lifecycle

import (
	"time"

	"github.com/google/uuid"
)

// Record tracks where a Target is in its definition lifecycle.
type Record struct {
	TargetID    uuid.UUID `json:"target_id"`
	Name        string    `json:"name"`
	Phase       Phase     `json:"phase"`
	Completions int       `json:"completions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
