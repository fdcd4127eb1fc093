package notify

import "context"

// TargetKind identifies the transport a target address belongs to.
type TargetKind string

// Supported target kinds.
const (
	KindPush  TargetKind = "push"
	KindEmail TargetKind = "email"
)

// Target is one delivery address of a user: a push token or an email address.
type Target struct {
	ID      int64      `json:"id"`
	UserID  int64      `json:"user_id"`
	Kind    TargetKind `json:"kind"`
	Address string     `json:"address"`
}

// Dispatcher delivers one notification to one target address.
//
// Implementations make a single attempt and report the outcome; the caller
// owns aggregation and logging. Deliveries must be tolerant of duplicates
// since the transport may redeliver.
type Dispatcher interface {
	Deliver(ctx context.Context, target Target, title, body string) error
}
