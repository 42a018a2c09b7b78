package ports

import "context"

// Event subjects published on record lifecycle changes.
const (
	SubjectAcceptanceCreated = "record.acceptance.created"
	SubjectIssueCreated      = "record.issue.created"
	SubjectIssueClosed       = "record.issue.closed"
)

// EventPublisher pushes lifecycle notifications to an external broker.
// Publishing is best-effort; implementations must not block record writes.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close()
}
