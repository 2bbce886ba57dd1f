package outbox

// Row status values shared by the outbox writers and the relay worker.
const (
	StatusPending   = "pending"
	StatusPublished = "published"
)

// Outbox row persisted alongside state changes.
// Worker relay reads pending rows and publishes to the message bus.
type Message struct {
	ID         string
	EventType  string
	Payload    []byte
	Status     string // pending, published, failed
	RetryCount int
}
