package migrate

// Outcome is how a migration ended.
type Outcome int

const (
	// Failed means a step errored and the transaction was abandoned.
	Failed Outcome = iota
	// Aborted means the operator declined to commit.
	Aborted
	// Committed means the migration is visible to every reader.
	Committed
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case Aborted:
		return "aborted"
	default:
		return "failed"
	}
}
