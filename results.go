package custodia

// CheckResult captures the result of a pre-execution validity check.
type CheckResult struct {
	// GasAllocated is the cost the message is expected to incur.
	GasAllocated int64
}

// DeliverResult captures any output of executing a message.
type DeliverResult struct {
	// Data is a machine-parseable return value, usually the key of the
	// touched entity.
	Data []byte
	// Log is the human readable audit line emitted at the end of the
	// transition. Consumers parse these by prefix, the format of every
	// line is part of the external contract.
	Log string
}
