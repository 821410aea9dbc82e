package topics

const (
	// Transferências
	TransferCompleted = "transfer_completed"

	// DLQs
	TransferCompletedDLQ = "transfer_completed_dlq"
)
