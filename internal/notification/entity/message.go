package entity

// Error messages recorded on delivery log entries.
const (
	// DeliveryFailedMessage is written when a first delivery attempt fails.
	DeliveryFailedMessage = "Provider delivery failed."
	// RetryFailedMessage is written when a retry attempt fails.
	RetryFailedMessage = "Retry attempt failed."
	// CancelledMessage is written when a group cancellation terminates an entry.
	CancelledMessage = "Cancelled by user request (Group Cancel)."
)
