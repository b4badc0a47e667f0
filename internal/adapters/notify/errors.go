package notify

import "errors"

// Sentinel errors for webhook delivery.
var (
	// ErrNoWebhookURL indicates the sink was constructed without a
	// destination.
	ErrNoWebhookURL = errors.New("no webhook URL configured")

	// ErrDeliveryFailed indicates the webhook endpoint rejected the
	// alert or was unreachable.
	ErrDeliveryFailed = errors.New("webhook delivery failed")
)
