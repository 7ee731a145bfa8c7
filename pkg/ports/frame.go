package ports

import "context"

// FrameSource fetches the encoded bytes of the decorative frame image.
type FrameSource interface {
	// Fetch returns the raw frame bytes. Each call is one attempt.
	Fetch(ctx context.Context) ([]byte, error)

	// Location describes where the frame comes from, for logging.
	Location() string
}
