package device

import "io"

// Device is a byte source producing the sensor wire format (real or
// mocked). Read blocks until bytes arrive; the frame decoder owns all
// interpretation of the stream.
type Device interface {
	io.Reader
	Connect() error
	Close() error
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
