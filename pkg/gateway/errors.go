package gateway

import "errors"

// ErrClosed is returned by Handle after Close has begun: the audit queue is
// draining and no new cycle may be admitted.
var ErrClosed = errors.New("gateway: closed")
