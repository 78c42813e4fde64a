package services

import (
	"context"
	"sync"
)

// SerialPayment wraps a PaymentService so that at most one transfer is
// in flight at a time. Concurrent approved runs would otherwise race on
// the shared wallet's transaction ordering.
type SerialPayment struct {
	mu    sync.Mutex
	inner PaymentService
}

func NewSerialPayment(inner PaymentService) *SerialPayment {
	return &SerialPayment{inner: inner}
}

func (p *SerialPayment) Transfer(ctx context.Context, amount float64, recipient string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inner.Transfer(ctx, amount, recipient)
}
