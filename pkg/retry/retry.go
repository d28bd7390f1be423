// Package retry содержит ограниченный повтор с экспоненциальной задержкой.
package retry

import (
	"context"
	"errors"
	"time"
)

// ErrAttemptsExhausted возвращается, когда все попытки закончились повторяемой ошибкой.
var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

// Do выполняет fn не более attempts раз, удваивая паузу после каждой неудачи.
// Повторяются только ошибки, для которых retryable возвращает true; остальные
// отдаются вызывающему сразу. При исчерпании попыток последняя ошибка
// оборачивается в ErrAttemptsExhausted через errors.Join.
func Do(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error, retryable func(error) bool) error {
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	delay := baseDelay
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}

		if i == attempts-1 || delay <= 0 {
			continue
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}

	return errors.Join(ErrAttemptsExhausted, lastErr)
}
