package service

import (
	"time"

	"go.uber.org/zap"
)

// Dispatcher runs background work such as emails and thumbnails.
type Dispatcher func(fn func())

// NewGoDispatcher runs each job on its own goroutine. A panicking job is
// logged instead of crashing the process.
func NewGoDispatcher(logger *zap.Logger) Dispatcher {
	l := logger.Named("background")
	return func(fn func()) {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					l.Error("background job panicked", zap.Any("panic", r), zap.Stack("stack"))
				}
			}()
			fn()
		}()
	}
}

// SyncDispatcher runs jobs inline. Tests use it to observe side effects.
func SyncDispatcher(fn func()) { fn() }

func utcNow() time.Time { return time.Now().UTC() }
