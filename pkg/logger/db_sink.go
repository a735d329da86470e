package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sefazor/guestlens-backend/internal/models"
	"go.uber.org/zap/zapcore"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	sinkBatchSize     = 50
	sinkFlushInterval = 5 * time.Second
)

// DBSink batches ERROR+ entries into app_error_logs.
type DBSink struct {
	db       *gorm.DB
	mu       sync.Mutex
	buffer   []models.AppErrorLog
	ticker   *time.Ticker
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func NewDBSink(db *gorm.DB) *DBSink {
	s := &DBSink{
		db:      db,
		buffer:  make([]models.AppErrorLog, 0, sinkBatchSize),
		ticker:  time.NewTicker(sinkFlushInterval),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.flushLoop()
	return s
}

func (s *DBSink) flushLoop() {
	defer close(s.stopped)
	for {
		select {
		case <-s.ticker.C:
			s.Flush()
		case <-s.done:
			s.Flush()
			return
		}
	}
}

func (s *DBSink) Flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buffer
	s.buffer = make([]models.AppErrorLog, 0, sinkBatchSize)
	s.mu.Unlock()

	// zap'e geri yazmak döngüye girer, stderr'e düş
	if err := s.db.CreateInBatches(batch, sinkBatchSize).Error; err != nil {
		fmt.Fprintf(os.Stderr, "logger: failed to flush %d error logs: %v\n", len(batch), err)
	}
}

// Stop flushes what is buffered and waits for the background loop to end.
func (s *DBSink) Stop() {
	s.stopOnce.Do(func() {
		s.ticker.Stop()
		close(s.done)
	})
	<-s.stopped
}

func (s *DBSink) add(entry models.AppErrorLog) {
	s.mu.Lock()
	s.buffer = append(s.buffer, entry)
	full := len(s.buffer) >= sinkBatchSize
	s.mu.Unlock()

	if full {
		go s.Flush()
	}
}

func (s *DBSink) Core() zapcore.Core {
	return &dbCore{LevelEnabler: zapcore.ErrorLevel, sink: s}
}

type dbCore struct {
	zapcore.LevelEnabler
	sink   *DBSink
	fields []zapcore.Field
}

func (c *dbCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &dbCore{LevelEnabler: c.LevelEnabler, sink: c.sink, fields: merged}
}

func (c *dbCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *dbCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	entry := models.AppErrorLog{
		Level:      ent.Level.String(),
		Message:    ent.Message,
		LoggerName: ent.LoggerName,
		Stack:      ent.Stack,
		CreatedAt:  ent.Time,
	}
	if ent.Caller.Defined {
		entry.Caller = ent.Caller.TrimmedPath()
	}

	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}
	if len(enc.Fields) > 0 {
		if b, err := json.Marshal(enc.Fields); err == nil {
			entry.Fields = datatypes.JSON(b)
		}
	}

	c.sink.add(entry)
	return nil
}

func (c *dbCore) Sync() error {
	c.sink.Flush()
	return nil
}
