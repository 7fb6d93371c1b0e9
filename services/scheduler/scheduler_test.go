package schedulersvc

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) log(msg string) {
	l.mu.Lock()
	l.msgs = append(l.msgs, msg)
	l.mu.Unlock()
}

func (l *recordingLogger) Debug(msg string, _ ...interface{}) { l.log(msg) }
func (l *recordingLogger) Info(msg string, _ ...interface{})  { l.log(msg) }
func (l *recordingLogger) Warn(msg string, _ ...interface{})  { l.log(msg) }
func (l *recordingLogger) Error(msg string, _ ...interface{}) { l.log(msg) }
func (l *recordingLogger) Fatal(msg string, _ ...interface{}) { l.log(msg) }

func TestScheduler_Add(t *testing.T) {
	s := New(&recordingLogger{})
	noop := func(context.Context) (int, error) { return 0, nil }

	assert.NoError(t, s.Add("purge", "@hourly", noop))
	assert.NoError(t, s.Add("nightly", "0 3 * * *", noop))
	assert.Error(t, s.Add("broken", "every now and then", noop))
	assert.Equal(t, 2, s.Len())
}

func TestScheduler_Run(t *testing.T) {
	tests := []struct {
		name    string
		fn      JobFunc
		wantLog []string
	}{
		{
			name:    "nothing to do",
			fn:      func(context.Context) (int, error) { return 0, nil },
			wantLog: nil,
		},
		{
			name:    "rows affected",
			fn:      func(context.Context) (int, error) { return 3, nil },
			wantLog: []string{"job done: purge"},
		},
		{
			name:    "error",
			fn:      func(context.Context) (int, error) { return 0, errors.New("db down") },
			wantLog: []string{"job failed: purge"},
		},
		{
			name:    "panic",
			fn:      func(context.Context) (int, error) { panic("boom") },
			wantLog: []string{"job panicked: purge"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger := &recordingLogger{}
			s := New(logger)
			s.run("purge", tc.fn)
			assert.Equal(t, tc.wantLog, logger.msgs)
		})
	}
}
