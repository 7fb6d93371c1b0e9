package client

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
)

// Notifier shows the outcome of user actions and asks before destructive ones.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	// Confirm blocks until the user answers.
	Confirm(ctx context.Context, prompt string) bool
}

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelConfirm Level = "confirm"
)

type Note struct {
	Level   Level
	Message string
}

// Recorder keeps every notification and answers confirmations with Answer.
type Recorder struct {
	Answer bool

	mu    sync.Mutex
	notes []Note
}

func (r *Recorder) add(l Level, msg string) {
	r.mu.Lock()
	r.notes = append(r.notes, Note{Level: l, Message: msg})
	r.mu.Unlock()
}

func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Error(msg string)   { r.add(LevelError, msg) }

func (r *Recorder) Confirm(_ context.Context, prompt string) bool {
	r.add(LevelConfirm, prompt)
	return r.Answer
}

func (r *Recorder) Notes() []Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Note, len(r.notes))
	copy(out, r.notes)
	return out
}

// Last returns the latest note of level l.
func (r *Recorder) Last(l Level) (Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.notes) - 1; i >= 0; i-- {
		if r.notes[i].Level == l {
			return r.notes[i], true
		}
	}
	return Note{}, false
}

// LogNotifier writes notifications to a logger and confirms every prompt.
// It backs unattended runs such as the admin CLI.
type LogNotifier struct {
	Logger core.Logger
}

func (n LogNotifier) Success(msg string) { n.Logger.Info(msg) }
func (n LogNotifier) Error(msg string)   { n.Logger.Error(msg) }

func (n LogNotifier) Confirm(_ context.Context, prompt string) bool {
	n.Logger.Info(prompt + " yes")
	return true
}

// message is what the user reads for err.
func message(err error) string {
	var f *Failure
	var te *TransportError
	switch {
	case errors.As(err, &f):
		return f.Message
	case errors.As(err, &te):
		return "could not reach the server, please try again"
	}
	return err.Error()
}
