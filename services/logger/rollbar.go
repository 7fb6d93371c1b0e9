package logsvc

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

// RollbarLogger prints one key=value line per entry and reports it to Rollbar when enabled.
//
// Arguments after the message may be errors, map[string]interface{} extras
// and a crud.Caller, which becomes the Rollbar person of the report.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

type entry struct {
	msg    string
	errs   []error
	extras map[string]interface{}
	caller *crud.Caller
}

func parse(msg string, args []interface{}) entry {
	e := entry{msg: msg, extras: make(map[string]interface{})}
	for i, arg := range args {
		switch v := arg.(type) {
		case crud.Caller:
			if e.caller == nil && v.IsAuthenticated() {
				c := v
				e.caller = &c
			}
		case error:
			e.errs = append(e.errs, v)
		case map[string]interface{}:
			for k, x := range v {
				e.extras[k] = x
			}
		default:
			e.extras["arg"+strconv.Itoa(i)] = v
		}
	}
	if e.caller != nil {
		e.extras["role"] = string(e.caller.Role)
	}
	return e
}

// rollbarArgs sets the Rollbar person and returns what the rollbar functions expect.
func (e entry) rollbarArgs() []interface{} {
	if e.caller != nil {
		rollbar.SetPerson(e.caller.ID, e.caller.Name(), e.caller.Email)
	} else {
		rollbar.ClearPerson()
	}
	out := []interface{}{e.msg}
	if len(e.errs) > 0 {
		out = append(out, e.errs[0])
	}
	if len(e.extras) > 0 {
		out = append(out, e.extras)
	}
	return out
}

func (e entry) line(level string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "level=%s msg=%q", level, e.msg)
	for _, err := range e.errs {
		fmt.Fprintf(&b, " err=%q", err.Error())
	}
	if e.caller != nil {
		fmt.Fprintf(&b, " caller=%s", e.caller.ID)
	}
	keys := make([]string, 0, len(e.extras))
	for k := range e.extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.extras[k])
	}
	return b.String()
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	e := parse(msg, args)
	rollbar.Debug(e.rollbarArgs()...)
	l.std.Println(e.line("debug"))
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	e := parse(msg, args)
	rollbar.Info(e.rollbarArgs()...)
	l.std.Println(e.line("info"))
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	e := parse(msg, args)
	rollbar.Warning(e.rollbarArgs()...)
	l.std.Println(e.line("warn"))
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	e := parse(msg, args)
	rollbar.Error(e.rollbarArgs()...)
	l.std.Println(e.line("error"))
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	e := parse(msg, args)
	rollbar.Critical(e.rollbarArgs()...)
	rollbar.Wait()
	l.std.Fatal(e.line("fatal"))
}
