package logsvc

import (
	"fmt"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/user"
)

// Logger writes structured entries with zap and forwards them to Rollbar when a token is set.
type Logger struct {
	zap     *zap.Logger
	rollbar bool
}

var _ core.Logger = (*Logger)(nil)

func NewLogger(conf *core.Config) (*Logger, error) {
	var (
		zl  *zap.Logger
		err error
	)
	switch {
	case conf.TestMode:
		zl = zap.NewNop()
	case conf.Debug:
		zl, err = zap.NewDevelopment()
	default:
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zl = zl.With(zap.String("app", conf.AppName), zap.String("env", conf.Env), zap.String("build", conf.Build))

	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)

	l := &Logger{zap: zl}
	l.Enable(conf.RollbarToken != "" && !conf.TestMode)
	return l, nil
}

// NewNopLogger discards every entry.
func NewNopLogger() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// Enable toggles Rollbar reporting. zap output is unaffected.
func (l *Logger) Enable(enabled bool) {
	l.rollbar = enabled
	rollbar.SetEnabled(enabled)
}

// Zap exposes the underlying logger, eg. for request logging.
func (l *Logger) Zap() *zap.Logger { return l.zap }

func (l *Logger) Sync() error { return l.zap.Sync() }

// expected fmt: msg | error, map[string]interface{}, user.User
func (l *Logger) prepare(msg string, args []interface{}) ([]interface{}, []zap.Field) {
	var usrSet bool
	rbArgs := make([]interface{}, 0, len(args)+1)
	rbArgs = append(rbArgs, msg)
	fields := make([]zap.Field, 0, len(args))

	for _, arg := range args {
		switch v := arg.(type) {
		case user.User:
			if usrSet { // only set one User
				continue
			}
			if l.rollbar {
				rollbar.SetPerson(v.ID, v.Name, v.Email)
			}
			fields = append(fields, zap.String("user_id", v.ID), zap.String("user_email", v.Email))
			usrSet = true
		case error:
			fields = append(fields, zap.Error(v))
			rbArgs = append(rbArgs, v)
		case map[string]interface{}:
			for k, val := range v {
				fields = append(fields, zap.Any(k, val))
			}
			rbArgs = append(rbArgs, v)
		default:
			fields = append(fields, zap.String("extra", fmt.Sprintf("%+v", v)))
		}
	}
	if !usrSet && l.rollbar {
		rollbar.ClearPerson()
	}
	return rbArgs, fields
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	if l.rollbar {
		rollbar.Debug(rbArgs...)
	}
	l.zap.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	if l.rollbar {
		rollbar.Info(rbArgs...)
	}
	l.zap.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	if l.rollbar {
		rollbar.Warning(rbArgs...)
	}
	l.zap.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	if l.rollbar {
		rollbar.Error(rbArgs...)
	}
	l.zap.Error(msg, fields...)
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	if l.rollbar {
		rollbar.Critical(rbArgs...)
		rollbar.Wait()
	}
	l.zap.Fatal(msg, fields...)
}
