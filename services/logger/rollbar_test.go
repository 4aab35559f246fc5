package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/supinter/ums/core/user"
)

func TestLogger_fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{zap: zap.New(core)}

	usr := user.User{ID: "u1", Email: "awa@supinter.sn", Name: "Awa"}
	l.Error("saving student", errors.New("boom"), map[string]interface{}{"student_id": "s1"}, usr, usr)
	l.Info("started")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "saving student", entries[0].Message)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "boom", ctx["error"])
		assert.Equal(t, "s1", ctx["student_id"])
		assert.Equal(t, "u1", ctx["user_id"])
		assert.Equal(t, "started", entries[1].Message)
	}
}
