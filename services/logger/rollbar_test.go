package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
)

func TestParse(t *testing.T) {
	caller := crud.Caller{ID: "u-1", Role: perm.RoleTeacher, FirstName: "Ada", Email: "ada@school.test"}

	e := parse("boom", []interface{}{errors.New("cause"), caller, map[string]interface{}{"entity": "grades"}, 42})
	assert.Equal(t, "boom", e.msg)
	assert.Len(t, e.errs, 1)
	assert.Equal(t, "u-1", e.caller.ID)
	assert.Equal(t, map[string]interface{}{"entity": "grades", "role": "teacher", "arg3": 42}, e.extras)

	args := e.rollbarArgs()
	assert.Len(t, args, 3, "message, error and extras; the caller is sent as the person")

	anon := parse("boom", []interface{}{crud.Caller{}})
	assert.Nil(t, anon.caller)
	assert.Len(t, anon.rollbarArgs(), 1)
}

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "API : ", 0), core.NewTestConfig())
	logger.Enable(false)

	caller := crud.Caller{ID: "u-1", Role: perm.RoleTeacher, FirstName: "Ada", Email: "ada@school.test"}
	logger.Error("saving grade", errors.New("db down"), caller, map[string]interface{}{"entity": "grades"})

	assert.Equal(t,
		`API : level=error msg="saving grade" err="db down" caller=u-1 entity=grades role=teacher`+"\n",
		buf.String())
}
