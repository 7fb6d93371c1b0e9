// Package testutil builds in-memory applications and fixtures for tests.
package testutil

import (
	"context"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
	"github.com/trezcool/lmsadmin/core/school"
	"github.com/trezcool/lmsadmin/core/user"
	emailsvc "github.com/trezcool/lmsadmin/services/email"
	logsvc "github.com/trezcool/lmsadmin/services/logger"
	inmemdb "github.com/trezcool/lmsadmin/storage/database/inmem"
)

// Env is a complete application over in-memory stores.
type Env struct {
	Conf      *core.Config
	Logger    core.Logger
	Validator *core.Validator
	Mail      *emailsvc.ConsoleService
	DB        *inmemdb.DB
	Stores    school.Stores
	Services  *school.Services
}

func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

// NewEnv builds an Env. wrap, when given, may replace stores before the services are built.
func NewEnv(t *testing.T, wrap ...func(*school.Stores)) *Env {
	t.Helper()
	conf := core.NewTestConfig()
	logger := NewLogger(conf)
	core.ParseEmailTemplates(conf, logger)

	validate := core.NewDefaultValidator()
	user.InitValidators(validate.Engine(), validate.Translator())
	user.LoadCommonPasswords(logger)

	db := inmemdb.NewDB()
	stores := db.Stores()
	for _, w := range wrap {
		w(&stores)
	}
	mail := emailsvc.NewConsoleServiceMock(conf)
	return &Env{
		Conf:      conf,
		Logger:    logger,
		Validator: validate,
		Mail:      mail,
		DB:        db,
		Stores:    stores,
		Services:  school.NewServices(stores, validate, mail, conf, logger),
	}
}

func newCaller(role perm.Role, first string, profileID string) crud.Caller {
	return crud.Caller{
		ID:        uuid.NewString(),
		Role:      role,
		FirstName: first,
		LastName:  "Test",
		Email:     first + "@school.test",
		ProfileID: profileID,
	}
}

func Admin() crud.Caller { return newCaller(perm.RoleAdmin, "admin", "") }

func Teacher(profileID string) crud.Caller { return newCaller(perm.RoleTeacher, "teacher", profileID) }

func Student(profileID string) crud.Caller { return newCaller(perm.RoleStudent, "student", profileID) }

// CreateUser stores a user directly in repo.
func CreateUser(
	t *testing.T,
	repo user.Repository,
	first, last, email, pwd string,
	role perm.Role,
	profileID string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Role:      role,
		ProfileID: profileID,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CountingStore wraps a store and counts the calls that reach it.
type CountingStore[R any] struct {
	crud.Store[R]
	reads  int64
	writes int64
}

func NewCountingStore[R any](store crud.Store[R]) *CountingStore[R] {
	return &CountingStore[R]{Store: store}
}

func (s *CountingStore[R]) Reads() int64  { return atomic.LoadInt64(&s.reads) }
func (s *CountingStore[R]) Writes() int64 { return atomic.LoadInt64(&s.writes) }
func (s *CountingStore[R]) Calls() int64  { return s.Reads() + s.Writes() }

func (s *CountingStore[R]) Exists(ctx context.Context, filters ...crud.Filter) (bool, error) {
	atomic.AddInt64(&s.reads, 1)
	return s.Store.Exists(ctx, filters...)
}

func (s *CountingStore[R]) Query(ctx context.Context, q crud.Query) (crud.Page[R], error) {
	atomic.AddInt64(&s.reads, 1)
	return s.Store.Query(ctx, q)
}

func (s *CountingStore[R]) Get(ctx context.Context, id string) (R, error) {
	atomic.AddInt64(&s.reads, 1)
	return s.Store.Get(ctx, id)
}

func (s *CountingStore[R]) Insert(ctx context.Context, rec R) (R, error) {
	atomic.AddInt64(&s.writes, 1)
	return s.Store.Insert(ctx, rec)
}

func (s *CountingStore[R]) Update(ctx context.Context, rec R) (R, error) {
	atomic.AddInt64(&s.writes, 1)
	return s.Store.Update(ctx, rec)
}

func (s *CountingStore[R]) Delete(ctx context.Context, id string) error {
	atomic.AddInt64(&s.writes, 1)
	return s.Store.Delete(ctx, id)
}

func (s *CountingStore[R]) DeleteWhere(ctx context.Context, filters ...crud.Filter) (int, error) {
	atomic.AddInt64(&s.writes, 1)
	return s.Store.DeleteWhere(ctx, filters...)
}
