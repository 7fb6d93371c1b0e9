package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/lmsadmin/apps/api/echo"
	"github.com/trezcool/lmsadmin/core/perm"
	"github.com/trezcool/lmsadmin/core/school"
	"github.com/trezcool/lmsadmin/core/user"
	"github.com/trezcool/lmsadmin/storage/files"
	"github.com/trezcool/lmsadmin/testutil"
)

type testApp struct {
	env   *testutil.Env
	fx    testutil.Fixtures
	files *files.Local
	srv   *echoapi.Server
}

func setup(t *testing.T, wrap ...func(*school.Stores)) *testApp {
	t.Helper()
	env := testutil.NewEnv(t, wrap...)
	local, err := files.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)
	srv := echoapi.NewServer(echoapi.ServerDeps{
		Conf:      env.Conf,
		Logger:    env.Logger,
		Services:  env.Services,
		Validator: env.Validator,
		Files:     local,
		Uploader:  files.NewUploader(local, env.Conf),
	})
	return &testApp{env: env, fx: env.Seed(t), files: local, srv: srv}
}

func (app *testApp) do(req *http.Request, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	app.srv.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success         bool            `json:"success"`
	Message         string          `json:"message"`
	Data            json.RawMessage `json:"data"`
	Draw            int             `json:"draw"`
	RecordsTotal    int             `json:"recordsTotal"`
	RecordsFiltered int             `json:"recordsFiltered"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return env
}

func (env envelope) into(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v), "data: %s", string(env.Data))
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, app *testApp, usr user.User) string {
	t.Helper()
	claims := echoapi.GetUserClaims(app.env.Conf, usr)
	token, err := echoapi.GenerateToken(app.env.Conf, claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

// roleToken mints a session for a user that is not stored anywhere.
func roleToken(t *testing.T, app *testApp, role perm.Role, profileID string) string {
	t.Helper()
	return getToken(t, app, user.User{
		ID:        uuid.NewString(),
		FirstName: string(role),
		LastName:  "Test",
		Email:     string(role) + "@school.test",
		Role:      role,
		ProfileID: profileID,
		IsActive:  true,
	})
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func fail(msg string) map[string]interface{} {
	return map[string]interface{}{"success": false, "message": msg}
}
