package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/teardown"
	"github.com/trezcool/darasa/core/user"
	appfs "github.com/trezcool/darasa/fs"
	emailsvc "github.com/trezcool/darasa/services/email"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	testutil "github.com/trezcool/darasa/tests"
)

var (
	db      *dummydb.DB
	usrRepo user.Repository
	blobs   *testutil.BlobRecorder

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func setup(t *testing.T) *Server {
	t.Helper()

	conf := testutil.NewConfig()
	conf.Debug = false // exercise the production error payloads
	conf.AccountHookToken = "hook-s3cr3t"
	core.TemplatesFS = appfs.FS
	core.ParseEmailTemplates(nil)
	emailsvc.SentMessages = emailsvc.SentMessages[:0]

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	db = dummydb.Open()
	usrRepo = dummydb.NewUserRepository(db)
	schoolRepo := dummydb.NewSchoolRepository(db)
	blobs = &testutil.BlobRecorder{}

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(nil, usrRepo, mailSvc, conf)
	schoolSvc := school.NewService(nil, schoolRepo, blobs, testutil.NopLogger{})
	teardownSvc := teardown.NewService(
		usrRepo, schoolRepo, blobs, teardown.NewMemoryLocker(),
		mailSvc, testutil.NopLogger{}, conf,
	)

	return NewServer(ServerDeps{
		Conf:           conf,
		Logger:         testutil.NopLogger{},
		UserSvc:        usrSvc,
		SchoolSvc:      schoolSvc,
		TeardownSvc:    teardownSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
}

type httpErr struct {
	Error string `json:"error"`
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

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	l1, ok1 := j1.([]interface{})
	l2, ok2 := j2.([]interface{})
	if ok1 && ok2 {
		return assert.ElementsMatch(t, l1, l2), nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
