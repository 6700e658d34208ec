package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/monitoria/apps/api/echo"
	"github.com/trezcool/monitoria/core"
	"github.com/trezcool/monitoria/core/chat"
	"github.com/trezcool/monitoria/core/discipline"
	"github.com/trezcool/monitoria/core/forum"
	"github.com/trezcool/monitoria/core/mentorship"
	"github.com/trezcool/monitoria/core/user"
	emailsvc "github.com/trezcool/monitoria/services/email"
	dummydb "github.com/trezcool/monitoria/storage/database/dummy"
)

var (
	usrRepo  user.Repository
	mentRepo *dummydb.MentorshipRepository

	usrSvc   user.Service
	mentSvc  mentorship.Service
	discSvc  discipline.Service
	forumSvc forum.Service
	chatSvc  chat.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) Server {
	core.Conf.Debug = false
	core.Conf.TestMode = true

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	mentRepo = dummydb.NewMentorshipRepository(db)
	discRepo := dummydb.NewDisciplineRepository(db)
	forumRepo := dummydb.NewForumRepository(db)
	chatRepo := dummydb.NewChatRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc = user.NewServiceMock(usrRepo, mailSvc)
	discSvc = discipline.NewService(discRepo)
	mentSvc = mentorship.NewService(mentRepo, usrSvc, discSvc, testLogger{})
	forumSvc = forum.NewService(forumRepo)
	chatSvc = chat.NewService(chatRepo, usrSvc)

	// set up server
	return NewServer(
		&Options{
			DisableReqLogs: true,
			UserSvc:        usrSvc,
			MentorshipSvc:  mentSvc,
			DisciplineSvc:  discSvc,
			ForumSvc:       forumSvc,
			ChatSvc:        chatSvc,
			Logger:         testLogger{},
			Shutdown:       func() {},
		},
	)
}

func createUser(
	t *testing.T,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser(): %v", err)
		}
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	return usr
}

func createDiscipline(t *testing.T, code, name string) discipline.Discipline {
	disc, err := discSvc.Create(context.Background(), discipline.NewDiscipline{Code: code, Name: name})
	if err != nil {
		t.Fatalf("createDiscipline(): %v", err)
	}
	return disc
}

func createSession(
	t *testing.T,
	monitorID string,
	discID int,
	topic string,
	at time.Time,
	status string,
	studentIDs ...string,
) mentorship.SessionGroup {
	group, err := mentSvc.Create(context.Background(), mentorship.NewSession{
		DisciplineID: discID,
		MonitorID:    monitorID,
		StudentIDs:   studentIDs,
		Topic:        topic,
		ScheduledAt:  at,
		Status:       status,
	})
	if err != nil {
		t.Fatalf("createSession(): %v", err)
	}
	return group
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
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
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
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
