package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/monitoria/core/mentorship"
	"github.com/trezcool/monitoria/core/user"
)

func Test_sessionApi_sessionCreate(t *testing.T) {
	app := setup(t)

	disc := createDiscipline(t, "mat101", "Matemática I")
	monitor := createUser(t, "Mona Lombe", "monika", "mona@test.cd", "", user.MonitorRoles, true)
	monitor2 := createUser(t, "Moses Tshims", "moses1", "moses@test.cd", "", user.MonitorRoles, true)
	admin := createUser(t, "Admin", "admino", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	student := createUser(t, "Stuart Kal", "stuart", "stu@test.cd", "", user.StudentRoles, true)
	student2 := createUser(t, "Sara Mbuyi", "sarita", "sara@test.cd", "", user.StudentRoles, true)

	at := time.Date(2026, 9, 2, 14, 30, 0, 0, time.UTC)
	body := func(monitorID string, discID int, topic string, studentIDs ...string) []byte {
		return marchallObj(t, mentorship.NewSession{
			DisciplineID: discID,
			MonitorID:    monitorID,
			StudentIDs:   studentIDs,
			Topic:        topic,
			ScheduledAt:  at,
		})
	}

	wantGroup := mentorship.SessionGroup{
		RepresentativeID: 1,
		MemberIDs:        []int{1, 2},
		Students: []mentorship.Student{
			{ID: student.ID, Name: student.Name},
			{ID: student2.ID, Name: student2.Name},
		},
		DisciplineID:   disc.ID,
		DisciplineName: disc.Name,
		MonitorID:      monitor.ID,
		MonitorName:    monitor.Name,
		Topic:          "Derivadas",
		ScheduledAt:    null.TimeFrom(at),
		Status:         mentorship.StatusConfirmed,
	}
	wantGroup2 := mentorship.SessionGroup{
		RepresentativeID: 3,
		MemberIDs:        []int{3},
		Students:         []mentorship.Student{{ID: student2.ID, Name: student2.Name}},
		DisciplineID:     disc.ID,
		DisciplineName:   disc.Name,
		MonitorID:        monitor2.ID,
		MonitorName:      monitor2.Name,
		Topic:            "Limites",
		ScheduledAt:      null.TimeFrom(at),
		Status:           mentorship.StatusConfirmed,
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Monitor or admin required", token: getToken(t, student),
			body: body(monitor.ID, disc.ID, "Derivadas", student.ID), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Monitor cannot schedule for another monitor", token: getToken(t, monitor),
			body: body(monitor2.ID, disc.ID, "Derivadas", student.ID), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Missing fields", token: getToken(t, admin),
			body: marchallObj(t, mentorship.NewSession{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"discipline_id": "this field is required",
				"monitor_id":    "this field is required",
				"student_ids":   "this field is required",
				"topic":         "this field is required",
				"scheduled_at":  "this field is required",
			}),
		},
		{
			name: "Unknown discipline", token: getToken(t, monitor),
			body: body(monitor.ID, 99, "Derivadas", student.ID), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"discipline_id": "unknown discipline"}),
		},
		{
			name: "Unknown student", token: getToken(t, monitor),
			body: body(monitor.ID, disc.ID, "Derivadas", "ghost"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_ids": "unknown student: ghost"}),
		},
		{
			name: "Monitor must hold the monitor role", token: getToken(t, admin),
			body: body(student.ID, disc.ID, "Derivadas", student2.ID), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"monitor_id": "user is not a monitor"}),
		},
		{
			name: "Monitor schedules own session", token: getToken(t, monitor),
			body: body(monitor.ID, disc.ID, "Derivadas", student.ID, student2.ID), wantCode: http.StatusCreated,
			wantData: marchallObj(t, wantGroup),
		},
		{
			name: "Admin schedules for any monitor", token: getToken(t, admin),
			body: body(monitor2.ID, disc.ID, "Limites", student2.ID), wantCode: http.StatusCreated,
			wantData: marchallObj(t, wantGroup2),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/sessions"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_sessionApi_sessionQuery(t *testing.T) {
	app := setup(t)

	disc := createDiscipline(t, "mat101", "Matemática I")
	disc2 := createDiscipline(t, "fis101", "Física I")
	monitor := createUser(t, "Mona Lombe", "monika", "mona@test.cd", "", user.MonitorRoles, true)
	monitor2 := createUser(t, "Moses Tshims", "moses1", "moses@test.cd", "", user.MonitorRoles, true)
	student := createUser(t, "Stuart Kal", "stuart", "stu@test.cd", "", user.StudentRoles, true)
	student2 := createUser(t, "Sara Mbuyi", "sarita", "sara@test.cd", "", user.StudentRoles, true)
	if student2.ID < student.ID { // deterministic member order
		student, student2 = student2, student
	}

	t1 := time.Date(2026, 9, 2, 14, 30, 0, 0, time.UTC)
	t2 := time.Date(2026, 9, 3, 10, 0, 0, 0, time.UTC)
	g1 := createSession(t, monitor.ID, disc.ID, "Derivadas", t1, "", student.ID, student2.ID)
	g2 := createSession(t, monitor2.ID, disc2.ID, "Vetores", t2, mentorship.StatusPending, student.ID)

	token := getToken(t, student)
	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/sessions", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Get all", path: "/v1/sessions", token: token, wantData: marchallList(t, g2, g1)},
		{name: "Filter by monitor", path: "/v1/sessions?monitor_id=" + monitor2.ID, token: token, wantData: marchallList(t, g2)},
		{name: "Filter by unknown monitor", path: "/v1/sessions?monitor_id=ghost", token: token, wantData: empty},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_sessionApi_sessionRetrieve(t *testing.T) {
	app := setup(t)

	disc := createDiscipline(t, "mat101", "Matemática I")
	monitor := createUser(t, "Mona Lombe", "monika", "mona@test.cd", "", user.MonitorRoles, true)
	student := createUser(t, "Stuart Kal", "stuart", "stu@test.cd", "", user.StudentRoles, true)
	student2 := createUser(t, "Sara Mbuyi", "sarita", "sara@test.cd", "", user.StudentRoles, true)
	if student2.ID < student.ID { // deterministic member order
		student, student2 = student2, student
	}

	at := time.Date(2026, 9, 2, 14, 30, 0, 0, time.UTC)
	g := createSession(t, monitor.ID, disc.ID, "Derivadas", at, "", student.ID, student2.ID)

	token := getToken(t, student)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/sessions/1", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Get via representative", path: "/v1/sessions/1", token: token, wantData: marchallObj(t, g)},
		{name: "Any member id resolves the session", path: "/v1/sessions/2", token: token, wantData: marchallObj(t, g)},
		{
			name: "Not found", path: "/v1/sessions/99", token: token, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "session not found"}),
		},
		{
			name: "Not found (bad id)", path: "/v1/sessions/lol", token: token, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_sessionApi_sessionUpdate(t *testing.T) {
	app := setup(t)

	disc := createDiscipline(t, "mat101", "Matemática I")
	monitor := createUser(t, "Mona Lombe", "monika", "mona@test.cd", "", user.MonitorRoles, true)
	monitor2 := createUser(t, "Moses Tshims", "moses1", "moses@test.cd", "", user.MonitorRoles, true)
	admin := createUser(t, "Admin", "admino", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	s1 := createUser(t, "Stuart Kal", "stuart", "stu@test.cd", "", user.StudentRoles, true)
	s2 := createUser(t, "Sara Mbuyi", "sarita", "sara@test.cd", "", user.StudentRoles, true)
	s3 := createUser(t, "Tony Ilunga", "tonito", "tony@test.cd", "", user.StudentRoles, true)
	// deterministic member order
	if s2.ID < s1.ID {
		s1, s2 = s2, s1
	}
	if s3.ID < s2.ID {
		s2, s3 = s3, s2
	}
	if s2.ID < s1.ID {
		s1, s2 = s2, s1
	}

	at := time.Date(2026, 9, 2, 14, 30, 0, 0, time.UTC)
	at2 := time.Date(2026, 9, 4, 16, 0, 0, 0, time.UTC)
	createSession(t, monitor.ID, disc.ID, "Limites", at, "", s1.ID, s2.ID)

	// s1 dropped, s2 keeps its row, s3 added
	upd := marchallObj(t, mentorship.UpdateSession{
		StudentIDs:  []string{s2.ID, s3.ID},
		Topic:       "Limites laterais",
		ScheduledAt: at2,
		Status:      mentorship.StatusDone,
	})
	wantGroup := mentorship.SessionGroup{
		RepresentativeID: 2,
		MemberIDs:        []int{2, 3},
		Students: []mentorship.Student{
			{ID: s2.ID, Name: s2.Name},
			{ID: s3.ID, Name: s3.Name},
		},
		DisciplineID:   disc.ID,
		DisciplineName: disc.Name,
		MonitorID:      monitor.ID,
		MonitorName:    monitor.Name,
		Topic:          "Limites laterais",
		ScheduledAt:    null.TimeFrom(at2),
		Status:         mentorship.StatusDone,
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/sessions/1", body: upd, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Monitor or admin required", path: "/v1/sessions/1", token: getToken(t, s1), body: upd,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Monitor cannot edit another monitor's session", path: "/v1/sessions/1", token: getToken(t, monitor2), body: upd,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Not found", path: "/v1/sessions/99", token: getToken(t, admin), body: upd,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "session not found"}),
		},
		{
			name: "Missing fields", path: "/v1/sessions/1", token: getToken(t, monitor),
			body: marchallObj(t, mentorship.UpdateSession{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"student_ids":  "this field is required",
				"topic":        "this field is required",
				"scheduled_at": "this field is required",
				"status":       "this field is required",
			}),
		},
		{
			name: "Session updated", path: "/v1/sessions/1", token: getToken(t, monitor), body: upd,
			wantCode: http.StatusOK, wantData: marchallObj(t, wantGroup),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the removed student's record is gone; the old representative id is stale
	if _, err := mentSvc.Get(context.Background(), 1); errors.Cause(err) != mentorship.ErrNotFound {
		t.Errorf("Get(1) error = %v; want ErrNotFound", err)
	}
}

func Test_sessionApi_sessionDestroy(t *testing.T) {
	app := setup(t)

	disc := createDiscipline(t, "mat101", "Matemática I")
	monitor := createUser(t, "Mona Lombe", "monika", "mona@test.cd", "", user.MonitorRoles, true)
	monitor2 := createUser(t, "Moses Tshims", "moses1", "moses@test.cd", "", user.MonitorRoles, true)
	admin := createUser(t, "Admin", "admino", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	student := createUser(t, "Stuart Kal", "stuart", "stu@test.cd", "", user.StudentRoles, true)

	at := time.Date(2026, 9, 2, 14, 30, 0, 0, time.UTC)
	createSession(t, monitor.ID, disc.ID, "Derivadas", at, "", student.ID)
	createSession(t, monitor2.ID, disc.ID, "Vetores", at, "", student.ID)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/sessions/1", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Monitor or admin required", path: "/v1/sessions/1", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Monitor cannot delete another monitor's session", path: "/v1/sessions/2", token: getToken(t, monitor),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Not found", path: "/v1/sessions/99", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "session not found"}),
		},
		{
			name: "Not found (bad id)", path: "/v1/sessions/lol", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "Monitor deletes own session", path: "/v1/sessions/1", token: getToken(t, monitor), wantCode: http.StatusNoContent},
		{name: "Admin deletes any session", path: "/v1/sessions/2", token: getToken(t, admin), wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		tt.method = http.MethodDelete

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusNoContent {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				if rec.Body.Len() != 0 {
					t.Errorf("failed! data = %v; want empty body", rec.Body.String())
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	// both sessions are gone
	for _, id := range []int{1, 2} {
		if _, err := mentSvc.Get(context.Background(), id); errors.Cause(err) != mentorship.ErrNotFound {
			t.Errorf("Get(%d) error = %v; want ErrNotFound", id, err)
		}
	}
}

func Test_sessionApi_sessionStats(t *testing.T) {
	app := setup(t)

	disc := createDiscipline(t, "mat101", "Matemática I")
	disc2 := createDiscipline(t, "fis101", "Física I")
	monitor := createUser(t, "Mona Lombe", "monika", "mona@test.cd", "", user.MonitorRoles, true)
	student := createUser(t, "Stuart Kal", "stuart", "stu@test.cd", "", user.StudentRoles, true)
	student2 := createUser(t, "Sara Mbuyi", "sarita", "sara@test.cd", "", user.StudentRoles, true)

	t1 := time.Date(2026, 9, 2, 14, 30, 0, 0, time.UTC)
	t2 := time.Date(2026, 9, 3, 10, 0, 0, 0, time.UTC)
	createSession(t, monitor.ID, disc.ID, "Derivadas", t1, "", student.ID, student2.ID)
	createSession(t, monitor.ID, disc2.ID, "Vetores", t2, mentorship.StatusPending, student.ID)

	want := mentorship.Stats{
		Total:    3,
		ByStatus: map[string]int{mentorship.StatusConfirmed: 2, mentorship.StatusPending: 1},
		ByDiscipline: []mentorship.DisciplineCount{
			{DisciplineID: disc.ID, DisciplineName: disc.Name, Count: 2},
			{DisciplineID: disc2.ID, DisciplineName: disc2.Name, Count: 1},
		},
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Stats for any authenticated user", token: getToken(t, student), wantCode: http.StatusOK, wantData: marchallObj(t, want)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/sessions/stats"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
