package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/monitoria/core/forum"
	"github.com/trezcool/monitoria/core/user"
)

func Test_forumApi_threadCreate(t *testing.T) {
	app := setup(t)

	student := createUser(t, "Stuart Kal", "stuart", "stu@test.cd", "", user.StudentRoles, true)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Missing fields", token: getToken(t, student), body: marchallObj(t, forum.NewThread{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"title": "this field is required",
				"body":  "this field is required",
			}),
		},
		{
			name: "Thread created", token: getToken(t, student),
			body:     marchallObj(t, forum.NewThread{Title: "Dúvida sobre derivadas", Body: "Como resolver o exercício 3?"}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/forum/threads"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess timestamps.. check fields
			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var th forum.Thread
				if err := json.Unmarshal(rec.Body.Bytes(), &th); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if th.ID != 1 || th.AuthorID != student.ID || th.AuthorName != student.Name ||
					th.Title != "Dúvida sobre derivadas" || th.Body != "Como resolver o exercício 3?" {
					t.Errorf("failed! data = %v", rec.Body.String())
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_forumApi_threadQuery(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	student := createUser(t, "Stuart Kal", "stuart", "stu@test.cd", "", user.StudentRoles, true)
	monitor := createUser(t, "Mona Lombe", "monika", "mona@test.cd", "", user.MonitorRoles, true)

	th1, err := forumSvc.CreateThread(ctx, student, forum.NewThread{Title: "Dúvida sobre derivadas", Body: "Como resolver o exercício 3?"})
	if err != nil {
		t.Fatalf("CreateThread(): %v", err)
	}
	th2, err := forumSvc.CreateThread(ctx, monitor, forum.NewThread{Title: "Horários de monitoria", Body: "Segue a grade desta semana."})
	if err != nil {
		t.Fatalf("CreateThread(): %v", err)
	}
	rep, err := forumSvc.Reply(ctx, th1.ID, monitor, forum.NewReply{Body: "Use a regra da cadeia."})
	if err != nil {
		t.Fatalf("Reply(): %v", err)
	}

	th1WithReplies := th1
	th1WithReplies.Replies = []forum.Reply{rep}

	token := getToken(t, student)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/forum/threads", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Get all", path: "/v1/forum/threads", token: token, wantData: marchallList(t, th2, th1)},
		{name: "Retrieve with replies", path: "/v1/forum/threads/1", token: token, wantData: marchallObj(t, th1WithReplies)},
		{
			name: "Not found", path: "/v1/forum/threads/99", token: token, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "thread not found"}),
		},
		{
			name: "Not found (bad id)", path: "/v1/forum/threads/lol", token: token, wantCode: http.StatusNotFound,
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

func Test_forumApi_threadReply(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	student := createUser(t, "Stuart Kal", "stuart", "stu@test.cd", "", user.StudentRoles, true)
	monitor := createUser(t, "Mona Lombe", "monika", "mona@test.cd", "", user.MonitorRoles, true)

	if _, err := forumSvc.CreateThread(ctx, student, forum.NewThread{Title: "Dúvida sobre derivadas", Body: "Como resolver o exercício 3?"}); err != nil {
		t.Fatalf("CreateThread(): %v", err)
	}

	body := marchallObj(t, forum.NewReply{Body: "Use a regra da cadeia."})

	tests := []httpTest{
		{name: "Auth required", path: "/v1/forum/threads/1/replies", body: body, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Missing fields", path: "/v1/forum/threads/1/replies", token: getToken(t, monitor),
			body: marchallObj(t, forum.NewReply{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"body": "this field is required"}),
		},
		{
			name: "Unknown thread", path: "/v1/forum/threads/99/replies", token: getToken(t, monitor), body: body,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "thread not found"}),
		},
		{name: "Reply created", path: "/v1/forum/threads/1/replies", token: getToken(t, monitor), body: body, wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var rep forum.Reply
				if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if rep.ID != 1 || rep.ThreadID != 1 || rep.AuthorID != monitor.ID || rep.Body != "Use a regra da cadeia." {
					t.Errorf("failed! data = %v", rec.Body.String())
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
