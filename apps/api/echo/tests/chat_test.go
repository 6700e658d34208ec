package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/monitoria/core/chat"
	"github.com/trezcool/monitoria/core/user"
)

func Test_chatApi_chatSend(t *testing.T) {
	app := setup(t)

	student := createUser(t, "Stuart Kal", "stuart", "stu@test.cd", "", user.StudentRoles, true)
	monitor := createUser(t, "Mona Lombe", "monika", "mona@test.cd", "", user.MonitorRoles, true)

	body := marchallObj(t, chat.NewMessage{Body: "Olá, pode me ajudar com derivadas?"})

	tests := []httpTest{
		{name: "Auth required", path: "/v1/chat/" + monitor.ID, body: body, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Missing fields", path: "/v1/chat/" + monitor.ID, token: getToken(t, student),
			body: marchallObj(t, chat.NewMessage{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"body": "this field is required"}),
		},
		{
			name: "Unknown recipient", path: "/v1/chat/ghost", token: getToken(t, student), body: body,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"recipient_id": "unknown recipient"}),
		},
		{name: "Message sent", path: "/v1/chat/" + monitor.ID, token: getToken(t, student), body: body, wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess timestamps.. check fields
			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var msg chat.Message
				if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if msg.ID != 1 || msg.SenderID != student.ID || msg.RecipientID != monitor.ID ||
					msg.Body != "Olá, pode me ajudar com derivadas?" {
					t.Errorf("failed! data = %v", rec.Body.String())
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_chatApi_chatConversation(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	student := createUser(t, "Stuart Kal", "stuart", "stu@test.cd", "", user.StudentRoles, true)
	monitor := createUser(t, "Mona Lombe", "monika", "mona@test.cd", "", user.MonitorRoles, true)
	other := createUser(t, "Sara Mbuyi", "sarita", "sara@test.cd", "", user.StudentRoles, true)

	m1, err := chatSvc.Send(ctx, student, monitor.ID, chat.NewMessage{Body: "Olá, pode me ajudar com derivadas?"})
	if err != nil {
		t.Fatalf("Send(): %v", err)
	}
	m2, err := chatSvc.Send(ctx, monitor, student.ID, chat.NewMessage{Body: "Claro, amanhã às 14h?"})
	if err != nil {
		t.Fatalf("Send(): %v", err)
	}
	// unrelated conversation, must not leak
	if _, err := chatSvc.Send(ctx, other, monitor.ID, chat.NewMessage{Body: "Oi!"}); err != nil {
		t.Fatalf("Send(): %v", err)
	}

	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/chat/" + monitor.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Both directions, oldest first", path: "/v1/chat/" + monitor.ID, token: getToken(t, student),
			wantData: marchallList(t, m1, m2),
		},
		{
			name: "Same conversation from the other side", path: "/v1/chat/" + student.ID, token: getToken(t, monitor),
			wantData: marchallList(t, m1, m2),
		},
		{name: "No conversation yet", path: "/v1/chat/" + other.ID, token: getToken(t, student), wantData: empty},
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
