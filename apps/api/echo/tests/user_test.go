package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/trezcool/monitoria/apps/api/echo"
	"github.com/trezcool/monitoria/core"
	"github.com/trezcool/monitoria/core/user"
	emailsvc "github.com/trezcool/monitoria/services/email"
)

func Test_userApi_userLogin(t *testing.T) {
	app := setup(t)

	student := createUser(t, "Hero Mbuyi", "heroyke", "hero@test.cd", "LePassword007", user.StudentRoles, true)
	naughty := createUser(t, "N Dog", "ndog77", "ndog@test.cd", "LePassword007", user.StudentRoles, false)

	body := func(uname, pwd string) []byte {
		return marchallObj(t, echoapi.LoginRequest{Username: uname, Password: pwd})
	}

	tests := []httpTest{
		{
			name: "Missing fields", body: marchallObj(t, echoapi.LoginRequest{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username": "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name: "Unknown user", body: body("ghost", "LePassword007"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "Wrong password", body: body(student.Username, "oops"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "Inactive account", body: body(naughty.Username, "LePassword007"), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "Login with username", body: body(student.Username, "LePassword007"), wantCode: http.StatusOK},
		{name: "Login with email", body: body(student.Email, "LePassword007"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess the token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userQuery(t *testing.T) {
	app := setup(t)

	path := func(search, ordering string, isActive *bool, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		if isActive != nil {
			v.Add("is_active", strconv.FormatBool(*isActive))
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}
	bPtr := func(b bool) *bool { return &b }

	now := time.Now()
	t1 := now.Add(1 * time.Hour)
	t2 := now.Add(2 * time.Hour)
	t3 := now.Add(3 * time.Hour)
	t4 := now.Add(4 * time.Hour)

	usr1 := createUser(t, "Awe Lombe", "awesome", "awe@test.cd", "", nil, true, t1)
	monitor := createUser(t, "Mona Lombe", "monika", "mona@test.cd", "", user.MonitorRoles, true, t2)
	admin := createUser(t, "Admin", "admino", "admin@test.cd", "", []string{user.RoleAdmin}, true, t3)
	naughty := createUser(t, "N Dog", "ndog77", "ndog@test.cd", "", user.StudentRoles, false, t4)

	adminToken := getToken(t, admin)
	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, monitor), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Get all", path: "/v1/users", token: adminToken, wantData: marchallList(t, naughty, admin, monitor, usr1)},
		// filtering
		{name: "search (unknown)", path: path("lol", "", nil), token: adminToken, wantData: empty},
		{name: "search=moni", path: path("moni", "", nil), token: adminToken, wantData: marchallList(t, monitor)},
		{name: "role (unknown)", path: path("", "", nil, "lol"), token: adminToken, wantData: empty},
		{name: "role=student:", path: path("", "", nil, user.RoleStudent), token: adminToken, wantData: marchallList(t, naughty)},
		{
			name: "role=monitor:,admin:", path: path("", "", nil, user.RoleMonitor, user.RoleAdmin),
			token: adminToken, wantData: marchallList(t, admin, monitor),
		},
		{name: "is_active=false", path: path("", "", bPtr(false)), token: adminToken, wantData: marchallList(t, naughty)},
		{
			name: "is_active=true", path: path("", "", bPtr(true)),
			token: adminToken, wantData: marchallList(t, admin, monitor, usr1),
		},
		// ordering
		{
			name: "order by created_at", path: path("", "created_at", nil), token: adminToken,
			wantData: marchallList(t, usr1, monitor, admin, naughty),
		},
		{
			name: "order by -created_at", path: path("", "-created_at", nil), token: adminToken,
			wantData: marchallList(t, naughty, admin, monitor, usr1),
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

func Test_userApi_userRefreshToken(t *testing.T) {
	app := setup(t)

	naughty := createUser(t, "N Dog", "ndog77", "ndog@test.cd", "", user.StudentRoles, false)
	student := createUser(t, "Hero Mbuyi", "heroyke", "hero@test.cd", "", user.StudentRoles, true)

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   student.ID,
			Audience:  "Monitoria",
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * core.Conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		IsStudent:    student.IsStudent(),
		IsMonitor:    student.IsMonitor(),
		IsAdmin:      student.IsAdmin(),
		Roles:        student.Roles,
	}
	unrefreshableToken, err := echoapi.GenerateToken(unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Inactive user not allowed", token: getToken(t, naughty), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "Token refreshed", token: getToken(t, student), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess new token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userResetPassword(t *testing.T) {
	app := setup(t)

	student := createUser(t, "Hero Mbuyi", "heroyke", "hero@test.cd", "LePassword007", user.StudentRoles, true)

	success := marchallObj(t, echoapi.SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})

	tests := []httpTest{
		{
			name: "Missing fields", body: marchallObj(t, echoapi.PasswordResetRequest{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required"}),
		},
		{
			name: "Unknown email is not leaked", body: marchallObj(t, echoapi.PasswordResetRequest{Email: "ghost@test.cd"}),
			wantCode: http.StatusOK, wantData: success, extra: 0, // no mail sent
		},
		{
			name: "Reset requested", body: marchallObj(t, echoapi.PasswordResetRequest{Email: student.Email}),
			wantCode: http.StatusOK, wantData: success, extra: 1,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/password-reset"

		t.Run(tt.name, func(t *testing.T) {
			sent := len(emailsvc.SentMessages)

			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if wantSent, ok := tt.extra.(int); ok {
				if got := len(emailsvc.SentMessages) - sent; got != wantSent {
					t.Errorf("failed! sent %v mails; want %v", got, wantSent)
				}
			}
		})
	}
}

func Test_userApi_userConfirmPasswordReset(t *testing.T) {
	app := setup(t)

	student := createUser(t, "Hero Mbuyi", "heroyke", "hero@test.cd", "LePassword007", user.StudentRoles, true)

	token, err := user.MakeToken(student)
	if err != nil {
		t.Fatalf("MakeToken(): %v", err)
	}
	uid := user.EncodeUID(student)

	body := func(uid, token, pwd string) []byte {
		return marchallObj(t, user.ResetUserPassword{UID: uid, Token: token, Password: pwd, PasswordConfirm: pwd})
	}

	tests := []httpTest{
		{
			name: "Missing fields", body: marchallObj(t, user.ResetUserPassword{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"token":    "this field is required",
				"uid":      "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name: "Invalid uid", body: body("lol", token, "NewPassword007"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid uid"}),
		},
		{
			name: "Invalid token", body: body(uid, "lol", "NewPassword007"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid token"}),
		},
		{
			name: "Password reset", body: body(uid, token, "NewPassword007"), wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Password has been reset with the new password."}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/password-reset-confirm"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				refreshed, err := usrRepo.GetUserByID(context.Background(), student.ID)
				if err != nil {
					t.Fatalf("GetUserByID(): %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, student.PasswordHash) {
					t.Fatal("failed to update new password")
				}
			}
		})
	}
}
