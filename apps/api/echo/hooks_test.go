package echoapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trezcool/darasa/core/teardown"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_hookApi_accountDeleted(t *testing.T) {
	app := setup(t)

	victim := testutil.CreateUser(t, usrRepo, "Victim", "victim", "victim@test.cd", "", []string{user.RoleStudent}, true)

	victimResult := teardown.Result{
		RootKind: teardown.RootUser, RootID: victim.ID, Status: teardown.StatusCompleted,
		CompletedStages: []string{
			teardown.StageChatMessages, teardown.StageComments, teardown.StagePrivateComments,
			teardown.StageOwnedStreams, teardown.StageEnrollments, teardown.StageOwnedClassrooms,
			teardown.StageNotes, teardown.StageNotifications, teardown.StageRoleRequest,
			teardown.StageAvatarBlob, teardown.StageRoot,
		},
	}

	type extraTest struct {
		goneID string
	}
	tests := []httpTest{
		{
			name: "Hook token required", body: marchallObj(t, AccountDeletedHook{UserID: victim.ID}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "user not authenticated"}),
		},
		{
			name: "Wrong hook token", token: "nope", body: marchallObj(t, AccountDeletedHook{UserID: victim.ID}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "user not authenticated"}),
		},
		{
			name: "user_id required", token: "hook-s3cr3t", body: marchallObj(t, AccountDeletedHook{}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"user_id": "this field is required"}),
		},
		{
			name: "Full teardown", token: "hook-s3cr3t", body: marchallObj(t, AccountDeletedHook{UserID: victim.ID}),
			wantCode: http.StatusOK, wantData: marchallObj(t, victimResult),
			extra: extraTest{goneID: victim.ID},
		},
		{
			// upstream retries must stay safe
			name: "Retry is idempotent", token: "hook-s3cr3t", body: marchallObj(t, AccountDeletedHook{UserID: victim.ID}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/hooks/account-deleted"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newHookRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if extra, ok := tt.extra.(extraTest); ok {
				if _, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: extra.goneID}); err != user.ErrNotFound {
					t.Errorf("GetUser() after teardown error = %v, want %v", err, user.ErrNotFound)
				}
			}
		})
	}
}

func newHookRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	req, rec := newRequest(method, path, data...)
	if token != "" {
		req.Header.Set("X-Hook-Token", token)
	}
	return req, rec
}
