package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VAZlabs/ShortTrack/internal/auth"
)

func TestIssueCookieAndValidate(t *testing.T) {
	a := auth.New("secret")
	userID := uuid.NewString()

	rec := httptest.NewRecorder()
	a.IssueCookie(rec, userID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "auth_token", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	got, ok := a.ValidateUserID(req)
	assert.True(t, ok)
	assert.Equal(t, userID, got)
}

func TestValidateUserID_Tampered(t *testing.T) {
	a := auth.New("secret")
	other := auth.New("other-secret")
	userID := uuid.NewString()

	tests := []struct {
		name  string
		value string
	}{
		{"нет подписи", userID},
		{"чужой секрет", other.SignCookieValue(userID)},
		{"подменённый userID", uuid.NewString() + ":" + a.SignCookieValue(userID)[37:]},
		{"пустая кука", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.value != "" {
				req.AddCookie(&http.Cookie{Name: "auth_token", Value: tt.value})
			}
			_, ok := a.ValidateUserID(req)
			assert.False(t, ok)
		})
	}
}

func TestGetOrSetUserID(t *testing.T) {
	a := auth.New("secret")

	// Без куки — выдаётся новая, и она валидна
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	issued := a.GetOrSetUserID(rec, req)
	require.NotEmpty(t, issued)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	// С валидной кукой — возвращается тот же идентификатор без перевыпуска
	rec2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookies[0])
	assert.Equal(t, issued, a.GetOrSetUserID(rec2, req2))
	assert.Empty(t, rec2.Result().Cookies())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, auth.CheckPassword("correct horse battery staple", hash))
	assert.False(t, auth.CheckPassword("wrong password", hash))
	assert.False(t, auth.CheckPassword("", hash))
}
