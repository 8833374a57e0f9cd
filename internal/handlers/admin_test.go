package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAdminHandler_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	handler := NewAdminHandler(string(hash), true)

	rr := httptest.NewRecorder()
	handler.Login(rr, httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewBufferString(`{"password":"wrong"}`)))
	assertErrorResponse(t, rr, http.StatusUnauthorized, "Invalid password")
	require.Empty(t, rr.Result().Cookies())

	rr = httptest.NewRecorder()
	handler.Login(rr, httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewBufferString(`{"password":"hunter2"}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, AdminCookieName, cookies[0].Name)
	require.Equal(t, AdminCookieValue, cookies[0].Value)
	require.True(t, cookies[0].Secure)
}

func TestAdminHandler_LoginDisabledWithoutHash(t *testing.T) {
	rr := httptest.NewRecorder()
	NewAdminHandler("", false).Login(rr, httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewBufferString(`{"password":""}`)))
	assertErrorResponse(t, rr, http.StatusServiceUnavailable, "Admin login is not configured")
}

func TestAdminHandler_Logout(t *testing.T) {
	rr := httptest.NewRecorder()
	NewAdminHandler("x", false).Logout(rr, httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil))
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, AdminCookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.Equal(t, -1, cookies[0].MaxAge)
}
