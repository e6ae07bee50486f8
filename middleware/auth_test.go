package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"olympiad-registration-backend/models"
	"olympiad-registration-backend/utils"
)

const testAuthSecret = "test-secret"

var testVerifier = utils.JWTVerifier{Secret: testAuthSecret}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func bearer(t *testing.T, roles models.RoleClaims) string {
	t.Helper()
	token, err := utils.GenerateToken("user1", "test@example.com", roles, testAuthSecret, 0)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return "Bearer " + token
}

func serve(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAuthMissingToken(t *testing.T) {
	rr := serve(Auth(testVerifier)(okHandler()), "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Code = %v, attendu 401", rr.Code)
	}
}

func TestAuthInvalidFormat(t *testing.T) {
	rr := serve(Auth(testVerifier)(okHandler()), "InvalidFormat")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Code = %v, attendu 401", rr.Code)
	}
}

func TestAuthSansRole(t *testing.T) {
	rr := serve(Auth(testVerifier)(okHandler()), bearer(t, models.RoleClaims{}))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Code = %v, attendu 401", rr.Code)
	}
}

func TestAuthValidToken(t *testing.T) {
	handler := Auth(testVerifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := GetPrincipal(r.Context())
		if p == nil {
			t.Error("GetPrincipal retourne nil")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if p.ID != "user1" || p.Role != models.RoleCountry || p.CountryKey != "japan" {
			t.Errorf("principal = %+v", p)
		}
		w.WriteHeader(http.StatusOK)
	}))

	rr := serve(handler, bearer(t, models.RoleClaims{Country: true, CountryKey: "japan"}))
	if rr.Code != http.StatusOK {
		t.Errorf("Code = %v, attendu 200", rr.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	h := Auth(testVerifier)(RequireAdmin()(okHandler()))

	if rr := serve(h, bearer(t, models.RoleClaims{Admin: true})); rr.Code != http.StatusOK {
		t.Errorf("admin: Code = %v, attendu 200", rr.Code)
	}
	if rr := serve(h, bearer(t, models.RoleClaims{Country: true, CountryKey: "uk"})); rr.Code != http.StatusForbidden {
		t.Errorf("pays: Code = %v, attendu 403", rr.Code)
	}
	if rr := serve(RequireAdmin()(okHandler()), ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("sans Auth: Code = %v, attendu 401", rr.Code)
	}
}

func TestRequireCountry(t *testing.T) {
	h := Auth(testVerifier)(RequireCountry()(okHandler()))

	if rr := serve(h, bearer(t, models.RoleClaims{Country: true, CountryKey: "uk"})); rr.Code != http.StatusOK {
		t.Errorf("pays: Code = %v, attendu 200", rr.Code)
	}
	if rr := serve(h, bearer(t, models.RoleClaims{Admin: true})); rr.Code != http.StatusForbidden {
		t.Errorf("admin sans pays: Code = %v, attendu 403", rr.Code)
	}
}
