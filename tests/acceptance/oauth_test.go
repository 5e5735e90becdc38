package acceptance

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/immochat/auth-service/internal/dto"
)

// noRedirectClient stops at the provider redirect so the test can inspect it.
var noRedirectClient = &http.Client{
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

// googleSignIn drives the full login/callback round trip and returns the
// final callback response.
func (s *Suite) googleSignIn() *http.Response {
	loginResp, err := noRedirectClient.Get(s.BaseURL + "/api/v1/auth/google/login")
	s.Require().NoError(err)
	loginResp.Body.Close()
	s.Require().Equal(http.StatusFound, loginResp.StatusCode)

	location, err := url.Parse(loginResp.Header.Get("Location"))
	s.Require().NoError(err)
	state := location.Query().Get("state")
	s.Require().NotEmpty(state)

	var stateCookie *http.Cookie
	for _, cookie := range loginResp.Cookies() {
		if cookie.Name == "oauth_state" {
			stateCookie = cookie
		}
	}
	s.Require().NotNil(stateCookie, "Login should set the state cookie")

	callbackURL := s.BaseURL + "/api/v1/auth/google/callback?state=" + url.QueryEscape(state) + "&code=fake-auth-code"
	req, err := http.NewRequest("GET", callbackURL, nil)
	s.Require().NoError(err)
	req.AddCookie(stateCookie)

	resp, err := noRedirectClient.Do(req)
	s.Require().NoError(err)

	return resp
}

func (s *Suite) TestGoogleLogin_RedirectsToProvider() {
	resp, err := noRedirectClient.Get(s.BaseURL + "/api/v1/auth/google/login")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	s.Require().NoError(err)
	s.Equal("test-client-id", location.Query().Get("client_id"))
	s.NotEmpty(location.Query().Get("state"))
}

func (s *Suite) TestGoogleCallback_CreatesCustomer() {
	s.Google.SetUser("google-sub-new", "newoauth@example.com", "New OAuth User", "https://example.com/pic.png")

	resp := s.googleSignIn()
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))

	s.NotEmpty(authResp.AccessToken)
	s.Equal("newoauth@example.com", authResp.User.Email)
	s.Equal("CUSTOMER", authResp.User.Role)
	s.NotEmpty(resp.Cookies(), "Callback should set the refresh cookie")

	// The account has no password until one is set explicitly.
	me := s.authedRequest("GET", "/api/v1/auth/me", authResp.AccessToken, nil)
	defer me.Body.Close()
	var userResp dto.UserResponse
	s.Require().NoError(json.NewDecoder(me.Body).Decode(&userResp))
	s.False(userResp.HasPassword)
}

func (s *Suite) TestGoogleCallback_BadState() {
	resp, err := noRedirectClient.Get(s.BaseURL + "/api/v1/auth/google/callback?state=forged&code=fake-auth-code")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

// Signing in via Google with the email of an existing password account links
// the identity without touching the role or the stored password.
func (s *Suite) TestGoogleCallback_LinksExistingAccount() {
	s.register("Linked User", "linked@example.com", "Password123")
	s.promoteToAdmin("linked@example.com")

	s.Google.SetUser("google-sub-linked", "linked@example.com", "Linked Via Google", "")

	resp := s.googleSignIn()
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))
	s.Equal("ADMIN", authResp.User.Role, "OAuth sign-in must not downgrade the role")

	var count int
	err := s.Postgres.DB.QueryRow(`SELECT COUNT(*) FROM users WHERE email = $1`, "linked@example.com").Scan(&count)
	s.Require().NoError(err)
	s.Equal(1, count, "Sign-in must not create a second account")

	// Password login still works afterwards.
	s.login("linked@example.com", "Password123")
}

// A repeat sign-in from the same provider account resolves to the same user.
func (s *Suite) TestGoogleCallback_RepeatSignIn() {
	s.Google.SetUser("google-sub-repeat", "repeat@example.com", "Repeat User", "")

	first := s.googleSignIn()
	var firstAuth dto.AuthResponse
	s.Require().NoError(json.NewDecoder(first.Body).Decode(&firstAuth))
	first.Body.Close()

	second := s.googleSignIn()
	defer second.Body.Close()
	var secondAuth dto.AuthResponse
	s.Require().NoError(json.NewDecoder(second.Body).Decode(&secondAuth))

	s.Equal(firstAuth.User.ID, secondAuth.User.ID)
}

// An OAuth-only account can set an initial password and then use credentials.
func (s *Suite) TestSetPassword_OAuthOnlyAccount() {
	s.Google.SetUser("google-sub-setpw", "setpw@example.com", "Set PW User", "")

	resp := s.googleSignIn()
	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))
	resp.Body.Close()

	setResp := s.authedRequest("POST", "/api/v1/auth/password/set", authResp.AccessToken, dto.SetPasswordRequest{
		Password:        "FreshPassword1",
		ConfirmPassword: "FreshPassword1",
	})
	setResp.Body.Close()
	s.Require().Equal(http.StatusOK, setResp.StatusCode)

	s.login("setpw@example.com", "FreshPassword1")
}
