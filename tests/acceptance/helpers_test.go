package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/immochat/auth-service/internal/dto"
)

func (s *Suite) postJSON(path string, payload any) *http.Response {
	body, err := json.Marshal(payload)
	s.Require().NoError(err)

	resp, err := http.Post(s.BaseURL+path, "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)

	return resp
}

func (s *Suite) register(name, email, password string) (*dto.AuthResponse, []*http.Cookie) {
	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		Name:            name,
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode, "Registration should succeed")

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))

	return &authResp, resp.Cookies()
}

func (s *Suite) login(email, password string) (*dto.AuthResponse, []*http.Cookie) {
	resp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    email,
		Password: password,
	})
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode, "Login should succeed")

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))

	return &authResp, resp.Cookies()
}

func (s *Suite) authedRequest(method, path, accessToken string, payload any) *http.Response {
	var req *http.Request
	var err error

	if payload != nil {
		body, merr := json.Marshal(payload)
		s.Require().NoError(merr)
		req, err = http.NewRequest(method, s.BaseURL+path, bytes.NewBuffer(body))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	} else {
		req, err = http.NewRequest(method, s.BaseURL+path, nil)
	}
	s.Require().NoError(err)

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)

	return resp
}

// activeCode reads the pending one-time code straight from the database,
// standing in for the email inbox.
func (s *Suite) activeCode(email, purpose string) string {
	var code string
	err := s.Postgres.DB.QueryRow(
		`SELECT code FROM one_time_codes WHERE email = $1 AND purpose = $2 AND used = false ORDER BY created_at DESC LIMIT 1`,
		email, purpose,
	).Scan(&code)
	s.Require().NoError(err, "An active code should exist for %s", email)

	return code
}

func (s *Suite) promoteToAdmin(email string) {
	_, err := s.Postgres.DB.Exec(`UPDATE users SET role = 'ADMIN' WHERE email = $1`, email)
	s.Require().NoError(err)
}
