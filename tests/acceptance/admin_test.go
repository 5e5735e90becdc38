package acceptance

import (
	"encoding/json"
	"net/http"

	"github.com/immochat/auth-service/internal/dto"
)

func (s *Suite) TestAdminUpdateRole_Success() {
	s.register("Admin User", "admin@example.com", "Password123")
	s.promoteToAdmin("admin@example.com")
	// Re-login so the access token carries the new role.
	adminAuth, _ := s.login("admin@example.com", "Password123")

	targetAuth, _ := s.register("Target User", "target@example.com", "Password123")

	resp := s.authedRequest("PUT", "/api/v1/users/"+targetAuth.User.ID+"/role", adminAuth.AccessToken, dto.UpdateRoleRequest{
		Role: "ADMIN",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var role string
	err := s.Postgres.DB.QueryRow(`SELECT role FROM users WHERE id = $1`, targetAuth.User.ID).Scan(&role)
	s.Require().NoError(err)
	s.Equal("ADMIN", role)
}

func (s *Suite) TestAdminUpdateRole_ForbiddenForCustomer() {
	customerAuth, _ := s.register("Customer", "customer@example.com", "Password123")
	targetAuth, _ := s.register("Other", "other@example.com", "Password123")

	resp := s.authedRequest("PUT", "/api/v1/users/"+targetAuth.User.ID+"/role", customerAuth.AccessToken, dto.UpdateRoleRequest{
		Role: "ADMIN",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *Suite) TestAdminGetUser_Success() {
	s.register("Admin Two", "admin2@example.com", "Password123")
	s.promoteToAdmin("admin2@example.com")
	adminAuth, _ := s.login("admin2@example.com", "Password123")

	targetAuth, _ := s.register("Looked Up", "lookedup@example.com", "Password123")

	resp := s.authedRequest("GET", "/api/v1/users/"+targetAuth.User.ID, adminAuth.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var userResp dto.UserResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&userResp))
	s.Equal("lookedup@example.com", userResp.Email)
}

func (s *Suite) TestAdminGetUser_NotFound() {
	s.register("Admin Three", "admin3@example.com", "Password123")
	s.promoteToAdmin("admin3@example.com")
	adminAuth, _ := s.login("admin3@example.com", "Password123")

	resp := s.authedRequest("GET", "/api/v1/users/00000000-0000-0000-0000-000000000000", adminAuth.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestAdminDeleteUser_Success() {
	s.register("Admin Four", "admin4@example.com", "Password123")
	s.promoteToAdmin("admin4@example.com")
	adminAuth, _ := s.login("admin4@example.com", "Password123")

	targetAuth, _ := s.register("To Delete", "todelete@example.com", "Password123")

	resp := s.authedRequest("DELETE", "/api/v1/users/"+targetAuth.User.ID, adminAuth.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var count int
	err := s.Postgres.DB.QueryRow(`SELECT COUNT(*) FROM users WHERE id = $1`, targetAuth.User.ID).Scan(&count)
	s.Require().NoError(err)
	s.Zero(count)

	// Sessions of the deleted user die with the cascade.
	err = s.Postgres.DB.QueryRow(`SELECT COUNT(*) FROM refresh_tokens WHERE user_id = $1`, targetAuth.User.ID).Scan(&count)
	s.Require().NoError(err)
	s.Zero(count)
}
