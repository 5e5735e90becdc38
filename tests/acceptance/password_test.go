package acceptance

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/immochat/auth-service/internal/dto"
)

func (s *Suite) TestForgotPassword_FullResetFlow() {
	s.register("Reset User", "reset@example.com", "OldPassword123")

	forgotResp := s.postJSON("/api/v1/auth/password/forgot", dto.ForgotPasswordRequest{
		Email: "reset@example.com",
	})
	forgotResp.Body.Close()
	s.Require().Equal(http.StatusOK, forgotResp.StatusCode)

	code := s.activeCode("reset@example.com", "PASSWORD_RESET")

	verifyResp := s.postJSON("/api/v1/auth/password/verify-otp", dto.VerifyOTPRequest{
		Email: "reset@example.com",
		OTP:   code,
		Type:  "PASSWORD_RESET",
	})
	defer verifyResp.Body.Close()
	s.Require().Equal(http.StatusOK, verifyResp.StatusCode)

	var verify dto.VerifyOTPResponse
	s.Require().NoError(json.NewDecoder(verifyResp.Body).Decode(&verify))
	s.Require().NotEmpty(verify.OTPID)

	resetResp := s.postJSON("/api/v1/auth/password/reset", dto.ResetPasswordRequest{
		Email:       "reset@example.com",
		NewPassword: "NewPassword123",
		OTPID:       verify.OTPID,
	})
	resetResp.Body.Close()
	s.Require().Equal(http.StatusOK, resetResp.StatusCode)

	// Old password no longer works, new one does.
	oldLogin := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "reset@example.com",
		Password: "OldPassword123",
	})
	oldLogin.Body.Close()
	s.Equal(http.StatusUnauthorized, oldLogin.StatusCode)

	s.login("reset@example.com", "NewPassword123")
}

// The forgot response must be byte-identical for known and unknown emails.
func (s *Suite) TestForgotPassword_NoAccountEnumeration() {
	s.register("Known User", "known@example.com", "Password123")

	knownResp := s.postJSON("/api/v1/auth/password/forgot", dto.ForgotPasswordRequest{
		Email: "known@example.com",
	})
	defer knownResp.Body.Close()

	unknownResp := s.postJSON("/api/v1/auth/password/forgot", dto.ForgotPasswordRequest{
		Email: "unknown@example.com",
	})
	defer unknownResp.Body.Close()

	s.Equal(http.StatusOK, knownResp.StatusCode)
	s.Equal(http.StatusOK, unknownResp.StatusCode)

	knownBody, err := io.ReadAll(knownResp.Body)
	s.Require().NoError(err)
	unknownBody, err := io.ReadAll(unknownResp.Body)
	s.Require().NoError(err)
	s.Equal(string(knownBody), string(unknownBody))

	// No code row may exist for the unknown email.
	var count int
	err = s.Postgres.DB.QueryRow(
		`SELECT COUNT(*) FROM one_time_codes WHERE email = $1`, "unknown@example.com",
	).Scan(&count)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *Suite) TestVerifyOTP_WrongCode() {
	s.register("Wrong Code", "wrongcode@example.com", "Password123")

	forgotResp := s.postJSON("/api/v1/auth/password/forgot", dto.ForgotPasswordRequest{
		Email: "wrongcode@example.com",
	})
	forgotResp.Body.Close()

	verifyResp := s.postJSON("/api/v1/auth/password/verify-otp", dto.VerifyOTPRequest{
		Email: "wrongcode@example.com",
		OTP:   "000000",
		Type:  "PASSWORD_RESET",
	})
	defer verifyResp.Body.Close()

	s.Equal(http.StatusUnauthorized, verifyResp.StatusCode)
}

func (s *Suite) TestVerifyOTP_SingleUse() {
	s.register("Single Use", "singleuse@example.com", "Password123")

	forgotResp := s.postJSON("/api/v1/auth/password/forgot", dto.ForgotPasswordRequest{
		Email: "singleuse@example.com",
	})
	forgotResp.Body.Close()

	code := s.activeCode("singleuse@example.com", "PASSWORD_RESET")

	first := s.postJSON("/api/v1/auth/password/verify-otp", dto.VerifyOTPRequest{
		Email: "singleuse@example.com",
		OTP:   code,
		Type:  "PASSWORD_RESET",
	})
	first.Body.Close()
	s.Require().Equal(http.StatusOK, first.StatusCode)

	second := s.postJSON("/api/v1/auth/password/verify-otp", dto.VerifyOTPRequest{
		Email: "singleuse@example.com",
		OTP:   code,
		Type:  "PASSWORD_RESET",
	})
	defer second.Body.Close()

	s.Equal(http.StatusUnauthorized, second.StatusCode)
}

// Issuing a second code invalidates the first.
func (s *Suite) TestForgotPassword_NewCodeSupersedesOld() {
	s.register("Supersede", "supersede@example.com", "Password123")

	first := s.postJSON("/api/v1/auth/password/forgot", dto.ForgotPasswordRequest{Email: "supersede@example.com"})
	first.Body.Close()
	oldCode := s.activeCode("supersede@example.com", "PASSWORD_RESET")

	second := s.postJSON("/api/v1/auth/password/forgot", dto.ForgotPasswordRequest{Email: "supersede@example.com"})
	second.Body.Close()
	newCode := s.activeCode("supersede@example.com", "PASSWORD_RESET")

	if oldCode != newCode {
		verifyOld := s.postJSON("/api/v1/auth/password/verify-otp", dto.VerifyOTPRequest{
			Email: "supersede@example.com",
			OTP:   oldCode,
			Type:  "PASSWORD_RESET",
		})
		defer verifyOld.Body.Close()
		s.Equal(http.StatusUnauthorized, verifyOld.StatusCode)
	}

	verifyNew := s.postJSON("/api/v1/auth/password/verify-otp", dto.VerifyOTPRequest{
		Email: "supersede@example.com",
		OTP:   newCode,
		Type:  "PASSWORD_RESET",
	})
	defer verifyNew.Body.Close()
	s.Equal(http.StatusOK, verifyNew.StatusCode)
}

// A spent handle must not authorize a second reset.
func (s *Suite) TestResetPassword_HandleIsSingleShot() {
	s.register("Reuse Handle", "reuse@example.com", "OldPassword123")

	forgotResp := s.postJSON("/api/v1/auth/password/forgot", dto.ForgotPasswordRequest{
		Email: "reuse@example.com",
	})
	forgotResp.Body.Close()

	code := s.activeCode("reuse@example.com", "PASSWORD_RESET")

	verifyResp := s.postJSON("/api/v1/auth/password/verify-otp", dto.VerifyOTPRequest{
		Email: "reuse@example.com",
		OTP:   code,
		Type:  "PASSWORD_RESET",
	})
	var verify dto.VerifyOTPResponse
	s.Require().NoError(json.NewDecoder(verifyResp.Body).Decode(&verify))
	verifyResp.Body.Close()

	first := s.postJSON("/api/v1/auth/password/reset", dto.ResetPasswordRequest{
		Email:       "reuse@example.com",
		NewPassword: "NewPassword123",
		OTPID:       verify.OTPID,
	})
	first.Body.Close()
	s.Require().Equal(http.StatusOK, first.StatusCode)

	second := s.postJSON("/api/v1/auth/password/reset", dto.ResetPasswordRequest{
		Email:       "reuse@example.com",
		NewPassword: "HijackPassword1",
		OTPID:       verify.OTPID,
	})
	defer second.Body.Close()
	s.Equal(http.StatusUnauthorized, second.StatusCode)

	s.login("reuse@example.com", "NewPassword123")
}

func (s *Suite) TestResetPassword_BogusHandle() {
	s.register("Bogus Handle", "bogus@example.com", "Password123")

	resetResp := s.postJSON("/api/v1/auth/password/reset", dto.ResetPasswordRequest{
		Email:       "bogus@example.com",
		NewPassword: "NewPassword123",
		OTPID:       "00000000-0000-0000-0000-000000000000",
	})
	defer resetResp.Body.Close()

	s.Equal(http.StatusUnauthorized, resetResp.StatusCode)
}

func (s *Suite) TestChangePassword_Success() {
	authResp, _ := s.register("Change User", "change@example.com", "OldPassword123")

	resp := s.authedRequest("POST", "/api/v1/auth/password/change", authResp.AccessToken, dto.ChangePasswordRequest{
		CurrentPassword: "OldPassword123",
		NewPassword:     "NewPassword123",
		ConfirmPassword: "NewPassword123",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	s.login("change@example.com", "NewPassword123")
}

func (s *Suite) TestChangePassword_WrongCurrent() {
	authResp, _ := s.register("Change Wrong", "changewrong@example.com", "OldPassword123")

	resp := s.authedRequest("POST", "/api/v1/auth/password/change", authResp.AccessToken, dto.ChangePasswordRequest{
		CurrentPassword: "NotTheRightOne1",
		NewPassword:     "NewPassword123",
		ConfirmPassword: "NewPassword123",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestSetPassword_RejectedWhenPasswordExists() {
	authResp, _ := s.register("Set User", "set@example.com", "Password123")

	resp := s.authedRequest("POST", "/api/v1/auth/password/set", authResp.AccessToken, dto.SetPasswordRequest{
		Password:        "AnotherPassword1",
		ConfirmPassword: "AnotherPassword1",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusConflict, resp.StatusCode)
}
