package core

import (
	"encoding/json"
	"net/http"
)

// Standard response codes
const (
	// oks
	CodeOkRegistered             = "ok_registered"
	CodeOkAlreadyVerified        = "ok_already_verified"
	CodeOkEmailVerified          = "ok_email_verified"
	CodeOkVerificationRequested  = "ok_verification_requested"
	CodeOkPasswordResetRequested = "ok_password_reset_requested"
	CodeOkPasswordReset          = "ok_password_reset"

	// errors
	CodeErrorInvalidRequest                    = "err_invalid_input"
	CodeErrorInvalidCredentials                = "err_invalid_credentials"
	CodeErrorUnverifiedEmail                   = "err_unverified_email"
	CodeErrorPasswordMismatch                  = "err_password_mismatch"
	CodeErrorMissingFields                     = "err_missing_fields"
	CodeErrorPasswordComplexity                = "err_password_complexity"
	CodeErrorEmailConflict                     = "err_email_conflict"
	CodeErrorUsernameConflict                  = "err_username_conflict"
	CodeErrorNotFound                          = "err_not_found"
	CodeErrorTokenGeneration                   = "err_token_generation"
	CodeErrorServiceUnavailable                = "err_service_unavailable"
	CodeErrorNoAuthHeader                      = "err_no_auth_header"
	CodeErrorInvalidTokenFormat                = "err_invalid_token_format"
	CodeErrorTokenExpired                      = "err_token_expired"
	CodeErrorInvalidToken                      = "err_invalid_token"
	CodeErrorInvalidVerificationToken          = "err_invalid_verification_token"
	CodeErrorInvalidResetToken                 = "err_invalid_reset_token"
	CodeErrorInvalidOAuth2Provider             = "err_invalid_oauth2_provider"
	CodeErrorInvalidOAuth2State                = "err_invalid_oauth2_state"
	CodeErrorOAuth2TokenExchangeFailed         = "err_oauth2_token_exchange_failed"
	CodeErrorOAuth2UserInfoFailed              = "err_oauth2_user_info_failed"
	CodeErrorOAuth2MissingEmail                = "err_oauth2_missing_email"
	CodeErrorOAuth2DatabaseError               = "err_oauth2_database_error"
	CodeErrorAuthDatabaseError                 = "err_auth_database_error"
	CodeErrorInvalidContentType                = "err_invalid_content_type"
)

// precomputeBasicResponse marshals the response body once at package
// initialization. Handlers then write the stored bytes directly instead of
// re-marshaling on every request.
func precomputeBasicResponse(status int, code, message string) jsonResponse {
	basic := JsonBasic{
		Status:  status,
		Code:    code,
		Message: message,
	}
	body, _ := json.Marshal(basic)
	return jsonResponse{status: status, body: body}
}

// Precomputed error and ok responses with status codes
var (
	// errors
	errorInvalidRequest     = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidRequest, "The request contains invalid data")
	errorInvalidCredentials = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidCredentials, "Invalid credentials provided")
	errorUnverifiedEmail    = precomputeBasicResponse(http.StatusForbidden, CodeErrorUnverifiedEmail, "Email address must be verified before logging in")
	errorPasswordMismatch   = precomputeBasicResponse(http.StatusBadRequest, CodeErrorPasswordMismatch, "Password and confirmation do not match")
	errorMissingFields      = precomputeBasicResponse(http.StatusBadRequest, CodeErrorMissingFields, "Required fields are missing")
	errorPasswordComplexity = precomputeBasicResponse(http.StatusBadRequest, CodeErrorPasswordComplexity, "Password must be at least 6 characters")
	errorEmailConflict      = precomputeBasicResponse(http.StatusConflict, CodeErrorEmailConflict, "Email address is already registered")
	errorUsernameConflict   = precomputeBasicResponse(http.StatusConflict, CodeErrorUsernameConflict, "Username is already taken")
	errorNotFound           = precomputeBasicResponse(http.StatusNotFound, CodeErrorNotFound, "Requested resource not found")


	errorTokenGeneration    = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorTokenGeneration, "Failed to generate authentication token")
	errorServiceUnavailable = precomputeBasicResponse(http.StatusServiceUnavailable, CodeErrorServiceUnavailable, "Service is temporarily unavailable")

	errorNoAuthHeader       = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorNoAuthHeader, "Authorization header is required")
	errorInvalidTokenFormat = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidTokenFormat, "Invalid authorization token format")
	errorTokenExpired       = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorTokenExpired, "Authentication token has expired")
	errorInvalidToken       = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidToken, "Invalid authentication token")

	// One generic response for every verification-token failure. The precise
	// reason (bad signature, expired, wrong type, unknown user) is logged,
	// never returned.
	errorInvalidVerificationToken = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidVerificationToken, "Invalid or expired verification token")
	errorInvalidResetToken        = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidResetToken, "Invalid or expired password reset token")

	errorInvalidOAuth2Provider     = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidOAuth2Provider, "Invalid OAuth2 provider specified")
	errorInvalidOAuth2State        = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidOAuth2State, "Invalid or expired OAuth2 state")
	errorOAuth2TokenExchangeFailed = precomputeBasicResponse(http.StatusBadRequest, CodeErrorOAuth2TokenExchangeFailed, "Failed to exchange OAuth2 token")
	errorOAuth2UserInfoFailed      = precomputeBasicResponse(http.StatusBadGateway, CodeErrorOAuth2UserInfoFailed, "Failed to get user info from OAuth2 provider")
	errorOAuth2MissingEmail        = precomputeBasicResponse(http.StatusBadRequest, CodeErrorOAuth2MissingEmail, "OAuth2 provider did not supply a verified email address")
	errorOAuth2DatabaseError       = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorOAuth2DatabaseError, "Database error during OAuth2 authentication")
	errorAuthDatabaseError         = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorAuthDatabaseError, "Database error during authentication")
	errorInvalidContentType        = precomputeBasicResponse(http.StatusUnsupportedMediaType, CodeErrorInvalidContentType, "Unsupported media type")

	// oks
	okRegistered             = precomputeBasicResponse(http.StatusCreated, CodeOkRegistered, "Account created. Check your mailbox to verify your email address")
	okAlreadyVerified        = precomputeBasicResponse(http.StatusAccepted, CodeOkAlreadyVerified, "Email already verified - no further action needed")
	okEmailVerified          = precomputeBasicResponse(http.StatusOK, CodeOkEmailVerified, "Email verified successfully")
	okVerificationRequested  = precomputeBasicResponse(http.StatusAccepted, CodeOkVerificationRequested, "Verification email will be sent soon. Check your mailbox")
	okPasswordResetRequested = precomputeBasicResponse(http.StatusAccepted, CodeOkPasswordResetRequested, "If the email exists in our system, reset instructions will be sent")
	okPasswordReset          = precomputeBasicResponse(http.StatusOK, CodeOkPasswordReset, "Password reset successfully")
)

// For successful precomputed responses
func writeJsonOk(w http.ResponseWriter, resp jsonResponse) {
	setHeaders(w, headersJson)
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}

// writeJsonError writes a precomputed JSON error response
func writeJsonError(w http.ResponseWriter, resp jsonResponse) {
	setHeaders(w, headersJson)
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}
