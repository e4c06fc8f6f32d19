package gotrue

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/expensesheets/internal/common"
)

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

// errorResponse covers both error shapes the service emits.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
}

func (e *errorResponse) message() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	case e.Error != "":
		return e.Error
	default:
		return e.ErrorCode
	}
}

// APIError is a non-2xx answer from the auth service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth service: status %d", e.Status)
	}
	return fmt.Sprintf("auth service: %s (status %d)", e.Message, e.Status)
}

// Unwrap maps the status onto the client error taxonomy.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusBadRequest, e.Status == http.StatusUnauthorized, e.Status == http.StatusForbidden:
		return common.ErrUnauthorized
	case e.Status == http.StatusUnprocessableEntity:
		return common.ErrValidation
	case e.Status >= 500:
		return common.ErrUnavailable
	default:
		return nil
	}
}

func statusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var er errorResponse
	_ = json.Unmarshal(b, &er)
	return &APIError{Status: resp.StatusCode, Message: er.message()}
}
