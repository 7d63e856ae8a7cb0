package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"movix-cli/model"
)

// AuthService maps the login and registration endpoints.
type AuthService struct {
	client *Client
}

func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

// Login posts the credentials form-encoded, the way the token endpoint expects.
func (s *AuthService) Login(ctx context.Context, creds model.LoginCredentials) (model.AuthResponse, error) {
	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)

	var res model.AuthResponse
	if err := s.client.sendForm(ctx, "/auth/login/", form, &res); err != nil {
		return model.AuthResponse{}, err
	}
	if err := checkAuthResponse(res); err != nil {
		return model.AuthResponse{}, err
	}
	return res, nil
}

func (s *AuthService) Register(ctx context.Context, creds model.RegisterCredentials) (model.AuthResponse, error) {
	var res model.AuthResponse
	if err := s.client.sendJSON(ctx, http.MethodPost, "/auth/register/", creds, &res); err != nil {
		return model.AuthResponse{}, err
	}
	if err := checkAuthResponse(res); err != nil {
		return model.AuthResponse{}, err
	}
	return res, nil
}

func checkAuthResponse(res model.AuthResponse) error {
	if strings.TrimSpace(res.AccessToken) == "" {
		return &DecodeError{Endpoint: "auth", Err: errors.New("response carried no access token")}
	}
	return nil
}
