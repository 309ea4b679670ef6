package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bottle-order-tracking/internal/model"
)

// AuthService resolves bearer tokens against the external auth microservice.
type AuthService struct {
	authURL string
	client  *http.Client
}

type authUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Enabled bool   `json:"enabled"`
}

func NewAuthService(authURL string) *AuthService {
	return &AuthService{
		authURL: authURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// ValidateToken asks the auth service who the token belongs to and maps the
// answer to a Principal. Any non-200 means the token is invalid or expired.
func (a *AuthService) ValidateToken(token string) (Principal, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/users/current", a.authURL), nil)
	if err != nil {
		return Principal{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return Principal{}, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Principal{}, errors.New("invalid token")
	}

	var user authUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return Principal{}, err
	}
	if !user.Enabled {
		return Principal{}, errors.New("user disabled")
	}

	role, err := model.ParseRole(user.Role)
	if err != nil {
		return Principal{}, err
	}

	return Principal{ID: user.ID, Name: user.Name, Role: role}, nil
}
