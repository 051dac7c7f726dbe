package userservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

var ErrUserServiceDisabled = errors.New("user service url not configured")

// UserInfo is the public profile exposed by the platform's user service.
type UserInfo struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// DisplayName picks the best human readable name, or fallback.
func (u *UserInfo) DisplayName(fallback string) string {
	if u == nil {
		return fallback
	}
	for _, n := range []string{u.FullName, u.Username} {
		if n = strings.TrimSpace(n); n != "" {
			return n
		}
	}
	return fallback
}

type apiResponse struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Result  *UserInfo `json:"result"`
}

type UserService struct {
	baseUrl string
	client  *retryablehttp.Client
	logger  *logrus.Entry
}

func New(app *config.AppConfig, logger *logrus.Logger) *UserService {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = app.UserServiceInfo.Timeout
	client.Logger = nil

	return &UserService{
		baseUrl: strings.TrimRight(app.UserServiceInfo.Url, "/"),
		client:  client,
		logger:  logger.WithField("service", "user"),
	}
}

func (s *UserService) Enabled() bool {
	return s != nil && s.baseUrl != ""
}

// GetPublicUser fetches the public profile of userId.
// A missing user is reported as nil without error.
func (s *UserService) GetPublicUser(ctx context.Context, userId string) (*UserInfo, error) {
	if !s.Enabled() {
		return nil, ErrUserServiceDisabled
	}

	u := fmt.Sprintf("%s/api/users/public/%s", s.baseUrl, url.PathEscape(userId))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user service returned status %d", res.StatusCode)
	}

	out := new(apiResponse)
	if err = json.NewDecoder(res.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("failed to decode user service response: %w", err)
	}
	if out.Result != nil {
		s.logger.WithField("userId", userId).Debugln("user info retrieved")
	}
	return out.Result, nil
}
