package recorder

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// JoinRequest holds the query of the server's /token endpoint.
type JoinRequest struct {
	Room   string
	User   string
	UserId string
	Role   string
}

// JoinInfo is the server's /token answer.
type JoinInfo struct {
	Url         string    `json:"url"`
	Token       string    `json:"token"`
	Identity    string    `json:"identity"`
	DisplayName string    `json:"displayName"`
	RoomName    string    `json:"roomName"`
	Role        string    `json:"role"`
	AvatarColor string    `json:"avatarColor"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type errorResponse struct {
	Msg string `json:"msg"`
}

// JoinClient asks the classroom server for join credentials.
type JoinClient struct {
	serverUrl string
	client    *retryablehttp.Client
	logger    *logrus.Entry
}

func NewJoinClient(serverUrl string, logger *logrus.Logger) *JoinClient {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil

	return &JoinClient{
		serverUrl: strings.TrimRight(serverUrl, "/"),
		client:    client,
		logger:    logger.WithField("service", "join-client"),
	}
}

func (jc *JoinClient) FetchJoinInfo(ctx context.Context, r *JoinRequest) (*JoinInfo, error) {
	q := url.Values{}
	q.Set("room", r.Room)
	q.Set("user", r.User)
	if r.UserId != "" {
		q.Set("userId", r.UserId)
	}
	if r.Role != "" {
		q.Set("role", r.Role)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, jc.serverUrl+"/token?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := jc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		er := new(errorResponse)
		_ = json.NewDecoder(res.Body).Decode(er)
		return nil, fmt.Errorf("token request failed with status %d: %s", res.StatusCode, er.Msg)
	}

	info := new(JoinInfo)
	if err = json.NewDecoder(res.Body).Decode(info); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	jc.logger.WithFields(logrus.Fields{
		"roomCode": info.RoomName,
		"identity": info.Identity,
	}).Infoln("join credential received")
	return info, nil
}
