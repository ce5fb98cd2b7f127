package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1/users",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type envelope[T any] struct {
	StatusCode int    `json:"statusCode"`
	Data       T      `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
	Avatar   string `json:"avatar"`
}

type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type ChannelProfile struct {
	ID                        string `json:"id"`
	Username                  string `json:"username"`
	Fullname                  string `json:"fullname"`
	SubscribersCount          int64  `json:"subscriberCount"`
	ChannelsSubscribedToCount int64  `json:"channelsubscribedtocount"`
	IsSubscribed              bool   `json:"isSubscribedByViewer"`
}

type Subscription struct {
	ChannelID  string `json:"channelId"`
	Subscribed bool   `json:"subscribed"`
}

// StatusError is returned for any non-2xx response
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// RegisterUser creates a new account with a generated avatar
func (c *APIClient) RegisterUser(baseName, password string) (*User, error) {
	username := fmt.Sprintf("%s_%d", baseName, time.Now().UnixNano()%100000)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := map[string]string{
		"fullname": baseName,
		"email":    username + "@example.com",
		"username": username,
		"password": password,
	}
	for k, v := range fields {
		w.WriteField(k, v)
	}
	part, err := w.CreateFormFile("avatar", username+".png")
	if err != nil {
		return nil, err
	}
	if err := png.Encode(part, avatarImage(len(username))); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/register", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var user User
	if err := c.do(req, &user); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &user, nil
}

// Login returns the user and a fresh token pair
func (c *APIClient) Login(username, password string) (*AuthResponse, error) {
	var result AuthResponse
	err := c.send(http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": password,
	}, "", &result)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &result, nil
}

// Refresh exchanges a refresh token for a new pair
func (c *APIClient) Refresh(refreshToken string) (*TokenPair, error) {
	var pair TokenPair
	err := c.send(http.MethodPost, "/refresh-token", map[string]string{"refreshToken": refreshToken}, "", &pair)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	return &pair, nil
}

func (c *APIClient) Logout(token string) error {
	return c.send(http.MethodPost, "/logout", nil, token, nil)
}

func (c *APIClient) GetChannel(token, username string) (*ChannelProfile, error) {
	var profile ChannelProfile
	if err := c.send(http.MethodGet, "/c/"+username, nil, token, &profile); err != nil {
		return nil, fmt.Errorf("get channel: %w", err)
	}
	return &profile, nil
}

func (c *APIClient) ToggleSubscription(token, channelID string) (*Subscription, error) {
	var sub Subscription
	if err := c.send(http.MethodPost, "/subscriptions/"+channelID, nil, token, &sub); err != nil {
		return nil, fmt.Errorf("toggle subscription: %w", err)
	}
	return &sub, nil
}

func (c *APIClient) send(method, path string, body interface{}, token string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *APIClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope[json.RawMessage]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &StatusError{Status: resp.StatusCode, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// avatarImage draws a small two-tone square so every user gets a distinct avatar
func avatarImage(seed int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	fg := color.RGBA{R: uint8(seed * 37), G: uint8(seed * 71), B: uint8(seed * 113), A: 255}
	for x := 0; x < 32; x++ {
		for y := 0; y < 32; y++ {
			if (x/8+y/8)%2 == 0 {
				img.Set(x, y, fg)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}
