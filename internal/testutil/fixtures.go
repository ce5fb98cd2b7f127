package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/dom/videotube-identity/internal/credential"
	"github.com/dom/videotube-identity/internal/domain"
	"github.com/dom/videotube-identity/internal/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username     string
	email        string
	fullname     string
	password     string
	avatar       string
	coverImage   string
	watchHistory []uuid.UUID
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username: fmt.Sprintf("testuser_%s", suffix),
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		fullname: "Test User",
		password: "testpassword123",
		avatar:   "https://assets.test/avatar.png",
	}
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithFullname sets the full name
func (b *UserBuilder) WithFullname(fullname string) *UserBuilder {
	b.fullname = fullname
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithCoverImage sets the cover image URL
func (b *UserBuilder) WithCoverImage(url string) *UserBuilder {
	b.coverImage = url
	return b
}

// WithWatchHistory sets the watched video ids, oldest first
func (b *UserBuilder) WithWatchHistory(ids ...uuid.UUID) *UserBuilder {
	b.watchHistory = ids
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	user := &domain.User{
		ID:            uuid.New(),
		Username:      b.username,
		Email:         b.email,
		Fullname:      b.fullname,
		AvatarURL:     b.avatar,
		CoverImageURL: b.coverImage,
		WatchHistory:  datatypes.JSONSlice[uuid.UUID](b.watchHistory),
	}
	user.SetPassword(b.password, credential.NewBcryptHasher(bcrypt.MinCost))

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the data of a successful login
type AuthResponse struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate creates a user in the database and logs in via the API
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, *AuthResponse) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)
	return user, Login(t, ts, http.DefaultClient, user.Username, password)
}

// Login posts credentials and returns the decoded auth data
func Login(t *testing.T, ts *TestServer, client *http.Client, username, password string) *AuthResponse {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := client.Post(ts.APIURL("/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	env := DecodeEnvelope[AuthResponse](t, resp)
	return &env.Data
}

// VideoBuilder creates test videos
type VideoBuilder struct {
	owner    *domain.User
	title    string
	duration float64
	views    int64
}

// NewVideoBuilder creates a new VideoBuilder with default values
func NewVideoBuilder() *VideoBuilder {
	return &VideoBuilder{
		title:    fmt.Sprintf("Test Video %s", uuid.New().String()[:6]),
		duration: 120.5,
	}
}

// WithOwner sets the video owner
func (b *VideoBuilder) WithOwner(user *domain.User) *VideoBuilder {
	b.owner = user
	return b
}

// WithTitle sets the title
func (b *VideoBuilder) WithTitle(title string) *VideoBuilder {
	b.title = title
	return b
}

// WithViews sets the starting view count
func (b *VideoBuilder) WithViews(views int64) *VideoBuilder {
	b.views = views
	return b
}

// Build creates the video in the database, creating an owner when none is set
func (b *VideoBuilder) Build(t *testing.T, db *gorm.DB) *domain.Video {
	t.Helper()

	if b.owner == nil {
		owner, _ := NewUserBuilder().Build(t, db)
		b.owner = owner
	}

	video := &domain.Video{
		ID:           uuid.New(),
		Title:        b.title,
		Description:  "a test video",
		VideoFileURL: "https://assets.test/video.mp4",
		ThumbnailURL: "https://assets.test/thumb.png",
		Duration:     b.duration,
		Views:        b.views,
		IsPublished:  true,
		OwnerID:      b.owner.ID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(video).Error; err != nil {
		t.Fatalf("failed to create video: %v", err)
	}

	return video
}

// Subscribe stores a subscriber -> channel edge
func Subscribe(t *testing.T, db *gorm.DB, subscriber, channel *domain.User) {
	t.Helper()

	sub := &domain.Subscription{SubscriberID: subscriber.ID, ChannelID: channel.ID}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
}

// TempUpload writes content to a temp file and returns it as an uploaded file
func TempUpload(t *testing.T, name, content string) *storage.LocalFile {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "upload-*")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	f.Close()

	return &storage.LocalFile{
		Path:        f.Name(),
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(content)),
	}
}

// FormFile is one file part of a multipart request
type FormFile struct {
	Field    string
	Filename string
	Content  string
}

// NewMultipartRequest builds a multipart/form-data request
func NewMultipartRequest(t *testing.T, method, url string, fields map[string]string, files []FormFile, token string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		part.Write([]byte(f.Content))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, &body)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
