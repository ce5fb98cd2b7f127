package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the response envelope with a typed payload
type Envelope[T any] struct {
	StatusCode int    `json:"statusCode"`
	Data       T      `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// DecodeEnvelope reads the response body into an Envelope
func DecodeEnvelope[T any](t *testing.T, resp *http.Response) Envelope[T] {
	t.Helper()

	var env Envelope[T]
	AssertJSONResponse(t, resp, &env)
	return env
}

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies an error envelope with expected status and message
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	env := DecodeEnvelope[json.RawMessage](t, resp)
	assert.Equal(t, expectedStatus, env.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, expectedMessage, env.Message, "error message mismatch")
}

// AssertNoSecrets fails if the JSON body exposes credential fields
func AssertNoSecrets(t *testing.T, body []byte) {
	t.Helper()

	var raw interface{}
	require.NoError(t, json.Unmarshal(body, &raw))
	assertNoSecretKeys(t, raw)
}

func assertNoSecretKeys(t *testing.T, v interface{}) {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, child := range val {
			assert.NotEqual(t, "password", k)
			assert.NotEqual(t, "passwordHash", k)
			assert.NotEqual(t, "PasswordHash", k)
			assertNoSecretKeys(t, child)
		}
	case []interface{}:
		for _, child := range val {
			assertNoSecretKeys(t, child)
		}
	}
}

// CookieValue returns the value of the named cookie set on the response
func CookieValue(resp *http.Response, name string) (string, bool) {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}
