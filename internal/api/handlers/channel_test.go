package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/videotube-identity/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type historyJSON struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Owner *struct {
		Username string `json:"username"`
	} `json:"owner"`
}

type subscriptionJSON struct {
	ChannelID  string `json:"channelId"`
	Subscribed bool   `json:"subscribed"`
}

func TestChannelHandler_GetChannelProfile(t *testing.T) {
	ts := testutil.NewTestServer(t)

	viewer, auth := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	channel, _ := testutil.NewUserBuilder().WithUsername("somechannel").Build(t, ts.DB.DB)
	testutil.Subscribe(t, ts.DB.DB, viewer, channel)

	tests := []struct {
		name           string
		username       string
		expectedStatus int
		expectedMsg    string
	}{
		{name: "found", username: "SomeChannel", expectedStatus: http.StatusOK},
		{name: "unknown", username: "missing", expectedStatus: http.StatusNotFound, expectedMsg: "Channel does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/c/"+tt.username), nil, auth.AccessToken)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			if tt.expectedMsg != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedMsg)
				return
			}

			require.Equal(t, tt.expectedStatus, resp.StatusCode)
			env := testutil.DecodeEnvelope[map[string]any](t, resp)
			assert.Equal(t, channel.ID.String(), env.Data["id"])
			assert.Equal(t, "somechannel", env.Data["username"])
			assert.Equal(t, float64(1), env.Data["subscriberCount"])
			assert.Equal(t, float64(0), env.Data["channelsubscribedtocount"])
			assert.Equal(t, true, env.Data["isSubscribedByViewer"])
			assert.NotContains(t, env.Data, "password")
			assert.NotContains(t, env.Data, "refreshToken")
		})
	}

	t.Run("requires authentication", func(t *testing.T) {
		resp, err := http.Get(ts.APIURL("/c/somechannel"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestChannelHandler_History(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, auth := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	video := testutil.NewVideoBuilder().WithTitle("watched").Build(t, ts.DB.DB)

	get := func(t *testing.T) []historyJSON {
		t.Helper()
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/history"), nil, auth.AccessToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return testutil.DecodeEnvelope[[]historyJSON](t, resp).Data
	}

	t.Run("empty history", func(t *testing.T) {
		history := get(t)
		assert.NotNil(t, history)
		assert.Empty(t, history)
	})

	t.Run("record view", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/history/"+video.ID.String()), nil, auth.AccessToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		history := get(t)
		require.Len(t, history, 1)
		assert.Equal(t, "watched", history[0].Title)
		require.NotNil(t, history[0].Owner)
	})

	t.Run("invalid video id", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/history/not-a-uuid"), nil, auth.AccessToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Invalid video id")
	})

	t.Run("unknown video", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/history/"+uuid.NewString()), nil, auth.AccessToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "Video does not exist")
	})
}

func TestChannelHandler_ToggleSubscription(t *testing.T) {
	ts := testutil.NewTestServer(t)

	fan, auth := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	channel, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	toggle := func(t *testing.T, id string) *http.Response {
		t.Helper()
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/subscriptions/"+id), nil, auth.AccessToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := toggle(t, channel.ID.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, testutil.DecodeEnvelope[subscriptionJSON](t, resp).Data.Subscribed)
	resp.Body.Close()

	resp = toggle(t, channel.ID.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, testutil.DecodeEnvelope[subscriptionJSON](t, resp).Data.Subscribed)
	resp.Body.Close()

	resp = toggle(t, fan.ID.String())
	testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "You cannot subscribe to your own channel")
	resp.Body.Close()

	resp = toggle(t, uuid.NewString())
	testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "Channel does not exist")
	resp.Body.Close()
}

func TestHealth(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.BaseURL() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	env := testutil.DecodeEnvelope[map[string]string](t, resp)
	assert.Equal(t, "ok", env.Data["status"])
}
