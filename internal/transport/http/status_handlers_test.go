package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-irc/internal/store"
	"github.com/vovakirdan/wirechat-irc/internal/store/sqlite"
)

func getJSON(t *testing.T, ts *testServer, path, token string, out any) int {
	t.Helper()

	req, err := stdhttp.NewRequest(stdhttp.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == stdhttp.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func postToken(t *testing.T, ts *testServer, body string) (int, AuthResponse) {
	t.Helper()

	resp, err := ts.Client().Post(ts.URL+"/api/token", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out AuthResponse
	if resp.StatusCode == stdhttp.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestStatusAPIRequiresToken(t *testing.T) {
	ts := startTestServer(t, nil, newAuthService(t, "hunter22"))

	assert.Equal(t, stdhttp.StatusUnauthorized, getJSON(t, ts, "/api/stats", "", nil))
	assert.Equal(t, stdhttp.StatusUnauthorized, getJSON(t, ts, "/api/stats", "not-a-token", nil))

	status, _ := postToken(t, ts, `{"password":"wrong"}`)
	assert.Equal(t, stdhttp.StatusUnauthorized, status)

	status, _ = postToken(t, ts, `{}`)
	assert.Equal(t, stdhttp.StatusBadRequest, status)

	status, tok := postToken(t, ts, `{"subject":"ops","password":"hunter22"}`)
	require.Equal(t, stdhttp.StatusOK, status)
	require.NotEmpty(t, tok.Token)

	var stats StatsResponse
	assert.Equal(t, stdhttp.StatusOK, getJSON(t, ts, "/api/stats", tok.Token, &stats))
	assert.Equal(t, StatsResponse{}, stats)
}

func TestTokenEndpointDisabledWithoutSecret(t *testing.T) {
	ts := startTestServer(t, nil, nil)

	status, _ := postToken(t, ts, `{"password":"anything"}`)
	assert.Equal(t, stdhttp.StatusNotFound, status)
}

func TestStatusAPIViews(t *testing.T) {
	ts := startTestServer(t, nil, nil)

	alice := dialWS(t, ts)
	alice.send("NICK alice\r\nUSER alice 0 * :Alice Liddell\r\nJOIN #a\r\nJOIN #b")
	alice.expect(":irc.test 001 alice :Welcome to the Internet Relay Network alice!alice@127.0.0.1")
	for _, want := range []string{
		":alice!alice@127.0.0.1 JOIN #a",
		":irc.test 353 alice = #a alice",
		":irc.test 366 alice #a :End of NAMES list",
		":alice!alice@127.0.0.1 JOIN #b",
		":irc.test 353 alice = #b alice",
		":irc.test 366 alice #b :End of NAMES list",
	} {
		alice.expect(want)
	}

	var channels []ChannelResponse
	require.Equal(t, stdhttp.StatusOK, getJSON(t, ts, "/api/channels", "", &channels))
	assert.Equal(t, []ChannelResponse{
		{Name: "#a", Members: []string{"alice"}},
		{Name: "#b", Members: []string{"alice"}},
	}, channels)

	var channel ChannelResponse
	require.Equal(t, stdhttp.StatusOK, getJSON(t, ts, "/api/channels/"+url.PathEscape("#b"), "", &channel))
	assert.Equal(t, "#b", channel.Name)
	assert.Equal(t, stdhttp.StatusNotFound, getJSON(t, ts, "/api/channels/"+url.PathEscape("#zz"), "", nil))

	var client ClientResponse
	require.Equal(t, stdhttp.StatusOK, getJSON(t, ts, "/api/clients/alice", "", &client))
	assert.Equal(t, ClientResponse{
		Nick:     "alice",
		Username: "alice",
		Realname: "Alice Liddell",
		Address:  "127.0.0.1",
		Channels: []string{"#a", "#b"},
	}, client)
	assert.Equal(t, stdhttp.StatusNotFound, getJSON(t, ts, "/api/clients/bob", "", nil))

	var clients []ClientResponse
	require.Equal(t, stdhttp.StatusOK, getJSON(t, ts, "/api/clients", "", &clients))
	assert.Len(t, clients, 1)

	var stats StatsResponse
	require.Equal(t, stdhttp.StatusOK, getJSON(t, ts, "/api/stats", "", &stats))
	assert.Equal(t, StatsResponse{Sessions: 1, Clients: 1, Channels: 2}, stats)
}

func TestStatusAPISessions(t *testing.T) {
	journal, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = journal.Close() })

	ctx := context.Background()
	for _, ev := range []*store.SessionEvent{
		{SessionID: "s1", Kind: store.EventConnect, Address: "10.0.0.1"},
		{SessionID: "s1", Kind: store.EventRegister, Nick: "alice", Address: "10.0.0.1"},
		{SessionID: "s2", Kind: store.EventConnect, Address: "10.0.0.2"},
		{SessionID: "s1", Kind: store.EventQuit, Nick: "alice", Address: "10.0.0.1", Detail: "bye"},
	} {
		require.NoError(t, journal.Record(ctx, ev))
	}

	ts := startTestServer(t, journal, nil)

	var events []SessionEventResponse
	require.Equal(t, stdhttp.StatusOK, getJSON(t, ts, "/api/sessions?session_id=s1", "", &events))
	require.Len(t, events, 3)
	assert.Equal(t, "quit", events[0].Kind)
	assert.Equal(t, "bye", events[0].Detail)

	events = nil
	require.Equal(t, stdhttp.StatusOK, getJSON(t, ts, "/api/sessions?kind=connect&limit=1", "", &events))
	require.Len(t, events, 1)
	assert.Equal(t, "s2", events[0].SessionID)

	assert.Equal(t, stdhttp.StatusBadRequest, getJSON(t, ts, "/api/sessions?limit=0", "", nil))
	assert.Equal(t, stdhttp.StatusBadRequest, getJSON(t, ts, "/api/sessions?limit=abc", "", nil))
}
