package gallery

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_ReusesSavedSession(t *testing.T) {
	doer := &fakeDoer{}
	mod := &Moderator{Username: "mod", Password: "pw"}
	c := newTestClient(t, doer, mod)
	require.NoError(t, saveSession(c.cfg.SessionDir, "mod", "saved-token"))

	require.NoError(t, c.Login(context.Background()))
	assert.Equal(t, "saved-token", mod.Token())
	assert.True(t, c.Moderator().IsAuthenticated())
	assert.Empty(t, doer.Calls())
}

func TestLogin_ExpiredSessionLogsInAgain(t *testing.T) {
	doer := &fakeDoer{responses: []response{{status: 200, body: `{"token":"new"}`}}}
	mod := &Moderator{Username: "mod", Password: "pw"}
	c := newTestClient(t, doer, mod)

	old, err := json.Marshal(savedSession{Token: "old", SavedAt: time.Now().Add(-48 * time.Hour)})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(sessionPath(c.cfg.SessionDir, "mod"), old, 0600))

	require.NoError(t, c.Login(context.Background()))
	assert.Equal(t, "new", mod.Token())
	assert.Len(t, doer.Calls(), 1)

	token, err := loadSession(c.cfg.SessionDir, "mod", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "new", token)
}

func TestLogin_SendsTOTPCode(t *testing.T) {
	doer := &fakeDoer{responses: []response{{status: 200, body: `{"token":"t"}`}}}
	mod := &Moderator{Username: "mod", Password: "pw", TOTPSecret: "JBSWY3DPEHPK3PXP"}
	c := newTestClient(t, doer, mod)

	require.NoError(t, c.Login(context.Background()))

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(doer.Calls()[0].body), &payload))
	assert.Len(t, payload["otp"], 6)
	assert.Equal(t, "pw", payload["password"])
}

func TestLogin_Rejected(t *testing.T) {
	doer := &fakeDoer{responses: []response{{status: 401, body: "bad credentials"}}}
	mod := &Moderator{Username: "mod", Password: "wrong"}
	c := newTestClient(t, doer, mod)

	err := c.Login(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, mod.IsAuthenticated())
}

func TestLogin_NoPassword(t *testing.T) {
	c := newTestClient(t, &fakeDoer{}, &Moderator{Username: "mod"})
	require.Error(t, c.Login(context.Background()))
}

func TestLogout(t *testing.T) {
	mod := &Moderator{Username: "mod", Password: "pw"}
	c := newTestClient(t, &fakeDoer{}, mod)
	require.NoError(t, saveSession(c.cfg.SessionDir, "mod", "tok"))
	mod.SetToken("tok")

	require.NoError(t, c.Logout())
	assert.False(t, mod.IsAuthenticated())
	_, err := os.Stat(sessionPath(c.cfg.SessionDir, "mod"))
	assert.True(t, os.IsNotExist(err))

	// Logging out twice is fine.
	require.NoError(t, c.Logout())
}

func TestLogout_NoModerator(t *testing.T) {
	c := newTestClient(t, &fakeDoer{}, nil)
	require.ErrorIs(t, c.Logout(), ErrNoModerator)
	assert.Nil(t, c.Moderator())
	assert.False(t, c.Moderator().IsAuthenticated())
}
