package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/symbio/internal/fakeapi"
)

type cli struct {
	fake  *fakeapi.Server
	url   string
	state string
	dir   string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	for _, key := range []string{"SYMBIO_BASE_URL", "SYMBIO_STATE_PATH", "SYMBIO_PROXY", "SYMBIO_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	fake := fakeapi.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	dir := t.TempDir()
	return &cli{fake: fake, url: srv.URL, state: filepath.Join(dir, "state", "symbio.db"), dir: dir}
}

// run executes one invocation against the fake server and shared state file.
func (c *cli) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--base-url", c.url, "--state-path", c.state, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (c *cli) login(t *testing.T, username string) {
	t.Helper()
	c.fake.AddUser(username, "secret")
	out, err := c.run(t, fakeapi.CaptchaAnswer+"\n", "login", "-u", username, "-p", "secret",
		"--captcha-out", filepath.Join(c.dir, "captcha.png"))
	require.NoError(t, err)
	require.Contains(t, out, "signed in as "+username)
}

func TestVersion(t *testing.T) {
	c := newCLI(t)
	out, err := c.run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "symbio version "+Version+"\n", out)
}

func TestLoginPersistsSession(t *testing.T) {
	c := newCLI(t)
	c.login(t, "alice")

	img, err := os.ReadFile(filepath.Join(c.dir, "captcha.png"))
	require.NoError(t, err)
	assert.NotEmpty(t, img)

	out, err := c.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")

	out, err = c.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "signed out")

	_, err = c.run(t, "", "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}

func TestLoginRetriesWrongCaptcha(t *testing.T) {
	c := newCLI(t)
	c.fake.AddUser("bob", "secret")
	out, err := c.run(t, "WRONG\n"+fakeapi.CaptchaAnswer+"\n", "login", "-u", "bob", "-p", "secret",
		"--captcha-out", filepath.Join(c.dir, "captcha.png"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "captcha written to"))
	assert.Contains(t, out, "signed in as bob")
}

func TestLoginGivesUpAfterAttempts(t *testing.T) {
	c := newCLI(t)
	c.fake.AddUser("bob", "secret")
	_, err := c.run(t, "a\nb\nc\n", "login", "-u", "bob", "-p", "secret",
		"--captcha-out", filepath.Join(c.dir, "captcha.png"))
	require.Error(t, err)
	assert.Equal(t, 3, c.fake.Hits("/auth"))
}

func TestTasksAndDetail(t *testing.T) {
	c := newCLI(t)
	c.login(t, "alice")
	clientID, _ := c.fake.AddUser("carol", "secret")
	id := c.fake.AddTask(clientID, "Logo design", "open", 120)

	out, err := c.run(t, "", "tasks", "--filter", "open")
	require.NoError(t, err)
	assert.Contains(t, out, "Logo design")

	_, err = c.run(t, "", "tasks", "--filter", "bogus")
	require.Error(t, err)

	out, err = c.run(t, "", "offer", itoa(id), "--price", "100", "-m", "I can do it")
	require.NoError(t, err)
	assert.Contains(t, out, "offer sent")

	out, err = c.run(t, "", "task", itoa(id))
	require.NoError(t, err)
	assert.Contains(t, out, "offers (1)")
	assert.Contains(t, out, "I can do it")
	assert.NotContains(t, out, "you can: offer")
}

func TestTicketShell(t *testing.T) {
	c := newCLI(t)
	c.login(t, "alice")

	out, err := c.run(t, "", "ticket", "create", "-s", "Payout stuck", "-m", "where is my payout")
	require.NoError(t, err)
	assert.Contains(t, out, "ticket created")
	var id string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Payout stuck") {
			id = strings.Fields(line)[0]
		}
	}
	require.NotEmpty(t, id)

	out, err = c.run(t, "/nope\nany update?\n/close\n", "ticket", "open", id)
	require.NoError(t, err)
	assert.Contains(t, out, "where is my payout")
	assert.Contains(t, out, "unsupported command: nope")
	assert.Contains(t, out, "you: any update?")
	assert.Contains(t, out, "ticket closed")

	out, err = c.run(t, "", "ticket", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "closed")
}

func TestWallet(t *testing.T) {
	c := newCLI(t)
	c.login(t, "alice")

	out, err := c.run(t, "", "wallet")
	require.NoError(t, err)
	assert.Contains(t, out, "balance:")

	_, err = c.run(t, "", "wallet", "send", "addr", "not-a-number")
	require.Error(t, err)
}

func TestRequiresSession(t *testing.T) {
	c := newCLI(t)
	for _, args := range [][]string{{"wallet"}, {"disputes"}, {"chat", "list"}, {"ticket", "list"}} {
		_, err := c.run(t, "", args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "not signed in")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
