package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nati-dev/nati-console/internal/api/http/dto"
	"github.com/nati-dev/nati-console/internal/commands"
)

func TestCommands(t *testing.T, env *Env) {
	owner := signUp(t, env, "commandowner")
	agent := addAgent(t, env, owner.ID, "workstation", time.Now())
	require.Equal(t, agent.ID, refresh(t, env, owner.Token).SelectedID)

	send := dto.SendCommandRequest{Type: "start_app", Target: "web"}

	t.Run("dispatch and in-flight guard", func(t *testing.T) {
		rr := doJSONWithAuth(env.Router, http.MethodPost, "/api/v1/commands", send, owner.Token)
		require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

		var resp dto.CommandResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, agent.SessionID, resp.TargetSessionID)
		assert.Equal(t, "web", resp.Payload["target"])

		rr = doJSONWithAuth(env.Router, http.MethodPost, "/api/v1/commands", send, owner.Token)
		assert.Equal(t, http.StatusConflict, rr.Code)

		cmds, err := env.Commands.ListForSession(context.Background(), agent.SessionID, time.Time{})
		require.NoError(t, err)
		require.Len(t, cmds, 1)
		assert.Equal(t, commands.TypeStartApp, cmds[0].Type)

		assert.Eventually(t, func() bool {
			rr := doJSONWithAuth(env.Router, http.MethodPost, "/api/v1/commands", send, owner.Token)
			return rr.Code == http.StatusAccepted
		}, 2*time.Second, 25*time.Millisecond, "flag clears after the settle delay")
	})

	t.Run("unknown type", func(t *testing.T) {
		rr := doJSONWithAuth(env.Router, http.MethodPost, "/api/v1/commands", dto.SendCommandRequest{Type: "reboot"}, owner.Token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("no agent selected", func(t *testing.T) {
		lonely := signUp(t, env, "commandlonely")
		refresh(t, env, lonely.Token)

		rr := doJSONWithAuth(env.Router, http.MethodPost, "/api/v1/commands", send, lonely.Token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("terminal", func(t *testing.T) {
		rr := doJSONWithAuth(env.Router, http.MethodPost, "/api/v1/terminal", dto.TerminalRequest{Command: "git status"}, owner.Token)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.TerminalResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Lines, 2)
		assert.Equal(t, "input", resp.Lines[0].Kind)
		assert.Equal(t, "output", resp.Lines[1].Kind)

		cmds, err := env.Commands.ListForSession(context.Background(), agent.SessionID, time.Time{})
		require.NoError(t, err)
		last := cmds[len(cmds)-1]
		assert.Equal(t, commands.TypeExecuteTerminal, last.Type)
		assert.Equal(t, "git status", last.Payload["command"])

		rr = doJSONWithAuth(env.Router, http.MethodDelete, "/api/v1/terminal", nil, owner.Token)
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = doJSONWithAuth(env.Router, http.MethodGet, "/api/v1/terminal", nil, owner.Token)
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Empty(t, resp.Lines)
	})
}
