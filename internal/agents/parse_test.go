package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLenient_Object(t *testing.T) {
	res := DecodeLenient[SystemInfo]([]byte(`{"cpu":12.5,"memory":40,"disk":70,"uptime":3600,"platform":"darwin"}`))
	require.True(t, res.OK)
	assert.Equal(t, 12.5, res.Value.CPU)
	assert.Equal(t, int64(3600), res.Value.Uptime)
	assert.Equal(t, "darwin", res.Value.Platform)
}

func TestDecodeLenient_StringWrapped(t *testing.T) {
	raw := []byte(`"[{\"name\":\"web\",\"status\":\"running\",\"port\":3000}]"`)

	res := DecodeLenient[[]RunningApp](raw)
	require.True(t, res.OK)
	require.Len(t, res.Value, 1)
	assert.Equal(t, "web", res.Value[0].Name)
	assert.Equal(t, 3000, res.Value[0].Port)
}

func TestDecodeLenient_EmptyAndNull(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", `""`} {
		res := DecodeLenient[[]RunningApp]([]byte(raw))
		assert.True(t, res.OK, "input %q", raw)
		assert.Empty(t, res.Value, "input %q", raw)
	}
}

func TestDecodeLenient_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"broken object", `{"cpu":`},
		{"wrong shape", `{"name":"web"}`},
		{"wrapped garbage", `"not json"`},
		{"unterminated string", `"abc`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := DecodeLenient[[]RunningApp]([]byte(tt.raw))
			assert.False(t, res.OK)
			assert.Error(t, res.Err)

			fallback := []RunningApp{}
			assert.Equal(t, fallback, res.Or(fallback))
		})
	}
}
