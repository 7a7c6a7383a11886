package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schedulesYAML = `
nightly-report:
  cron: "0 3 * * *"
  job: report
  args:
    kind: daily
    recipients: [ops@example.com]
  retries: 5
heartbeat:
  cron: "@every 1m"
  job: log
`

func TestLoadSchedules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedules.yml")
	require.NoError(t, os.WriteFile(path, []byte(schedulesYAML), 0o600))

	s, err := LoadSchedules(path)
	require.NoError(t, err)
	require.Len(t, s, 2)

	assert.Equal(t, "heartbeat", s[0].Name)
	assert.Equal(t, "nightly-report", s[1].Name)
	assert.Equal(t, 5, s[1].Retries)

	js, err := s.Jobqueue()
	require.NoError(t, err)
	assert.Nil(t, js[0].Args)
	assert.Equal(t, "report", js[1].Job)
	assert.JSONEq(t, `{"kind":"daily","recipients":["ops@example.com"]}`, string(js[1].Args))
}

func TestLoadSchedulesEmptyPath(t *testing.T) {
	s, err := LoadSchedules("")
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestParseSchedulesInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no cron", "a:\n  job: x\n", `schedule "a": cron required`},
		{"bad cron", "a:\n  cron: sometimes\n  job: x\n", "invalid cron"},
		{"no job", "a:\n  cron: \"@daily\"\n", "job required"},
		{"negative retries", "a:\n  cron: \"@daily\"\n  job: x\n  retries: -1\n", "retries"},
		{"empty entry", "a:\n", "empty entry"},
		{"not yaml", "a: [", "unmarshal yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchedules([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
