package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHostType(t *testing.T) {
	tests := []struct {
		in      string
		want    HostType
		wantErr bool
	}{
		{"browser", HostBrowser, false},
		{"node", HostNode, false},
		{"electron", HostUnset, true},
		{"", HostUnset, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHostType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntegrated(t *testing.T) {
	assert.True(t, HostNode.Integrated())
	assert.False(t, HostBrowser.Integrated())
	assert.False(t, HostUnset.Integrated())
}

func TestParseView(t *testing.T) {
	v, err := ParseView("PageDetail")
	require.NoError(t, err)
	assert.Equal(t, ViewPageDetail, v)
	assert.True(t, v.RequiresProject())
	assert.False(t, ViewSplashScreen.RequiresProject())

	_, err = ParseView("Settings")
	assert.Error(t, err)
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	orig := Snapshot{
		App: AppSnapshot{ActiveView: ViewPageDetail},
		Project: &ProjectSnapshot{
			ID:       "p1",
			Document: json.RawMessage(`{"pages":[]}`),
		},
	}

	c := orig.Clone()
	c.Project.Document[2] = 'X'
	c.Project.Name = "changed"

	assert.Equal(t, `{"pages":[]}`, string(orig.Project.Document))
	assert.Empty(t, orig.Project.Name)
	assert.Equal(t, "p1", c.ProjectID())
	assert.Equal(t, "", Snapshot{}.ProjectID())
}
