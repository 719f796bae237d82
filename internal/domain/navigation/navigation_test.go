package navigation

import (
	"testing"

	"github.com/GriffinCanCode/viewsync/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var sampleProject = &types.ProjectSnapshot{ID: "p1", Name: "Site"}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		view    types.View
		project *types.ProjectSnapshot
		want    Target
		ok      bool
	}{
		{"splash", types.ViewSplashScreen, nil, Target{Path: "/"}, true},
		{"splash with project", types.ViewSplashScreen, sampleProject, Target{Path: "/"}, true},
		{"detail with project", types.ViewPageDetail, sampleProject, Target{Path: "/project/p1", Title: "Site"}, true},
		{"detail without project", types.ViewPageDetail, nil, Target{}, false},
		{"unknown view", types.View("Settings"), sampleProject, Target{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(types.AppSnapshot{ActiveView: tt.view}, tt.project)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShadowSkipsDuplicates(t *testing.T) {
	stack := NewStack()
	shadow := NewShadow(stack)
	splash := types.AppSnapshot{ActiveView: types.ViewSplashScreen}

	assert.True(t, shadow.Apply(splash, nil))
	assert.False(t, shadow.Apply(splash, nil))
	assert.Equal(t, 1, stack.Len())

	detail := types.AppSnapshot{ActiveView: types.ViewPageDetail}
	assert.True(t, shadow.Apply(detail, sampleProject))
	assert.False(t, shadow.Apply(detail, nil), "no address, nothing pushed")
	assert.Equal(t, 2, stack.Len())

	current, ok := stack.Current()
	require.True(t, ok)
	assert.Equal(t, "/project/p1", current.Path)
	assert.Equal(t, detail, current.State)
}

func TestShadowForget(t *testing.T) {
	stack := NewStack()
	shadow := NewShadow(stack)
	splash := types.AppSnapshot{ActiveView: types.ViewSplashScreen}

	shadow.Apply(splash, nil)
	shadow.Forget()
	assert.True(t, shadow.Apply(splash, nil))
	assert.Equal(t, 2, stack.Len())
}

func TestStackBackForward(t *testing.T) {
	stack := NewStack()

	var popped []string
	stack.OnPop(func(e Entry) { popped = append(popped, e.Path) })

	assert.False(t, stack.Back())

	stack.PushState(types.AppSnapshot{ActiveView: types.ViewSplashScreen}, "", "/")
	stack.PushState(types.AppSnapshot{ActiveView: types.ViewPageDetail}, "Site", "/project/p1")

	assert.True(t, stack.Back())
	assert.False(t, stack.Back())
	assert.True(t, stack.Forward())
	assert.False(t, stack.Forward())

	assert.Equal(t, []string{"/", "/project/p1"}, popped)
}

func TestStackPushDropsForward(t *testing.T) {
	stack := NewStack()
	stack.PushState(types.AppSnapshot{}, "", "/")
	stack.PushState(types.AppSnapshot{}, "", "/project/a")
	stack.Back()

	stack.PushState(types.AppSnapshot{}, "", "/project/b")

	assert.Equal(t, 2, stack.Len())
	assert.False(t, stack.Forward())
	current, _ := stack.Current()
	assert.Equal(t, "/project/b", current.Path)
}

func TestShadowSync(t *testing.T) {
	stack := NewStack()
	shadow := NewShadow(stack)
	splash := types.AppSnapshot{ActiveView: types.ViewSplashScreen}
	detail := types.AppSnapshot{ActiveView: types.ViewPageDetail}

	shadow.Apply(splash, nil)
	shadow.Apply(detail, sampleProject)
	require.True(t, stack.Back())

	popped, _ := stack.Current()
	shadow.Sync(popped)

	assert.False(t, shadow.Apply(splash, nil), "popped state is not pushed again")
	assert.True(t, stack.Forward(), "forward history survives")
}

// mockNavigator records PushState calls.
type mockNavigator struct {
	mock.Mock
}

func (m *mockNavigator) PushState(state types.AppSnapshot, title, path string) {
	m.Called(state, title, path)
}

func TestShadowPushesResolvedTarget(t *testing.T) {
	nav := new(mockNavigator)
	detail := types.AppSnapshot{ID: "sess_1", ActiveView: types.ViewPageDetail}
	nav.On("PushState", detail, "Site", "/project/p1").Once()

	shadow := NewShadow(nav)
	assert.True(t, shadow.Apply(detail, sampleProject))
	assert.False(t, shadow.Apply(detail, sampleProject))
	assert.False(t, shadow.Apply(detail, nil))

	nav.AssertExpectations(t)
	nav.AssertNumberOfCalls(t, "PushState", 1)
}
