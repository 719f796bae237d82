package boot

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/GriffinCanCode/viewsync/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmpty(t *testing.T) {
	for _, raw := range []string{"", "  ", "{}", "%7B%7D"} {
		p, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.True(t, p.Empty(), raw)
	}
}

func TestParseFull(t *testing.T) {
	raw := url.PathEscape(`{"host":"node","view":"PageDetail","project":{"id":"p1","name":"Site","document":{"pages":[]}}}`)

	p, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, types.HostNode, p.Host)
	assert.Equal(t, types.ViewPageDetail, p.View)
	require.NotNil(t, p.Project)
	assert.Equal(t, "p1", p.Project.ID)
	assert.JSONEq(t, `{"pages":[]}`, string(p.Project.Document))
}

func TestParseKeepsPlusSigns(t *testing.T) {
	p, err := Parse(`{"project":{"id":"a+b"}}`)
	require.NoError(t, err)
	assert.Equal(t, "a+b", p.Project.ID)
}

func TestParseMalformed(t *testing.T) {
	for _, raw := range []string{"%zz", "{not json", "[1,2]", `"str"`} {
		p, err := Parse(raw)
		assert.ErrorIs(t, err, ErrMalformedBootPayload, raw)
		assert.True(t, p.Empty(), raw)
	}
}

func TestParseDropsUnknownValues(t *testing.T) {
	p, err := Parse(`{"host":"electron","view":"Settings","project":{"id":"p1"}}`)

	assert.ErrorIs(t, err, ErrMalformedBootPayload)
	assert.Equal(t, types.HostUnset, p.Host)
	assert.Equal(t, types.View(""), p.View)
	require.NotNil(t, p.Project)
	assert.Equal(t, "p1", p.Project.ID)
}

func TestEncodeRoundTrip(t *testing.T) {
	in := Payload{
		Host:    types.HostBrowser,
		View:    types.ViewPageDetail,
		Project: &types.ProjectSnapshot{ID: "p1", Name: "A & B", Document: json.RawMessage(`{"x":"<b>"}`)},
	}

	raw, err := Encode(in)
	require.NoError(t, err)
	assert.NotContains(t, raw, "<")

	out, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, in.Host, out.Host)
	assert.Equal(t, in.View, out.View)
	assert.Equal(t, "A & B", out.Project.Name)
	assert.JSONEq(t, `{"x":"<b>"}`, string(out.Project.Document))
}

func TestExtract(t *testing.T) {
	raw, err := Encode(Payload{Host: types.HostNode})
	require.NoError(t, err)

	page := `<!doctype html><html><body><textarea id="data" hidden>` + raw + `</textarea></body></html>`
	p, err := Extract(page)
	require.NoError(t, err)
	assert.Equal(t, types.HostNode, p.Host)

	p, err = Extract(`<html><body>no data</body></html>`)
	require.NoError(t, err)
	assert.True(t, p.Empty())
}

type stubClient struct {
	page string
	err  error
	url  string
}

func (s *stubClient) GetText(_ context.Context, url string) (string, error) {
	s.url = url
	return s.page, s.err
}

func TestFetch(t *testing.T) {
	client := &stubClient{page: `<textarea id="data">%7B%22view%22%3A%22SplashScreen%22%7D</textarea>`}

	p, err := Fetch(context.Background(), client, "http://localhost:1879/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:1879/", client.url)
	assert.Equal(t, types.ViewSplashScreen, p.View)

	boom := errors.New("refused")
	p, err = Fetch(context.Background(), &stubClient{err: boom}, "http://localhost:1/")
	assert.ErrorIs(t, err, boom)
	assert.True(t, p.Empty())
}
