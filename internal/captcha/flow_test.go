package captcha

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/symbio/internal/api"
	"github.com/sandeepkv93/symbio/internal/apperr"
)

type stubSource struct {
	calls int
	err   error
}

func (s *stubSource) FetchCaptcha(context.Context) (api.Captcha, error) {
	s.calls++
	if s.err != nil {
		return api.Captcha{}, s.err
	}
	return api.Captcha{ID: string(rune('a' + s.calls - 1)), Image: []byte{0x89}}, nil
}

func TestFlowFetchReusesLiveChallenge(t *testing.T) {
	src := &stubSource{}
	f := NewFlow(src, nil)
	ctx := context.Background()

	first, err := f.Fetch(ctx)
	require.NoError(t, err)
	second, err := f.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls)

	refreshed, err := f.Refresh(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, refreshed.ID)
	assert.Equal(t, 2, src.calls)
}

func TestFlowSolveConsumesChallenge(t *testing.T) {
	f := NewFlow(&stubSource{}, nil)
	_, err := f.Solve("abc")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	ch, err := f.Fetch(context.Background())
	require.NoError(t, err)

	_, err = f.Solve("   ")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	sol, err := f.Solve(" abc ")
	require.NoError(t, err)
	assert.Equal(t, Solution{ID: ch.ID, Answer: "abc"}, sol)

	_, ok := f.Current()
	assert.False(t, ok)
}

func TestFlowRefreshFailureLeavesNoChallenge(t *testing.T) {
	src := &stubSource{}
	f := NewFlow(src, nil)
	_, err := f.Fetch(context.Background())
	require.NoError(t, err)

	src.err = errors.New("boom")
	_, err = f.Refresh(context.Background())
	require.Error(t, err)
	_, ok := f.Current()
	assert.False(t, ok)
}
