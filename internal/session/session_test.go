package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionStartsAnonymous(t *testing.T) {
	sess := New()
	require.Equal(t, Anonymous, sess.State())
	name, ok := sess.Username()
	require.False(t, ok)
	require.Empty(t, name)
}

func TestSessionTransitions(t *testing.T) {
	sess := New()

	sess.Authenticate("")
	require.Equal(t, Anonymous, sess.State())

	sess.Authenticate("alice")
	name, ok := sess.Username()
	require.True(t, ok)
	require.Equal(t, "alice", name)
	require.Equal(t, "authenticated", sess.State().String())

	sess.Reset()
	_, ok = sess.Username()
	require.False(t, ok)
}

func TestTokensRoundTrip(t *testing.T) {
	tokens, err := NewTokens("s3cret", time.Hour)
	require.NoError(t, err)

	token, expires, err := tokens.Issue("alice")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	sess := New()
	require.NoError(t, tokens.Resume(sess, token))
	name, ok := sess.Username()
	require.True(t, ok)
	require.Equal(t, "alice", name)
}

func TestTokensRejectInvalid(t *testing.T) {
	tokens, err := NewTokens("s3cret", time.Hour)
	require.NoError(t, err)
	other, err := NewTokens("different", time.Hour)
	require.NoError(t, err)

	forged, _, err := other.Issue("alice")
	require.NoError(t, err)

	sess := New()
	require.ErrorIs(t, tokens.Resume(sess, forged), ErrInvalidToken)
	require.ErrorIs(t, tokens.Resume(sess, "not-a-token"), ErrInvalidToken)
	require.Equal(t, Anonymous, sess.State())
}

func TestTokensExpire(t *testing.T) {
	tokens, err := NewTokens("s3cret", time.Minute)
	require.NoError(t, err)

	issuedAt := time.Now().Add(-time.Hour)
	tokens.now = func() time.Time { return issuedAt }
	token, _, err := tokens.Issue("alice")
	require.NoError(t, err)

	tokens.now = time.Now
	sess := New()
	require.ErrorIs(t, tokens.Resume(sess, token), ErrInvalidToken)
	require.Equal(t, Anonymous, sess.State())
}

func TestNewTokensRequiresSecret(t *testing.T) {
	_, err := NewTokens("", time.Hour)
	require.Error(t, err)
}
