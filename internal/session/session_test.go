package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/catalog-flipbook/internal/apperr"
	"github.com/example/catalog-flipbook/internal/config"
	"github.com/example/catalog-flipbook/internal/events"
	"github.com/example/catalog-flipbook/internal/infrastructure/store"
	"github.com/example/catalog-flipbook/internal/infrastructure/store/mocks"
	"github.com/example/catalog-flipbook/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const demoPassword = "demo-password-1"

type fakeAuthenticator struct {
	token string
	err   error
	calls int
}

func (f *fakeAuthenticator) Login(_ context.Context, username, password string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

type recordingPublisher struct {
	published []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) {
	r.published = append(r.published, e)
}

func testConfig(t *testing.T, demo bool) *config.Config {
	t.Helper()
	cfg := &config.Config{SessionTTL: time.Hour}
	if demo {
		hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.MinCost)
		require.NoError(t, err)
		cfg.DemoMode = true
		cfg.DemoUsername = "demo"
		cfg.DemoPasswordHash = string(hash)
		cfg.SessionSecret = "0123456789abcdef0123456789abcdef"
	}
	return cfg
}

type fixture struct {
	sess   *Session
	remote *fakeAuthenticator
	store  *mocks.MockStore
	pub    *recordingPublisher
}

func newFixture(t *testing.T, demo bool) fixture {
	f := fixture{
		remote: &fakeAuthenticator{token: "remote-token"},
		store:  mocks.NewMockStore(),
		pub:    &recordingPublisher{},
	}
	f.sess = New(f.remote, testConfig(t, demo), f.store, f.pub, logger.Nop())
	return f
}

// =============================================================================
// Login Tests
// =============================================================================

func TestLogin_Remote(t *testing.T) {
	f := newFixture(t, false)

	st, err := f.sess.Login(context.Background(), Credentials{Username: "mor_2314", Password: "83r5^_"})

	require.NoError(t, err)
	assert.True(t, st.Authenticated)
	assert.Equal(t, ModeRemote, st.Mode)
	assert.Equal(t, "remote-token", st.Token)
	require.NotNil(t, st.User)
	assert.Equal(t, "mor_2314", st.User.Username)
	assert.Equal(t, "Barranquilla", st.User.Address.City)
	assert.True(t, f.sess.IsAuthenticated())

	require.Len(t, f.store.SetCalls, 1)
	assert.Equal(t, store.KeyAuthSession, f.store.SetCalls[0].Key)
	assert.Equal(t, time.Hour, f.store.SetCalls[0].TTL)

	require.Len(t, f.pub.published, 1)
	changed := f.pub.published[0].(events.SessionChanged)
	assert.True(t, changed.Authenticated)
	assert.Equal(t, "mor_2314", changed.Username)
}

func TestLogin_RemoteRejected(t *testing.T) {
	f := newFixture(t, false)
	f.remote.err = apperr.Unauthorized("invalid credentials")

	_, err := f.sess.Login(context.Background(), Credentials{Username: "mor_2314", Password: "bad"})

	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	assert.False(t, f.sess.IsAuthenticated())
	assert.Empty(t, f.pub.published)
	assert.Empty(t, f.store.SetCalls)
}

func TestLogin_NetworkFailureNeverBecomesDemoLogin(t *testing.T) {
	f := newFixture(t, true)
	f.remote.err = apperr.Network("dial tcp", errors.New("connection refused"))

	// Not the demo user: goes remote and fails.
	_, err := f.sess.Login(context.Background(), Credentials{Username: "mor_2314", Password: "83r5^_"})

	assert.True(t, apperr.Is(err, apperr.KindNetwork))
	assert.False(t, f.sess.IsAuthenticated())
}

func TestLogin_Demo(t *testing.T) {
	f := newFixture(t, true)

	st, err := f.sess.Login(context.Background(), Credentials{Username: "demo", Password: demoPassword})

	require.NoError(t, err)
	assert.Equal(t, ModeDemo, st.Mode)
	assert.NotEmpty(t, st.Token)
	assert.Equal(t, 0, f.remote.calls)
	assert.NoError(t, f.sess.ValidateToken(st.Token))
}

func TestLogin_DemoWrongPasswordDoesNotTryRemote(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.sess.Login(context.Background(), Credentials{Username: "demo", Password: "nope"})

	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	assert.Equal(t, 0, f.remote.calls)
}

func TestLogin_DemoUserWithoutDemoModeGoesRemote(t *testing.T) {
	f := newFixture(t, false)

	st, err := f.sess.Login(context.Background(), Credentials{Username: "demo", Password: demoPassword})

	require.NoError(t, err)
	assert.Equal(t, ModeRemote, st.Mode)
	assert.Equal(t, 1, f.remote.calls)
}

func TestLogin_RequiresCredentials(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.sess.Login(context.Background(), Credentials{Username: "  ", Password: "x"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 0, f.remote.calls)
}

func TestLogin_StoreFailureStillLogsIn(t *testing.T) {
	f := newFixture(t, false)
	f.store.SetErr = errors.New("read-only")

	st, err := f.sess.Login(context.Background(), Credentials{Username: "u", Password: "p"})

	require.NoError(t, err)
	assert.True(t, st.Authenticated)
}

// =============================================================================
// Logout / Restore Tests
// =============================================================================

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	_, err := f.sess.Login(ctx, Credentials{Username: "u", Password: "p"})
	require.NoError(t, err)

	f.sess.Logout(ctx)

	assert.False(t, f.sess.IsAuthenticated())
	assert.False(t, f.store.Has(store.KeyAuthSession))
	require.Len(t, f.pub.published, 2)
	assert.False(t, f.pub.published[1].(events.SessionChanged).Authenticated)
}

func TestLogout_WhenLoggedOutIsSilent(t *testing.T) {
	f := newFixture(t, false)
	f.sess.Logout(context.Background())
	assert.Empty(t, f.pub.published)
}

func TestRestore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	_, err := f.sess.Login(ctx, Credentials{Username: "u", Password: "p"})
	require.NoError(t, err)

	restored := New(f.remote, testConfig(t, false), f.store, nil, logger.Nop())
	assert.True(t, restored.Restore(ctx))

	st := restored.Snapshot()
	assert.True(t, st.Authenticated)
	assert.Equal(t, "remote-token", st.Token)
	assert.Equal(t, "u", st.User.Username)
}

func TestRestore_CorruptRecordIsCleared(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	f.store.Seed(store.KeyAuthSession, []byte(`{"token":"t","user":`))

	assert.False(t, f.sess.Restore(ctx))
	assert.False(t, f.sess.IsAuthenticated())
	assert.False(t, f.store.Has(store.KeyAuthSession))
}

func TestRestore_IncompleteRecordIsCleared(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	f.store.Seed(store.KeyAuthSession, []byte(`{"token":"t"}`))

	assert.False(t, f.sess.Restore(ctx))
	assert.False(t, f.store.Has(store.KeyAuthSession))
}

func TestRestore_ExpiredRecordIsCleared(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	f.store.Seed(store.KeyAuthSession, []byte(`{"token":"t","mode":"remote","user":{"username":"u"},"expires_at":"2001-01-01T00:00:00Z"}`))

	assert.False(t, f.sess.Restore(ctx))
	assert.False(t, f.store.Has(store.KeyAuthSession))
}

func TestRestore_Nothing(t *testing.T) {
	f := newFixture(t, false)
	assert.False(t, f.sess.Restore(context.Background()))
	assert.Empty(t, f.store.DeleteCalls)
}

// =============================================================================
// Token / Subscription Tests
// =============================================================================

func TestValidateToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	assert.Error(t, f.sess.ValidateToken("remote-token"))

	_, err := f.sess.Login(ctx, Credentials{Username: "u", Password: "p"})
	require.NoError(t, err)

	assert.NoError(t, f.sess.ValidateToken("remote-token"))
	assert.True(t, apperr.Is(f.sess.ValidateToken("other"), apperr.KindUnauthorized))
	assert.Error(t, f.sess.ValidateToken(""))

	f.sess.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Error(t, f.sess.ValidateToken("remote-token"))
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	var seen []bool
	unsubscribe := f.sess.Subscribe(func(st State) { seen = append(seen, st.Authenticated) })

	_, err := f.sess.Login(ctx, Credentials{Username: "u", Password: "p"})
	require.NoError(t, err)
	f.sess.Logout(ctx)

	unsubscribe()
	unsubscribe()
	_, err = f.sess.Login(ctx, Credentials{Username: "u", Password: "p"})
	require.NoError(t, err)

	assert.Equal(t, []bool{true, false}, seen)
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	_, err := f.sess.Login(ctx, Credentials{Username: "u", Password: "p"})
	require.NoError(t, err)

	st := f.sess.Snapshot()
	st.User.Username = "changed"

	assert.Equal(t, "u", f.sess.Snapshot().User.Username)
	assert.Equal(t, "u", f.sess.Snapshot().View().User.Username)
}
