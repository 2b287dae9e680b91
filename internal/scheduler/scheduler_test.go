package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mkarpov/notibot/internal/store"
)

type fakeSource struct {
	text  string
	err   error
	calls int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Daily(ctx context.Context, sign string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text + " for " + sign, nil
}

type fakeNotifier struct {
	sent map[int64]string
	err  error
}

func (f *fakeNotifier) SendDaily(ctx context.Context, userID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	if f.sent == nil {
		f.sent = make(map[int64]string)
	}
	f.sent[userID] = text
	return nil
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedSubscriber(t *testing.T, db store.Store, id int64, sign string, hour int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, db.EnsureUser(ctx, id, hour))
	require.NoError(t, db.SetSign(ctx, id, sign))
	require.NoError(t, db.SetNotifyHour(ctx, id, hour))
}

var nineAM = time.Date(2025, 3, 14, 9, 12, 0, 0, time.UTC)

func TestDeliverMarksSentOnSuccess(t *testing.T) {
	db := newTestStore(t)
	seedSubscriber(t, db, 100, "leo", 9)
	seedSubscriber(t, db, 200, "aries", 9)

	src := &fakeSource{text: "good day"}
	nf := &fakeNotifier{}
	s := New(db, src, nf, time.Minute, time.UTC, zaptest.NewLogger(t))

	s.deliver(context.Background(), nineAM)

	assert.Equal(t, "good day for leo", nf.sent[100])
	assert.Equal(t, "good day for aries", nf.sent[200])

	// Nobody is due anymore today at this hour.
	due, err := db.ListDueUsers(context.Background(), "2025-03-14", 9)
	require.NoError(t, err)
	assert.Empty(t, due)

	// A second pass in the same hour sends nothing more.
	s.deliver(context.Background(), nineAM)
	assert.Equal(t, 2, src.calls)
}

func TestDeliverRetainsFailedUsers(t *testing.T) {
	db := newTestStore(t)
	seedSubscriber(t, db, 100, "leo", 9)

	src := &fakeSource{text: "good day"}
	nf := &fakeNotifier{err: errors.New("telegram down")}
	s := New(db, src, nf, time.Minute, time.UTC, zaptest.NewLogger(t))

	s.deliver(context.Background(), nineAM)

	// Failed delivery: not marked sent, retried next tick.
	due, err := db.ListDueUsers(context.Background(), "2025-03-14", 9)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.EqualValues(t, 100, due[0].UserID)

	nf.err = nil
	s.deliver(context.Background(), nineAM)
	assert.Equal(t, "good day for leo", nf.sent[100])

	due, err = db.ListDueUsers(context.Background(), "2025-03-14", 9)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestDeliverSkipsOnGenerationFailure(t *testing.T) {
	db := newTestStore(t)
	seedSubscriber(t, db, 100, "leo", 9)

	src := &fakeSource{err: errors.New("provider 429")}
	nf := &fakeNotifier{}
	s := New(db, src, nf, time.Minute, time.UTC, zaptest.NewLogger(t))

	s.deliver(context.Background(), nineAM)

	assert.Empty(t, nf.sent)
	due, err := db.ListDueUsers(context.Background(), "2025-03-14", 9)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestDeliverIgnoresOtherHours(t *testing.T) {
	db := newTestStore(t)
	seedSubscriber(t, db, 100, "leo", 18)

	src := &fakeSource{text: "good evening"}
	nf := &fakeNotifier{}
	s := New(db, src, nf, time.Minute, time.UTC, zaptest.NewLogger(t))

	s.deliver(context.Background(), nineAM)

	assert.Empty(t, nf.sent)
	assert.Zero(t, src.calls)
}
