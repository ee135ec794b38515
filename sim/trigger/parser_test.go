// This file is part of uarchsim.
//
// uarchsim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// uarchsim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with uarchsim.  If not, see <https://www.gnu.org/licenses/>.

package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetsetilly/uarchsim/sim/notify"
	"github.com/jetsetilly/uarchsim/sim/scheduler"
	"github.com/jetsetilly/uarchsim/sim/simerrors"
)

func newTestContext(t *testing.T) (*Context, *scheduler.Scheduler) {
	t.Helper()
	sched := scheduler.New("root")
	require.NoError(t, sched.Finalize())
	return &Context{
		Notify:           notify.NewRegistry(),
		Manager:          NewManager(),
		Stats:            NewStatRegistry(),
		Counters:         NewCounterRegistry(),
		Scheduler:        sched,
		StatPollInterval: 1,
	}, sched
}

func TestBuildSingleCounterLeaf(t *testing.T) {
	ctx, _ := newTestContext(t)
	counter := NewCounter()
	ctx.Counters.Register("retired", counter)

	fired := 0
	trig, err := Build("retired >= 10", func() error { fired++; return nil }, ctx)
	require.NoError(t, err)

	counter.Add(5)
	assert.Equal(t, 0, fired)
	counter.Add(5)
	assert.Equal(t, 1, fired)
	assert.True(t, trig.Fired())
}

func TestBuildAndRequiresBothLeaves(t *testing.T) {
	ctx, _ := newTestContext(t)
	a := NewCounter()
	b := NewCounter()
	ctx.Counters.Register("a", a)
	ctx.Counters.Register("b", b)

	fired := 0
	_, err := Build("a >= 1 && b >= 1", func() error { fired++; return nil }, ctx)
	require.NoError(t, err)

	a.Add(1)
	assert.Equal(t, 0, fired)
	b.Add(1)
	assert.Equal(t, 1, fired)
}

func TestBuildOrFiresOnFirstLeaf(t *testing.T) {
	ctx, _ := newTestContext(t)
	a := NewCounter()
	b := NewCounter()
	ctx.Counters.Register("a", a)
	ctx.Counters.Register("b", b)

	fired := 0
	_, err := Build("a >= 1 || b >= 1", func() error { fired++; return nil }, ctx)
	require.NoError(t, err)

	a.Add(1)
	assert.Equal(t, 1, fired)
	b.Add(1)
	assert.Equal(t, 1, fired)
}

func TestBuildNestedParenthesesRespectPrecedence(t *testing.T) {
	ctx, _ := newTestContext(t)
	a := NewCounter()
	b := NewCounter()
	c := NewCounter()
	ctx.Counters.Register("a", a)
	ctx.Counters.Register("b", b)
	ctx.Counters.Register("c", c)

	fired := 0
	// a || (b && c): firing a alone should be sufficient.
	_, err := Build("a >= 1 || (b >= 1 && c >= 1)", func() error { fired++; return nil }, ctx)
	require.NoError(t, err)

	a.Add(1)
	assert.Equal(t, 1, fired)
}

func TestBuildRejectsMixedOperatorsWithoutParens(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.Counters.Register("a", NewCounter())
	ctx.Counters.Register("b", NewCounter())
	ctx.Counters.Register("c", NewCounter())

	// a && b || c is ambiguous without parentheses to disambiguate: must
	// be written (a && b) || c or a && (b || c).
	_, err := Build("a >= 1 && b >= 1 || c >= 1", nil, ctx)
	require.Error(t, err)
	assert.True(t, simerrors.Is(err, simerrors.ParseError))
}

func TestBuildNotificationLeaf(t *testing.T) {
	ctx, _ := newTestContext(t)
	src, err := notify.New[int64]("decode_stall")
	require.NoError(t, err)
	require.NoError(t, notify.Register(ctx.Notify, "decode_stall", src))

	fired := 0
	_, err = Build("notif.decode_stall >= 100", func() error { fired++; return nil }, ctx)
	require.NoError(t, err)

	require.NoError(t, src.PostNotification(50))
	assert.Equal(t, 0, fired)
	require.NoError(t, src.PostNotification(150))
	assert.Equal(t, 1, fired)
}

func TestBuildTagReference(t *testing.T) {
	ctx, _ := newTestContext(t)
	upstream := newTrigger(All, 1, nil)
	require.NoError(t, ctx.Manager.Register("decode", "start", upstream))

	fired := 0
	_, err := Build("decode.start", func() error { fired++; return nil }, ctx)
	require.NoError(t, err)

	require.NoError(t, upstream.notify())
	assert.Equal(t, 1, fired)
}

func TestBuildTagReferenceDeactivateDetachesFromUpstream(t *testing.T) {
	ctx, _ := newTestContext(t)
	upstream := newTrigger(All, 1, nil)
	require.NoError(t, ctx.Manager.Register("decode", "start", upstream))

	fired := 0
	trig, err := Build("decode.start", func() error { fired++; return nil }, ctx)
	require.NoError(t, err)

	trig.Deactivate()
	require.NoError(t, upstream.notify())
	assert.Equal(t, 0, fired)
}

func TestBuildUnknownCounterIsAnError(t *testing.T) {
	ctx, _ := newTestContext(t)
	_, err := Build("nope >= 1", nil, ctx)
	require.Error(t, err)
}

func TestBuildRejectsUnbalancedParens(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.Counters.Register("a", NewCounter())
	_, err := Build("(a >= 1", nil, ctx)
	require.Error(t, err)
}

func TestBuildRejectsTrailingTokens(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.Counters.Register("a", NewCounter())
	_, err := Build("a >= 1 )", nil, ctx)
	require.Error(t, err)
}
