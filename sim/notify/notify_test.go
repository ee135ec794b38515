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

package notify_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetsetilly/uarchsim/sim/notify"
)

func TestPostNotificationDispatchesInRegistrationOrder(t *testing.T) {
	src, err := notify.New[int]("cacheMiss")
	require.NoError(t, err)

	var order []string
	_, err = src.RegisterForNotification(func(p int) error {
		order = append(order, "first")
		return nil
	})
	require.NoError(t, err)
	_, err = src.RegisterForNotification(func(p int) error {
		order = append(order, "second")
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, src.PostNotification(42))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPostNotificationStopsAtFirstError(t *testing.T) {
	src, err := notify.New[int]("x")
	require.NoError(t, err)

	var secondCalled bool
	boom := errors.New("boom")
	_, err = src.RegisterForNotification(func(p int) error { return boom })
	require.NoError(t, err)
	_, err = src.RegisterForNotification(func(p int) error { secondCalled = true; return nil })
	require.NoError(t, err)

	assert.ErrorIs(t, src.PostNotification(1), boom)
	assert.False(t, secondCalled)
}

func TestDeregisterRemovesHandler(t *testing.T) {
	src, err := notify.New[int]("x")
	require.NoError(t, err)

	var calls int
	reg, err := src.RegisterForNotification(func(p int) error { calls++; return nil })
	require.NoError(t, err)

	require.NoError(t, src.PostNotification(1))
	require.NoError(t, reg.Deregister())
	require.NoError(t, src.PostNotification(1))
	assert.Equal(t, 1, calls)
}

func TestObserverCountChangeCallback(t *testing.T) {
	src, err := notify.New[int]("x")
	require.NoError(t, err)

	var events []bool
	src.OnObserverCountChange(func(added bool) { events = append(events, added) })

	reg, err := src.RegisterForNotification(func(int) error { return nil })
	require.NoError(t, err)
	require.NoError(t, reg.Deregister())

	assert.Equal(t, []bool{true, false}, events)
}

func TestNameValidation(t *testing.T) {
	_, err := notify.New[int]("1bad")
	assert.Error(t, err)

	_, err = notify.New[int]("has__double")
	assert.Error(t, err)

	_, err = notify.New[int]("notif")
	assert.Error(t, err)

	_, err = notify.New[int]("validName_1")
	assert.NoError(t, err)
}

func TestMirrorForwardsToBoundSources(t *testing.T) {
	reg := notify.NewRegistry()
	src, err := notify.New[int]("real")
	require.NoError(t, err)
	require.NoError(t, notify.Register(reg, "real", src))

	mirror, err := notify.NewMirror[int]("public", "real")
	require.NoError(t, err)
	require.NoError(t, mirror.Bind(reg))

	var got int
	_, err = mirror.RegisterForNotification(func(p int) error { got = p; return nil })
	require.NoError(t, err)

	require.NoError(t, src.PostNotification(7))
	assert.Equal(t, 7, got)
}

func TestMirrorBindFailsOnUnknownSource(t *testing.T) {
	reg := notify.NewRegistry()
	mirror, err := notify.NewMirror[int]("public", "missing")
	require.NoError(t, err)
	assert.Error(t, mirror.Bind(reg))
}

func TestRegisterForNotificationAtObservesDescendantSource(t *testing.T) {
	core := notify.NewNode("core0")
	rob := core.NewChild("rob")

	src, err := notify.NewAt[int](rob, "retired")
	require.NoError(t, err)

	var got int
	_, err = notify.RegisterForNotificationAt[int](core, "retired", func(p int) error {
		got = p
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, src.PostNotification(9))
	assert.Equal(t, 9, got)
}

func TestRegisterForNotificationAtDispatchesAfterLocalHandlers(t *testing.T) {
	rob := notify.NewNode("rob")
	src, err := notify.NewAt[int](rob, "retired")
	require.NoError(t, err)

	var order []string
	_, err = src.RegisterForNotification(func(int) error { order = append(order, "local"); return nil })
	require.NoError(t, err)
	_, err = notify.RegisterForNotificationAt[int](rob, "retired", func(int) error { order = append(order, "ancestor"); return nil })
	require.NoError(t, err)

	require.NoError(t, src.PostNotification(1))
	assert.Equal(t, []string{"local", "ancestor"}, order)
}

func TestRegisterForNotificationAtIgnoresTypeMismatch(t *testing.T) {
	rob := notify.NewNode("rob")
	intSrc, err := notify.NewAt[int](rob, "retired")
	require.NoError(t, err)

	var stringObserverCalled bool
	_, err = notify.RegisterForNotificationAt[string](rob, "retired", func(string) error {
		stringObserverCalled = true
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, intSrc.PostNotification(1))
	assert.False(t, stringObserverCalled)
}

func TestRegisterForNotificationAtDeregisterStopsFiring(t *testing.T) {
	rob := notify.NewNode("rob")
	src, err := notify.NewAt[int](rob, "retired")
	require.NoError(t, err)

	var calls int
	reg, err := notify.RegisterForNotificationAt[int](rob, "retired", func(int) error { calls++; return nil })
	require.NoError(t, err)

	require.NoError(t, src.PostNotification(1))
	require.NoError(t, reg.Deregister())
	require.NoError(t, src.PostNotification(1))
	assert.Equal(t, 1, calls)
}

func TestRegisterForNotificationAtDoesNotObserveUnrelatedSubtree(t *testing.T) {
	core0 := notify.NewNode("core0")
	core1 := notify.NewNode("core1")
	rob0 := core0.NewChild("rob")

	src, err := notify.NewAt[int](rob0, "retired")
	require.NoError(t, err)

	var called bool
	_, err = notify.RegisterForNotificationAt[int](core1, "retired", func(int) error { called = true; return nil })
	require.NoError(t, err)

	require.NoError(t, src.PostNotification(1))
	assert.False(t, called)
}
