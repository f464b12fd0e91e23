package observable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
		panic("unreachable")
	}
}

func TestGet_BeforeAndAfterSet(t *testing.T) {
	var v Value[int]

	_, ok := v.Get()
	assert.False(t, ok)

	v.Set(7)
	got, ok := v.Get()
	require.True(t, ok)
	assert.Equal(t, 7, got)
}

func TestNew_SeedsInitialValue(t *testing.T) {
	v := New("hello")
	got, ok := v.Get()
	require.True(t, ok)
	assert.Equal(t, "hello", got)
}

func TestSubscribe_DeliversCurrentValueFirst(t *testing.T) {
	v := New(1)
	ch, cancel := v.Subscribe()
	defer cancel()

	assert.Equal(t, 1, recv(t, ch))

	v.Set(2)
	assert.Equal(t, 2, recv(t, ch))
}

func TestSubscribe_BeforeFirstSetDeliversNothingInitially(t *testing.T) {
	var v Value[int]
	ch, cancel := v.Subscribe()
	defer cancel()

	select {
	case <-ch:
		t.Fatal("received a value before any Set")
	case <-time.After(10 * time.Millisecond):
	}

	v.Set(5)
	assert.Equal(t, 5, recv(t, ch))
}

func TestSubscribe_MultipleReaders(t *testing.T) {
	var v Value[string]
	a, cancelA := v.Subscribe()
	defer cancelA()
	b, cancelB := v.Subscribe()
	defer cancelB()

	v.Set("x")
	assert.Equal(t, "x", recv(t, a))
	assert.Equal(t, "x", recv(t, b))
}

func TestCancel_ClosesChannelAndStopsDelivery(t *testing.T) {
	var v Value[int]
	ch, cancel := v.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// setting after cancel must not panic
	v.Set(1)
}

func TestSlowSubscriber_DropsOldestNotWriter(t *testing.T) {
	var v Value[int]
	ch, cancel := v.Subscribe()
	defer cancel()

	// overflow the buffer; Set must never block
	for i := 0; i < 100; i++ {
		v.Set(i)
	}

	// the newest value is always retained
	var last int
	for {
		select {
		case last = <-ch:
			continue
		default:
		}
		break
	}
	assert.Equal(t, 99, last)
}
