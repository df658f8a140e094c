package elwb

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStorage is an in-memory Storage for tests, standing in for the
// SPI-flash/FRAM backing a real deployment would use.
type memStorage struct {
	mu   sync.Mutex
	data map[int64][]byte
}

func newMemStorage() *memStorage { return &memStorage{data: make(map[int64][]byte)} }

func (m *memStorage) Read(addr int64, dst []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copy(dst, m.data[addr]), nil
}

func (m *memStorage) Write(addr int64, src []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(src))
	copy(buf, src)
	m.data[addr] = buf
	return len(src), nil
}

func TestExternalQueuePutGetFIFO(t *testing.T) {
	store := newMemStorage()
	worker := NewXmemWorker(store)
	defer worker.Close()

	q := NewExternalQueue(worker, 2)

	// The worker accepts one operation at a time and may still be finishing
	// the previous one, so each call retries while it reports busy.
	put := func(b []byte) error {
		for {
			if err := q.Put(b); err != ErrXmemBusy {
				return err
			}
			time.Sleep(time.Millisecond)
		}
	}
	get := func() (Frame, error) {
		for {
			f, err := q.Get()
			if err != ErrXmemBusy {
				return f, err
			}
			time.Sleep(time.Millisecond)
		}
	}

	require.NoError(t, put([]byte("first")))
	require.NoError(t, put([]byte("second")))
	assert.Equal(t, 2, q.Count())

	assert.ErrorIs(t, put([]byte("third")), ErrQueueFull)
	assert.Equal(t, uint64(1), q.Dropped())

	f, err := get()
	require.NoError(t, err)
	assert.Equal(t, "first", string(f.Bytes()))

	f, err = get()
	require.NoError(t, err)
	assert.Equal(t, "second", string(f.Bytes()))

	_, err = get()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

// gatedStorage blocks every Write until the test signals release, so a
// Submit can be observed as still outstanding.
type gatedStorage struct {
	release chan struct{}
}

func (g *gatedStorage) Read(addr int64, dst []byte) (int, error) { return 0, nil }
func (g *gatedStorage) Write(addr int64, src []byte) (int, error) {
	<-g.release
	return len(src), nil
}

func TestXmemWorkerRejectsSecondSubmitWhileBusy(t *testing.T) {
	store := &gatedStorage{release: make(chan struct{})}
	worker := NewXmemWorker(store)
	defer worker.Close()

	first := worker.Submit(XmemTask{Op: XmemWrite, Addr: 0, Buf: []byte("x")})
	require.NoError(t, first)

	// The worker goroutine is blocked inside store.Write; a second Submit
	// must observe it as busy.
	assert.Eventually(t, func() bool {
		return worker.Submit(XmemTask{Op: XmemWrite, Addr: 8, Buf: []byte("y")}) == ErrXmemBusy
	}, time.Second, time.Millisecond)

	close(store.release)
}

func TestXmemWorkerSubmitAfterCloseFails(t *testing.T) {
	store := newMemStorage()
	worker := NewXmemWorker(store)
	worker.Close()

	assert.ErrorIs(t, worker.Submit(XmemTask{Op: XmemWrite, Addr: 0, Buf: []byte("y")}), ErrEngineNotRunning)
}
