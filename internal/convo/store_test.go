package convo

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmarkell/quotebot/internal/domain"
)

func TestAppendAndHistory(t *testing.T) {
	s := NewStore()

	s.Append("42", domain.UserTurn("hello"))
	s.Append("42", domain.AssistantTurn("hi there", nil))

	hist := s.History("42")
	require.Len(t, hist, 2)
	assert.Equal(t, "user", hist[0].Role)
	assert.Equal(t, "hello", hist[0].Content)
	assert.Equal(t, "assistant", hist[1].Role)
}

func TestAppendEmptyIDIsNoop(t *testing.T) {
	s := NewStore()
	s.Append("", domain.UserTurn("dropped"))
	assert.Empty(t, s.History(""))
}

func TestHistoryUnknownConversation(t *testing.T) {
	s := NewStore()
	assert.Empty(t, s.History("nope"))
	assert.Zero(t, s.Len("nope"))
}

func TestTruncationKeepsNewestInOrder(t *testing.T) {
	s := NewStore()
	for i := 0; i < 50; i++ {
		s.Append("7", domain.UserTurn(fmt.Sprintf("msg-%d", i)))
	}

	hist := s.History("7")
	require.Len(t, hist, maxTurns)
	// The retained turns are the most recent ones, oldest first.
	assert.Equal(t, "msg-30", hist[0].Content)
	assert.Equal(t, "msg-49", hist[len(hist)-1].Content)
}

func TestTruncationDropsOrphanedToolResults(t *testing.T) {
	s := NewStore()

	call := domain.ToolCall{ID: "call_1", Name: "get_vehicle_makes", Arguments: []byte(`{}`)}
	s.Append("7", domain.AssistantTurn("", []domain.ToolCall{call}))
	s.Append("7", domain.ToolTurn(call, `{"makes":[]}`))
	for i := 0; i < maxTurns-1; i++ {
		s.Append("7", domain.UserTurn(fmt.Sprintf("msg-%d", i)))
	}

	// The assistant turn was evicted; its result must not survive at the
	// head of history.
	hist := s.History("7")
	require.NotEmpty(t, hist)
	assert.Equal(t, domain.RoleUser, hist[0].Role)
	assert.Equal(t, "msg-0", hist[0].Content)
	assert.Len(t, hist, maxTurns-1)
}

func TestHistoryReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Append("1", domain.UserTurn("original"))

	hist := s.History("1")
	hist[0].Content = "mutated"

	assert.Equal(t, "original", s.History("1")[0].Content)
}

func TestConcurrentAppendsStayBounded(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				s.Append("busy", domain.UserTurn(fmt.Sprintf("g%d-%d", n, j)))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, maxTurns, s.Len("busy"))
}

func TestLockSerializesPerConversation(t *testing.T) {
	s := NewStore()

	unlock := s.Lock("42")
	acquired := make(chan struct{})
	go func() {
		u := s.Lock("42")
		close(acquired)
		u()
	}()

	// A different conversation is not blocked.
	u2 := s.Lock("43")
	u2()

	select {
	case <-acquired:
		t.Fatal("second lock on same conversation acquired while first held")
	default:
	}

	unlock()
	<-acquired
}

func TestLockEmptyID(t *testing.T) {
	s := NewStore()
	unlock := s.Lock("")
	unlock() // must not panic
}
