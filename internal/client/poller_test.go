package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/foxobr/ficha-rpg/internal/game/character"
	"github.com/foxobr/ficha-rpg/internal/game/session"
)

// gateStore serves GetSession responses in a test-controlled order.
type gateStore struct {
	mu    sync.Mutex
	gates []chan *session.Session
}

func (g *gateStore) GetSession(context.Context, string) (*session.Session, error) {
	g.mu.Lock()
	gate := g.gates[0]
	g.gates = g.gates[1:]
	g.mu.Unlock()
	return <-gate, nil
}

func (g *gateStore) CreateSession(context.Context, string) (*session.Session, error) {
	panic("not used")
}
func (g *gateStore) JoinSession(context.Context, string) (*session.Session, error) {
	panic("not used")
}
func (g *gateStore) SaveCharacter(context.Context, string, *character.Character) (*character.Character, error) {
	panic("not used")
}
func (g *gateStore) GetCharacter(context.Context, string, string) (*character.Character, error) {
	panic("not used")
}
func (g *gateStore) ApplyCondition(context.Context, string, string, string, string) (*character.Character, error) {
	panic("not used")
}
func (g *gateStore) ListAdminSessions(context.Context) ([]*session.Session, error) {
	panic("not used")
}

// A slow early poll must not overwrite the result of a newer poll that
// already delivered: last response wins by issue order.
func TestPoller_DropsOvertakenResponse(t *testing.T) {
	first := make(chan *session.Session, 1)
	second := make(chan *session.Session, 1)
	store := &gateStore{gates: []chan *session.Session{first, second}}
	p := NewPoller(store, time.Hour, zap.NewNop())

	var (
		mu        sync.Mutex
		delivered []string
	)
	record := func(s *session.Session) {
		mu.Lock()
		delivered = append(delivered, s.Name)
		mu.Unlock()
	}

	ctx := context.Background()
	var wg sync.WaitGroup
	waitIssued := func(n int) {
		for {
			store.mu.Lock()
			issued := len(store.gates) == n
			store.mu.Unlock()
			if issued {
				return
			}
			time.Sleep(time.Millisecond)
		}
	}

	wg.Add(2)
	go func() { defer wg.Done(); p.poll(ctx, "s1", record) }() // seq 1, slow
	waitIssued(1)
	go func() { defer wg.Done(); p.poll(ctx, "s1", record) }() // seq 2, fast
	waitIssued(0)

	// Answer the later request first, the earlier one second.
	second <- &session.Session{Name: "newer"}
	time.Sleep(10 * time.Millisecond)
	first <- &session.Session{Name: "older"}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"newer"}, delivered,
		"the overtaken early response must be dropped")
}

func TestPoller_DeliversInOrder(t *testing.T) {
	a := make(chan *session.Session, 1)
	b := make(chan *session.Session, 1)
	a <- &session.Session{Name: "a"}
	b <- &session.Session{Name: "b"}
	store := &gateStore{gates: []chan *session.Session{a, b}}
	p := NewPoller(store, time.Hour, zap.NewNop())

	var delivered []string
	record := func(s *session.Session) { delivered = append(delivered, s.Name) }

	ctx := context.Background()
	p.poll(ctx, "s1", record)
	p.poll(ctx, "s1", record)

	assert.Equal(t, []string{"a", "b"}, delivered)
}
