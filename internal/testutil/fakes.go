package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sefazor/guestlens-backend/pkg/payment"
	"github.com/sefazor/guestlens-backend/pkg/storage"
)

// MemoryStorage is an in-memory storage.Storage that records writes.
type MemoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	Puts    []string
	// Seeded bytes counted by Usage without being stored.
	Extra map[string]int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: map[string][]byte{}, Extra: map[string]int64{}}
}

func (m *MemoryStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	m.Puts = append(m.Puts, key)
	return nil
}

func (m *MemoryStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryStorage) Usage(_ context.Context, prefix string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for k, b := range m.objects {
		if strings.HasPrefix(k, prefix) {
			total += int64(len(b))
		}
	}
	return total + m.Extra[prefix], nil
}

func (m *MemoryStorage) PutCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Puts)
}

func (m *MemoryStorage) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// FakeGateway hands out sequential checkout sessions and lets tests set
// what a later lookup returns.
type FakeGateway struct {
	mu       sync.Mutex
	seq      int
	Sessions map[string]*payment.CheckoutSession
	Requests []payment.CheckoutRequest
	Expired  []string
	Err      error
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{Sessions: map[string]*payment.CheckoutSession{}}
}

func (g *FakeGateway) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return nil, g.Err
	}
	g.seq++
	id := fmt.Sprintf("cs_test_%d", g.seq)
	sess := &payment.CheckoutSession{ID: id, URL: "https://checkout.test/" + id, Status: "open", PaymentStatus: "unpaid"}
	g.Sessions[id] = sess
	g.Requests = append(g.Requests, req)
	cp := *sess
	return &cp, nil
}

func (g *FakeGateway) GetCheckoutSession(_ context.Context, id string) (*payment.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return nil, g.Err
	}
	sess, ok := g.Sessions[id]
	if !ok {
		return nil, fmt.Errorf("no such checkout session: %s", id)
	}
	cp := *sess
	return &cp, nil
}

func (g *FakeGateway) ExpireCheckoutSession(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.Sessions[id]; ok {
		s.Status = "expired"
	}
	g.Expired = append(g.Expired, id)
	return nil
}

// Complete marks a session as paid, as Stripe would after checkout.
func (g *FakeGateway) Complete(id, intentID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.Sessions[id]; ok {
		s.Status, s.PaymentStatus, s.PaymentIntentID = "complete", "paid", intentID
	}
}

type SentMail struct {
	Kind  string
	To    string
	Token string
}

// FakeMailer records emails instead of sending them.
type FakeMailer struct {
	mu   sync.Mutex
	Sent []SentMail
	Err  error
}

func (f *FakeMailer) record(kind, to, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sent = append(f.Sent, SentMail{Kind: kind, To: to, Token: token})
	return f.Err
}

func (f *FakeMailer) SendVerificationEmail(email, _ string, token string) error {
	return f.record("verify", email, token)
}

func (f *FakeMailer) SendPasswordResetEmail(email, token string) error {
	return f.record("reset", email, token)
}

func (f *FakeMailer) SendEmailChangeVerification(email, token string) error {
	return f.record("email_change", email, token)
}

func (f *FakeMailer) SendPurchaseConfirmation(email, itemName string, _ int64, _ string) error {
	return f.record("purchase", email, itemName)
}

// Last returns the most recent mail of kind.
func (f *FakeMailer) Last(kind string) (SentMail, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.Sent) - 1; i >= 0; i-- {
		if f.Sent[i].Kind == kind {
			return f.Sent[i], true
		}
	}
	return SentMail{}, false
}

// StaticCaptcha answers every verification with OK.
type StaticCaptcha struct{ OK bool }

func (c StaticCaptcha) VerifyTurnstile(context.Context, string, string) (bool, error) {
	return c.OK, nil
}
