package alerts_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chidi/internal/alerts"
	"chidi/internal/domain"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	to   []string
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.to = append(f.to, to)
	f.sent = append(f.sent, body)
	return f.err
}

func TestDispatcherSendsOnlyHighPriority(t *testing.T) {
	f := &fakeSender{}
	d := alerts.NewDispatcher(f, "+2348031234567", 4)

	d.Dispatch(
		domain.Notification{ID: "1", Title: "Out of Stock", Message: "Wireless Earbuds is out of stock", Priority: domain.PriorityHigh},
		domain.Notification{ID: "2", Title: "Product Added", Message: "x", Priority: domain.PriorityLow},
	)
	d.Close()

	require.Len(t, f.sent, 1)
	assert.Equal(t, "CHIDI Out of Stock: Wireless Earbuds is out of stock", f.sent[0])
	assert.Equal(t, "+2348031234567", f.to[0])
}

func TestDispatcherSurvivesSendErrors(t *testing.T) {
	f := &fakeSender{err: errors.New("twilio down")}
	d := alerts.NewDispatcher(f, "+2348031234567", 4)
	d.Dispatch(
		domain.Notification{ID: "a", Priority: domain.PriorityHigh},
		domain.Notification{ID: "b", Priority: domain.PriorityHigh},
	)
	d.Close()
	d.Close()
	assert.Len(t, f.sent, 2)
}

func TestDispatcherWithoutDestination(t *testing.T) {
	f := &fakeSender{}
	d := alerts.NewDispatcher(f, "", 1)
	d.Dispatch(domain.Notification{Priority: domain.PriorityHigh})
	d.Close()
	assert.Empty(t, f.sent)

	var nilD *alerts.Dispatcher
	nilD.Dispatch(domain.Notification{Priority: domain.PriorityHigh})
	nilD.Close()
}

func TestNoopSender(t *testing.T) {
	assert.NoError(t, alerts.NoopSender{}.Send(context.Background(), "+1", "hi"))
}
