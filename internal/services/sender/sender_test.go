package sender_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogenyiken/zikistore/internal/lib/smtp"
	"github.com/ogenyiken/zikistore/internal/models"
	"github.com/ogenyiken/zikistore/internal/services/sender"
)

type writeCloserStub struct {
	buf      *bytes.Buffer
	closeErr error
}

func (w *writeCloserStub) Write(p []byte) (int, error) { return w.buf.Write(p) }
func (w *writeCloserStub) Close() error                { return w.closeErr }

type clientStub struct {
	from    string
	rcpts   []string
	body    *writeCloserStub
	mailErr error
	rcptErr error
}

func (c *clientStub) Mail(from string) error {
	c.from = from
	return c.mailErr
}

func (c *clientStub) Rcpt(to string) error {
	c.rcpts = append(c.rcpts, to)
	return c.rcptErr
}

func (c *clientStub) Data() (io.WriteCloser, error) { return c.body, nil }
func (c *clientStub) Quit() error                   { return nil }
func (c *clientStub) Close() error                  { return nil }

type transportStub struct {
	client     smtp.Client
	connectErr error
}

func (t *transportStub) Connect() (smtp.Client, error) { return t.client, t.connectErr }
func (t *transportStub) GetSMTPUser() string           { return "store@example.com" }

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func intPtr(v int) *int { return &v }

func TestSendReceipt(t *testing.T) {
	order := &models.Order{
		ID:     "order-1",
		Amount: 800,
		IsPaid: true,
		Products: []models.ProductRef{
			{ID: "prod-1", Product: &models.Product{ID: "prod-1", Name: "E-Book", Price: intPtr(500)}},
			{ID: "prod-bare"},
		},
	}
	user := &models.User{Email: "buyer@example.com"}

	t.Run("composes receipt and delivers it", func(t *testing.T) {
		client := &clientStub{body: &writeCloserStub{buf: &bytes.Buffer{}}}
		service := sender.NewSenderService(&transportStub{client: client}, newNoopLogger())

		err := service.SendReceipt(order, user)
		require.NoError(t, err)

		assert.Equal(t, "store@example.com", client.from)
		assert.Equal(t, []string{"buyer@example.com"}, client.rcpts)

		msg := client.body.buf.String()
		assert.Contains(t, msg, "Thanks for your order! This is your receipt.")
		assert.Contains(t, msg, "Order: order-1")
		assert.Contains(t, msg, "E-Book")
		// нераскрытый товар попадает в чек голым идентификатором
		assert.Contains(t, msg, "prod-bare")
		assert.Contains(t, msg, "Total: 800")
	})

	t.Run("connect failure", func(t *testing.T) {
		service := sender.NewSenderService(&transportStub{connectErr: errors.New("dial error")}, newNoopLogger())

		err := service.SendReceipt(order, user)
		assert.Error(t, err)
	})

	t.Run("rcpt failure", func(t *testing.T) {
		client := &clientStub{
			body:    &writeCloserStub{buf: &bytes.Buffer{}},
			rcptErr: errors.New("mailbox unavailable"),
		}
		service := sender.NewSenderService(&transportStub{client: client}, newNoopLogger())

		err := service.SendReceipt(order, user)
		assert.Error(t, err)
	})
}
