//go:build integration

package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"jobherald/internal/domain"
)

type AMQPFanOutIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	amqpURL   string
	logger    *slog.Logger
}

func (s *AMQPFanOutIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3.13-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	amqpURL, err := container.AmqpURL(s.ctx)
	s.Require().NoError(err)
	s.amqpURL = amqpURL
}

func (s *AMQPFanOutIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func TestAMQPFanOutIntegrationSuite(t *testing.T) {
	suite.Run(t, new(AMQPFanOutIntegrationSuite))
}

func (s *AMQPFanOutIntegrationSuite) TestPublishAndConsume() {
	cfg := AMQPConfig{
		URL:        s.amqpURL,
		Exchange:   "jobherald_test",
		RoutingKey: "postings",
		QueueName:  "announced_postings_test",
	}

	fanout, err := NewAMQPFanOut(cfg, s.logger)
	s.Require().NoError(err)
	defer fanout.Close()

	posting := domain.Posting{
		Identity:       "li-42",
		Title:          "Software Engineer",
		Company:        "Acme",
		CompanyURL:     "https://example.com/acme",
		ApplicationURL: "https://example.com/jobs/42",
		Location:       "Remote",
	}

	s.Require().NoError(fanout.Publish(s.ctx, "full_time", posting))

	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	deliveries, err := ch.Consume(cfg.QueueName, "", true, false, false, false, nil)
	s.Require().NoError(err)

	select {
	case d := <-deliveries:
		var msg PostingMessage
		s.Require().NoError(json.Unmarshal(d.Body, &msg))
		s.Equal("full_time", msg.Category)
		s.Equal("li-42", msg.Posting.Identity)
		s.Equal("Acme", msg.Posting.Company)
	case <-time.After(10 * time.Second):
		s.Fail("no message received")
	}
}
