package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/Agent-Analytics/agent-analytics-core/internal/domain"
)

// MockMessageParser is a mock implementation of MessageParser
type MockMessageParser struct {
	mock.Mock
}

func (m *MockMessageParser) Parse(body []byte) (*domain.Event, error) {
	args := m.Called(body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func TestParserStage_Start_Success(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	parserStage := NewParserStage(mockConsumer, mockParser, zap.NewNop())

	mockConsumer.On("QueueURL").Return("http://localhost:9324/000000000000/events").Maybe()
	mockConsumer.On("DeleteMessage", mock.Anything, mock.AnythingOfType("*sqs.DeleteMessageInput")).
		Return(&sqs.DeleteMessageOutput{}, nil).Maybe()

	message := types.Message{
		MessageId:     aws.String("msg-1"),
		Body:          aws.String(`{"event_id": "1"}`),
		ReceiptHandle: aws.String("receipt-1"),
	}

	event := &domain.Event{
		EventID:   "1",
		ProjectID: "proj_1",
		EventName: "page_view",
		SessionID: "sess_1",
		Timestamp: testTimestamp,
	}

	mockParser.On("Parse", []byte(`{"event_id": "1"}`)).Return(event, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan types.Message, 1)
	out := make(chan *Envelope, 1)

	go parserStage.Start(ctx, in, out)

	in <- message
	close(in)

	envelope := <-out

	assert.NotNil(t, envelope)
	assert.Equal(t, "1", envelope.Event.EventID)
	assert.Equal(t, "page_view", envelope.Event.EventName)
	mockParser.AssertExpectations(t)
}

func TestParserStage_Start_MalformedMessageDeleted(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	parserStage := NewParserStage(mockConsumer, mockParser, zap.NewNop())

	mockConsumer.On("QueueURL").Return("http://localhost:9324/000000000000/events")
	mockConsumer.On("DeleteMessage", mock.Anything, mock.AnythingOfType("*sqs.DeleteMessageInput")).
		Return(&sqs.DeleteMessageOutput{}, nil)

	message := types.Message{
		MessageId:     aws.String("msg-1"),
		Body:          aws.String(`{invalid json}`),
		ReceiptHandle: aws.String("receipt-1"),
	}

	mockParser.On("Parse", []byte(`{invalid json}`)).Return(nil, errors.New("invalid JSON format"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan types.Message, 1)
	out := make(chan *Envelope, 1)

	go parserStage.Start(ctx, in, out)

	in <- message
	time.Sleep(20 * time.Millisecond)
	close(in)

	_, ok := <-out
	assert.False(t, ok, "No envelope for a malformed message; channel closes on input close")
	mockParser.AssertExpectations(t)
	mockConsumer.AssertCalled(t, "DeleteMessage", mock.Anything, mock.AnythingOfType("*sqs.DeleteMessageInput"))
}

func TestParserStage_Start_ContextCancellation(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	parserStage := NewParserStage(mockConsumer, mockParser, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := make(chan types.Message)
	out := make(chan *Envelope, 1)

	parserStage.Start(ctx, in, out)

	_, ok := <-out
	assert.False(t, ok, "Output channel should be closed after context cancellation")
}

func TestParserStage_Start_SkipsMalformedAmongValid(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	parserStage := NewParserStage(mockConsumer, mockParser, zap.NewNop())

	mockConsumer.On("QueueURL").Return("http://localhost:9324/000000000000/events").Maybe()
	mockConsumer.On("DeleteMessage", mock.Anything, mock.AnythingOfType("*sqs.DeleteMessageInput")).
		Return(&sqs.DeleteMessageOutput{}, nil).Maybe()

	messages := []types.Message{
		{MessageId: aws.String("msg-1"), Body: aws.String(`{"event_id": "1"}`), ReceiptHandle: aws.String("receipt-1")},
		{MessageId: aws.String("msg-2"), Body: aws.String(`{invalid}`), ReceiptHandle: aws.String("receipt-2")},
		{MessageId: aws.String("msg-3"), Body: aws.String(`{"event_id": "3"}`), ReceiptHandle: aws.String("receipt-3")},
	}

	mockParser.On("Parse", []byte(`{"event_id": "1"}`)).Return(&domain.Event{EventID: "1", EventName: "page_view"}, nil)
	mockParser.On("Parse", []byte(`{invalid}`)).Return(nil, errors.New("parse error"))
	mockParser.On("Parse", []byte(`{"event_id": "3"}`)).Return(&domain.Event{EventID: "3", EventName: "signup"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan types.Message, 3)
	out := make(chan *Envelope, 3)

	go parserStage.Start(ctx, in, out)

	for _, msg := range messages {
		in <- msg
	}
	close(in)

	var envelopes []*Envelope
	for envelope := range out {
		envelopes = append(envelopes, envelope)
	}

	assert.Len(t, envelopes, 2)
	assert.Equal(t, "1", envelopes[0].Event.EventID)
	assert.Equal(t, "3", envelopes[1].Event.EventID)
	mockConsumer.AssertNumberOfCalls(t, "DeleteMessage", 1)
}
