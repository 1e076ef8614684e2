package checkin

import (
	"context"
	"testing"
	"time"

	"museumvisit/internal/domain"
	"museumvisit/internal/modules/qr"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPayloadValidator struct {
	mock.Mock
}

func (m *MockPayloadValidator) Validate(ctx context.Context, payload string) (*domain.Visitor, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Visitor), args.Error(1)
}

type MockVisitorRepository struct {
	mock.Mock
}

func (m *MockVisitorRepository) MarkVisited(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) MarkCheckedIn(ctx context.Context, visitorID string) error {
	args := m.Called(ctx, visitorID)
	return args.Error(0)
}

type MockStatusRecomputer struct {
	mock.Mock
}

func (m *MockStatusRecomputer) RecomputeStatus(ctx context.Context, bookingID string) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) BroadcastCheckIn(ev interface{}) {
	m.Called(ev)
}

func newTestService(validator *MockPayloadValidator, visitors *MockVisitorRepository, tokens *MockTokenRepository, bookings *MockStatusRecomputer, feed *MockBroadcaster) *Service {
	log := zerolog.Nop()
	var b Broadcaster
	if feed != nil {
		b = feed
	}
	return NewService(validator, visitors, tokens, bookings, b, nil, &log)
}

func TestService_CheckIn_Success(t *testing.T) {
	mockValidator := new(MockPayloadValidator)
	mockVisitors := new(MockVisitorRepository)
	mockTokens := new(MockTokenRepository)
	mockBookings := new(MockStatusRecomputer)
	mockFeed := new(MockBroadcaster)
	service := newTestService(mockValidator, mockVisitors, mockTokens, mockBookings, mockFeed)

	v := &domain.Visitor{
		ID: "v1", BookingID: "b1", Name: "Visitor",
		Status: domain.VisitorApproved, Institution: "Xavier University",
	}
	mockValidator.On("Validate", mock.Anything, "payload").Return(v, nil)
	mockVisitors.On("MarkVisited", mock.Anything, "v1", mock.Anything).Return(true, nil)
	mockTokens.On("MarkCheckedIn", mock.Anything, "v1").Return(nil)
	mockBookings.On("RecomputeStatus", mock.Anything, "b1").Return(nil)
	mockFeed.On("BroadcastCheckIn", mock.Anything).Return()

	summary, err := service.CheckIn(context.Background(), "payload")

	assert.NoError(t, err)
	assert.Equal(t, "v1", summary.VisitorID)
	assert.Equal(t, "b1", summary.BookingID)
	assert.NotNil(t, summary.CheckinAt)
	mockBookings.AssertExpectations(t)
	mockFeed.AssertExpectations(t)
}

func TestService_CheckIn_LosingTheSwapIsAlreadyUsed(t *testing.T) {
	mockValidator := new(MockPayloadValidator)
	mockVisitors := new(MockVisitorRepository)
	service := newTestService(mockValidator, mockVisitors, new(MockTokenRepository), new(MockStatusRecomputer), nil)

	v := &domain.Visitor{ID: "v1", BookingID: "b1", Status: domain.VisitorApproved}
	mockValidator.On("Validate", mock.Anything, "payload").Return(v, nil)
	mockVisitors.On("MarkVisited", mock.Anything, "v1", mock.Anything).Return(false, nil)

	_, err := service.CheckIn(context.Background(), "payload")

	assert.ErrorIs(t, err, qr.ErrAlreadyUsed)
}

func TestService_CheckIn_ValidationErrorsPassThrough(t *testing.T) {
	cases := []error{
		qr.ErrNotFound,
		qr.ErrBookingCancelled,
		qr.ErrAlreadyUsed,
		qr.ErrAlreadyCheckedIn,
		qr.ErrNotApproved,
	}

	for _, want := range cases {
		t.Run(want.Error(), func(t *testing.T) {
			mockValidator := new(MockPayloadValidator)
			service := newTestService(mockValidator, new(MockVisitorRepository), new(MockTokenRepository), new(MockStatusRecomputer), nil)

			mockValidator.On("Validate", mock.Anything, "payload").Return(nil, want)

			_, err := service.CheckIn(context.Background(), "payload")
			assert.ErrorIs(t, err, want)
		})
	}
}

func TestService_CheckIn_RecomputeFailureDoesNotFailScan(t *testing.T) {
	mockValidator := new(MockPayloadValidator)
	mockVisitors := new(MockVisitorRepository)
	mockTokens := new(MockTokenRepository)
	mockBookings := new(MockStatusRecomputer)
	service := newTestService(mockValidator, mockVisitors, mockTokens, mockBookings, nil)

	v := &domain.Visitor{ID: "v1", BookingID: "b1", Status: domain.VisitorApproved}
	mockValidator.On("Validate", mock.Anything, "payload").Return(v, nil)
	mockVisitors.On("MarkVisited", mock.Anything, "v1", mock.Anything).Return(true, nil)
	mockTokens.On("MarkCheckedIn", mock.Anything, "v1").Return(assert.AnError)
	mockBookings.On("RecomputeStatus", mock.Anything, "b1").Return(assert.AnError)

	summary, err := service.CheckIn(context.Background(), "payload")

	assert.NoError(t, err)
	assert.Equal(t, "v1", summary.VisitorID)
}
