package qr

import (
	"context"
	"testing"

	"museumvisit/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockVisitorReader struct {
	mock.Mock
}

func (m *MockVisitorReader) GetByID(ctx context.Context, id string) (*domain.Visitor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Visitor), args.Error(1)
}

func (m *MockVisitorReader) FindLatestByContactAndBooking(ctx context.Context, contact, bookingID string) (*domain.Visitor, error) {
	args := m.Called(ctx, contact, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Visitor), args.Error(1)
}

func (m *MockVisitorReader) UpdateQRPayload(ctx context.Context, id, payload string) error {
	args := m.Called(ctx, id, payload)
	return args.Error(0)
}

type MockTokenReader struct {
	mock.Mock
}

func (m *MockTokenReader) GetByID(ctx context.Context, id string) (*domain.RegistrationToken, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegistrationToken), args.Error(1)
}

type MockBookingReader struct {
	mock.Mock
}

func (m *MockBookingReader) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func newTestService(visitors *MockVisitorReader, tokens *MockTokenReader, bookings *MockBookingReader) *Service {
	return NewService(NewCodec("test-secret"), visitors, tokens, bookings)
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec("test-secret")

	payload, err := codec.Encode(Claims{Kind: KindVisitor, VisitorID: "v1", BookingID: "b1"})
	assert.NoError(t, err)

	claims, err := codec.Decode(payload)
	assert.NoError(t, err)
	assert.Equal(t, KindVisitor, claims.Kind)
	assert.Equal(t, "v1", claims.VisitorID)
	assert.Equal(t, "b1", claims.BookingID)
}

func TestCodec_RejectsTamperedAndForeignPayloads(t *testing.T) {
	codec := NewCodec("test-secret")
	other := NewCodec("other-secret")

	payload, err := other.Encode(Claims{Kind: KindVisitor, VisitorID: "v1"})
	assert.NoError(t, err)

	_, err = codec.Decode(payload)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = codec.Decode("not-a-payload")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Issue_StoresSnapshot(t *testing.T) {
	mockVisitors := new(MockVisitorReader)
	service := newTestService(mockVisitors, new(MockTokenReader), new(MockBookingReader))

	v := &domain.Visitor{ID: "v1", BookingID: "b1"}
	mockVisitors.On("UpdateQRPayload", mock.Anything, "v1", mock.Anything).Return(nil)

	payload, err := service.Issue(context.Background(), v)

	assert.NoError(t, err)
	assert.Equal(t, payload, v.QRPayload)
	mockVisitors.AssertExpectations(t)
}

func TestService_Resolve_DirectVisitorID(t *testing.T) {
	mockVisitors := new(MockVisitorReader)
	service := newTestService(mockVisitors, new(MockTokenReader), new(MockBookingReader))

	want := &domain.Visitor{ID: "v1", BookingID: "b1"}
	mockVisitors.On("GetByID", mock.Anything, "v1").Return(want, nil)

	payload, _ := service.codec.Encode(Claims{Kind: KindVisitor, VisitorID: "v1"})
	got, err := service.Resolve(context.Background(), payload)

	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestService_Resolve_LegacyTokenPayload(t *testing.T) {
	mockVisitors := new(MockVisitorReader)
	mockTokens := new(MockTokenReader)
	service := newTestService(mockVisitors, mockTokens, new(MockBookingReader))

	visitorID := "v7"
	mockTokens.On("GetByID", mock.Anything, "b1-01").Return(&domain.RegistrationToken{
		ID: "b1-01", BookingID: "b1", Status: domain.TokenCompleted, VisitorID: &visitorID,
	}, nil)
	want := &domain.Visitor{ID: "v7", BookingID: "b1"}
	mockVisitors.On("GetByID", mock.Anything, "v7").Return(want, nil)

	payload, _ := service.codec.Encode(Claims{Kind: KindToken, TokenID: "b1-01"})
	got, err := service.Resolve(context.Background(), payload)

	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestService_Resolve_LegacyEmailFallback(t *testing.T) {
	mockVisitors := new(MockVisitorReader)
	service := newTestService(mockVisitors, new(MockTokenReader), new(MockBookingReader))

	want := &domain.Visitor{ID: "v9", BookingID: "b1", Contact: "dep@example.com"}
	mockVisitors.On("FindLatestByContactAndBooking", mock.Anything, "dep@example.com", "b1").Return(want, nil)

	payload, _ := service.codec.Encode(Claims{Kind: KindLegacyEmail, Email: "dep@example.com", BookingID: "b1"})
	got, err := service.Resolve(context.Background(), payload)

	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestService_Resolve_NothingMatches(t *testing.T) {
	mockVisitors := new(MockVisitorReader)
	service := newTestService(mockVisitors, new(MockTokenReader), new(MockBookingReader))

	mockVisitors.On("GetByID", mock.Anything, "v1").Return(nil, gorm.ErrRecordNotFound)

	payload, _ := service.codec.Encode(Claims{Kind: KindVisitor, VisitorID: "v1"})
	_, err := service.Resolve(context.Background(), payload)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Validate_ChecksBookingBeforeConsumedFlag(t *testing.T) {
	mockVisitors := new(MockVisitorReader)
	mockBookings := new(MockBookingReader)
	service := newTestService(mockVisitors, new(MockTokenReader), mockBookings)

	// consumed AND cancelled: the cancellation wins, per the check order
	mockVisitors.On("GetByID", mock.Anything, "v1").Return(&domain.Visitor{
		ID: "v1", BookingID: "b1", QRConsumed: true, Status: domain.VisitorVisited,
	}, nil)
	mockBookings.On("GetByID", mock.Anything, "b1").Return(&domain.Booking{
		ID: "b1", Status: domain.BookingCancelled,
	}, nil)

	payload, _ := service.codec.Encode(Claims{Kind: KindVisitor, VisitorID: "v1"})
	_, err := service.Validate(context.Background(), payload)

	assert.ErrorIs(t, err, ErrBookingCancelled)
}

func TestService_Validate_ConsumedAndStatusGuards(t *testing.T) {
	mockVisitors := new(MockVisitorReader)
	mockBookings := new(MockBookingReader)
	service := newTestService(mockVisitors, new(MockTokenReader), mockBookings)

	mockBookings.On("GetByID", mock.Anything, "b1").Return(&domain.Booking{
		ID: "b1", Status: domain.BookingApproved,
	}, nil)

	cases := []struct {
		name    string
		visitor *domain.Visitor
		wantErr error
	}{
		{"consumed payload", &domain.Visitor{ID: "v1", BookingID: "b1", QRConsumed: true, Status: domain.VisitorVisited}, ErrAlreadyUsed},
		{"visited but unconsumed", &domain.Visitor{ID: "v2", BookingID: "b1", Status: domain.VisitorVisited}, ErrAlreadyCheckedIn},
		{"still pending", &domain.Visitor{ID: "v3", BookingID: "b1", Status: domain.VisitorPending}, ErrNotApproved},
		{"ready", &domain.Visitor{ID: "v4", BookingID: "b1", Status: domain.VisitorApproved}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockVisitors.On("GetByID", mock.Anything, tc.visitor.ID).Return(tc.visitor, nil)
			payload, _ := service.codec.Encode(Claims{Kind: KindVisitor, VisitorID: tc.visitor.ID})

			v, err := service.Validate(context.Background(), payload)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.visitor, v)
			}
		})
	}
}
