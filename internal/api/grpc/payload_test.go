package grpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"fieldservice-backend/internal/domain"
)

func TestStructPayload(t *testing.T) {
	returned := time.Date(2025, 3, 12, 17, 30, 0, 0, time.UTC)
	in := &RentalResponse{Rental: &domain.Rental{
		ID:                   3,
		CustomerName:         "Ann",
		DeviceSerial:         "SN-001",
		FromDate:             time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		ToDate:               time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		RentalDays:           3,
		SecurityDepositCents: 9999999999,
		Status:               domain.RentalStatusReturned,
		ReturnedAt:           &returned,
	}}

	s, err := toStruct(in)
	require.NoError(t, err)
	rental := s.GetFields()["rental"].GetStructValue()
	require.NotNil(t, rental)
	assert.Equal(t, "SN-001", rental.GetFields()["device_serial"].GetStringValue())

	out := new(RentalResponse)
	require.NoError(t, fromStruct(s, out))
	assert.Equal(t, in.Rental.SecurityDepositCents, out.Rental.SecurityDepositCents)
	assert.True(t, in.Rental.ToDate.Equal(out.Rental.ToDate))
	require.NotNil(t, out.Rental.ReturnedAt)
	assert.True(t, returned.Equal(*out.Rental.ReturnedAt))
}

func TestDecodeRequest(t *testing.T) {
	req, err := structpb.NewStruct(map[string]interface{}{"rental_id": 4})
	require.NoError(t, err)
	var typed ReturnRentalRequest
	require.NoError(t, decodeRequest(req, &typed))
	assert.Equal(t, int32(4), typed.RentalID)

	req, err = structpb.NewStruct(map[string]interface{}{"rental_id": []interface{}{1}})
	require.NoError(t, err)
	err = decodeRequest(req, &typed)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
