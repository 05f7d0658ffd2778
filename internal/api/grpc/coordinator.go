package grpc

import (
	"context"
	"time"

	"fieldservice-backend/internal/domain"
	"fieldservice-backend/internal/service"
)

type CoordinatorHandler struct {
	coordinatorSvc service.CoordinatorService
}

var _ CoordinatorServiceServer = (*CoordinatorHandler)(nil)

func NewCoordinatorHandler(coordinatorSvc service.CoordinatorService) *CoordinatorHandler {
	return &CoordinatorHandler{coordinatorSvc: coordinatorSvc}
}

func (h *CoordinatorHandler) StartRental(ctx context.Context, req *StartRentalRequest) (*RentalResponse, error) {
	actor, err := GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	from, err := parseDate("from_date", req.FromDate)
	if err != nil {
		return nil, toStatus(CoordinatorService_StartRental_FullMethodName, err)
	}
	to, err := parseDate("to_date", req.ToDate)
	if err != nil {
		return nil, toStatus(CoordinatorService_StartRental_FullMethodName, err)
	}

	rt, err := h.coordinatorSvc.StartRental(ctx, actor, service.StartRentalInput{
		CustomerName:         req.CustomerName,
		PhoneNumber:          req.PhoneNumber,
		DeviceSerial:         req.DeviceSerial,
		FromDate:             from,
		ToDate:               to,
		SecurityDepositCents: req.SecurityDepositCents,
	})
	if err != nil {
		return nil, toStatus(CoordinatorService_StartRental_FullMethodName, err)
	}
	return &RentalResponse{Rental: rt}, nil
}

func (h *CoordinatorHandler) ReturnRental(ctx context.Context, req *ReturnRentalRequest) (*RentalResponse, error) {
	actor, err := GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rt, err := h.coordinatorSvc.ReturnRental(ctx, actor, req.RentalID)
	if err != nil {
		return nil, toStatus(CoordinatorService_ReturnRental_FullMethodName, err)
	}
	return &RentalResponse{Rental: rt}, nil
}

func (h *CoordinatorHandler) ClaimJob(ctx context.Context, req *ClaimJobRequest) (*JobResponse, error) {
	actor, err := GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	job, err := h.coordinatorSvc.ClaimJob(ctx, actor, req.JobID)
	if err != nil {
		return nil, toStatus(CoordinatorService_ClaimJob_FullMethodName, err)
	}
	return &JobResponse{Job: job}, nil
}

func (h *CoordinatorHandler) CompleteJob(ctx context.Context, req *CompleteJobRequest) (*JobResponse, error) {
	actor, err := GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	job, err := h.coordinatorSvc.CompleteJob(ctx, actor, req.JobID, req.Report)
	if err != nil {
		return nil, toStatus(CoordinatorService_CompleteJob_FullMethodName, err)
	}
	return &JobResponse{Job: job}, nil
}

func (h *CoordinatorHandler) SetDeviceMaintenance(ctx context.Context, req *SetDeviceMaintenanceRequest) (*DeviceResponse, error) {
	actor, err := GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	device, err := h.coordinatorSvc.SetDeviceMaintenance(ctx, actor, req.DeviceSerial, req.Maintenance)
	if err != nil {
		return nil, toStatus(CoordinatorService_SetDeviceMaintenance_FullMethodName, err)
	}
	return &DeviceResponse{Device: device}, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, domain.InvalidInput("%s must be YYYY-MM-DD", field)
	}
	return t, nil
}
