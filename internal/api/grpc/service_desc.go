package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const coordinatorServiceName = "fieldservice.v1.CoordinatorService"

const (
	CoordinatorService_StartRental_FullMethodName          = "/" + coordinatorServiceName + "/StartRental"
	CoordinatorService_ReturnRental_FullMethodName         = "/" + coordinatorServiceName + "/ReturnRental"
	CoordinatorService_ClaimJob_FullMethodName             = "/" + coordinatorServiceName + "/ClaimJob"
	CoordinatorService_CompleteJob_FullMethodName          = "/" + coordinatorServiceName + "/CompleteJob"
	CoordinatorService_SetDeviceMaintenance_FullMethodName = "/" + coordinatorServiceName + "/SetDeviceMaintenance"
)

// CoordinatorServiceServer is the server API for CoordinatorService.
type CoordinatorServiceServer interface {
	StartRental(context.Context, *StartRentalRequest) (*RentalResponse, error)
	ReturnRental(context.Context, *ReturnRentalRequest) (*RentalResponse, error)
	ClaimJob(context.Context, *ClaimJobRequest) (*JobResponse, error)
	CompleteJob(context.Context, *CompleteJobRequest) (*JobResponse, error)
	SetDeviceMaintenance(context.Context, *SetDeviceMaintenanceRequest) (*DeviceResponse, error)
}

func RegisterCoordinatorServiceServer(s grpc.ServiceRegistrar, srv CoordinatorServiceServer) {
	s.RegisterService(&CoordinatorService_ServiceDesc, srv)
}

// unaryHandler builds a grpc.MethodDesc handler for one unary method. The
// interceptor sees the wire *structpb.Struct; conversion to the typed
// request happens inside the handler it wraps.
func unaryHandler[Req any, Resp any](fullMethod string, call func(CoordinatorServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			typed := new(Req)
			if err := decodeRequest(req.(*structpb.Struct), typed); err != nil {
				return nil, err
			}
			resp, err := call(srv.(CoordinatorServiceServer), ctx, typed)
			if err != nil {
				return nil, err
			}
			out, err := toStruct(resp)
			if err != nil {
				return nil, toStatus(fullMethod, err)
			}
			return out, nil
		}
		if interceptor == nil {
			return handler(ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CoordinatorService_ServiceDesc is the grpc.ServiceDesc for CoordinatorService.
// Every method takes and returns a google.protobuf.Struct.
var CoordinatorService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: coordinatorServiceName,
	HandlerType: (*CoordinatorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "StartRental",
			Handler:    unaryHandler(CoordinatorService_StartRental_FullMethodName, CoordinatorServiceServer.StartRental),
		},
		{
			MethodName: "ReturnRental",
			Handler:    unaryHandler(CoordinatorService_ReturnRental_FullMethodName, CoordinatorServiceServer.ReturnRental),
		},
		{
			MethodName: "ClaimJob",
			Handler:    unaryHandler(CoordinatorService_ClaimJob_FullMethodName, CoordinatorServiceServer.ClaimJob),
		},
		{
			MethodName: "CompleteJob",
			Handler:    unaryHandler(CoordinatorService_CompleteJob_FullMethodName, CoordinatorServiceServer.CompleteJob),
		},
		{
			MethodName: "SetDeviceMaintenance",
			Handler:    unaryHandler(CoordinatorService_SetDeviceMaintenance_FullMethodName, CoordinatorServiceServer.SetDeviceMaintenance),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fieldservice/v1/coordinator",
}

// CoordinatorServiceClient is the client API for CoordinatorService.
type CoordinatorServiceClient interface {
	StartRental(ctx context.Context, in *StartRentalRequest, opts ...grpc.CallOption) (*RentalResponse, error)
	ReturnRental(ctx context.Context, in *ReturnRentalRequest, opts ...grpc.CallOption) (*RentalResponse, error)
	ClaimJob(ctx context.Context, in *ClaimJobRequest, opts ...grpc.CallOption) (*JobResponse, error)
	CompleteJob(ctx context.Context, in *CompleteJobRequest, opts ...grpc.CallOption) (*JobResponse, error)
	SetDeviceMaintenance(ctx context.Context, in *SetDeviceMaintenanceRequest, opts ...grpc.CallOption) (*DeviceResponse, error)
}

type coordinatorServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCoordinatorServiceClient(cc grpc.ClientConnInterface) CoordinatorServiceClient {
	return &coordinatorServiceClient{cc}
}

func (c *coordinatorServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	req, err := toStruct(in)
	if err != nil {
		return err
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, req, resp, opts...); err != nil {
		return err
	}
	return fromStruct(resp, out)
}

func (c *coordinatorServiceClient) StartRental(ctx context.Context, in *StartRentalRequest, opts ...grpc.CallOption) (*RentalResponse, error) {
	out := new(RentalResponse)
	if err := c.invoke(ctx, CoordinatorService_StartRental_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *coordinatorServiceClient) ReturnRental(ctx context.Context, in *ReturnRentalRequest, opts ...grpc.CallOption) (*RentalResponse, error) {
	out := new(RentalResponse)
	if err := c.invoke(ctx, CoordinatorService_ReturnRental_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *coordinatorServiceClient) ClaimJob(ctx context.Context, in *ClaimJobRequest, opts ...grpc.CallOption) (*JobResponse, error) {
	out := new(JobResponse)
	if err := c.invoke(ctx, CoordinatorService_ClaimJob_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *coordinatorServiceClient) CompleteJob(ctx context.Context, in *CompleteJobRequest, opts ...grpc.CallOption) (*JobResponse, error) {
	out := new(JobResponse)
	if err := c.invoke(ctx, CoordinatorService_CompleteJob_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *coordinatorServiceClient) SetDeviceMaintenance(ctx context.Context, in *SetDeviceMaintenanceRequest, opts ...grpc.CallOption) (*DeviceResponse, error) {
	out := new(DeviceResponse)
	if err := c.invoke(ctx, CoordinatorService_SetDeviceMaintenance_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
