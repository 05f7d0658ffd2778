// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurityConfig maps gRPC methods and HTTP route names to their
// required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// CoordinatorService - Access Protected
	"/fieldservice.v1.CoordinatorService/StartRental":          SecurityAccess,
	"/fieldservice.v1.CoordinatorService/ReturnRental":         SecurityAccess,
	"/fieldservice.v1.CoordinatorService/ClaimJob":             SecurityAccess,
	"/fieldservice.v1.CoordinatorService/CompleteJob":          SecurityAccess,
	"/fieldservice.v1.CoordinatorService/SetDeviceMaintenance": SecurityAccess,

	// gRPC health - Public
	"/grpc.health.v1.Health/Check": SecurityPublic,

	// HTTP - Public
	"health":        SecurityPublic,
	"metrics":       SecurityPublic,
	"notifications": SecurityPublic,

	// HTTP - Access Protected
	"dashboard_stats":    SecurityAccess,
	"devices_list":       SecurityAccess,
	"devices_create":     SecurityAccess,
	"device_get":         SecurityAccess,
	"device_maintenance": SecurityAccess,
	"jobs_list":          SecurityAccess,
	"jobs_create":        SecurityAccess,
	"job_get":            SecurityAccess,
	"job_claim":          SecurityAccess,
	"job_complete":       SecurityAccess,
	"job_reports":        SecurityAccess,
	"reports_list":       SecurityAccess,
	"rentals_list":       SecurityAccess,
	"rentals_create":     SecurityAccess,
	"rental_get":         SecurityAccess,
	"rental_return":      SecurityAccess,
}

// GetSecurityLevel returns the security level for a given method
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
