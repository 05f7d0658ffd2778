package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"fieldservice-backend/internal/domain"
	"fieldservice-backend/internal/service"
)

// API serves the REST surface over the services.
type API struct {
	coordinator service.CoordinatorService
	inventory   service.InventoryService
	stats       service.StatsService
}

func NewAPI(coordinator service.CoordinatorService, inventory service.InventoryService, stats service.StatsService) *API {
	return &API{coordinator: coordinator, inventory: inventory, stats: stats}
}

type createDeviceRequest struct {
	DeviceName   string                    `json:"device_name"`
	SerialNo     string                    `json:"serial_no"`
	Model        string                    `json:"model"`
	Availability domain.DeviceAvailability `json:"availability"`
}

type createJobRequest struct {
	CustomerName string             `json:"customer_name"`
	PhoneNumber  string             `json:"phone_number"`
	Location     string             `json:"location"`
	Issue        string             `json:"issue"`
	WorkDate     string             `json:"work_date"`
	Priority     domain.JobPriority `json:"priority"`
}

type startRentalRequest struct {
	CustomerName    string      `json:"customer_name"`
	PhoneNumber     string      `json:"phone_number"`
	DeviceSerial    string      `json:"device_serial"`
	FromDate        string      `json:"from_date"`
	ToDate          string      `json:"to_date"`
	SecurityDeposit json.Number `json:"security_deposit"`
}

type maintenanceRequest struct {
	Maintenance *bool `json:"maintenance"`
}

type jobReportRequest struct {
	CompanyName     string `json:"company_name"`
	TimeTaken       string `json:"time_taken"`
	EquipmentUsed   string `json:"equipment_used"`
	WorkDescription string `json:"work_description"`
}

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.stats.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) ListDevices(w http.ResponseWriter, r *http.Request) {
	availability := domain.DeviceAvailability(r.URL.Query().Get("availability"))
	devices, err := a.inventory.ListDevices(r.Context(), availability)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(devices))
}

func (a *API) CreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	device := &domain.Device{
		DeviceName:   req.DeviceName,
		SerialNo:     req.SerialNo,
		Model:        req.Model,
		Availability: req.Availability,
	}
	if err := a.inventory.CreateDevice(r.Context(), device); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, device)
}

func (a *API) GetDevice(w http.ResponseWriter, r *http.Request) {
	device, err := a.inventory.GetDevice(r.Context(), mux.Vars(r)["serial"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

// SetDeviceMaintenance takes {"maintenance": true} to pull an idle device
// from service and {"maintenance": false} to return it.
func (a *API) SetDeviceMaintenance(w http.ResponseWriter, r *http.Request) {
	var req maintenanceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Maintenance == nil {
		writeError(w, r, domain.InvalidInput("maintenance is required"))
		return
	}
	actor, _ := ActorFromContext(r.Context())
	device, err := a.coordinator.SetDeviceMaintenance(r.Context(), actor, mux.Vars(r)["serial"], *req.Maintenance)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

func (a *API) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := a.inventory.ListJobs(r.Context(), domain.JobStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(jobs))
}

func (a *API) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	workDate, err := parseDate("work_date", req.WorkDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	job := &domain.Job{
		CustomerName: req.CustomerName,
		PhoneNumber:  req.PhoneNumber,
		Location:     req.Location,
		Issue:        req.Issue,
		WorkDate:     workDate,
		Priority:     req.Priority,
	}
	if err := a.inventory.CreateJob(r.Context(), job); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (a *API) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	job, err := a.inventory.GetJob(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (a *API) ClaimJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	actor, _ := ActorFromContext(r.Context())
	job, err := a.coordinator.ClaimJob(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// CompleteJob accepts an optional report body. An empty body completes the
// job without one.
func (a *API) CompleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var report *domain.JobReport
	var req jobReportRequest
	switch err := decodeBody(r, &req); {
	case errors.Is(err, io.EOF):
	case err != nil:
		writeError(w, r, err)
		return
	default:
		report = &domain.JobReport{
			CompanyName:     req.CompanyName,
			TimeTaken:       req.TimeTaken,
			EquipmentUsed:   req.EquipmentUsed,
			WorkDescription: req.WorkDescription,
		}
	}

	actor, _ := ActorFromContext(r.Context())
	job, err := a.coordinator.CompleteJob(r.Context(), actor, id, report)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ListReports serves /api/reports/ (optionally ?job_id=) and
// /api/jobs/{id}/reports/.
func (a *API) ListReports(w http.ResponseWriter, r *http.Request) {
	var jobID int32
	if _, ok := mux.Vars(r)["id"]; ok {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		jobID = id
	} else if raw := r.URL.Query().Get("job_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || id <= 0 {
			writeError(w, r, domain.InvalidInput("invalid job_id %q", raw))
			return
		}
		jobID = int32(id)
	}

	reports, err := a.inventory.ListReports(r.Context(), jobID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(reports))
}

func (a *API) ListRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := a.inventory.ListRentals(r.Context(), domain.RentalStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rentals))
}

func (a *API) StartRental(w http.ResponseWriter, r *http.Request) {
	var req startRentalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	from, err := parseDate("from_date", req.FromDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := parseDate("to_date", req.ToDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	deposit, err := parseCents(req.SecurityDeposit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	rental, err := a.coordinator.StartRental(r.Context(), actor, service.StartRentalInput{
		CustomerName:         req.CustomerName,
		PhoneNumber:          req.PhoneNumber,
		DeviceSerial:         req.DeviceSerial,
		FromDate:             from,
		ToDate:               to,
		SecurityDepositCents: deposit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

func (a *API) GetRental(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := a.inventory.GetRental(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (a *API) ReturnRental(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	actor, _ := ActorFromContext(r.Context())
	rental, err := a.coordinator.ReturnRental(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

const maxBodyBytes = 1 << 20

// decodeBody returns io.EOF for an empty body so callers can treat the body
// as optional.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return domain.InvalidInput("malformed request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request) (int32, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.InvalidInput("invalid id %q", raw)
	}
	return int32(id), nil
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, domain.InvalidInput("%s is required", field)
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, domain.InvalidInput("%s must be YYYY-MM-DD", field)
	}
	return t, nil
}

// maxDepositDigits bounds the integer part of a deposit (ten digits with two
// decimal places).
const maxDepositDigits = 8

// parseCents converts a decimal amount such as "150.50" into cents.
func parseCents(n json.Number) (int64, error) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return 0, nil
	}
	neg := strings.HasPrefix(s, "-")
	whole, frac, _ := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	if len(frac) > 2 {
		return 0, domain.InvalidInput("security_deposit has more than two decimal places")
	}
	frac += strings.Repeat("0", 2-len(frac))
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, domain.InvalidInput("invalid security_deposit %q", s)
	}
	if len(whole) > maxDepositDigits {
		return 0, domain.InvalidInput("security_deposit must have at most %d digits before the decimal point", maxDepositDigits)
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, domain.InvalidInput("invalid security_deposit %q", s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, domain.InvalidInput("invalid security_deposit %q", s)
	}
	cents := w*100 + f
	if neg {
		cents = -cents
	}
	return cents, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
