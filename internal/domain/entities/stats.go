package entities

// FeeAnomaly records a doctor fee that could not be normalized to a
// numeric amount while aggregating revenue.
type FeeAnomaly struct {
	DoctorID string `json:"doctor_id"`
	RawFee   string `json:"raw_fee"`
}

// DashboardStats is a derived, never-persisted projection of the ledger.
// It reflects the ledger at read time only.
type DashboardStats struct {
	TotalUsers            int64        `json:"total_users"`
	TotalDoctors          int64        `json:"total_doctors"`
	TotalAppointments     int64        `json:"total_appointments"`
	ConfirmedAppointments int64        `json:"confirmed_appointments"`
	CancelledAppointments int64        `json:"cancelled_appointments"`
	PendingAppointments   int64        `json:"pending_appointments"`
	TotalRevenue          float64      `json:"total_revenue"`
	FeeAnomalies          []FeeAnomaly `json:"fee_anomalies,omitempty"`
}
