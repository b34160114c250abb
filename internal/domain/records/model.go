package records

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MedicalRecord maps to the medical_records table. RecordData is free-form
// JSON from the client; known record types parse into typed payloads, the
// rest is carried as an opaque map.
type MedicalRecord struct {
	ID         uuid.UUID              `db:"id" json:"id"`
	PatientID  uuid.UUID              `db:"patient_id" json:"patient_id"`
	DoctorID   *uuid.UUID             `db:"doctor_id" json:"doctor_id,omitempty"`
	RecordType string                 `db:"record_type" json:"record_type"`
	Diagnosis  string                 `db:"diagnosis" json:"diagnosis"`
	RecordData map[string]interface{} `db:"record_data" json:"record_data,omitempty"`
	RecordHash *string                `db:"record_hash" json:"record_hash,omitempty"`
	CreatedAt  time.Time              `db:"created_at" json:"created_at"`
}

// Record types with a structured payload.
const (
	TypeVitals       = "vitals"
	TypeLabResult    = "lab_result"
	TypeImaging      = "imaging"
	TypeConsultation = "consultation"
)

// VitalsData is the payload shape for vitals records.
type VitalsData struct {
	HeartRate     *int     `json:"heart_rate,omitempty"`
	BloodPressure *string  `json:"blood_pressure,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	Height        *float64 `json:"height,omitempty"`
}

// LabResultData is the payload shape for lab_result records.
type LabResultData struct {
	TestName       string  `json:"test_name"`
	Result         string  `json:"result"`
	ReferenceRange *string `json:"reference_range,omitempty"`
	Unit           *string `json:"unit,omitempty"`
	Abnormal       bool    `json:"abnormal,omitempty"`
}

// ImagingData is the payload shape for imaging records.
type ImagingData struct {
	Modality string  `json:"modality"`
	BodySite *string `json:"body_site,omitempty"`
	Findings *string `json:"findings,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

// ConsultationData is the payload shape for consultation records.
type ConsultationData struct {
	Specialty *string `json:"specialty,omitempty"`
	Notes     string  `json:"notes"`
	FollowUp  *string `json:"follow_up,omitempty"`
}

// TypedData parses RecordData into the payload struct for the record's type.
// The second return is false when the type has no structured schema or the
// data does not fit it; callers then fall back to the raw map.
func (m *MedicalRecord) TypedData() (interface{}, bool) {
	if m.RecordData == nil {
		return nil, false
	}
	raw, err := json.Marshal(m.RecordData)
	if err != nil {
		return nil, false
	}
	switch m.RecordType {
	case TypeVitals:
		var v VitalsData
		if json.Unmarshal(raw, &v) == nil {
			return &v, true
		}
	case TypeLabResult:
		var v LabResultData
		if json.Unmarshal(raw, &v) == nil && v.TestName != "" {
			return &v, true
		}
	case TypeImaging:
		var v ImagingData
		if json.Unmarshal(raw, &v) == nil && v.Modality != "" {
			return &v, true
		}
	case TypeConsultation:
		var v ConsultationData
		if json.Unmarshal(raw, &v) == nil && v.Notes != "" {
			return &v, true
		}
	}
	return nil, false
}
