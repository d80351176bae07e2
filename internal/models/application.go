package models

import "strings"

// ApplicationStatus is the lifecycle state of an ID application.
type ApplicationStatus string

const (
	ApplicationStatusSubmitted          ApplicationStatus = "submitted"
	ApplicationStatusApproved           ApplicationStatus = "approved"
	ApplicationStatusRejected           ApplicationStatus = "rejected"
	ApplicationStatusReadyForDispatch   ApplicationStatus = "ready_for_dispatch"
	ApplicationStatusDispatched         ApplicationStatus = "dispatched"
	ApplicationStatusReadyForCollection ApplicationStatus = "ready_for_collection"
	ApplicationStatusCollected          ApplicationStatus = "collected"
)

// Valid reports whether the status is one the registry is known to emit.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusSubmitted, ApplicationStatusApproved, ApplicationStatusRejected,
		ApplicationStatusReadyForDispatch, ApplicationStatusDispatched,
		ApplicationStatusReadyForCollection, ApplicationStatusCollected:
		return true
	}
	return false
}

// Label is the status as shown to applicants.
func (s ApplicationStatus) Label() string {
	switch s {
	case ApplicationStatusReadyForDispatch:
		return "Ready for Dispatch"
	case ApplicationStatusReadyForCollection:
		return "Ready for Collection"
	}
	words := strings.Fields(strings.ReplaceAll(string(s), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Document types attached to applications.
const (
	DocumentPassportPhoto    = "passport_photo"
	DocumentOBPhoto          = "ob_photo"
	DocumentBirthCertificate = "birth_certificate"
)

// Document references an uploaded file held by the registry.
type Document struct {
	DocumentType string `json:"document_type"`
	FilePath     string `json:"file_path"`
	URL          string `json:"url,omitempty"`
}

// Application is an ID application as returned by the registry.
type Application struct {
	ID                int               `json:"id"`
	ApplicationNumber string            `json:"application_number"`
	FullNames         string            `json:"full_names"`
	Status            ApplicationStatus `json:"status"`
	ApplicationType   string            `json:"application_type,omitempty"`
	GeneratedIDNumber string            `json:"generated_id_number,omitempty"`
	DateOfBirth       Timestamp         `json:"date_of_birth"`
	Gender            string            `json:"gender,omitempty"`
	DistrictOfBirth   string            `json:"district_of_birth,omitempty"`
	Tribe             string            `json:"tribe,omitempty"`
	HomeDistrict      string            `json:"home_district,omitempty"`
	Division          string            `json:"division,omitempty"`
	Constituency      string            `json:"constituency,omitempty"`
	Location          string            `json:"location,omitempty"`
	SubLocation       string            `json:"sub_location,omitempty"`
	VillageEstate     string            `json:"village_estate,omitempty"`
	FatherName        string            `json:"father_name,omitempty"`
	MotherName        string            `json:"mother_name,omitempty"`
	OfficerName       string            `json:"officer_name,omitempty"`
	CreatedAt         Timestamp         `json:"created_at"`
	UpdatedAt         Timestamp         `json:"updated_at"`
	Documents         []Document        `json:"documents,omitempty"`
}

