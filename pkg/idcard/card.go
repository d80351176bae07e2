package idcard

import (
	"strings"
	"time"
)

const (
	HeaderSwahili     = "JAMHURI YA KENYA"
	HeaderEnglish     = "REPUBLIC OF KENYA"
	PhotoPlaceholder  = "PHOTO"
	missingIDNumber   = "N/A"
	displayDateLayout = "02/01/2006"
)

// Record is the subset of an application that appears on a card.
type Record struct {
	Holder
	DistrictOfBirth string
	HomeDistrict    string
	Division        string
	Location        string
	SubLocation     string
	Documents       []Document
}

// Front is the photo side of the card.
type Front struct {
	HeaderSwahili   string `json:"header_swahili"`
	HeaderEnglish   string `json:"header_english"`
	SerialNumber    string `json:"serial_number"`
	IDNumber        string `json:"id_number"`
	FullName        string `json:"full_name"`
	DateOfBirth     string `json:"date_of_birth"`
	Sex             string `json:"sex"`
	DistrictOfBirth string `json:"district_of_birth"`
	PlaceOfBirth    string `json:"place_of_birth"`
	DateOfIssue     string `json:"date_of_issue"`
	PhotoURL        string `json:"photo_url,omitempty"`
	Photo           string `json:"photo"`
}

// Back is the address side of the card carrying the MRZ.
type Back struct {
	District    string    `json:"district"`
	Division    string    `json:"division"`
	Location    string    `json:"location"`
	SubLocation string    `json:"sub_location"`
	IDNumber    string    `json:"id_number"`
	MRZ         [3]string `json:"mrz"`
}

// Card is both faces of a rendered ID card.
type Card struct {
	Front Front `json:"front"`
	Back  Back  `json:"back"`
}

// Compose lays out both card faces for a record issued on now. base is the registry origin used for photo URLs.
func Compose(rec Record, now time.Time, base string) Card {
	id := strings.TrimSpace(rec.IDNumber)
	displayID := id
	if displayID == "" {
		displayID = missingIDNumber
	}

	dob := ""
	if !rec.DateOfBirth.IsZero() {
		dob = rec.DateOfBirth.Format(displayDateLayout)
	}

	photoURL := PhotoURL(base, rec.Documents)
	photo := photoURL
	if photo == "" {
		photo = PhotoPlaceholder
	}

	return Card{
		Front: Front{
			HeaderSwahili:   HeaderSwahili,
			HeaderEnglish:   HeaderEnglish,
			SerialNumber:    firstN(id, 8),
			IDNumber:        displayID,
			FullName:        strings.ToUpper(strings.TrimSpace(rec.FullName)),
			DateOfBirth:     dob,
			Sex:             strings.ToUpper(strings.TrimSpace(rec.Gender)),
			DistrictOfBirth: rec.DistrictOfBirth,
			PlaceOfBirth:    rec.DistrictOfBirth,
			DateOfIssue:     now.Format(displayDateLayout),
			PhotoURL:        photoURL,
			Photo:           photo,
		},
		Back: Back{
			District:    rec.HomeDistrict,
			Division:    rec.Division,
			Location:    rec.Location,
			SubLocation: rec.SubLocation,
			IDNumber:    displayID,
			MRZ:         MRZ(rec.Holder, now),
		},
	}
}
