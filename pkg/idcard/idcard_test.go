package idcard

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mrzCharset = regexp.MustCompile(`^[A-Z0-9<]{44}$`)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func pad(s string) string {
	return s + strings.Repeat("<", LineWidth-len(s))
}

func TestAge(t *testing.T) {
	tests := []struct {
		name  string
		birth time.Time
		now   time.Time
		want  int
	}{
		{name: "birthday not reached", birth: date(1990, time.January, 15), now: date(2024, time.January, 10), want: 33},
		{name: "birthday today", birth: date(1990, time.January, 15), now: date(2024, time.January, 15), want: 34},
		{name: "earlier month", birth: date(1990, time.June, 1), now: date(2024, time.March, 30), want: 33},
		{name: "future birth clamps", birth: date(2030, time.June, 1), now: date(2024, time.March, 30), want: 0},
		{name: "unknown birth", birth: time.Time{}, now: date(2024, time.March, 30), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Age(tt.birth, tt.now))
		})
	}
}

func TestMRZKnownHolder(t *testing.T) {
	lines := MRZ(Holder{
		IDNumber:    "12345678",
		FullName:    "John  Doe-Smith",
		Gender:      "Male",
		DateOfBirth: date(1990, time.January, 15),
	}, date(2024, time.January, 10))

	assert.Equal(t, pad("IDKYA12345678<4041<33<4041"), lines[0])
	assert.Equal(t, pad("15011990M10012024<B12345678<2"), lines[1])
	assert.Equal(t, pad("JOHN<DOE<SMITH"), lines[2])
}

func TestMRZUnknownFields(t *testing.T) {
	lines := MRZ(Holder{FullName: "Jane"}, date(2024, time.January, 10))

	assert.Equal(t, pad("IDKYA00000000<4041<00<4041"), lines[0])
	assert.Equal(t, pad("00000000<10012024<B00000000<2"), lines[1])
	assert.Equal(t, pad("JANE"), lines[2])

	blank := MRZ(Holder{FullName: "   "}, date(2024, time.January, 10))
	assert.Equal(t, pad("UNKNOWN"), blank[2])
}

func TestMRZLinesAreFixedWidthAndCharset(t *testing.T) {
	lines := MRZ(Holder{
		IDNumber:    "1234567890123456789012345678901234567890",
		FullName:    "Wanjiku Achieng' Otieno-Kamau Mwangi Nyambura Chebet Kiprono",
		Gender:      "female",
		DateOfBirth: date(2001, time.December, 31),
	}, date(2024, time.May, 2))

	for i, line := range lines {
		require.Regexp(t, mrzCharset, line, "line %d", i+1)
	}
	assert.True(t, strings.HasPrefix(lines[1], "31122001F02052024<B12345678<2"))
}

func TestPhotoURL(t *testing.T) {
	docs := []Document{
		{Type: "ob_photo", FilePath: "uploads/ob.jpg"},
		{Type: DocumentPassportPhoto, FilePath: `C:\data\uploads\face 1.jpg`},
		{Type: DocumentPassportPhoto, FilePath: "uploads/second.jpg"},
	}
	assert.Equal(t, "http://localhost:5000/uploads/face%201.jpg", PhotoURL("http://localhost:5000/", docs))
	assert.Equal(t, "", PhotoURL("http://localhost:5000", docs[:1]))
	assert.Equal(t, "", PhotoURL("http://localhost:5000", nil))
	assert.Equal(t, "", PhotoURL("http://localhost:5000", []Document{{Type: DocumentPassportPhoto, FilePath: "uploads/"}}))
}

func TestComposeFillsBothFaces(t *testing.T) {
	now := date(2024, time.January, 10)
	card := Compose(Record{
		Holder: Holder{
			IDNumber:    "123456789",
			FullName:    "Kelvin Alianda",
			Gender:      "Male",
			DateOfBirth: date(1990, time.January, 15),
		},
		DistrictOfBirth: "Kakamega",
		HomeDistrict:    "Nairobi",
		Division:        "Central",
		Location:        "CBD",
		SubLocation:     "Upper Hill",
	}, now, "http://registry")

	assert.Equal(t, HeaderSwahili, card.Front.HeaderSwahili)
	assert.Equal(t, HeaderEnglish, card.Front.HeaderEnglish)
	assert.Equal(t, "12345678", card.Front.SerialNumber)
	assert.Equal(t, "123456789", card.Front.IDNumber)
	assert.Equal(t, "KELVIN ALIANDA", card.Front.FullName)
	assert.Equal(t, "15/01/1990", card.Front.DateOfBirth)
	assert.Equal(t, "MALE", card.Front.Sex)
	assert.Equal(t, "Kakamega", card.Front.PlaceOfBirth)
	assert.Equal(t, "10/01/2024", card.Front.DateOfIssue)
	assert.Equal(t, PhotoPlaceholder, card.Front.Photo)
	assert.Empty(t, card.Front.PhotoURL)

	assert.Equal(t, "Nairobi", card.Back.District)
	assert.Equal(t, "Upper Hill", card.Back.SubLocation)
	assert.Equal(t, pad("KELVIN<ALIANDA"), card.Back.MRZ[2])
}

func TestComposeWithoutIDNumber(t *testing.T) {
	card := Compose(Record{Holder: Holder{FullName: "Jane Doe"}}, date(2024, time.January, 10), "")
	assert.Equal(t, "N/A", card.Front.IDNumber)
	assert.Equal(t, "N/A", card.Back.IDNumber)
	assert.Equal(t, "", card.Front.SerialNumber)
	assert.Equal(t, "", card.Front.DateOfBirth)
}
