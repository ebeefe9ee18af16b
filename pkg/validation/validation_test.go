package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shiftForm struct {
	TeacherID string `form:"erzieherId" json:"erzieherId" validate:"required"`
	Date      string `form:"datum" json:"datum" validate:"required,isodate"`
	Start     string `form:"startZeit" json:"startZeit" validate:"required,hhmm"`
	Email     string `json:"email" validate:"omitempty,email"`
}

func TestDefaultTranslatesToGerman(t *testing.T) {
	err := Default().Struct(shiftForm{Date: "10.06.2024", Start: "7:00", Email: "nope"})
	require.Error(t, err)

	messages := Messages(err)
	assert.Equal(t, "erzieherId ist ein Pflichtfeld", messages["erzieherId"])
	assert.Equal(t, "datum muss ein Datum im Format JJJJ-MM-TT sein", messages["datum"])
	assert.Equal(t, "startZeit muss eine Uhrzeit im Format HH:MM sein", messages["startZeit"])
	assert.Contains(t, messages, "email")
	assert.True(t, FailedOn(err, "datum"))
	assert.False(t, FailedOn(err, "unknown"))
}

func TestMessagesIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, Messages(errors.New("boom")))
	assert.False(t, FailedOn(errors.New("boom"), "datum"))
}

func TestDateAndTimeHelpers(t *testing.T) {
	assert.True(t, IsDate("2024-02-29"))
	assert.False(t, IsDate("2023-02-29"))
	assert.False(t, IsDate("2024-6-1"))

	assert.True(t, IsTime("07:00"))
	assert.True(t, IsTime("23:59"))
	assert.False(t, IsTime("24:00"))
	assert.False(t, IsTime("7:00"))
}
