package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDonationNormalizeAnonymous(t *testing.T) {
	name := "Jordan Fields"
	d := Donation{Name: &name, IsAnonymous: true}
	d.Normalize()

	assert.Nil(t, d.Name, "anonymous donations never store a name")
	assert.Equal(t, "one-time", d.DonationType)
}

func TestDonationPublicName(t *testing.T) {
	name := "Jordan Fields"

	named := Donation{Name: &name}
	require.NotNil(t, named.PublicName())
	assert.Equal(t, name, *named.PublicName())

	// IsAnonymous suppresses the name even if one slipped into the row.
	anon := Donation{Name: &name, IsAnonymous: true}
	assert.Nil(t, anon.PublicName())
}

func TestNewTicketCode(t *testing.T) {
	code := NewTicketCode()
	assert.True(t, strings.HasPrefix(code, "TKT-"))
	assert.Len(t, code, 17)
	assert.NotEqual(t, code, NewTicketCode())
}

func TestTicketAttendeesRoundTrip(t *testing.T) {
	var ticket Ticket
	require.NoError(t, ticket.SetAttendees([]string{"Sam Ortiz", "Lee Kim"}))
	assert.Equal(t, []string{"Sam Ortiz", "Lee Kim"}, ticket.Attendees())

	require.NoError(t, ticket.SetAttendees(nil))
	assert.Nil(t, ticket.AttendeeNames)
	assert.Nil(t, ticket.Attendees())
}

func TestUserPassword(t *testing.T) {
	var u User
	require.NoError(t, u.SetPassword("correct horse battery staple"))

	assert.True(t, u.CheckPassword("correct horse battery staple"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.NotContains(t, u.Password, "correct horse")
}
