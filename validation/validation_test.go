package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare 8 prefix", input: "89161234567", want: "+79161234567"},
		{name: "formatted +7", input: "+7 (916) 123-45-67", want: "+79161234567"},
		{name: "7 prefix", input: "79161234567", want: "+79161234567"},
		{name: "ten digits", input: "9161234567", want: "+79161234567"},
		{name: "dashes", input: "8-916-123-45-67", want: "+79161234567"},
		{name: "too short", input: "12345", wantErr: true},
		{name: "letters", input: "phone", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "too many digits", input: "+7916123456789", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail("  User@Example.COM ")
	assert.NoError(t, err)
	assert.Equal(t, "user@example.com", got)

	_, err = NormalizeEmail("not-an-email")
	assert.Error(t, err)

	_, err = NormalizeEmail("")
	assert.Error(t, err)
}

func TestValidateEmailPreservesCase(t *testing.T) {
	got, err := ValidateEmail("User@Example.com")
	assert.NoError(t, err)
	assert.Equal(t, "User@Example.com", got)
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword(""))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword("1234567"))
	assert.NoError(t, ValidatePassword("12345678"))
}

func TestValidateName(t *testing.T) {
	got, err := ValidateName("  Анна-Мария ")
	assert.NoError(t, err)
	assert.Equal(t, "Анна-Мария", got)

	got, err = ValidateName("Jean Paul")
	assert.NoError(t, err)
	assert.Equal(t, "Jean Paul", got)

	_, err = ValidateName("A")
	assert.Error(t, err)

	_, err = ValidateName("R2D2")
	assert.Error(t, err)

	_, err = ValidateName("")
	assert.Error(t, err)
}

func TestParseBookingDate(t *testing.T) {
	today := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "2025-05-31", wantErr: true},
		{input: "2025-06-01", want: "2025-06-01"},
		{input: "2026-06-01", want: "2026-06-01"},
		{input: "2026-06-02", wantErr: true},
		{input: "garbage", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseBookingDate(tt.input, today)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		assert.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseBookingTime(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "07:59", wantErr: true},
		{input: "08:00", want: "08:00"},
		{input: "23:00", want: "23:00"},
		{input: "23:01", wantErr: true},
		{input: "12:30", want: "12:30"},
		{input: "noon", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseBookingTime(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		assert.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestValidateBookingDateTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)

	// today with a past time: individual checks pass, combined check rejects
	assert.Error(t, ValidateBookingDateTime("2025-06-01", "14:00", now))
	assert.NoError(t, ValidateBookingDateTime("2025-06-01", "16:00", now))
	assert.NoError(t, ValidateBookingDateTime("2025-06-02", "08:00", now))
}

func TestFieldErrors(t *testing.T) {
	errs := FieldErrors{}
	assert.True(t, errs.Empty())
	errs.Add("phone", "too short")
	errs.Add("phone", "bad format")
	assert.False(t, errs.Empty())
	assert.Len(t, errs["phone"], 2)
}
