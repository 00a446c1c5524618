package domain

import (
	"strings"
	"testing"
	"time"
)

func TestValidateVehicleNumber(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", "WA1234AB", false},
		{"minimum length", "AB", false},
		{"maximum length", strings.Repeat("A", 20), false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"too short", "A", true},
		{"too long", strings.Repeat("A", 21), true},
		{"trimmed before check", "  AB  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVehicleNumber(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVehicleNumber(%q) = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLocation(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", "Main Street 15", false},
		{"minimum length", "abc", false},
		{"maximum length", strings.Repeat("x", 100), false},
		{"empty", "", true},
		{"too short", "ab", true},
		{"too long", strings.Repeat("x", 101), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLocation(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLocation(%q) = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateExpiryDate(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.Local)
	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{"today", "2026-08-27", false},
		{"tomorrow", "2026-08-28", false},
		{"ten years out", "2036-12-31", false},
		{"empty", "", true},
		{"garbage", "not-a-date", true},
		{"yesterday", "2026-08-26", true},
		{"past year", "2025-01-01", true},
		{"more than ten years out", "2037-01-01", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExpiryDate(tt.date, now)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateExpiryDate(%q) = %v, wantErr %v", tt.date, err, tt.wantErr)
			}
		})
	}
}

func TestValidateExpiryTime(t *testing.T) {
	now := time.Date(2026, 8, 27, 14, 30, 0, 0, time.Local)
	tests := []struct {
		name    string
		date    string
		tm      string
		wantErr bool
	}{
		{"later today", "2026-08-27", "15:00", false},
		{"tomorrow earlier hour", "2026-08-28", "09:00", false},
		{"empty", "2026-08-28", "", true},
		{"bad format", "2026-08-28", "9am", true},
		{"out of range hour", "2026-08-28", "24:00", true},
		{"today equal to now", "2026-08-27", "14:30", true},
		{"today in the past", "2026-08-27", "14:29", true},
		{"single-digit past hour today", "2026-08-27", "9:30", true},
		{"single-digit hour tomorrow", "2026-08-28", "9:30", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExpiryTime(tt.date, tt.tm, now)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateExpiryTime(%q, %q) = %v, wantErr %v", tt.date, tt.tm, err, tt.wantErr)
			}
		})
	}
}

func TestValidateImageFile(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		size     int64
		wantErr  bool
	}{
		{"no image", "", 0, false},
		{"jpeg", "photo.jpeg", 1024, false},
		{"uppercase extension", "photo.PNG", 1024, false},
		{"exactly 5MB", "photo.jpg", MaxImageBytes, false},
		{"no extension", "photo", 1024, true},
		{"disallowed type", "photo.webp", 1024, true},
		{"too large", "photo.gif", MaxImageBytes + 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageFile(tt.fileName, tt.size)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateImageFile(%q, %d) = %v, wantErr %v", tt.fileName, tt.size, err, tt.wantErr)
			}
		})
	}
}

func TestExpiryRoundTrip(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	tests := []struct {
		name string
		date string
		tm   string
	}{
		{"afternoon", "2026-08-28", "15:30"},
		{"crosses midnight backwards in UTC", "2026-08-28", "00:30"},
		{"winter time", "2026-12-01", "10:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			utcDate, utcTime, err := ExpiryToUTC(tt.date, tt.tm, loc)
			if err != nil {
				t.Fatalf("ExpiryToUTC() error: %v", err)
			}
			gotDate, gotTime, err := ExpiryToLocal(utcDate, utcTime, loc)
			if err != nil {
				t.Fatalf("ExpiryToLocal() error: %v", err)
			}
			if gotDate != tt.date || gotTime != tt.tm {
				t.Errorf("round trip = %s %s, want %s %s", gotDate, gotTime, tt.date, tt.tm)
			}
		})
	}
}

func TestExpiryToUTCShift(t *testing.T) {
	// Warsaw is UTC+2 in August: 00:30 local on the 28th is 22:30 UTC on the 27th.
	loc, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	date, tm, err := ExpiryToUTC("2026-08-28", "00:30", loc)
	if err != nil {
		t.Fatalf("ExpiryToUTC() error: %v", err)
	}
	if date != "2026-08-27" || tm != "22:30" {
		t.Errorf("got %s %s, want 2026-08-27 22:30", date, tm)
	}
}

func TestExpiryToUTCSingleDigitHour(t *testing.T) {
	date, tm, err := ExpiryToUTC("2026-08-28", "9:30", time.UTC)
	if err != nil {
		t.Fatalf("ExpiryToUTC() error: %v", err)
	}
	if date != "2026-08-28" || tm != "09:30" {
		t.Errorf("got %s %s, want 2026-08-28 09:30", date, tm)
	}
}

func TestExpiryToLocalAcceptsSeconds(t *testing.T) {
	// The backend serializes times as HH:MM:SS.
	date, tm, err := ExpiryToLocal("2026-08-28", "15:30:00", time.UTC)
	if err != nil {
		t.Fatalf("ExpiryToLocal() error: %v", err)
	}
	if date != "2026-08-28" || tm != "15:30" {
		t.Errorf("got %s %s, want 2026-08-28 15:30", date, tm)
	}
}
