package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_SchedulingConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("CLINIC_OPENING_HOUR", "8")
	os.Setenv("CLINIC_CLOSING_HOUR", "18")
	os.Setenv("CLINIC_SLOT_MINUTES", "20")
	defer func() {
		os.Unsetenv("CLINIC_OPENING_HOUR")
		os.Unsetenv("CLINIC_CLOSING_HOUR")
		os.Unsetenv("CLINIC_SLOT_MINUTES")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 8, cfg.Scheduling.OpeningHour)
	assert.Equal(t, 18, cfg.Scheduling.ClosingHour)
	assert.Equal(t, 20, cfg.Scheduling.SlotMinutes)
}

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("CLINIC_OPENING_HOUR")
	os.Unsetenv("CLINIC_CLOSING_HOUR")
	os.Unsetenv("CLINIC_SLOT_MINUTES")
	os.Unsetenv("CLINIC_HORIZON_DAYS")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 10, cfg.Scheduling.OpeningHour)
	assert.Equal(t, 21, cfg.Scheduling.ClosingHour)
	assert.Equal(t, 30, cfg.Scheduling.SlotMinutes)
	assert.Equal(t, 7, cfg.Scheduling.HorizonDays)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_RejectsSlotMinutesNotDividingHour(t *testing.T) {
	os.Setenv("CLINIC_SLOT_MINUTES", "45")
	defer os.Unsetenv("CLINIC_SLOT_MINUTES")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsInvertedWorkingHours(t *testing.T) {
	os.Setenv("CLINIC_OPENING_HOUR", "20")
	os.Setenv("CLINIC_CLOSING_HOUR", "9")
	defer func() {
		os.Unsetenv("CLINIC_OPENING_HOUR")
		os.Unsetenv("CLINIC_CLOSING_HOUR")
	}()

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "clinic",
		Password: "secret",
		Database: "clinic_booking",
		SSLMode:  "disable",
	}

	dsn := cfg.DatabaseDSN()
	assert.Contains(t, dsn, "host=db")
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "dbname=clinic_booking")
}
