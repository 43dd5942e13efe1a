package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-booking/internal/adapters/database"
	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
	"github.com/clinicdesk/clinic-booking/internal/infrastructure/clients/postgres"
	"github.com/clinicdesk/clinic-booking/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()
	db := pgClient.DB()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := db.ExecContext(ctx, `
			TRUNCATE TABLE
				notification_log,
				payments,
				appointments,
				doctors,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	// 1. Seed Users (patients)
	users := []entities.User{
		{ID: uuid.New().String(), Name: "Adaobi Okafor", Email: "adaobi.okafor@example.com", Phone: "+2348031234567"},
		{ID: uuid.New().String(), Name: "Tunde Balogun", Email: "tunde.balogun@example.com", Phone: "+2348052345678"},
		{ID: uuid.New().String(), Name: "Ngozi Eze", Email: "ngozi.eze@example.com", Phone: "+2348063456789"},
		{ID: uuid.New().String(), Name: "Linh Tran", Email: "linh.tran@example.com", Phone: "+84901234567"},
	}

	for _, u := range users {
		_, err := db.ExecContext(ctx,
			`INSERT INTO users (id, name, email, phone, created_at)
			 VALUES ($1, $2, $3, $4, NOW())
			 ON CONFLICT (email) DO NOTHING`,
			u.ID, u.Name, u.Email, u.Phone,
		)
		if err != nil {
			log.Printf("Failed to create user %s: %v", u.Name, err)
		}
	}

	// 2. Seed Doctors. Fees are deliberately mixed: plain numerics,
	// formatted currency text and one unparseable value, matching what
	// legacy records look like.
	doctors := []entities.Doctor{
		{ID: uuid.New().String(), Name: "Dr. Chinedu Anyaoku", Speciality: "Cardiology", Fee: "25000", IsActive: true},
		{ID: uuid.New().String(), Name: "Dr. Funmilayo Adeyemi", Speciality: "Dermatology", Fee: "18000.50", IsActive: true},
		{ID: uuid.New().String(), Name: "Dr. Minh Nguyen", Speciality: "Pediatrics", Fee: "500.000 VND", IsActive: true},
		{ID: uuid.New().String(), Name: "Dr. Emeka Obi", Speciality: "Orthopedics", Fee: "N/A", IsActive: true},
		{ID: uuid.New().String(), Name: "Dr. Halima Yusuf", Speciality: "General Practice", Fee: "12,500.00", IsActive: false},
	}

	for _, d := range doctors {
		_, err := db.ExecContext(ctx,
			`INSERT INTO doctors (id, name, speciality, fee, is_active, opening_hour, closing_hour, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
			d.ID, d.Name, d.Speciality, d.Fee, d.IsActive,
			cfg.Scheduling.OpeningHour, cfg.Scheduling.ClosingHour,
		)
		if err != nil {
			log.Printf("Failed to create doctor %s: %v", d.Name, err)
		}
	}

	// 3. Seed Appointments across the lifecycle
	appointmentRepo := database.NewAppointmentAdapter(pgClient)
	paymentRepo := database.NewPaymentAdapter(pgClient)
	slotDuration := time.Duration(cfg.Scheduling.SlotMinutes) * time.Minute

	tomorrow := time.Now().AddDate(0, 0, 1)
	dayAfter := time.Now().AddDate(0, 0, 2)
	slotAt := func(day time.Time, hour, minute int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.Local)
	}

	seedAppointments := []struct {
		patient entities.User
		doctor  entities.Doctor
		start   time.Time
		confirm bool
		pay     bool
		note    string
	}{
		{users[0], doctors[0], slotAt(tomorrow, 10, 0), true, true, "follow-up consultation"},
		{users[1], doctors[0], slotAt(tomorrow, 10, 30), true, false, ""},
		{users[2], doctors[1], slotAt(tomorrow, 14, 0), false, false, "first visit"},
		{users[0], doctors[2], slotAt(dayAfter, 11, 0), true, true, ""},
		{users[3], doctors[3], slotAt(dayAfter, 15, 30), true, true, "knee pain"},
		{users[1], doctors[1], slotAt(dayAfter, 16, 0), false, false, ""},
	}

	for _, s := range seedAppointments {
		now := time.Now()
		appointment := &entities.Appointment{
			ID:            uuid.New().String(),
			PatientID:     s.patient.ID,
			DoctorID:      s.doctor.ID,
			StartTime:     s.start,
			Status:        entities.AppointmentStatusPending,
			PaymentStatus: entities.PaymentStatusUnpaid,
			Note:          s.note,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := appointmentRepo.Create(ctx, appointment); err != nil {
			log.Printf("Failed to create appointment for %s: %v", s.patient.Name, err)
			continue
		}

		if s.confirm {
			if _, err := appointmentRepo.Confirm(ctx, appointment.ID, slotDuration); err != nil {
				log.Printf("Failed to confirm appointment %s: %v", appointment.ID, err)
				continue
			}
		}

		if s.pay {
			amount, ok := entities.ParseFee(s.doctor.Fee)
			if !ok {
				amount = 10000
			}
			payment := &entities.Payment{
				ID:            uuid.New().String(),
				AppointmentID: appointment.ID,
				Amount:        amount,
				Method:        "card",
				Status:        entities.PaymentOutcomeSuccess,
				PaymentTime:   time.Now(),
				CreatedAt:     time.Now(),
			}
			if _, _, err := paymentRepo.RecordPayment(ctx, payment); err != nil {
				log.Printf("Failed to record payment for appointment %s: %v", appointment.ID, err)
			}
		}
	}

	log.Println("Seeding completed successfully")
}
