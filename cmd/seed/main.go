package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/viper"

	"github.com/hackgods/clinic-scheduling/internal/calendar"
	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/csvstore"
	"github.com/hackgods/clinic-scheduling/internal/db"
	"github.com/hackgods/clinic-scheduling/internal/directory"
	"github.com/hackgods/clinic-scheduling/internal/logger"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

type seedConfig struct {
	Doctors     int
	Pharmacists int
	Admins      int
	Patients    int
	Days        int
	Seed        int64
}

func loadSeedConfig() seedConfig {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SEED_DOCTORS", 10)
	v.SetDefault("SEED_PHARMACISTS", 2)
	v.SetDefault("SEED_ADMINS", 1)
	v.SetDefault("SEED_PATIENTS", 200)
	v.SetDefault("SEED_DAYS", 14)
	v.SetDefault("SEED_RANDOM", time.Now().UnixNano())

	return seedConfig{
		Doctors:     v.GetInt("SEED_DOCTORS"),
		Pharmacists: v.GetInt("SEED_PHARMACISTS"),
		Admins:      v.GetInt("SEED_ADMINS"),
		Patients:    v.GetInt("SEED_PATIENTS"),
		Days:        v.GetInt("SEED_DAYS"),
		Seed:        v.GetInt64("SEED_RANDOM"),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("config load error: %v", err)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stdout, Service: "seed"})

	sc := loadSeedConfig()
	faker := gofakeit.New(uint64(sc.Seed))

	users := generateUsers(faker, sc)
	schedules := generateSchedules(faker, users, calendar.DateOf(time.Now()).AddDays(1), sc.Days, cfg.SlotInterval)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		err = seedPostgres(ctx, cfg.PostgresDSN, users, schedules)
	default:
		err = seedCSV(ctx, cfg.DataDir, users, schedules)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}

	log.Info().
		Str("storage", cfg.StorageDriver).
		Int("users", len(users)).
		Int("schedules", len(schedules)).
		Msg("seed complete")
}

func generateUsers(f *gofakeit.Faker, sc seedConfig) []directory.User {
	genders := []string{"Male", "Female"}
	bloodTypes := []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

	var users []directory.User
	staff := func(prefix string, width, n int, role directory.Role) {
		for i := 1; i <= n; i++ {
			users = append(users, directory.User{
				ID:     fmt.Sprintf("%s%0*d", prefix, width, i),
				Name:   f.Name(),
				Role:   role,
				Gender: genders[f.Number(0, 1)],
				Staff:  &directory.StaffProfile{Age: f.Number(28, 65)},
			})
		}
	}
	staff("D", 3, sc.Doctors, directory.RoleDoctor)
	staff("PH", 2, sc.Pharmacists, directory.RolePharmacist)
	staff("A", 2, sc.Admins, directory.RoleAdministrator)

	for i := 1; i <= sc.Patients; i++ {
		dob := f.DateRange(time.Now().AddDate(-90, 0, 0), time.Now().AddDate(-1, 0, 0))
		users = append(users, directory.User{
			ID:     fmt.Sprintf("P%03d", i),
			Name:   f.Name(),
			Role:   directory.RolePatient,
			Gender: genders[f.Number(0, 1)],
			Patient: &directory.PatientProfile{
				DateOfBirth: dob.Format("2006-01-02"),
				BloodType:   bloodTypes[f.Number(0, len(bloodTypes)-1)],
				Contact:     f.Phone(),
			},
		})
	}
	return users
}

// generateSchedules gives each doctor one contiguous block of slots on most weekdays.
func generateSchedules(f *gofakeit.Faker, users []directory.User, from calendar.Date, days int, interval time.Duration) []schedule.Schedule {
	step := int(interval / time.Minute)
	var out []schedule.Schedule

	for _, u := range users {
		if u.Role != directory.RoleDoctor {
			continue
		}
		for i := 0; i < days; i++ {
			date := from.AddDays(i)
			if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}
			if f.Number(0, 9) == 0 {
				continue
			}

			start := f.Number(8, 11) * 60
			count := f.Number(3, 6)
			slots := make([]calendar.TimeOfDay, 0, count)
			for s := 0; s < count; s++ {
				t := calendar.TimeOfDay(start + s*step)
				if !t.Valid() {
					break
				}
				slots = append(slots, t)
			}
			out = append(out, schedule.Schedule{DoctorID: u.ID, Date: date, Slots: slots})
		}
	}
	return out
}

func seedCSV(ctx context.Context, dir string, users []directory.User, schedules []schedule.Schedule) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	store := csvstore.Open(dir)
	if err := store.Users.SaveAll(ctx, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	if err := store.Schedules.SaveAll(ctx, schedules); err != nil {
		return fmt.Errorf("save schedules: %w", err)
	}
	return nil
}

func seedPostgres(ctx context.Context, dsn string, users []directory.User, schedules []schedule.Schedule) error {
	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		return err
	}
	if err := db.NewDirectory(pool).UpsertUsers(ctx, users); err != nil {
		return fmt.Errorf("upsert users: %w", err)
	}
	if err := db.NewScheduleRepository(pool).SaveAll(ctx, schedules); err != nil {
		return fmt.Errorf("save schedules: %w", err)
	}
	return nil
}
