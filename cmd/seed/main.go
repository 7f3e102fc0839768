// Command seed fills the configured storage backend with demo data: a patient
// directory, two weeks of appointments and a small inventory.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"

	"github.com/Pilsner12/Dental-Lite-sub000/internal/appointment"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/config"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/inventory"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/kv"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/patient"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/timeutil"
)

var services = []string{
	"Checkup", "Dental hygiene", "Filling", "Root canal",
	"Extraction", "Whitening", "Crown fitting",
}

var durations = []int{30, 45, 60, 90}

func main() {
	log := zerolog.New(os.Stdout).With().Str("service", "dental-lite-seed").Timestamp().Logger()
	log.Info().Msg("seed starting")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("storage connection error")
	}
	defer store.Close()

	gofakeit.Seed(time.Now().UnixNano())

	patients := seedPatients(ctx, store, log, 40)
	seedAppointments(ctx, store, log, patients, 60)
	seedInventory(ctx, store, log)

	log.Info().Msg("seed complete")
}

func openStorage(ctx context.Context, cfg config.Config) (kv.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendRedis:
		return kv.NewRedis(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	case config.BackendPostgres:
		return kv.NewPostgres(ctx, cfg.PostgresDSN)
	default:
		return kv.NewMemory(), nil
	}
}

func seedPatients(ctx context.Context, store kv.Store, log zerolog.Logger, count int) []patient.Patient {
	log.Info().Int("count", count).Msg("seeding patients")

	dir := patient.NewDirectory(ctx, store, log)
	out := make([]patient.Patient, 0, count)
	for i := 0; i < count; i++ {
		p := patient.Patient{
			ID:    fmt.Sprintf("P%04d", i+1),
			Name:  gofakeit.Name(),
			Phone: gofakeit.Phone(),
			Email: gofakeit.Email(),
		}
		dir.Put(ctx, p)
		out = append(out, p)
	}
	return out
}

func seedAppointments(ctx context.Context, store kv.Store, log zerolog.Logger, patients []patient.Patient, count int) {
	log.Info().Int("count", count).Msg("seeding appointments")

	appts := appointment.NewStore(ctx, store, log)
	seeded := 0
	for attempts := 0; seeded < count && attempts < count*10; attempts++ {
		p := patients[gofakeit.Number(0, len(patients)-1)]
		day := time.Now().AddDate(0, 0, gofakeit.Number(0, 13))
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		start := 8*60 + 30*gofakeit.Number(0, 14) // 08:00..15:00 on half hours
		_, err := appts.Add(ctx, appointment.CreateInput{
			PatientID:       p.ID,
			PatientName:     p.Name,
			Date:            day.Format(timeutil.DateFormat),
			StartTime:       timeutil.FromMinutes(start),
			DurationMinutes: durations[gofakeit.Number(0, len(durations)-1)],
			Service:         services[gofakeit.Number(0, len(services)-1)],
			Status:          appointment.StatusConfirmed,
		}, appointment.Actor{Name: "seed", Role: "system"})
		if err != nil {
			// Conflicts are expected with random slots, just try again.
			continue
		}
		seeded++
	}
	log.Info().Int("seeded", seeded).Msg("appointments done")
}

func seedInventory(ctx context.Context, store kv.Store, log zerolog.Logger) {
	log.Info().Msg("seeding inventory")

	stock := inventory.NewStore(ctx, store, log)
	items := []struct {
		name string
		qty  int
		min  int
		unit string
	}{
		{"Composite filling material", 24, 10, "pcs"},
		{"Anesthetic cartridges", 80, 30, "pcs"},
		{"Latex gloves", 400, 100, "pairs"},
		{"Face masks", 250, 50, "pcs"},
		{"Fluoride varnish", 12, 5, "tubes"},
	}
	for _, it := range items {
		if _, err := stock.Add(ctx, it.name, it.qty, it.min, it.unit); err != nil {
			log.Error().Err(err).Str("item", it.name).Msg("seed item failed")
		}
	}
}
