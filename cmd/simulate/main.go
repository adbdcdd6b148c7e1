package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	stdlog "log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/hackgods/clinic-scheduling/internal/api"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
	"github.com/hackgods/clinic-scheduling/internal/logger"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	Days         int
	Patients     int
	BookingRatio float64
	AcceptRatio  float64
	CancelRatio  float64
}

// slot is one bookable doctor/date/time triple discovered through /availability.
type slot struct {
	DoctorID string
	Date     calendar.Date
	Time     calendar.TimeOfDay
}

type DataPool struct {
	Slots []slot

	mu           sync.RWMutex
	appointments []api.AppointmentResponse
}

func (dp *DataPool) AddAppointment(a api.AppointmentResponse) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, a)
}

func (dp *DataPool) RandomAppointment(rng *rand.Rand) (api.AppointmentResponse, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return api.AppointmentResponse{}, false
	}
	return dp.appointments[rng.Intn(len(dp.appointments))], true
}

type OperationMetrics struct {
	Total    int64
	Success  int64
	Conflict int64
	Error    int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case status >= 200 && status < 300:
		atomic.AddInt64(&om.Success, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.latencies = append(om.latencies, latency)
	om.mu.Unlock()
}

// Percentile returns the latency at p (0-100).
func (om *OperationMetrics) Percentile(p int) time.Duration {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.latencies) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), om.latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

type Metrics struct {
	Booking OperationMetrics
	Accept  OperationMetrics
	Cancel  OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
	log     zerolog.Logger
}

func main() {
	cfg := loadConfig()
	log := logger.New(logger.Config{Level: "info", Format: "console", Output: os.Stderr, Service: "simulate"})

	if err := validateConfig(cfg); err != nil {
		stdlog.Fatalf("invalid config: %v", err)
	}

	log.Info().
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Float64("booking", cfg.BookingRatio).
		Float64("accept", cfg.AcceptRatio).
		Float64("cancel", cfg.CancelRatio).
		Msg("simulator starting")

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := sim.loadDataPool(ctx)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("load data pool")
	}
	sim.pool = pool
	log.Info().Int("slots", len(pool.Slots)).Msg("availability loaded")

	sim.Run()
	sim.PrintReport()

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sim.verifyNoDoubleBooking(ctx); err != nil {
		log.Error().Err(err).Msg("consistency check failed")
		os.Exit(1)
	}
	log.Info().Msg("consistency check passed: no slot is held by two active appointments")
}

func loadConfig() SimConfig {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SIM_API_BASE_URL", "http://localhost:8080")
	v.SetDefault("SIM_DURATION", "30s")
	v.SetDefault("SIM_WORKERS", 10)
	v.SetDefault("SIM_DAYS", 14)
	v.SetDefault("SIM_PATIENTS", 200)
	v.SetDefault("SIM_BOOKING_RATIO", 0.6)
	v.SetDefault("SIM_ACCEPT_RATIO", 0.25)
	v.SetDefault("SIM_CANCEL_RATIO", 0.15)

	cfg := SimConfig{
		APIBaseURL:   strings.TrimRight(v.GetString("SIM_API_BASE_URL"), "/"),
		Duration:     v.GetDuration("SIM_DURATION"),
		Workers:      v.GetInt("SIM_WORKERS"),
		Days:         v.GetInt("SIM_DAYS"),
		Patients:     v.GetInt("SIM_PATIENTS"),
		BookingRatio: v.GetFloat64("SIM_BOOKING_RATIO"),
		AcceptRatio:  v.GetFloat64("SIM_ACCEPT_RATIO"),
		CancelRatio:  v.GetFloat64("SIM_CANCEL_RATIO"),
	}

	total := cfg.BookingRatio + cfg.AcceptRatio + cfg.CancelRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.AcceptRatio /= total
		cfg.CancelRatio /= total
	}
	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.Patients <= 0 {
		return fmt.Errorf("SIM_PATIENTS must be > 0")
	}
	return nil
}

func (s *Simulator) loadDataPool(ctx context.Context) (*DataPool, error) {
	pool := &DataPool{}
	from := calendar.DateOf(time.Now()).AddDays(1)

	for i := 0; i < s.config.Days; i++ {
		date := from.AddDays(i)
		var schedules []api.ScheduleResponse
		status, err := s.call(ctx, http.MethodGet, "/availability?date="+date.String(), nil, &schedules)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("availability for %s: status %d", date, status)
		}
		for _, sc := range schedules {
			for _, t := range sc.Slots {
				pool.Slots = append(pool.Slots, slot{DoctorID: sc.DoctorID, Date: sc.Date, Time: t})
			}
		}
	}

	if len(pool.Slots) == 0 {
		return nil, fmt.Errorf("no open slots in the next %d days; run the seeder first", s.config.Days)
	}
	return pool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.log.Info().Msg("simulation running")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.log.Info().Msg("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for ctx.Err() == nil {
		r := rng.Float64()
		switch {
		case r < s.config.BookingRatio:
			s.doBooking(ctx, rng)
		case r < s.config.BookingRatio+s.config.AcceptRatio:
			s.doAccept(ctx, rng)
		default:
			s.doCancel(ctx, rng)
		}
	}
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	sl := s.pool.Slots[rng.Intn(len(s.pool.Slots))]
	req := api.CreateAppointmentRequest{
		PatientID: fmt.Sprintf("P%03d", rng.Intn(s.config.Patients)+1),
		DoctorID:  sl.DoctorID,
		Date:      sl.Date,
		Time:      sl.Time,
	}

	var resp api.AppointmentResponse
	start := time.Now()
	status, err := s.call(ctx, http.MethodPost, "/appointments", req, &resp)
	if err != nil {
		return
	}
	s.metrics.Booking.Record(time.Since(start), status)
	if status == http.StatusCreated {
		s.pool.AddAppointment(resp)
	}
}

func (s *Simulator) doAccept(ctx context.Context, rng *rand.Rand) {
	appt, ok := s.pool.RandomAppointment(rng)
	if !ok {
		return
	}
	start := time.Now()
	status, err := s.call(ctx, http.MethodPost, "/appointments/"+appt.ID+"/accept",
		api.AcceptAppointmentRequest{DoctorID: appt.DoctorID}, nil)
	if err != nil {
		return
	}
	s.metrics.Accept.Record(time.Since(start), status)
}

func (s *Simulator) doCancel(ctx context.Context, rng *rand.Rand) {
	appt, ok := s.pool.RandomAppointment(rng)
	if !ok {
		return
	}
	start := time.Now()
	status, err := s.call(ctx, http.MethodPost, "/appointments/"+appt.ID+"/cancel",
		api.PatientActionRequest{PatientID: appt.PatientID}, nil)
	if err != nil {
		return
	}
	s.metrics.Cancel.Record(time.Since(start), status)
}

// verifyNoDoubleBooking fails when two active appointments hold the same slot.
func (s *Simulator) verifyNoDoubleBooking(ctx context.Context) error {
	var all []api.AppointmentResponse
	status, err := s.call(ctx, http.MethodGet, "/appointments", nil, &all)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("list appointments: status %d", status)
	}

	held := make(map[string]string)
	for _, a := range all {
		switch a.Status {
		case "PENDING", "SCHEDULED", "CONFIRMED":
		default:
			continue
		}
		key := a.DoctorID + " " + a.Date.String() + " " + a.Time.String()
		if other, ok := held[key]; ok {
			return fmt.Errorf("%s and %s both hold %s", other, a.ID, key)
		}
		held[key] = a.ID
	}
	return nil
}

// call sends body as JSON and decodes a 2xx response into out when out is non-nil.
// Errors are transport failures only; the status code is returned as-is.
func (s *Simulator) call(ctx context.Context, method, path string, body, out any) (int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Printf("Open slots at start: %d\n", len(s.pool.Slots))
	fmt.Println()

	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Accept", &s.metrics.Accept)
	printOperationReport("Cancel", &s.metrics.Cancel)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}
	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: p50=%s p95=%s p99=%s\n",
		om.Percentile(50).Round(time.Millisecond),
		om.Percentile(95).Round(time.Millisecond),
		om.Percentile(99).Round(time.Millisecond))
	fmt.Println()
}
