package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jengzang/cdr-indicators/internal/database"
	"github.com/jengzang/cdr-indicators/internal/models"
)

// ErrUserNotFound is returned when no subject has the requested id
var ErrUserNotFound = errors.New("user not found")

// UserRepository handles database operations for subjects and their records
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// ListUsers returns every stored subject ordered by id
func (r *UserRepository) ListUsers() ([]models.UserProfile, error) {
	rows, err := r.db.Query(`SELECT id, name, night_start, night_end, weekend, created_at
		FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.UserProfile{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUser returns the subject with the given id
func (r *UserRepository) GetUser(id string) (*models.UserProfile, error) {
	row := r.db.QueryRow(`SELECT id, name, night_start, night_end, weekend, created_at
		FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (models.UserProfile, error) {
	var u models.UserProfile
	var weekend string
	var createdAt sql.NullString
	if err := s.Scan(&u.ID, &u.Name, &u.NightStart, &u.NightEnd, &weekend, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, err
		}
		return u, fmt.Errorf("failed to scan user: %w", err)
	}
	days, err := parseWeekend(weekend)
	if err != nil {
		return u, fmt.Errorf("user %s: %w", u.ID, err)
	}
	u.Weekend = days
	if createdAt.Valid {
		u.CreatedAt = &createdAt.String
	}
	return u, nil
}

func parseWeekend(s string) ([]int, error) {
	days := []int{}
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		d, err := strconv.Atoi(f)
		if err != nil || d < 1 || d > 7 {
			return nil, fmt.Errorf("invalid weekend day %q", f)
		}
		days = append(days, d)
	}
	return days, nil
}

func formatWeekend(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// CreateUser inserts or replaces a subject profile
func (r *UserRepository) CreateUser(u models.UserProfile) error {
	nightStart, nightEnd := u.NightStart, u.NightEnd
	if nightStart == "" {
		nightStart = "19:00"
	}
	if nightEnd == "" {
		nightEnd = "07:00"
	}
	weekend := u.Weekend
	if weekend == nil {
		weekend = []int{6, 7}
	}
	_, err := r.db.Exec(`INSERT INTO users (id, name, night_start, night_end, weekend)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, night_start = excluded.night_start,
			night_end = excluded.night_end, weekend = excluded.weekend`,
		u.ID, u.Name, nightStart, nightEnd, formatWeekend(weekend))
	if err != nil {
		return fmt.Errorf("failed to save user %s: %w", u.ID, err)
	}
	return nil
}

// LoadRecords returns the events of a subject in chronological order
func (r *UserRepository) LoadRecords(userID string) ([]models.Event, error) {
	rows, err := r.db.Query(`SELECT datetime, interaction, direction, correspondent_id,
		call_duration, antenna_id, latitude, longitude
		FROM events WHERE user_id = ? ORDER BY datetime, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var (
			e          models.Event
			ts         int64
			duration   sql.NullInt64
			lat, lng   sql.NullFloat64
			antennaID  string
			kind, dirn string
		)
		if err := rows.Scan(&ts, &kind, &dirn, &e.CorrespondentID, &duration, &antennaID, &lat, &lng); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.DateTime = time.Unix(ts, 0).UTC()
		e.Interaction = models.Interaction(kind)
		e.Direction = models.Direction(dirn)
		if duration.Valid {
			d := duration.Int64
			e.CallDuration = &d
		}
		e.Position.Antenna = antennaID
		if lat.Valid && lng.Valid {
			e.Position.Location = &models.LatLng{Lat: lat.Float64, Lng: lng.Float64}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// LoadAntennas returns the antenna coordinates known for a subject
func (r *UserRepository) LoadAntennas(userID string) (map[string]models.LatLng, error) {
	rows, err := r.db.Query(`SELECT antenna_id, latitude, longitude FROM antennas WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query antennas: %w", err)
	}
	defer rows.Close()

	antennas := make(map[string]models.LatLng)
	for rows.Next() {
		var id string
		var ll models.LatLng
		if err := rows.Scan(&id, &ll.Lat, &ll.Lng); err != nil {
			return nil, fmt.Errorf("failed to scan antenna: %w", err)
		}
		antennas[id] = ll
	}
	return antennas, rows.Err()
}

// LoadRecharges returns the recharges of a subject in chronological order
func (r *UserRepository) LoadRecharges(userID string) ([]models.Recharge, error) {
	rows, err := r.db.Query(`SELECT datetime, amount, retailer_id
		FROM recharges WHERE user_id = ? ORDER BY datetime, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recharges: %w", err)
	}
	defer rows.Close()

	recharges := []models.Recharge{}
	for rows.Next() {
		var rc models.Recharge
		var ts int64
		if err := rows.Scan(&ts, &rc.Amount, &rc.RetailerID); err != nil {
			return nil, fmt.Errorf("failed to scan recharge: %w", err)
		}
		rc.DateTime = time.Unix(ts, 0).UTC()
		recharges = append(recharges, rc)
	}
	return recharges, rows.Err()
}

// InsertEvents stores events for a subject in one transaction
func (r *UserRepository) InsertEvents(userID string, events []models.Event) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO events (user_id, datetime, interaction, direction,
			correspondent_id, call_duration, antenna_id, latitude, longitude)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare event insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range events {
			var lat, lng any
			if e.Position.Location != nil {
				lat, lng = e.Position.Location.Lat, e.Position.Location.Lng
			}
			var duration any
			if e.CallDuration != nil {
				duration = *e.CallDuration
			}
			if _, err := stmt.Exec(userID, e.DateTime.Unix(), string(e.Interaction), string(e.Direction),
				e.CorrespondentID, duration, e.Position.Antenna, lat, lng); err != nil {
				return fmt.Errorf("failed to insert event: %w", err)
			}
		}
		return nil
	})
}

// InsertAntennas stores antenna coordinates for a subject
func (r *UserRepository) InsertAntennas(userID string, antennas map[string]models.LatLng) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		for id, ll := range antennas {
			if _, err := tx.Exec(`INSERT OR REPLACE INTO antennas (user_id, antenna_id, latitude, longitude)
				VALUES (?, ?, ?, ?)`, userID, id, ll.Lat, ll.Lng); err != nil {
				return fmt.Errorf("failed to insert antenna %s: %w", id, err)
			}
		}
		return nil
	})
}

// InsertRecharges stores recharges for a subject
func (r *UserRepository) InsertRecharges(userID string, recharges []models.Recharge) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		for _, rc := range recharges {
			if _, err := tx.Exec(`INSERT INTO recharges (user_id, datetime, amount, retailer_id)
				VALUES (?, ?, ?, ?)`, userID, rc.DateTime.Unix(), rc.Amount, rc.RetailerID); err != nil {
				return fmt.Errorf("failed to insert recharge: %w", err)
			}
		}
		return nil
	})
}
