package track

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kanatoon/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Add stores one page view. ID and timestamp are filled in when missing.
func (r *Repo) Add(ctx context.Context, v models.PageView) (models.PageView, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.At.IsZero() {
		v.At = time.Now().UTC()
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO page_views (id, page_path, page_title, referrer, device, at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, v.ID, v.PagePath, v.PageTitle, v.Referrer, v.Device, v.At)
	if err != nil {
		return models.PageView{}, fmt.Errorf("insert page view: %w", err)
	}
	return v, nil
}

type Overview struct {
	TotalViews     int `json:"total_views"`
	TodayViews     int `json:"today_views"`
	YesterdayViews int `json:"yesterday_views"`
	UniquePages    int `json:"unique_pages"`
}

func (r *Repo) Overview(ctx context.Context) (Overview, error) {
	var o Overview
	err := r.DB.QueryRowContext(ctx, `
		SELECT
		  COUNT(*),
		  COUNT(CASE WHEN date(at) = date('now') THEN 1 END),
		  COUNT(CASE WHEN date(at) = date('now', '-1 day') THEN 1 END),
		  COUNT(DISTINCT page_path)
		FROM page_views
	`).Scan(&o.TotalViews, &o.TodayViews, &o.YesterdayViews, &o.UniquePages)
	if err != nil {
		return Overview{}, fmt.Errorf("overview scan: %w", err)
	}
	return o, nil
}

type DateCount struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

// Daily returns per-day view counts for the last 30 days.
func (r *Repo) Daily(ctx context.Context) ([]DateCount, error) {
	return r.countRows(ctx, `
		SELECT date(at), COUNT(*)
		FROM page_views
		WHERE at >= datetime('now', '-30 days')
		GROUP BY date(at)
		ORDER BY date(at)
	`)
}

// Hourly returns today's views grouped by hour of day.
func (r *Repo) Hourly(ctx context.Context) ([]DateCount, error) {
	return r.countRows(ctx, `
		SELECT strftime('%H', at), COUNT(*)
		FROM page_views
		WHERE date(at) = date('now')
		GROUP BY strftime('%H', at)
		ORDER BY strftime('%H', at)
	`)
}

type PathCount struct {
	PagePath string `json:"page_path"`
	Views    int    `json:"views"`
}

// Popular returns the most-viewed paths.
func (r *Repo) Popular(ctx context.Context, limit int) ([]PathCount, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT page_path, COUNT(*)
		FROM page_views
		GROUP BY page_path
		ORDER BY COUNT(*) DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("popular query: %w", err)
	}
	defer rows.Close()

	out := make([]PathCount, 0, limit)
	for rows.Next() {
		var pc PathCount
		if err := rows.Scan(&pc.PagePath, &pc.Views); err != nil {
			return nil, fmt.Errorf("popular scan: %w", err)
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

// Recent returns the newest views first.
func (r *Repo) Recent(ctx context.Context, limit int) ([]models.PageView, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, page_path, page_title, referrer, device, at
		FROM page_views
		ORDER BY at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent query: %w", err)
	}
	defer rows.Close()

	out := make([]models.PageView, 0, limit)
	for rows.Next() {
		var (
			v        models.PageView
			title    sql.NullString
			referrer sql.NullString
			device   sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.PagePath, &title, &referrer, &device, &v.At); err != nil {
			return nil, fmt.Errorf("recent scan: %w", err)
		}
		v.PageTitle = title.String
		v.Referrer = referrer.String
		v.Device = device.String
		out = append(out, v)
	}
	return out, rows.Err()
}

type DeviceCount struct {
	Device string `json:"device"`
	Views  int    `json:"views"`
}

func (r *Repo) Devices(ctx context.Context) ([]DeviceCount, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT COALESCE(device, ''), COUNT(*)
		FROM page_views
		GROUP BY device
		ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("devices query: %w", err)
	}
	defer rows.Close()

	var out []DeviceCount
	for rows.Next() {
		var dc DeviceCount
		if err := rows.Scan(&dc.Device, &dc.Views); err != nil {
			return nil, fmt.Errorf("devices scan: %w", err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

func (r *Repo) countRows(ctx context.Context, query string) ([]DateCount, error) {
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count query: %w", err)
	}
	defer rows.Close()

	var out []DateCount
	for rows.Next() {
		var dc DateCount
		if err := rows.Scan(&dc.Date, &dc.Views); err != nil {
			return nil, fmt.Errorf("count scan: %w", err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}
