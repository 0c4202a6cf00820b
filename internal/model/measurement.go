package model

import "time"

// Measurement is one persisted leftover ratio together with the stored tray image.
type Measurement struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"-"`
	ImageURL      string    `json:"image_url"`
	LeftoverRatio float64   `json:"leftover_ratio"`
	MeasuredAt    time.Time `json:"measured_at"`
}
