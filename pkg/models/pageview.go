package models

import "time"

// PageView is one tracked route visit.
type PageView struct {
	ID        string    `json:"id"`
	PagePath  string    `json:"page_path"`
	PageTitle string    `json:"page_title,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	Device    string    `json:"device,omitempty"` // desktop, mobile, tablet
	At        time.Time `json:"at"`
}
