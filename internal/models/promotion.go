package models

import "time"

type Promotion struct {
	ID             string    `json:"id"`
	Name           string    `json:"promo_event"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Target         string    `json:"target"`
	Channel        string    `json:"channel,omitempty"`
	RedemptionRate float64   `json:"redemption_rate"`
}

type PromotionRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Target    string `json:"target"`
	Channel   string `json:"channel"`
}
