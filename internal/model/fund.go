package model

import "time"

type Fund struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	GPName      string    `json:"gp_name"`
	FundType    string    `json:"fund_type"`
	VintageYear int       `json:"vintage_year"`
	CreatedAt   time.Time `json:"created_at"`
}
