package model

import "time"

// Report is one member's daily sales entry. ReportDate and OrderDate are
// canonical YYYY-MM-DD strings, validated at the handler boundary before
// they ever reach a store or the aggregator.
type Report struct {
	ID           int64     `json:"id"`
	MemberID     int64     `json:"member_id"`
	ReportDate   string    `json:"report_date"`
	Reach        int64     `json:"reach"`
	Responses    int64     `json:"responses"`
	Deals        int64     `json:"deals"`
	Revenue      int64     `json:"revenue"`
	Product      string    `json:"product"`
	Channel      string    `json:"channel"`
	Warehouse    string    `json:"warehouse"`
	OrderCode    string    `json:"order_code"`
	OrderDate    string    `json:"order_date"`
	CustomerName string    `json:"customer_name"`
	CustomerLink string    `json:"customer_link"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	Status       string    `json:"status"`
	Note         string    `json:"note"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
