// Package domain contains core concepts of the sales room.
// This file defines the active deal ("now") record a salesperson is working.
package domain

import "time"

// ActiveDeal is the deal a salesperson is currently presenting.
// At most one ActiveDeal per salesperson is active at any time.
type ActiveDeal struct {
	DealID        string    `json:"dealId"`
	SalespersonID string    `json:"salespersonId"`
	IsActive      bool      `json:"isActive"`
	UpdatedAt     time.Time `json:"updatedAt"`
	CustomerName  string    `json:"customerName,omitempty"`
	CustomerPhone string    `json:"customerPhone,omitempty"`
	Value         *float64  `json:"value,omitempty"`
}

// DealMetadata carries the optional enrichment of an ActiveDeal.
type DealMetadata struct {
	CustomerName  string
	CustomerPhone string
	Value         *float64
}

// DealSnapshot is what the CRM knows about a deal.
type DealSnapshot struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	CustomerName  string   `json:"customerName"`
	CustomerPhone string   `json:"customerPhone"`
	Value         *float64 `json:"value"`
	Stage         string   `json:"stage"`
}

// ActiveDealSnapshot is the full state of the active deal store.
type ActiveDealSnapshot struct {
	Deals         []ActiveDeal
	BySalesperson map[string]string
}
