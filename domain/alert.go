package domain

// Alert flags the most urgent upcoming forecast of one salesperson.
type Alert struct {
	SalespersonID    string   `json:"salespersonId"`
	Forecast         Forecast `json:"forecast"`
	CountdownMinutes int      `json:"countdownMinutes"`
	CountdownSeconds int      `json:"countdownSeconds"`
}
