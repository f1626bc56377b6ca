package domain

import (
	"fmt"
	"time"
)

// Inbound is an update event emitted by a control connection.
type Inbound interface {
	EventType() EventType
}

type SetActiveDealPayload struct {
	DealID        string    `json:"dealId" validate:"required"`
	IsActive      *bool     `json:"isActive"`
	UpdatedAt     time.Time `json:"updatedAt"`
	SalespersonID string    `json:"salespersonId" validate:"required"`
	CustomerName  string    `json:"customerName,omitempty"`
	CustomerPhone string    `json:"customerPhone,omitempty"`
	Value         *float64  `json:"value,omitempty" validate:"omitempty,gte=0"`
}

func (SetActiveDealPayload) EventType() EventType { return SetActiveDeal }

// Deactivates reports whether the client sent an explicit isActive=false.
func (p SetActiveDealPayload) Deactivates() bool {
	return p.IsActive != nil && !*p.IsActive
}

func (p SetActiveDealPayload) Metadata() DealMetadata {
	return DealMetadata{CustomerName: p.CustomerName, CustomerPhone: p.CustomerPhone, Value: p.Value}
}

type ClearActiveDealPayload struct {
	DealID    string    `json:"dealId" validate:"required"`
	IsActive  bool      `json:"isActive"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ClearActiveDealPayload) EventType() EventType { return ClearActiveDeal }

type SetQuotaPayload struct {
	SalespersonID   string   `json:"salespersonId" validate:"required"`
	SalespersonName string   `json:"salespersonName" validate:"required"`
	Target          *float64 `json:"target" validate:"required,gte=0"`
	Accumulated     *float64 `json:"accumulated,omitempty" validate:"omitempty,gte=0"`
	RelatedDealID   string   `json:"relatedDealId,omitempty"`
	DealValue       *float64 `json:"dealValue,omitempty" validate:"omitempty,gte=0"`
}

func (SetQuotaPayload) EventType() EventType { return SetQuota }

type UpsertForecastPayload struct {
	Forecast
}

func (UpsertForecastPayload) EventType() EventType { return UpsertForecast }

type RemoveForecastPayload struct {
	ForecastID    string `json:"forecastId" validate:"required"`
	SalespersonID string `json:"salespersonId" validate:"required"`
}

func (RemoveForecastPayload) EventType() EventType { return RemoveForecast }

// RegisterSalePayload records a closed sale. It is the only way a sale is recognised;
// quota updates never infer one from value deltas.
type RegisterSalePayload struct {
	SalespersonID   string  `json:"salespersonId" validate:"required"`
	SalespersonName string  `json:"salespersonName,omitempty"`
	DealID          string  `json:"dealId,omitempty"`
	Value           float64 `json:"value" validate:"gt=0"`
}

func (RegisterSalePayload) EventType() EventType { return RegisterSale }

type RegisterMeetingPayload struct {
	SalespersonID string `json:"salespersonId" validate:"required"`
}

func (RegisterMeetingPayload) EventType() EventType { return RegisterMeeting }

// DecodeInbound turns an update envelope into its typed payload.
// Join events are not updates and are rejected here.
func DecodeInbound(env Envelope) (Inbound, error) {
	var in Inbound
	switch env.Type {
	case SetActiveDeal:
		var p SetActiveDealPayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		in = p
	case ClearActiveDeal:
		var p ClearActiveDealPayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		in = p
	case SetQuota:
		var p SetQuotaPayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		in = p
	case UpsertForecast:
		var p UpsertForecastPayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		in = p
	case RemoveForecast:
		var p RemoveForecastPayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		in = p
	case RegisterSale:
		var p RegisterSalePayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		in = p
	case RegisterMeeting:
		var p RegisterMeetingPayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		in = p
	default:
		return nil, fmt.Errorf("unsupported event %q", env.Type)
	}
	return in, nil
}
