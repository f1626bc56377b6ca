package main

import (
	"fmt"
	"io"
	"salesroom/domain"
	"strconv"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

type Renderer struct {
	out     io.Writer
	colours bool
}

func NewRenderer(out io.Writer, colours bool) Renderer {
	return Renderer{out: out, colours: colours}
}

// Render prints one inbound envelope. Unknown types are printed raw.
func (r Renderer) Render(env domain.Envelope) error {
	switch env.Type {
	case domain.DashboardSnapshotEvent:
		var snapshot domain.DashboardSnapshot
		if err := env.Decode(&snapshot); err != nil {
			return err
		}
		r.dashboard(snapshot)
	case domain.ControlSnapshotEvent:
		var snapshot domain.ControlSnapshot
		if err := env.Decode(&snapshot); err != nil {
			return err
		}
		r.control(snapshot)
	case domain.QuotaSnapshotEvent:
		var snapshot domain.QuotaSnapshot
		if err := env.Decode(&snapshot); err != nil {
			return err
		}
		r.quotas(snapshot)
	case domain.ForecastSnapshotEvent:
		var snapshot domain.ForecastSnapshot
		if err := env.Decode(&snapshot); err != nil {
			return err
		}
		r.forecasts(snapshot)
	case domain.AlertTickEvent:
		var alerts []domain.Alert
		if err := env.Decode(&alerts); err != nil {
			return err
		}
		r.alerts(alerts)
	case domain.ValidationErrorEvent:
		var v domain.ValidationError
		if err := env.Decode(&v); err != nil {
			return err
		}
		r.line(color.FgRed, "validation error: "+v.Message)
	default:
		fmt.Fprintf(r.out, "%s %s\n", env.Type, string(env.Payload))
	}
	return nil
}

func (r Renderer) dashboard(snapshot domain.DashboardSnapshot) {
	r.header("ACTIVE DEALS")
	table := r.table("Salesperson", "Deal", "Customer", "Phone", "Value", "Since")
	for _, pair := range snapshot {
		deal := pair.Value
		value := ""
		if deal.Value != nil {
			value = strconv.FormatFloat(*deal.Value, 'f', 2, 64)
		}
		table.Append([]string{pair.Key, deal.DealID, deal.CustomerName, deal.CustomerPhone, value, deal.UpdatedAt.Format(time.TimeOnly)})
	}
	table.Render()
}

func (r Renderer) control(snapshot domain.ControlSnapshot) {
	r.header("DEAL OWNERS")
	table := r.table("Deal", "Salesperson")
	for _, pair := range snapshot {
		table.Append([]string{pair.Key, pair.Value})
	}
	table.Render()
}

func (r Renderer) quotas(snapshot domain.QuotaSnapshot) {
	r.header("QUOTAS")
	table := r.table("Salesperson", "Name", "Target", "Accumulated", "Progress", "Meetings")
	for _, pair := range snapshot {
		q := pair.Value
		progress := "-"
		if p, ok := q.Progress(); ok {
			progress = fmt.Sprintf("%.0f%%", p*100)
		}
		table.Append([]string{
			pair.Key, q.SalespersonName,
			strconv.FormatFloat(q.TargetValue, 'f', 2, 64),
			strconv.FormatFloat(q.AccumulatedValue, 'f', 2, 64),
			progress, strconv.Itoa(q.MeetingsCount),
		})
	}
	table.Render()
}

func (r Renderer) forecasts(snapshot domain.ForecastSnapshot) {
	r.header("FORECASTS")
	table := r.table("Salesperson", "Customer", "Date", "Time", "Value", "Notes")
	for _, pair := range snapshot {
		for _, f := range pair.Value {
			table.Append([]string{pair.Key, f.CustomerName, f.ScheduledDate, f.ScheduledTime,
				strconv.FormatFloat(f.Value, 'f', 2, 64), f.Notes})
		}
	}
	table.Render()
}

func (r Renderer) alerts(alerts []domain.Alert) {
	for _, a := range alerts {
		r.line(color.FgYellow, fmt.Sprintf("%s meets %s in %dm%02ds",
			a.SalespersonID, a.Forecast.CustomerName, a.CountdownMinutes, a.CountdownSeconds))
	}
}

func (r Renderer) header(title string) {
	header := fmt.Sprintf("  ====== %s ======", title)
	if r.colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Fprintln(r.out, header)
}

func (r Renderer) line(c color.Color, text string) {
	if r.colours {
		text = c.Render(text)
	}
	fmt.Fprintln(r.out, text)
}

func (r Renderer) table(headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(r.out)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
