package domain

import (
	"fmt"
	"strings"
	"time"

	"parcel-ledger/internal/core/apperr"
	parcels "parcel-ledger/internal/features/parcels/domain"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var (
	// ErrClientNotFound is returned when a client id does not resolve to a client.
	ErrClientNotFound = apperr.New(apperr.KindNotFound, "client_not_found", "client not found")
	// ErrClientRequired is returned when a sent/received report has no client.
	ErrClientRequired = apperr.Validation("client_id", "client_id is required for sent and received reports")
)

// ClientRole selects which side of a parcel a client report covers.
type ClientRole string

const (
	RoleSent     ClientRole = "sent"
	RoleReceived ClientRole = "received"
	RoleAll      ClientRole = "all"
)

// ParseClientRole validates a client role, defaulting to all when empty.
func ParseClientRole(s string) (ClientRole, error) {
	r := ClientRole(strings.ToLower(strings.TrimSpace(s)))
	if r == "" {
		return RoleAll, nil
	}
	switch r {
	case RoleSent, RoleReceived, RoleAll:
		return r, nil
	default:
		return "", apperr.Validation("role", fmt.Sprintf("unknown role %q", s))
	}
}

// PendingStatuses lists every non-terminal status.
func PendingStatuses() []parcels.StatusCode {
	var codes []parcels.StatusCode
	for _, s := range parcels.Statuses() {
		if !s.Terminal {
			codes = append(codes, s.Code)
		}
	}
	return codes
}

// Period is an inclusive range of calendar days in UTC.
type Period struct {
	From time.Time
	To   time.Time
}

// ParsePeriod parses YYYY-MM-DD bounds. Both are required and from must not be after to.
func ParsePeriod(from, to string) (Period, error) {
	f, err := time.Parse(dateLayout, strings.TrimSpace(from))
	if err != nil {
		return Period{}, apperr.Validation("from", "from must be a date formatted YYYY-MM-DD")
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(to))
	if err != nil {
		return Period{}, apperr.Validation("to", "to must be a date formatted YYYY-MM-DD")
	}
	if t.Before(f) {
		return Period{}, apperr.Validation("to", "to must not be before from")
	}
	return Period{From: f, To: t}, nil
}

// Bounds returns the half-open instant range [start, end) the period covers.
func (p Period) Bounds() (start, end time.Time) {
	return p.From, p.To.AddDate(0, 0, 1)
}

// ParcelReport is a list of parcels with its count.
type ParcelReport struct {
	Count   int                  `json:"parcels_count"`
	Parcels []parcels.ParcelView `json:"parcels"`
}

// NewParcelReport projects parcels into a report.
func NewParcelReport(list []parcels.Parcel) ParcelReport {
	views := make([]parcels.ParcelView, 0, len(list))
	for i := range list {
		views = append(views, parcels.NewParcelView(&list[i]))
	}
	return ParcelReport{Count: len(views), Parcels: views}
}

// IncomeReport sums the price of the parcels delivered within a period.
type IncomeReport struct {
	From    string               `json:"from"`
	To      string               `json:"to"`
	Count   int                  `json:"parcels_count"`
	Total   string               `json:"total_income"`
	Parcels []parcels.ParcelView `json:"parcels"`
}

// NewIncomeReport totals list over period.
func NewIncomeReport(period Period, list []parcels.Parcel) IncomeReport {
	total := decimal.Zero
	for i := range list {
		total = total.Add(list[i].Price())
	}
	report := NewParcelReport(list)
	return IncomeReport{
		From:    period.From.Format(dateLayout),
		To:      period.To.Format(dateLayout),
		Count:   report.Count,
		Total:   total.StringFixed(2),
		Parcels: report.Parcels,
	}
}
