package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// openBoundLiteral is the persisted marker for an open-ended accrual bound.
// It must never collide with a valid ISO date string.
const openBoundLiteral = "dynamic"

// dateLayout is the wire and storage format for calendar dates.
const dateLayout = "2006-01-02"

// Amount is a currency amount in won. Operators paste figures from court
// documents, so the decoder tolerates numbers, numeric strings with commas,
// empty strings, and null; anything non-numeric coerces to zero rather than
// letting a NaN poison the total for an entire case.
type Amount float64

// UnmarshalJSON implements lenient numeric decoding for Amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*a = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = 0
			return nil
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			*a = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			*a = 0
			return nil
		}
		*a = Amount(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*a = 0
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		f = 0
	}
	*a = Amount(f)
	return nil
}

// Float64 returns the amount as a plain float64, mapping NaN/Inf to zero.
func (a Amount) Float64() float64 {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Date is a calendar date (no time-of-day) serialized as "2006-01-02".
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON encodes the date as a "2006-01-02" string, or null when zero.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

// UnmarshalJSON decodes a "2006-01-02" string. Null, empty, and unparseable
// input all leave the date zero; a missing start or end simply means the
// tranche contributes nothing.
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		d.Time = time.Time{}
		return nil
	}
	d.Time = t
	return nil
}

// BoundKind discriminates the end bound of an interest tranche.
type BoundKind string

const (
	// BoundAbsent means the bound was never filled in; the tranche accrues
	// nothing.
	BoundAbsent BoundKind = "absent"
	// BoundFixed is a concrete historical calendar date.
	BoundFixed BoundKind = "fixed"
	// BoundOpen means "the current date at evaluation time". The accrued
	// value therefore drifts upward daily and must never be persisted or
	// cached across reads.
	BoundOpen BoundKind = "open"
)

// Bound is the end of an accrual period: a fixed date, open-ended, or absent.
type Bound struct {
	Kind BoundKind
	Date time.Time
}

// FixedBound returns a Bound pinned to the given date.
func FixedBound(t time.Time) Bound {
	return Bound{Kind: BoundFixed, Date: t}
}

// OpenBound returns the open-ended ("dynamic") bound.
func OpenBound() Bound {
	return Bound{Kind: BoundOpen}
}

// ParseBound decodes the storage representation of a bound: an ISO date,
// the literal "dynamic", or empty/garbage (absent). Unparseable input is
// treated as absent, not an error; date validation happens at the form layer.
func ParseBound(s string) Bound {
	s = strings.TrimSpace(s)
	if s == "" {
		return Bound{Kind: BoundAbsent}
	}
	if strings.EqualFold(s, openBoundLiteral) {
		return OpenBound()
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Bound{Kind: BoundAbsent}
	}
	return FixedBound(t)
}

// Encode returns the storage representation of the bound, or nil for absent.
func (b Bound) Encode() *string {
	switch b.Kind {
	case BoundFixed:
		s := b.Date.Format(dateLayout)
		return &s
	case BoundOpen:
		s := openBoundLiteral
		return &s
	default:
		return nil
	}
}

// MarshalJSON encodes fixed bounds as a date string, open bounds as the
// "dynamic" literal, and absent bounds as null.
func (b Bound) MarshalJSON() ([]byte, error) {
	if enc := b.Encode(); enc != nil {
		return json.Marshal(*enc)
	}
	return []byte("null"), nil
}

// UnmarshalJSON is the inverse of MarshalJSON, with the same fail-soft
// handling as ParseBound.
func (b *Bound) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*b = Bound{Kind: BoundAbsent}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*b = Bound{Kind: BoundAbsent}
		return nil
	}
	*b = ParseBound(s)
	return nil
}

// InterestTranche is one independently-configured accrual period applied to
// the bond principal. Rate is percent per year (5 means 5%/year).
type InterestTranche struct {
	Rate  Amount `json:"rate"`
	Start Date   `json:"start_date"`
	End   Bound  `json:"end_date"`
}

// Expense is a fixed itemized cost (filing fee, service fee, ...) added to
// the outstanding total. Expenses are not subject to interest accrual.
type Expense struct {
	Item   string `json:"item"`
	Amount Amount `json:"amount"`
}

// BondRecord is the claim attached to a case: principal, up to two interest
// tranches (the cap is enforced at the service boundary, not here), and
// itemized expenses. There is at most one record per case; saving replaces
// the record wholesale.
type BondRecord struct {
	ID        string            `json:"id"`
	CaseID    string            `json:"case_id"`
	Principal Amount            `json:"principal"`
	Tranches  []InterestTranche `json:"tranches"`
	Expenses  []Expense         `json:"expenses"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
