package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Cash          Method = "cash"
	DigitalWallet Method = "wallet"
	OtherMethod   Method = "other"
)

type (
	// Method is the categorical tag on a payment. It groups payments for
	// display only and has no behavioral effect.
	Method string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Payment is a single recorded partial payment against a debt.
	// ID is unique within the parent debt's payment sequence.
	Payment struct {
		ID     string `json:"id"`
		Amount Money  `json:"amount"`
		Date   Date   `json:"date"`
		Method Method `json:"method"`
	}

	// Debt is a tracked principal amount owed. Total is fixed at creation;
	// the only mutation a debt ever sees is the rewrite of its payment
	// sequence. Payments are ordered newest-first.
	Debt struct {
		ID       string    `json:"id"`
		Name     string    `json:"name"`
		Total    Money     `json:"total"`
		Payments []Payment `json:"payments"`
	}
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("negative amount")
	ErrEmptyName      = errors.New("empty debt name")
	ErrEmptyPaymentID = errors.New("empty payment id")
	ErrInvalidMethod  = errors.New("invalid payment method")
	ErrInvalidDate    = errors.New("invalid date")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day. Dates carry no time
// component; everything below the day is zeroed in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MarshalJSON encodes the date as a bare YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

func (mt Method) Validate() error {
	switch mt {
	case Cash, DigitalWallet, OtherMethod:
		return nil
	default:
		return ErrInvalidMethod
	}
}

// Label returns the display name for the method.
func (mt Method) Label() string {
	switch mt {
	case Cash:
		return "Cash"
	case DigitalWallet:
		return "Digital wallet"
	default:
		return "Other"
	}
}

// ParseMethod maps a wire value to a Method, defaulting unknown input to
// OtherMethod. The tag is display-only, so lenient parsing is fine here.
func ParseMethod(s string) Method {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case Cash:
		return Cash
	case DigitalWallet:
		return DigitalWallet
	default:
		return OtherMethod
	}
}

func (p Payment) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyPaymentID
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	if err := p.Date.Validate(); err != nil {
		return err
	}
	return p.Method.Validate()
}

func (d Debt) Validate() error {
	if len(strings.TrimSpace(d.Name)) == 0 {
		return ErrEmptyName
	}
	if len(d.Name) > 200 {
		return errors.New("debt name too long (max 200 characters)")
	}
	if err := d.Total.Validate(); err != nil {
		return err
	}
	for _, p := range d.Payments {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the debt so callers can hand snapshots to
// other goroutines without sharing the payments slice.
func (d Debt) Clone() Debt {
	out := d
	if d.Payments != nil {
		out.Payments = make([]Payment, len(d.Payments))
		copy(out.Payments, d.Payments)
	}
	return out
}
