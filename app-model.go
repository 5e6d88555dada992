package main

import (
	"sort"
	"strconv"
	"time"
)

// Record is one flattened (center, session) pairing. It is comparable so a
// RecordSet can deduplicate on every field at once.
type Record struct {
	Name              string
	Address           string
	BlockName         string
	FeeType           string
	Date              string
	AvailableCapacity NullNumber
	MinAgeLimit       NullNumber
	Vaccine           string
}

// RecordSet holds the records collected during a single pass.
type RecordSet map[Record]struct{}

func (rs RecordSet) Add(r Record) {
	rs[r] = struct{}{}
}

// Sorted returns the records ordered by date, name, address and vaccine.
func (rs RecordSet) Sorted() []Record {
	out := make([]Record, 0, len(rs))
	for r := range rs {
		out = append(out, r)
	}
	sortRecords(out)
	return out
}

func sortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Date != b.Date {
			return dateBefore(a.Date, b.Date)
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Address != b.Address {
			return a.Address < b.Address
		}
		if a.Vaccine != b.Vaccine {
			return a.Vaccine < b.Vaccine
		}
		return a.BlockName < b.BlockName
	})
}

// dateBefore compares DD-MM-YYYY session dates chronologically. Dates that do
// not parse sort after the ones that do.
func dateBefore(a, b string) bool {
	ta, errA := time.Parse(dateLayout, a)
	tb, errB := time.Parse(dateLayout, b)
	switch {
	case errA == nil && errB == nil:
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// NullNumber is a JSON number that remembers whether it was present.
type NullNumber struct {
	Value float64
	Valid bool
}

func Number(v float64) NullNumber {
	return NullNumber{Value: v, Valid: true}
}

func (n *NullNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullNumber{}
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

// Equals reports whether n is present and equal to v.
func (n NullNumber) Equals(v int) bool {
	return n.Valid && n.Value == float64(v)
}

func (n NullNumber) Positive() bool {
	return n.Valid && n.Value > 0
}

func (n NullNumber) String() string {
	if !n.Valid {
		return "None"
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

type Config struct {
	CalendarAPI      string   `mapstructure:"cowin_public_calendar_api" yaml:"COWIN_PUBLIC_CALENDAR_API"`
	PinCodes         []string `mapstructure:"pin_codes" yaml:"pin_codes"`
	CheckForNextDays int      `mapstructure:"check_for_next_days" yaml:"check_for_next_days"`
	MinimumAge       int      `mapstructure:"minimum_age" yaml:"minimum_age"`
	PollingInterval  int      `mapstructure:"polling_interval" yaml:"polling_interval"`
	LogLevel         string   `mapstructure:"log_level" yaml:"log_level"`
	LogFormat        string   `mapstructure:"log_format" yaml:"log_format"`
	Vaccine          string   `mapstructure:"vaccine" yaml:"vaccine,omitempty"`
	FeeType          string   `mapstructure:"fee_type" yaml:"fee_type,omitempty"`
	MetricsAddr      string   `mapstructure:"metrics_addr" yaml:"metrics_addr,omitempty"`
}
