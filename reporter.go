package main

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// matches reports whether r passes the configured filters. The age check is
// exact equality; vaccine and fee type only narrow when they are set.
func (cfg Config) matches(r Record) bool {
	if !r.MinAgeLimit.Equals(cfg.MinimumAge) {
		return false
	}
	if cfg.Vaccine != "" && !strings.EqualFold(cfg.Vaccine, r.Vaccine) {
		return false
	}
	if cfg.FeeType != "" && !strings.EqualFold(cfg.FeeType, r.FeeType) {
		return false
	}
	return true
}

func filterRecords(cfg Config, schedules RecordSet) []Record {
	matched := RecordSet{}
	for r := range schedules {
		if cfg.matches(r) {
			matched.Add(r)
		}
	}
	return matched.Sorted()
}

// report logs every matching record and returns the matches.
func (p *Poller) report(log *zap.Logger, schedules RecordSet) []Record {
	matched := filterRecords(p.cfg, schedules)
	for _, fs := range matched {
		log.Info(fmt.Sprintf("Matched - Name: %s - Address: %s - Age Limit: %s - Vaccine: %s",
			fs.Name, fs.Address, fs.MinAgeLimit, fs.Vaccine),
			zap.String("name", fs.Name),
			zap.String("address", fs.Address),
			zap.Stringer("age_limit", fs.MinAgeLimit),
			zap.String("vaccine", fs.Vaccine))
		p.metrics.Matches.Inc()

		if fs.AvailableCapacity.Positive() {
			log.Info(fmt.Sprintf(">> BINGO: %s vaccines available for above on %s <<",
				fs.AvailableCapacity, fs.Date),
				zap.Stringer("available_capacity", fs.AvailableCapacity),
				zap.String("date", fs.Date))
			p.metrics.Available.Inc()
		}
	}
	return matched
}
