package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	requestTimeout = 5 * time.Second
	dateLayout     = "02-01-2006"

	minErrorPause = 5
	maxErrorPause = 10
)

// Poller runs collect and report passes against the calendar API. The clock,
// sleep and random source are fields so tests can replace them.
type Poller struct {
	cfg     Config
	log     *zap.Logger
	client  *http.Client
	metrics *Metrics

	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	randIntn func(n int) int
}

func newPoller(cfg Config, log *zap.Logger, metrics *Metrics) *Poller {
	return &Poller{
		cfg:      cfg,
		log:      log,
		client:   &http.Client{Timeout: requestTimeout},
		metrics:  metrics,
		now:      time.Now,
		sleep:    sleepContext,
		randIntn: rand.Intn,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// collect queries every (day, pin code) pair once and flattens the answers
// into a fresh RecordSet.
func (p *Poller) collect(ctx context.Context, log *zap.Logger) (RecordSet, error) {
	schedules := RecordSet{}
	today := p.now()

	for day := 0; day < p.cfg.CheckForNextDays; day++ {
		date := today.AddDate(0, 0, day).Format(dateLayout)
		for _, pin := range p.cfg.PinCodes {
			slots, status, err := p.fetch(ctx, pin, date)
			if err != nil {
				return nil, fmt.Errorf("calendar request for pin %s on %s: %w", pin, date, err)
			}
			if status != http.StatusOK {
				log.Error("could not connect to "+p.cfg.CalendarAPI,
					zap.Int("status", status),
					zap.String("pin", pin),
					zap.String("date", date))
				if err := p.pause(ctx); err != nil {
					return nil, err
				}
				continue
			}

			log.Debug(fmt.Sprintf("Found %d centers for pin %s and date %s", len(slots.Centers), pin, date))
			for i := range slots.Centers {
				center := &slots.Centers[i]
				log.Debug(fmt.Sprintf("Found %d sessions for the above center", len(center.Sessions)))
				for _, session := range center.Sessions {
					schedules.Add(center.record(session))
				}
			}
		}
	}
	return schedules, nil
}

// pause waits a random whole number of seconds in [minErrorPause, maxErrorPause].
func (p *Poller) pause(ctx context.Context) error {
	secs := minErrorPause + p.randIntn(maxErrorPause-minErrorPause+1)
	return p.sleep(ctx, time.Duration(secs)*time.Second)
}

// fetch returns the decoded body for a 200 response, or only the status code
// for anything else.
func (p *Poller) fetch(ctx context.Context, pin, date string) (*CowinSlots, int, error) {
	req, err := p.newRequest(ctx, pin, date)
	if err != nil {
		return nil, 0, err
	}

	res, err := p.client.Do(req)
	if err != nil {
		p.metrics.RequestFailures.Inc()
		return nil, 0, err
	}
	defer res.Body.Close()
	p.metrics.observeStatus(res.StatusCode)

	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, res.StatusCode, nil
	}

	slots := &CowinSlots{}
	if err := json.NewDecoder(res.Body).Decode(slots); err != nil {
		return nil, res.StatusCode, fmt.Errorf("failed to decode calendar response: %w", err)
	}
	return slots, res.StatusCode, nil
}

func (p *Poller) newRequest(ctx context.Context, pin, date string) (*http.Request, error) {
	u, err := url.Parse(p.cfg.CalendarAPI)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar endpoint: %w", err)
	}
	q := u.Query()
	q.Set("pincode", pin)
	q.Set("date", date)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json,text/html;q=0.9,*/*;q=0.8")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:88.0) Gecko/20100101 Firefox/88.0")
	return req, nil
}
