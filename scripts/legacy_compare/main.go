// Command legacy_compare queries the availability endpoint on both the
// legacy booking backend and the Go API for the same days and services,
// then reports any slot-level differences. Run it against production
// shadow traffic before raising the canary percentage.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

type slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

type availabilityPayload struct {
	Timezone string `json:"timezone"`
	Slots    []slot `json:"slots"`
	Error    string `json:"error"`
}

type probe struct {
	Date      string
	ServiceID string
	StaffID   string
}

type result struct {
	Probe        probe
	LegacyStatus int
	GoStatus     int
	Diffs        []string
	Err          error
}

func main() {
	var (
		goBase     string
		legacyBase string
		dates      string
		services   string
		staff      string
		timeout    time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080/api/v1", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:3000/api/v1", "Legacy API base URL")
	flag.StringVar(&dates, "dates", "", "Comma-separated days to compare (YYYY-MM-DD); defaults to the next 7 days")
	flag.StringVar(&services, "services", "", "Comma-separated service IDs (required)")
	flag.StringVar(&staff, "staff", "", "Optional staff ID forwarded to both backends")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	serviceIDs := splitList(services)
	if len(serviceIDs) == 0 {
		log.Fatal("at least one service ID is required (-services)")
	}

	days := splitList(dates)
	if len(days) == 0 {
		today := time.Now()
		for i := 0; i < 7; i++ {
			days = append(days, today.AddDate(0, 0, i).Format("2006-01-02"))
		}
	}

	client := &http.Client{Timeout: timeout}
	var results []result
	mismatches := 0

	for _, day := range days {
		for _, svc := range serviceIDs {
			res := compare(client, goBase, legacyBase, probe{Date: day, ServiceID: svc, StaffID: staff})
			if res.Err != nil || len(res.Diffs) > 0 {
				mismatches++
			}
			results = append(results, res)
		}
	}

	report(results)
	fmt.Printf("\nCompared %d day/service pairs, %d with differences\n", len(results), mismatches)
	if mismatches > 0 {
		os.Exit(1)
	}
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func compare(client *http.Client, goBase, legacyBase string, p probe) result {
	res := result{Probe: p}

	legacyPayload, legacyStatus, err := fetch(client, legacyBase, p)
	if err != nil {
		res.Err = fmt.Errorf("legacy request failed: %w", err)
		return res
	}
	goPayload, goStatus, err := fetch(client, goBase, p)
	if err != nil {
		res.Err = fmt.Errorf("go request failed: %w", err)
		return res
	}

	res.LegacyStatus = legacyStatus
	res.GoStatus = goStatus

	if legacyStatus != goStatus {
		res.Diffs = append(res.Diffs, fmt.Sprintf("status: legacy=%d go=%d", legacyStatus, goStatus))
		return res
	}
	if legacyStatus != http.StatusOK {
		if legacyPayload.Error != goPayload.Error {
			res.Diffs = append(res.Diffs, fmt.Sprintf("error message: legacy=%q go=%q", legacyPayload.Error, goPayload.Error))
		}
		return res
	}

	if legacyPayload.Timezone != goPayload.Timezone {
		res.Diffs = append(res.Diffs, fmt.Sprintf("timezone: legacy=%q go=%q", legacyPayload.Timezone, goPayload.Timezone))
	}
	if len(legacyPayload.Slots) != len(goPayload.Slots) {
		res.Diffs = append(res.Diffs, fmt.Sprintf("slot count: legacy=%d go=%d", len(legacyPayload.Slots), len(goPayload.Slots)))
		return res
	}
	for i := range legacyPayload.Slots {
		l, g := legacyPayload.Slots[i], goPayload.Slots[i]
		if !l.Start.Equal(g.Start) || !l.End.Equal(g.End) {
			res.Diffs = append(res.Diffs, fmt.Sprintf("slot %d window: legacy=[%s,%s) go=[%s,%s)",
				i, l.Start.Format(time.RFC3339), l.End.Format(time.RFC3339),
				g.Start.Format(time.RFC3339), g.End.Format(time.RFC3339)))
			continue
		}
		if l.Available != g.Available {
			res.Diffs = append(res.Diffs, fmt.Sprintf("slot %d availability at %s: legacy=%t go=%t",
				i, l.Start.Format(time.RFC3339), l.Available, g.Available))
		}
	}
	return res
}

func fetch(client *http.Client, base string, p probe) (*availabilityPayload, int, error) {
	query := url.Values{}
	query.Set("date", p.Date)
	query.Set("serviceId", p.ServiceID)
	if p.StaffID != "" {
		query.Set("staffId", p.StaffID)
	}
	endpoint := strings.TrimRight(base, "/") + "/availability?" + query.Encode()

	resp, err := client.Get(endpoint)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	payload := &availabilityPayload{}
	if err := json.Unmarshal(body, payload); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode body: %w", err)
	}
	return payload, resp.StatusCode, nil
}

func report(results []result) {
	fmt.Println("Availability Compare Report")
	fmt.Println("===========================")
	for _, res := range results {
		status := "OK"
		if res.Err != nil {
			status = "ERROR"
		} else if len(res.Diffs) > 0 {
			status = "DIFF"
		}
		label := res.Probe.Date + " service=" + res.Probe.ServiceID
		if res.Probe.StaffID != "" {
			label += " staff=" + res.Probe.StaffID
		}
		fmt.Printf("[%s] %s\n", status, label)
		if res.Err != nil {
			fmt.Printf("  %v\n", res.Err)
			continue
		}
		for _, d := range res.Diffs {
			fmt.Printf("  %s\n", d)
		}
	}
}
