package bot

import (
	"fmt"
	"strconv"
	"strings"

	"WalletWatch/internal/model"
)

// SetupRequest is the parsed body of a /setup command.
type SetupRequest struct {
	Holdings map[string]float64
	Placebo  float64
	Schedule *model.DailyTime
}

// ParseSetup reads quantities line by line ("SYM qty", comma decimals
// accepted) plus an optional "at HH:MM" schedule line. Unknown symbols
// and unparseable lines are skipped; missing symbols default to zero.
func ParseSetup(body string) SetupRequest {
	req := SetupRequest{Holdings: map[string]float64{
		model.SymbolZRO:  0,
		model.SymbolBNB:  0,
		model.SymbolUSDT: 0,
	}}

	for _, raw := range strings.Split(body, "\n") {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if low := strings.ToLower(s); strings.HasPrefix(low, "at ") {
			if dt, err := ParseDailyTime(strings.TrimSpace(s[3:])); err == nil {
				req.Schedule = dt
			}
			continue
		}
		fields := strings.Fields(strings.ReplaceAll(s, ",", "."))
		if len(fields) < 2 {
			continue
		}
		val, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		switch strings.ToUpper(fields[0]) {
		case model.SymbolZRO:
			req.Holdings[model.SymbolZRO] = val
		case model.SymbolBNB:
			req.Holdings[model.SymbolBNB] = val
		case model.SymbolUSDT:
			req.Holdings[model.SymbolUSDT] = val
		case "FZRO":
			req.Placebo = val
		}
	}
	return req
}

// ParseDailyTime parses "HH:MM" into a daily UTC wall-clock time.
func ParseDailyTime(s string) (*model.DailyTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return nil, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(hh))
	if err != nil {
		return nil, fmt.Errorf("bad hour in %q", s)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(mm))
	if err != nil {
		return nil, fmt.Errorf("bad minute in %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("time out of range: %q", s)
	}
	return &model.DailyTime{Hour: hour, Minute: minute}, nil
}
