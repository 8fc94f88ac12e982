package pivot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/verte-zerg/ddgheat/internal/model"
)

// ParseRanges parses a position filter such as "28-35,49-67,100".
// An empty string yields no ranges, which keeps every position.
func ParseRanges(spec string) ([]model.PositionRange, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	parts := strings.Split(spec, ",")
	ranges := make([]model.PositionRange, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		startStr, endStr, isRange := cutRange(part)
		start, err := strconv.Atoi(startStr)
		if err != nil {
			return nil, fmt.Errorf("invalid position range %q", part)
		}
		end := start
		if isRange {
			end, err = strconv.Atoi(endStr)
			if err != nil {
				return nil, fmt.Errorf("invalid position range %q", part)
			}
		}
		if end < start {
			return nil, fmt.Errorf("invalid position range %q: end before start", part)
		}
		ranges = append(ranges, model.PositionRange{Start: start, End: end})
	}
	if len(ranges) == 0 {
		return nil, fmt.Errorf("no position ranges in %q", spec)
	}
	return ranges, nil
}

// FormatRanges renders ranges back into the ParseRanges syntax.
func FormatRanges(ranges []model.PositionRange) string {
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		if r.Start == r.End {
			parts = append(parts, strconv.Itoa(r.Start))
			continue
		}
		parts = append(parts, fmt.Sprintf("%d-%d", r.Start, r.End))
	}
	return strings.Join(parts, ",")
}

// cutRange splits "a-b" while allowing a leading minus on a.
func cutRange(part string) (string, string, bool) {
	idx := strings.Index(part[1:], "-")
	if idx < 0 {
		return strings.TrimSpace(part), "", false
	}
	idx++
	return strings.TrimSpace(part[:idx]), strings.TrimSpace(part[idx+1:]), true
}
