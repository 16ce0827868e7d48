package market

import (
	"fmt"
	"time"
)

// Timeframe reports the dominant bar spacing as a label such as "M15" or
// "H1". Irregular series get the most frequent spacing; ties go to the
// shorter one. Series with fewer than two bars return "".
func (s Series) Timeframe() string {
	if len(s) < 2 {
		return ""
	}
	counts := make(map[time.Duration]int)
	for i := 1; i < len(s); i++ {
		counts[s[i].Time.Sub(s[i-1].Time)]++
	}

	var best time.Duration
	bestN := 0
	for d, n := range counts {
		if n > bestN || (n == bestN && d < best) {
			best, bestN = d, n
		}
	}

	label, err := DurationToTF(best)
	if err != nil {
		return best.String()
	}
	return label
}

// DurationToTF maps a bar spacing to a timeframe label.
func DurationToTF(d time.Duration) (string, error) {
	sec := int64(d / time.Second)
	if sec <= 0 || d%time.Second != 0 {
		return "", fmt.Errorf("invalid timeframe: %s", d)
	}

	switch {
	case sec < 60:
		return fmt.Sprintf("S%d", sec), nil
	case sec < 3600 && sec%60 == 0:
		return fmt.Sprintf("M%d", sec/60), nil
	case sec < 86400 && sec%3600 == 0:
		return fmt.Sprintf("H%d", sec/3600), nil
	case sec%86400 == 0:
		days := sec / 86400
		if days == 7 {
			return "W1", nil
		}
		return fmt.Sprintf("D%d", days), nil
	}
	return "", fmt.Errorf("cannot map timeframe: %s", d)
}

// TFToDuration is the inverse of DurationToTF for the common labels.
func TFToDuration(tf string) (time.Duration, error) {
	switch tf {
	case "M1":
		return time.Minute, nil
	case "M5":
		return 5 * time.Minute, nil
	case "M15":
		return 15 * time.Minute, nil
	case "M30":
		return 30 * time.Minute, nil
	case "H1":
		return time.Hour, nil
	case "H4":
		return 4 * time.Hour, nil
	case "D1":
		return 24 * time.Hour, nil
	case "W1":
		return 7 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unsupported timeframe string: %s", tf)
	}
}
