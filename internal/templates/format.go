package templates

import (
	"fmt"
	"strconv"
	"time"
)

// FormatViews abbreviates a view count: 1234567 → "1.2M", 3456 → "3.5K".
func FormatViews(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// TimeAgo renders t relative to now in Vietnamese, switching to a plain
// dd/mm/yyyy date after two days.
func TimeAgo(t, now time.Time) string {
	hours := int(now.Sub(t).Hours())
	switch {
	case hours < 1:
		return "Vừa xong"
	case hours < 24:
		return fmt.Sprintf("%d giờ trước", hours)
	case hours < 48:
		return "Hôm qua"
	default:
		return t.In(now.Location()).Format("02/01/2006")
	}
}
