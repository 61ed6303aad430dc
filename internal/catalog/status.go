package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/theLastOfCats/mangadock/internal/model"
)

// MapStatus maps an upstream status string, in English or Vietnamese, to a
// Status. Matching ignores case and Unicode composition. Unknown values map
// to ongoing.
func MapStatus(raw string) model.Status {
	// a Caser is stateful, so each call gets its own
	key := cases.Fold().String(norm.NFC.String(strings.TrimSpace(raw)))

	switch key {
	case "completed", "complete", "finished", "hoàn thành", "đã hoàn thành":
		return model.StatusCompleted
	case "hiatus", "tạm ngưng", "tạm dừng":
		return model.StatusHiatus
	case "cancelled", "canceled", "đã hủy", "đã huỷ":
		return model.StatusCancelled
	default:
		// "ongoing", "đang tiến hành", "đang cập nhật" and anything unrecognized
		return model.StatusOngoing
	}
}
