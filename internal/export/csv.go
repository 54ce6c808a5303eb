package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/careercraft/craft/internal/analytics"
)

// ToCSV writes the planned-vs-completed day buckets as a productivity
// report, one row per day.
func ToCSV(buckets []analytics.Bucket, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Date", "Planned", "Completed"}); err != nil {
		return err
	}

	for _, b := range buckets {
		row := []string{
			b.Date,
			strconv.Itoa(b.Planned),
			strconv.Itoa(b.Completed),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
