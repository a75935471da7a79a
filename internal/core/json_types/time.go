package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClockTime — время дня в формате 15:04.
type ClockTime struct {
	Time time.Time
}

func (t *ClockTime) UnmarshalJSON(data []byte) error {
	// Убираем кавычки вокруг строки
	str := string(data[1 : len(data)-1])

	parsedTime, err := time.Parse("15:04", str)
	if err != nil {
		return fmt.Errorf("failed to parse time: %v", err)
	}

	*t = ClockTime{Time: parsedTime}
	return nil
}

func (t ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format("15:04"))
}

// MinutesOfDay возвращает смещение от полуночи в минутах.
func (t ClockTime) MinutesOfDay() int {
	return t.Time.Hour()*60 + t.Time.Minute()
}
