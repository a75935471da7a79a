package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date — дата без времени в формате 2006-01-02.
type Date struct {
	Date time.Time
}

func (t *Date) UnmarshalJSON(data []byte) error {
	// Убираем кавычки вокруг строки
	str := string(data[1 : len(data)-1])

	parsedDate, err := time.Parse("2006-01-02", str)
	if err != nil {
		return fmt.Errorf("failed to parse date: %v", err)
	}

	*t = Date{Date: parsedDate}
	return nil
}

func (t Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Date.Format("2006-01-02"))
}
