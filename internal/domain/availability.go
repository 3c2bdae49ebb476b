package domain

// DayAvailability 是某个星期几的开放预约时间，DayOfWeek 取值 0~6，0 表示周日
type DayAvailability struct {
	DayOfWeek   int32  `json:"dayOfWeek"`
	StartTime   string `json:"startTime"` // HH:MM:SS
	EndTime     string `json:"endTime"`   // HH:MM:SS
	IsAvailable bool   `json:"isAvailable"`
}
