package scheduling

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
)

// 2030-06-03 是周一
var monday = time.Date(2030, time.June, 3, 0, 0, 0, 0, time.UTC)

// 一个远早于 monday 的时刻，保证 monday 不是“今天”
var longBefore = time.Date(2030, time.January, 1, 8, 0, 0, 0, time.UTC)

func weekdays(start, end string) []domain.DayAvailability {
	days := make([]domain.DayAvailability, 0, 7)
	for d := int32(0); d < 7; d++ {
		days = append(days, domain.DayAvailability{
			DayOfWeek:   d,
			StartTime:   start,
			EndTime:     end,
			IsAvailable: d >= 1 && d <= 5,
		})
	}
	return days
}

func booking(date time.Time, start string, status domain.AppointmentStatus) domain.Appointment {
	return domain.Appointment{Date: date, StartTime: start, Status: status}
}

func TestGenerateSlots_MondayMorning(t *testing.T) {
	days := []domain.DayAvailability{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsAvailable: true},
	}

	slots := GenerateSlots(monday, days, nil, longBefore)

	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, slots)
}

func TestGenerateSlots_Unavailable(t *testing.T) {
	t.Run("day disabled", func(t *testing.T) {
		days := []domain.DayAvailability{
			{DayOfWeek: 1, StartTime: "09:00:00", EndTime: "17:00:00", IsAvailable: false},
		}
		slots := GenerateSlots(monday, days, nil, longBefore)
		require.NotNil(t, slots)
		assert.Empty(t, slots)
	})

	t.Run("no matching weekday", func(t *testing.T) {
		days := []domain.DayAvailability{
			{DayOfWeek: 3, StartTime: "09:00:00", EndTime: "17:00:00", IsAvailable: true},
		}
		slots := GenerateSlots(monday, days, nil, longBefore)
		require.NotNil(t, slots)
		assert.Empty(t, slots)
	})

	t.Run("malformed times", func(t *testing.T) {
		days := []domain.DayAvailability{
			{DayOfWeek: 1, StartTime: "nine", EndTime: "17:00:00", IsAvailable: true},
		}
		assert.Empty(t, GenerateSlots(monday, days, nil, longBefore))
	})

	t.Run("start not before end", func(t *testing.T) {
		days := []domain.DayAvailability{
			{DayOfWeek: 1, StartTime: "17:00:00", EndTime: "09:00:00", IsAvailable: true},
		}
		assert.Empty(t, GenerateSlots(monday, days, nil, longBefore))
	})
}

func TestGenerateSlots_WholeHourWindows(t *testing.T) {
	for startHour := 0; startHour < 23; startHour++ {
		for endHour := startHour + 1; endHour <= 23; endHour++ {
			start := fmt.Sprintf("%02d:00:00", startHour)
			end := fmt.Sprintf("%02d:00:00", endHour)

			slots := GenerateSlots(monday, weekdays(start, end), nil, longBefore)

			require.Len(t, slots, endHour-startHour, "window %s-%s", start, end)
			assert.Equal(t, start[:5], slots[0])
			for i := 1; i < len(slots); i++ {
				prev, _ := time.Parse("15:04", slots[i-1])
				cur, _ := time.Parse("15:04", slots[i])
				assert.Equal(t, time.Hour, cur.Sub(prev))
			}
		}
	}
}

func TestGenerateSlots_PartialHourDropped(t *testing.T) {
	days := weekdays("09:30:00", "12:15:00")

	slots := GenerateSlots(monday, days, nil, longBefore)

	assert.Equal(t, []string{"09:30", "10:30", "11:30"}, slots)

	days = weekdays("09:00:00", "11:30:00")
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, GenerateSlots(monday, days, nil, longBefore))
}

func TestGenerateSlots_ExcludesBookedSlot(t *testing.T) {
	days := weekdays("09:00:00", "17:00:00")
	bookings := []domain.Appointment{
		booking(monday, "14:00:00", domain.AppointmentStatusScheduled),
	}

	slots := GenerateSlots(monday, days, bookings, longBefore)

	assert.NotContains(t, slots, "14:00")
	assert.Equal(t, []string{"09:00", "10:00", "11:00", "12:00", "13:00", "15:00", "16:00"}, slots)
}

func TestGenerateSlots_ConfirmedAndCompletedStillOccupy(t *testing.T) {
	days := weekdays("09:00:00", "12:00:00")
	bookings := []domain.Appointment{
		booking(monday, "09:00:00", domain.AppointmentStatusConfirmed),
		booking(monday, "10:00:00", domain.AppointmentStatusCompleted),
	}

	assert.Equal(t, []string{"11:00"}, GenerateSlots(monday, days, bookings, longBefore))
}

func TestGenerateSlots_CancelledBookingFreesSlot(t *testing.T) {
	days := weekdays("09:00:00", "17:00:00")
	bookings := []domain.Appointment{
		booking(monday, "14:00:00", domain.AppointmentStatusCancelled),
	}

	slots := GenerateSlots(monday, days, bookings, longBefore)

	assert.Contains(t, slots, "14:00")
	assert.Len(t, slots, 8)
}

func TestGenerateSlots_BookingWithoutSeconds(t *testing.T) {
	days := weekdays("09:00:00", "12:00:00")
	bookings := []domain.Appointment{
		booking(monday, "10:00", domain.AppointmentStatusScheduled),
	}

	assert.Equal(t, []string{"09:00", "11:00"}, GenerateSlots(monday, days, bookings, longBefore))
}

func TestGenerateSlots_Today(t *testing.T) {
	days := weekdays("09:00:00", "17:00:00")

	t.Run("past slots are dropped", func(t *testing.T) {
		now := monday.Add(12*time.Hour + 30*time.Minute)
		slots := GenerateSlots(monday, days, nil, now)
		assert.Equal(t, []string{"13:00", "14:00", "15:00", "16:00"}, slots)
	})

	t.Run("slot at the current minute is dropped", func(t *testing.T) {
		now := monday.Add(13 * time.Hour)
		slots := GenerateSlots(monday, days, nil, now)
		assert.Equal(t, []string{"14:00", "15:00", "16:00"}, slots)
	})

	t.Run("no slot is at or before now", func(t *testing.T) {
		for minutes := 0; minutes < 24*60; minutes += 7 {
			now := monday.Add(time.Duration(minutes) * time.Minute)
			for _, s := range GenerateSlots(monday, days, nil, now) {
				slot, err := time.Parse("15:04", s)
				require.NoError(t, err)
				slotMinutes := slot.Hour()*60 + slot.Minute()
				assert.Greater(t, slotMinutes, now.Hour()*60+now.Minute())
			}
		}
	})

	t.Run("other days ignore the clock", func(t *testing.T) {
		now := monday.AddDate(0, 0, -7).Add(23 * time.Hour)
		assert.Len(t, GenerateSlots(monday, days, nil, now), 8)
	})
}

func TestGenerateSlots_Idempotent(t *testing.T) {
	days := weekdays("08:00:00", "20:00:00")
	bookings := []domain.Appointment{
		booking(monday, "10:00:00", domain.AppointmentStatusScheduled),
		booking(monday, "15:00:00", domain.AppointmentStatusCancelled),
	}
	now := monday.Add(9*time.Hour + 15*time.Minute)

	first := GenerateSlots(monday, days, bookings, now)
	second := GenerateSlots(monday, days, bookings, now)

	assert.Equal(t, first, second)
}

func TestSlotEndTime(t *testing.T) {
	cases := map[string]string{
		"09:00":    "10:00:00",
		"09:30:00": "10:30:00",
		"23:00":    "00:00:00",
	}
	for start, want := range cases {
		got, ok := SlotEndTime(start)
		require.True(t, ok, start)
		assert.Equal(t, want, got, start)
	}

	_, ok := SlotEndTime("25:00")
	assert.False(t, ok)
}

func TestNormalizeTime(t *testing.T) {
	got, ok := NormalizeTime("7:05")
	require.True(t, ok)
	assert.Equal(t, "07:05:00", got)

	for _, bad := range []string{"", "12", "12:60", "aa:bb", "12:00:61", "1:2:3:4"} {
		_, ok := NormalizeTime(bad)
		assert.False(t, ok, bad)
	}
}
