package scheduling

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
)

// 预约的粒度固定为一小时
const slotMinutes = 60

// clock 是一天中的某个时刻（时、分），秒被忽略
type clock struct {
	hour   int
	minute int
}

// parseClock 接受 HH:MM 或 HH:MM:SS
func parseClock(s string) (clock, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return clock{}, false
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return clock{}, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return clock{}, false
	}
	if len(parts) == 3 {
		second, err := strconv.Atoi(parts[2])
		if err != nil || second < 0 || second > 59 {
			return clock{}, false
		}
	}

	return clock{hour: hour, minute: minute}, true
}

func (c clock) before(o clock) bool {
	return c.hour < o.hour || (c.hour == o.hour && c.minute < o.minute)
}

func (c clock) notAfter(o clock) bool {
	return !o.before(c)
}

// slot 返回 HH:MM 格式
func (c clock) slot() string {
	return fmt.Sprintf("%02d:%02d", c.hour, c.minute)
}

// stored 返回数据库中保存的 HH:MM:00 格式
func (c clock) stored() string {
	return c.slot() + ":00"
}

func (c clock) add(minutes int) clock {
	c.minute += minutes
	c.hour += c.minute / 60
	c.minute = c.minute % 60
	return c
}

// NormalizeTime 把 HH:MM 或 HH:MM:SS 统一成 HH:MM:00
func NormalizeTime(s string) (string, bool) {
	c, ok := parseClock(s)
	if !ok {
		return "", false
	}
	return c.stored(), true
}

// SlotEndTime 计算从 start 开始的一小时预约的结束时间（HH:MM:00）
func SlotEndTime(start string) (string, bool) {
	c, ok := parseClock(start)
	if !ok {
		return "", false
	}
	end := c.add(slotMinutes)
	end.hour %= 24
	return end.stored(), true
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FindDayAvailability 返回与 date 的星期几匹配的配置
func FindDayAvailability(days []domain.DayAvailability, date time.Time) (domain.DayAvailability, bool) {
	weekday := int32(date.Weekday())
	for _, day := range days {
		if day.DayOfWeek == weekday {
			return day, true
		}
	}
	return domain.DayAvailability{}, false
}

// GenerateSlots 计算 date 这一天可以预约的整点时段（HH:MM），结果按时间升序排列。
//
// date 与 now 需要处于同一时区。已取消的预约不占用时段；当 date 是今天时，
// 不晚于当前时分的时段都不会返回（正好等于当前分钟的时段也排除）。
// 结束时间前不足一小时的部分会被丢弃。
func GenerateSlots(date time.Time, days []domain.DayAvailability, bookings []domain.Appointment, now time.Time) []string {
	slots := make([]string, 0)

	day, ok := FindDayAvailability(days, date)
	if !ok || !day.IsAvailable {
		return slots
	}

	start, ok := parseClock(day.StartTime)
	if !ok {
		return slots
	}
	end, ok := parseClock(day.EndTime)
	if !ok {
		return slots
	}

	booked := make(map[string]struct{}, len(bookings))
	for _, b := range bookings {
		if b.Status == domain.AppointmentStatusCancelled {
			continue
		}
		if normalized, ok := NormalizeTime(b.StartTime); ok {
			booked[normalized] = struct{}{}
		}
	}

	isToday := sameDate(date, now)
	current := clock{hour: now.Hour(), minute: now.Minute()}

	for cursor := start; cursor.before(end); cursor = cursor.add(slotMinutes) {
		if _, taken := booked[cursor.stored()]; taken {
			continue
		}
		if isToday && cursor.notAfter(current) {
			continue
		}
		slots = append(slots, cursor.slot())
	}

	return slots
}
