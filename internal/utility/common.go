package utility

import (
	"runtime/debug"
	"time"

	"talking_menu/internal/logger"
)

// GoProtect chạy f và bắt panic (log lại) để không làm sập goroutine gọi
func GoProtect(f func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetErrorLogger().WithField("panic", r).WithField("stack", string(debug.Stack())).Error("Đã bắt lỗi panic")
		}
	}()
	f()
}

// MonthYear trả về (tháng 1-12, năm) của t theo UTC
func MonthYear(t time.Time) (int, int) {
	t = t.UTC()
	return int(t.Month()), t.Year()
}
