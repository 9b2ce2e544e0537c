package tasks

import (
	"log"
	"time"

	"dance_school/internal/calendar"
	"dance_school/internal/models"
	"dance_school/internal/storage"

	"github.com/robfig/cron/v3"
)

// DeactivateExpiredClasses снимает флаг активности с занятий, у которых дата окончания уже прошла.
func DeactivateExpiredClasses() {
	today := calendar.NormalizeDate(time.Now())

	var classes []models.Class
	if err := storage.DB.Where("active = ? AND end_date IS NOT NULL AND end_date < ?", true, today).
		Find(&classes).Error; err != nil {
		log.Println("Ошибка при поиске завершённых занятий:", err)
		return
	}

	if len(classes) == 0 {
		log.Println("Завершённых занятий для деактивации не найдено.")
		return
	}

	for _, cls := range classes {
		if err := storage.DB.Model(&cls).Update("active", false).Error; err != nil {
			log.Println("Ошибка деактивации занятия", cls.Name, ":", err)
			continue
		}
		log.Printf("Занятие '%s' (%s) деактивировано: дата окончания прошла.\n",
			cls.Name, calendar.FormatRecurringDays(cls.RecurringDays))
	}
}

// CleanOldExceptions удаляет отмены занятий старше года — в календаре они уже не нужны.
func CleanOldExceptions() {
	threshold := time.Now().AddDate(-1, 0, 0)
	if err := storage.DB.Where("date < ?", threshold).Delete(&models.ClassException{}).Error; err != nil {
		log.Println("Ошибка при удалении устаревших отмен:", err)
	} else {
		log.Println("Устаревшие отмены занятий удалены.")
	}
}

// InitScheduler инициализирует планировщик cron-задач.
func InitScheduler() *cron.Cron {
	c := cron.New(cron.WithSeconds())

	// Деактивация завершённых занятий каждую ночь в 02:00.
	_, err := c.AddFunc("0 0 2 * * *", DeactivateExpiredClasses)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи DeactivateExpiredClasses:", err)
	}

	// Чистка старых отмен каждый день в 03:00.
	_, err = c.AddFunc("0 0 3 * * *", CleanOldExceptions)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи CleanOldExceptions:", err)
	}

	c.Start()
	log.Println("Cron-планировщик запущен.")
	return c
}
