package main

import (
	"log"
	"time"

	"dance_school/internal/calendar"
	"dance_school/internal/models"
	"dance_school/internal/storage"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

func strPtr(s string) *string { return &s }

func mustHash(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Ошибка хеширования пароля:", err)
	}
	return string(hash)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используем переменные окружения")
	}

	storage.ConnectDatabase()

	err := storage.DB.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.ClassStudent{},
		&models.ClassException{},
		&models.Event{},
		&models.Attendance{},
		&models.Feedback{},
		&models.News{},
	)
	if err != nil {
		log.Fatal("Ошибка миграции:", err)
	}

	password := mustHash("123456")

	users := []models.User{
		{Name: "Администратор", Email: "admin@dance.local", PasswordHash: password, Role: models.RoleAdmin},
		{Name: "Ольга Секретарь", Email: "secretary@dance.local", PasswordHash: password, Role: models.RoleSecretary},
		{Name: "Мария Преподаватель", Email: "teacher@dance.local", PasswordHash: password, Role: models.RoleTeacher},
		{Name: "Иван Ученик", Email: "student@dance.local", PasswordHash: password, Role: models.RoleStudent},
		{Name: "Анна Ученица", Email: "student2@dance.local", PasswordHash: password, Role: models.RoleStudent},
	}
	for i := range users {
		if err := storage.DB.Where("email = ?", users[i].Email).FirstOrCreate(&users[i]).Error; err != nil {
			log.Fatal("Ошибка создания пользователя:", err)
		}
	}
	log.Printf("Пользователи готовы: %d\n", len(users))

	teacher := users[2]
	student := users[3]
	student2 := users[4]

	startDate := calendar.NormalizeDate(time.Now().AddDate(0, -1, 0))

	classes := []models.Class{
		{
			Name:          "Хип-хоп для начинающих",
			Description:   "Базовая техника и простые связки",
			TeacherID:     teacher.ID,
			Style:         strPtr("Хип-хоп"),
			Active:        true,
			RecurringDays: datatypes.NewJSONSlice([]int{2, 4}),
			ScheduleTimes: datatypes.NewJSONType(map[string]calendar.ScheduleTime{
				"2": {StartTime: "18:00", EndTime: "19:30"},
				"4": {StartTime: "18:00", EndTime: "19:30"},
			}),
			StartDate: startDate,
		},
		{
			Name:          "Контемпорари",
			Description:   "Современная хореография, средний уровень",
			TeacherID:     teacher.ID,
			Style:         strPtr("Контемпорари"),
			Active:        true,
			RecurringDays: datatypes.NewJSONSlice([]int{1, 3, 5}),
			ScheduleTimes: datatypes.NewJSONType(map[string]calendar.ScheduleTime{
				"1": {StartTime: "19:00", EndTime: "20:30"},
				"3": {StartTime: "19:00", EndTime: "20:30"},
				"5": {StartTime: "17:00", EndTime: "18:30"},
			}),
			StartDate:       startDate,
			BackgroundColor: strPtr("#8b5cf6"),
			BorderColor:     strPtr("#7c3aed"),
		},
		{
			Name:          "Ночная практика",
			Description:   "Поздняя тренировка для продвинутых",
			TeacherID:     teacher.ID,
			Style:         strPtr("Хип-хоп"),
			Active:        true,
			RecurringDays: datatypes.NewJSONSlice([]int{6}),
			ScheduleTimes: datatypes.NewJSONType(map[string]calendar.ScheduleTime{
				"6": {StartTime: "22:00", EndTime: "01:00"},
			}),
			StartDate: startDate,
		},
	}
	for i := range classes {
		if err := storage.DB.Where("name = ?", classes[i].Name).FirstOrCreate(&classes[i]).Error; err != nil {
			log.Fatal("Ошибка создания занятия:", err)
		}
	}
	log.Printf("Занятия готовы: %d\n", len(classes))

	enrollments := []models.ClassStudent{
		{ClassID: classes[0].ID, StudentID: student.ID},
		{ClassID: classes[1].ID, StudentID: student.ID},
		{ClassID: classes[0].ID, StudentID: student2.ID},
	}
	for i := range enrollments {
		if err := storage.DB.Where("class_id = ? AND student_id = ?", enrollments[i].ClassID, enrollments[i].StudentID).
			FirstOrCreate(&enrollments[i]).Error; err != nil {
			log.Fatal("Ошибка записи ученика:", err)
		}
	}

	// Отмена ближайшего вторника по первому занятию.
	nextTuesday := calendar.NormalizeDate(time.Now())
	for nextTuesday.Weekday() != time.Tuesday {
		nextTuesday = nextTuesday.AddDate(0, 0, 1)
	}
	exception := models.ClassException{
		ClassID: classes[0].ID,
		Date:    nextTuesday,
		Reason:  strPtr("Преподаватель на фестивале"),
	}
	if err := storage.DB.Where("class_id = ? AND date = ?", exception.ClassID, exception.Date).
		FirstOrCreate(&exception).Error; err != nil {
		log.Fatal("Ошибка создания отмены:", err)
	}

	concert := time.Now().AddDate(0, 0, 14)
	events := []models.Event{
		{
			Title:           "Отчётный концерт",
			StartTime:       time.Date(concert.Year(), concert.Month(), concert.Day(), 18, 0, 0, 0, time.Local),
			EndTime:         time.Date(concert.Year(), concert.Month(), concert.Day(), 21, 0, 0, 0, time.Local),
			BackgroundColor: "#3b82f6",
			BorderColor:     "#2563eb",
			Description:     strPtr("Большой зал, вход свободный"),
		},
	}
	for i := range events {
		if err := storage.DB.Where("title = ?", events[i].Title).FirstOrCreate(&events[i]).Error; err != nil {
			log.Fatal("Ошибка создания события:", err)
		}
	}

	news := []models.News{
		{
			Title:       "Открыт набор в новые группы",
			Content:     "С этого месяца открываются группы хип-хопа и контемпорари для начинающих. Запись у секретаря.",
			PublishedAt: time.Now().AddDate(0, 0, -3),
			Author:      strPtr("Администрация"),
		},
		{
			Title:       "Отчётный концерт через две недели",
			Content:     "Приглашаем всех учеников и родителей на отчётный концерт школы.",
			PublishedAt: time.Now().AddDate(0, 0, -1),
			Author:      strPtr("Администрация"),
		},
	}
	for i := range news {
		if err := storage.DB.Where("title = ?", news[i].Title).FirstOrCreate(&news[i]).Error; err != nil {
			log.Fatal("Ошибка создания новости:", err)
		}
	}

	log.Println("Тестовые данные загружены.")
}
