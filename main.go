package main

import (
	"fmt"
	"log"
	"os"

	_ "dance_school/docs"
	"dance_school/internal/auth"
	"dance_school/internal/handlers"
	"dance_school/internal/models"
	"dance_school/internal/storage"
	"dance_school/internal/tasks"
	"dance_school/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @Title						Школа танцев — административный бэкенд
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		err := godotenv.Load()
		if err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	storage.ConnectDatabase()

	if err := storage.DB.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.ClassStudent{},
		&models.ClassException{},
		&models.Event{},
		&models.Attendance{},
		&models.Feedback{},
		&models.News{},
	); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	storage.InitRedis()

	tasks.InitScheduler()

	go ws.HubInstance.Run()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", handlers.Login)
		authGroup.POST("/refresh", handlers.RefreshToken)
		authGroup.GET("/validate", auth.AuthMiddleware(), handlers.GetCurrentUser)
	}

	api := r.Group("/api")

	// Календарь доступен и анонимно: без токена все занятия серые.
	calendarGroup := api.Group("/calendar", auth.OptionalAuthMiddleware())
	{
		calendarGroup.GET("", handlers.GetCalendarHandler)
		calendarGroup.GET("/ws", ws.CalendarWebSocketHandler)
	}

	users := api.Group("/users", auth.AuthMiddleware())
	{
		users.GET("", handlers.GetUsersHandler)
		users.GET("/counts", handlers.GetUserCountsHandler)
		users.GET("/:id", handlers.GetUserHandler)
		users.POST("", handlers.CreateUserHandler)
		users.PUT("/:id", handlers.UpdateUserHandler)
		users.DELETE("/:id", handlers.DeleteUserHandler)
	}

	classes := api.Group("/classes")
	{
		classes.GET("", handlers.GetClassesHandler)
		classes.GET("/:id", handlers.GetClassHandler)
		classes.POST("", auth.AuthMiddleware(), handlers.CreateClassHandler)
		classes.PUT("/:id", auth.AuthMiddleware(), handlers.UpdateClassHandler)
		classes.DELETE("/:id", auth.AuthMiddleware(), handlers.DeleteClassHandler)
		classes.GET("/:id/available-students", auth.AuthMiddleware(), handlers.GetAvailableStudentsHandler)
		classes.POST("/:id/students", auth.AuthMiddleware(), handlers.RegisterStudentHandler)
		classes.DELETE("/:id/students/:studentId", auth.AuthMiddleware(), handlers.RemoveStudentHandler)
	}

	exceptions := api.Group("/class-exceptions")
	{
		exceptions.GET("", handlers.GetClassExceptionsHandler)
		exceptions.POST("", auth.AuthMiddleware(), handlers.CreateClassExceptionHandler)
		exceptions.DELETE("/:id", auth.AuthMiddleware(), handlers.DeleteClassExceptionHandler)
	}

	events := api.Group("/events")
	{
		events.GET("", handlers.GetEventsHandler)
		events.GET("/:id", handlers.GetEventHandler)
		events.POST("", auth.AuthMiddleware(), handlers.CreateEventHandler)
		events.PUT("/:id", auth.AuthMiddleware(), handlers.UpdateEventHandler)
		events.DELETE("/:id", auth.AuthMiddleware(), handlers.DeleteEventHandler)
	}

	attendance := api.Group("/attendance")
	{
		attendance.GET("", handlers.GetAttendancesHandler)
		attendance.GET("/:id", handlers.GetAttendanceHandler)
		attendance.POST("", auth.AuthMiddleware(), handlers.CreateAttendanceHandler)
		attendance.POST("/bulk", auth.AuthMiddleware(), handlers.CreateBulkAttendanceHandler)
		attendance.PUT("/:id", auth.AuthMiddleware(), handlers.UpdateAttendanceHandler)
		attendance.DELETE("/:id", auth.AuthMiddleware(), handlers.DeleteAttendanceHandler)
	}

	feedback := api.Group("/feedback")
	{
		feedback.GET("", handlers.GetFeedbacksHandler)
		feedback.GET("/classes", handlers.GetFeedbackClassesHandler)
		feedback.GET("/student-classes", handlers.GetStudentFeedbackClassesHandler)
		feedback.GET("/by-class/:classId", handlers.GetFeedbacksByClassHandler)
		feedback.GET("/:id", handlers.GetFeedbackHandler)
		feedback.POST("", auth.AuthMiddleware(), handlers.CreateFeedbackHandler)
		feedback.PUT("/:id", auth.AuthMiddleware(), handlers.UpdateFeedbackHandler)
		feedback.DELETE("/:id", auth.AuthMiddleware(), handlers.DeleteFeedbackHandler)
	}

	news := api.Group("/news")
	{
		news.GET("", handlers.GetNewsListHandler)
		news.GET("/search", handlers.SearchNewsHandler)
		news.GET("/latest", handlers.GetLatestNewsHandler)
		news.GET("/:id", handlers.GetNewsHandler)
		news.POST("", auth.AuthMiddleware(), handlers.CreateNewsHandler)
		news.PUT("/:id", auth.AuthMiddleware(), handlers.UpdateNewsHandler)
		news.DELETE("/:id", auth.AuthMiddleware(), handlers.DeleteNewsHandler)
	}

	filters := api.Group("/filters")
	{
		filters.GET("/styles", handlers.GetStylesFilterHandler)
		filters.GET("/class-names", handlers.GetClassNamesFilterHandler)
		filters.GET("/feedback-years", handlers.GetFeedbackYearsFilterHandler)
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Ошибка запуска сервера...", err.Error())
	}
}
