package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assessment-service/internal/cache"
	"assessment-service/internal/config"
	"assessment-service/internal/db"
	"assessment-service/internal/discovery"
	"assessment-service/internal/event"
	"assessment-service/internal/handlers"
	"assessment-service/internal/repository"
	"assessment-service/internal/service"
	"assessment-service/internal/skills"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.Load()
	if cfg.MongoDB.URI == "" {
		log.Fatal("MONGO_URI is required")
	}

	db.InitMongo(cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	database := db.Client.Database(cfg.MongoDB.Database)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoDB.Timeout)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		cancel()
		log.Fatalf("Failed to create indexes: %v", err)
	}
	cancel()

	// RabbitMQ event publisher
	var publisher *event.EventPublisher
	if cfg.RabbitMQ.URI != "" && cfg.RabbitMQ.Exchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, events will not be published")
	}

	// Redis test-tree cache
	var testCache *cache.TestCache
	if cfg.Redis.Address != "" {
		var err error
		testCache, err = cache.NewTestCache(cfg.Redis)
		if err != nil {
			log.Printf("Redis unavailable, serving test trees from Mongo: %v", err)
		} else {
			defer testCache.Close()
		}
	}

	// Consul registration
	var registry *discovery.ServiceRegistry
	if cfg.Consul.Address != "" {
		var err error
		registry, err = discovery.NewServiceRegistry(cfg)
		if err != nil {
			log.Fatalf("Failed to create Consul client: %v", err)
		}
		if err := registry.Register(); err != nil {
			log.Fatalf("Failed to register with Consul: %v", err)
		}
	}

	// Repositories
	testRepo := repository.NewTestRepository(database)
	questionRepo := repository.NewQuestionRepository(database)
	attemptRepo := repository.NewAttemptRepository(database)
	answerRepo := repository.NewAnswerRepository(database)
	skillRepo := repository.NewSkillRepository(database)
	enrollmentRepo := repository.NewEnrollmentRepository(database)
	notificationRepo := repository.NewNotificationRepository(database)
	tx := db.NewTxRunner(db.Client)

	// Services
	testService := service.NewTestService(testRepo, questionRepo, attemptRepo, tx, testCache,
		cfg.Grading.DefaultPassingScore, cfg.Grading.DefaultMaxAttempts)
	attemptService := service.NewAttemptService(attemptRepo, answerRepo, testRepo, questionRepo,
		notificationRepo, publisher, tx)
	skillService := service.NewSkillService(skillRepo, enrollmentRepo, attemptRepo,
		skills.FixedRatingSource{Value: cfg.Grading.SupervisorRatingDefault}, publisher, tx)

	// Handlers
	testHandler := handlers.NewTestHandler(testService)
	attemptHandler := handlers.NewAttemptHandler(attemptService)
	skillHandler := handlers.NewSkillHandler(skillService)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID", "X-User-Role"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.Server.ServiceName})
	})

	// Public routes: course catalog views and skill definitions.
	publicTest := r.Group("/public/assessment/test")
	{
		publicTest.GET("/course/:courseId", func(c *gin.Context) {
			testHandler.ListByCourse(c)
			if publisher != nil {
				publisher.Publish("assessment.test.listed", gin.H{"course_id": c.Param("courseId")})
			}
		})
	}

	publicSkill := r.Group("/public/assessment/skill")
	{
		publicSkill.GET("/", skillHandler.ListSkills)
		publicSkill.GET("/:id", skillHandler.GetSkill)
		publicSkill.GET("/user/:userId", func(c *gin.Context) {
			skillHandler.PublicUserSkills(c)
			if publisher != nil {
				publisher.Publish("assessment.skill.user_levels", gin.H{"userId": c.Param("userId")})
			}
		})
	}

	publicUser := r.Group("/public/assessment/user")
	{
		publicUser.GET("/:id/results", func(c *gin.Context) {
			attemptHandler.UserResults(c)
			if publisher != nil {
				publisher.Publish("assessment.user.results", gin.H{"id": c.Param("id")})
			}
		})
	}

	// Protected routes sit behind the gateway, which injects the caller
	// identity headers.
	auth := func(c *gin.Context) {
		if c.GetHeader("X-User-ID") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required", "code": "MISSING_USER_ID"})
			c.Abort()
			return
		}
		c.Next()
	}

	protectedTest := r.Group("/protected/assessment/test", auth)
	{
		protectedTest.POST("/", testHandler.CreateTest)
		protectedTest.GET("/:id", testHandler.GetTest)
		protectedTest.PUT("/:id", testHandler.UpdateTest)
		protectedTest.GET("/course/:courseId", testHandler.ListByCourse)
		protectedTest.POST("/:id/attempt", func(c *gin.Context) {
			attemptHandler.StartAttempt(c)
			if publisher != nil && c.Writer.Status() == http.StatusCreated {
				publisher.Publish(event.TopicAttemptStarted, gin.H{
					"test_id":   c.Param("id"),
					"user_id":   c.GetHeader("X-User-ID"),
					"timestamp": time.Now(),
				})
			}
		})
	}

	protectedAttempt := r.Group("/protected/assessment/attempt", auth)
	{
		protectedAttempt.POST("/:id/submit", attemptHandler.SubmitAttempt)
		protectedAttempt.POST("/:id/grade", attemptHandler.GradeAttempt)
		protectedAttempt.GET("/:id", attemptHandler.GetAttempt)
		protectedAttempt.GET("/pending", attemptHandler.PendingGrading)
		protectedAttempt.GET("/results", attemptHandler.MyResults)
	}

	protectedSkill := r.Group("/protected/assessment/skill", auth)
	{
		protectedSkill.POST("/", skillHandler.CreateSkill)
		protectedSkill.POST("/course-link", skillHandler.LinkCourseSkill)
		protectedSkill.POST("/recalculate/:userId", skillHandler.Recalculate)
		protectedSkill.GET("/user/:userId", skillHandler.UserSkills)
	}

	protectedEnrollment := r.Group("/protected/assessment/enrollment", auth)
	{
		protectedEnrollment.POST("/completion", skillHandler.IngestCompletion)
	}

	protectedNotification := r.Group("/protected/assessment/notification", auth)
	{
		protectedNotification.GET("/", attemptHandler.MyNotifications)
	}

	// Deregister from Consul on shutdown.
	if registry != nil {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-quit
			registry.Deregister()
			os.Exit(0)
		}()
	}

	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
