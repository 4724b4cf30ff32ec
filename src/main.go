package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"tourbook/src/boot"
	"tourbook/src/common"
	"tourbook/src/config"
	"tourbook/src/lib"
	"tourbook/src/middlewares"
	"tourbook/src/types"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	_ "github.com/joho/godotenv/autoload"
	"gorm.io/gorm"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

const (
	apiPrefix string = "/api/v1"
)

var bookableDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	parsed, err := time.ParseInLocation(types.DATE_PARSE_FORMAT, date, time.Local)
	if err != nil {
		return false
	}
	today := time.Now()
	startOfToday := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)
	return !parsed.Before(startOfToday)
}

var timeOfDayValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	tod, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := time.Parse(types.TIME_PARSE_FORMAT, tod)
	return err == nil
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookabledate", bookableDateValidatorFunc)
		v.RegisterValidation("timeofday", timeOfDayValidatorFunc)
	}
}

func generateJWT(username string, id uint, role types.Role) (string, error) {
	claims := types.Claims{
		Username: username,
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(id)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func setupRouter() *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("CORS_ORIGIN")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func apiv1Group(r *gin.Engine) *gin.RouterGroup {
	return r.Group(apiPrefix)
}

type tokenRequestBody struct {
	UserID   uint   `json:"user_id" binding:"required"`
	Username string `json:"username" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=tourist guide"`
}

// guestAuthRoutes issues demo tokens. Real identity management lives
// outside this service; only claims parsing is owned here.
func guestAuthRoutes(r *gin.Engine, sessions *common.SessionRegistry) {
	g := r.Group(apiPrefix + "/auth")
	g.POST("/token", func(ctx *gin.Context) {
		secret := os.Getenv("AUTH_SECRET")
		if secret == "" || ctx.GetHeader("x-secret") != secret {
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		var body tokenRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		token, err := generateJWT(body.Username, body.UserID, types.Role(body.Role))
		if err != nil {
			log.Printf("Error generating token: %s\n", err.Error())
			ctx.Status(http.StatusInternalServerError)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"token": token})
	})
	g.POST("/logout", middlewares.AuthMiddleware, func(ctx *gin.Context) {
		sessions.Drop(ctx.GetUint("id"))
		ctx.Status(http.StatusNoContent)
	})
}

func startTimers(sessions *common.SessionRegistry, sweeper *common.AutoCompleter) {
	if _, err := lib.CreateIntervalJob("session-refresh", config.RefreshInterval(), func() {
		sessions.RefreshAll(context.Background())
	}); err != nil {
		log.Printf("Error creating refresh job: %s\n", err.Error())
	}
	if _, err := lib.CreateIntervalJob("auto-complete", config.AutoCompleteInterval(), func() {
		sweeper.Run(context.Background())
	}); err != nil {
		log.Printf("Error creating sweep job: %s\n", err.Error())
	}
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	sched.Start()
}

func newDispatcher(gdb *gorm.DB) *common.Dispatcher {
	sinks := []common.NotificationSink{common.NewGormSink(gdb)}
	if rdb := lib.GetRedisClient(); rdb != nil {
		sinks = append(sinks, common.NewRedisSink(rdb))
	}
	if os.Getenv("SMTP_HOST") != "" {
		sinks = append(sinks, common.NewMailSink(gdb))
	}
	return common.NewDispatcher(sinks...)
}

func main() {
	gdb := boot.InitDb()

	api := common.NewGormBookingAPI(gdb)
	dispatcher := newDispatcher(gdb)
	sessions := common.NewSessionRegistry(api, dispatcher)
	sweeper := common.NewAutoCompleter(api, dispatcher)

	registerValidators()
	startTimers(sessions, sweeper)

	r := setupRouter()
	guestAuthRoutes(r, sessions)
	apiv1 := apiv1Group(r)
	apiv1.Use(middlewares.AuthMiddleware)
	bookingHandlers(apiv1, sessions)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Shutting down...")
		lib.StopScheduler()
		os.Exit(0)
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Error starting server: %s\n", err.Error())
	}
}
