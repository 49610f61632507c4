package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"jml-lite/config"
	apiv1 "jml-lite/controllers/v1"
	"jml-lite/db"
	"jml-lite/fiberlog"
	"jml-lite/initializers"
	"jml-lite/lib/notification/teams"
	"jml-lite/middleware"
	apimodels "jml-lite/models/api"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberRecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"
)

const requestBodyLimit = 1024 * 1024

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	initializers.InitAllServices(ctx)

	app := fiber.New(fiber.Config{
		BodyLimit: requestBodyLimit,
	})
	app.Use(fiberRecover.New())
	app.Use(requestid.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := db.PingDB(); err != nil {
			log.WithError(err).Warn("база данных недоступна")
			return c.Status(fiber.StatusServiceUnavailable).JSON(apimodels.NewError("база данных недоступна"))
		}
		return c.JSON(apimodels.NewResponse(nil))
	})

	//api
	apiV1 := fiber.New()
	apiV1.Use(fiberlog.New(*initializers.LoggerConfig))
	app.Mount("/api/v1", apiV1)
	apiV1.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT",
	}))
	apiV1.Use(middleware.WithBodyLimit(requestBodyLimit))
	apiV1.Use(middleware.ErrNotify(teams.Instance))
	apiV1.Use(middleware.AuthorizationRequired())
	apiV1.Use(middleware.ActingUser())

	apiv1.InitProcessApiRouters(apiV1)
	apiv1.InitTaskApiRouters(apiV1)
	apiv1.InitApprovalApiRouters(apiV1)
	apiv1.InitReminderApiRouters(apiV1)
	apiv1.InitSettingsApiRouters(apiV1)
	apiv1.InitAuditApiRouters(apiV1)
	apiv1.InitNotificationApiRouters(apiV1)

	// gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-c
		log.Info("Gracefully shutting down...")
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Error when try gracefully shutting down")
		}
		initializers.Shutdown()
		log.Info("Gracefully shutting down finished")
	}()

	// run HTTP server
	if err := app.Listen(fmt.Sprintf("%s:%d", config.Conf.App.ListenAddr, config.Conf.App.Port)); err != nil {
		log.Fatal(err)
	}

	wg.Wait()
	log.Info("HTTP server successfully stopped")
}
