package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/bookify/booking"
	"github.com/meinhoongagan/bookify/controllers"
	"github.com/meinhoongagan/bookify/controllers/admin"
	"github.com/meinhoongagan/bookify/controllers/consumer"
	"github.com/meinhoongagan/bookify/controllers/service"
	"github.com/meinhoongagan/bookify/store"
)

type Deps struct {
	Store     store.Store
	Booker    *booking.Booker
	Cache     controllers.DirectoryCache // nil when Redis is off
	JWTSecret string
	JWTTTL    time.Duration
}

// Setup registers every route group on app. The public /providers routes
// go first so the /provider group's middleware never runs for them.
func Setup(app *fiber.App, d Deps) {
	SetupAuthRoutes(app, controllers.NewAuthHandler(d.Store, d.JWTSecret, d.JWTTTL, d.Cache), d.JWTSecret)
	SetupDirectoryRoutes(app, controllers.NewProviderHandler(d.Store, d.Booker, d.Cache))
	SetupAppointmentRoutes(app, consumer.NewHandler(d.Store, d.Booker), d.JWTSecret)
	SetupProviderRoutes(app, service.NewHandler(d.Store, d.Cache), d.JWTSecret)
	SetupAdminRoutes(app, admin.NewHandler(d.Store, d.Cache), d.JWTSecret)
}
