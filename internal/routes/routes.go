package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/DTyss/GymApp-sub000/internal/clock"
	"github.com/DTyss/GymApp-sub000/internal/config"
	"github.com/DTyss/GymApp-sub000/internal/events"
	"github.com/DTyss/GymApp-sub000/internal/handlers"
	"github.com/DTyss/GymApp-sub000/internal/middleware"
	"github.com/DTyss/GymApp-sub000/internal/qr"
	"github.com/DTyss/GymApp-sub000/internal/repository"
	"github.com/DTyss/GymApp-sub000/internal/services"
	feedws "github.com/DTyss/GymApp-sub000/internal/websocket"
)

// Dependencies are the process-wide collaborators built in main.
type Dependencies struct {
	Store     repository.Transactor
	Clock     clock.Clock
	Publisher events.Publisher
	// Ledger is nil when QR tokens may be reused within their TTL.
	Ledger qr.NonceLedger
	Hub    *feedws.Hub
}

func RegisterRoutes(app *fiber.App, cfg *config.Config, deps Dependencies) {
	codec := qr.NewCodec(cfg.QRSecret, deps.Clock, cfg.QRDefaultTTL)

	classService := services.NewClassService(deps.Store, deps.Clock)
	bookingService := services.NewBookingService(deps.Store, deps.Clock, deps.Publisher, cfg.MembershipSelection)
	checkinService := services.NewCheckinService(deps.Store, codec, services.CheckinOptions{
		Clock:     deps.Clock,
		Publisher: deps.Publisher,
		Selection: cfg.MembershipSelection,
		Ledger:    deps.Ledger,
		MaxTTL:    cfg.QRMaxTTL,
	})
	membershipService := services.NewMembershipService(deps.Store, deps.Clock)
	planService := services.NewPlanService(deps.Store)

	classHandler := handlers.NewClassHandler(classService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	checkinHandler := handlers.NewCheckinHandler(checkinService)
	membershipHandler := handlers.NewMembershipHandler(membershipService)
	planHandler := handlers.NewPlanHandler(planService)
	feedHandler := handlers.NewFeedHandler(deps.Hub)

	staffOnly := middleware.RequireRole(services.RoleStaff)
	memberOnly := middleware.RequireRole(services.RoleMember)
	checkinLimit := middleware.CheckinRateLimiter(cfg.CheckinRateLimit)

	api := app.Group("/api")

	ws := api.Group("/v1/ws", middleware.QueryTokenAuth(cfg.JWTSecret), feedHandler.RequireUpgrade)
	ws.Get("/feed", websocket.New(feedHandler.HandleWebSocket))

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	bookings := authProtected.Group("/bookings")
	bookings.Post("", memberOnly, bookingHandler.CreateBooking)
	bookings.Get("", bookingHandler.ListBookings)
	bookings.Delete("/:id", memberOnly, bookingHandler.CancelBooking)

	checkins := authProtected.Group("/checkins")
	checkins.Get("/qr", memberOnly, checkinHandler.IssueQr)
	checkins.Get("", checkinHandler.ListCheckins)
	checkins.Post("", staffOnly, checkinLimit, checkinHandler.Checkin)
	checkins.Post("/manual", staffOnly, checkinLimit, checkinHandler.ManualCheckin)

	memberships := authProtected.Group("/memberships")
	memberships.Get("", membershipHandler.ListMemberships)
	memberships.Get("/:id", membershipHandler.GetMembership)
	memberships.Post("", staffOnly, membershipHandler.CreateMembership)
	memberships.Post("/:id/extend", staffOnly, membershipHandler.ExtendMembership)
	memberships.Post("/:id/pause", staffOnly, membershipHandler.PauseMembership)
	memberships.Post("/:id/resume", staffOnly, membershipHandler.ResumeMembership)

	classes := authProtected.Group("/classes")
	classes.Get("", classHandler.ListClasses)
	classes.Get("/:id", classHandler.GetClass)
	classes.Get("/:id/bookings", staffOnly, classHandler.ListClassBookings)
	classes.Post("", staffOnly, classHandler.CreateClass)
	classes.Put("/:id", staffOnly, classHandler.UpdateClass)
	classes.Delete("/:id", staffOnly, classHandler.DeleteClass)

	plans := authProtected.Group("/plans")
	plans.Get("", planHandler.ListPlans)
	plans.Post("", staffOnly, planHandler.CreatePlan)
	plans.Put("/:id/active", staffOnly, planHandler.SetPlanActive)
}
