package routes

import (
	"github.com/gin-gonic/gin"

	"cafe-api/handlers"
	"cafe-api/middleware"
)

func SetupRoutes(r *gin.Engine) {
	// ── Public API ─────────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/register/", handlers.Register)
		public.POST("/token/", handlers.Token)
	}

	// ── Public reads; staff get the unfiltered view, guests may book ──
	open := r.Group("/api", middleware.OptionalAuth())
	{
		open.GET("/menu/", handlers.ListMenu)
		open.GET("/menu/:id/", handlers.GetMenuItem)
		open.GET("/promo/", handlers.ListPromos)
		open.GET("/promo/:id/", handlers.GetPromo)
		open.POST("/booking/", handlers.CreateBooking)
	}

	// ── Authenticated API ──────────────────────────────────────────
	authed := r.Group("/api", middleware.AuthRequired())
	{
		authed.GET("/profile/", handlers.GetProfile)
		authed.PUT("/profile/", handlers.UpdateProfile)
		authed.PATCH("/profile/", handlers.UpdateProfile)

		authed.GET("/booking/", handlers.ListBookings)
		authed.GET("/booking/:id/", handlers.GetBooking)
		authed.PUT("/booking/:id/", handlers.UpdateBooking)
		authed.PATCH("/booking/:id/", handlers.UpdateBooking)
		authed.PUT("/booking/:id/status/", handlers.UpdateBookingStatus)
		authed.DELETE("/booking/:id/", handlers.DeleteBooking)
	}

	// ── Staff writes on menu and promo content ─────────────────────
	staff := r.Group("/api", middleware.AuthRequired(), middleware.StaffRequired())
	{
		staff.POST("/menu/", handlers.CreateMenuItem)
		staff.PUT("/menu/:id/", handlers.UpdateMenuItem)
		staff.PATCH("/menu/:id/", handlers.UpdateMenuItem)
		staff.DELETE("/menu/:id/", handlers.DeleteMenuItem)

		staff.POST("/promo/", handlers.CreatePromo)
		staff.PUT("/promo/:id/", handlers.UpdatePromo)
		staff.PATCH("/promo/:id/", handlers.UpdatePromo)
		staff.DELETE("/promo/:id/", handlers.DeletePromo)

		staff.POST("/menu-promo/", handlers.CreateMenuPromo)
		staff.DELETE("/menu-promo/:id/", handlers.DeleteMenuPromo)
	}

	// ── User management, superuser only ────────────────────────────
	super := r.Group("/api/users", middleware.AuthRequired(), middleware.SuperuserRequired())
	{
		super.GET("/", handlers.ListUsers)
		super.GET("/:id/", handlers.GetUser)
		super.PUT("/:id/", handlers.UpdateUser)
		super.PATCH("/:id/", handlers.UpdateUser)
		super.DELETE("/:id/", handlers.DeleteUser)
	}

	// ── Website (session auth, flash messages) ─────────────────────
	web := r.Group("", middleware.SessionAuth())
	{
		web.GET("/", handlers.HomePage)
		web.GET("/menu/", handlers.MenuPage)
		web.GET("/promo/", handlers.PromoPage)
		web.GET("/contacts/", handlers.ContactsPage)
		web.GET("/booking/", handlers.BookingPage)
		web.POST("/booking/", handlers.SubmitBooking)
		web.GET("/login/", handlers.LoginPage)
		web.POST("/login/", handlers.SubmitLogin)
		web.GET("/register/", handlers.RegisterPage)
		web.POST("/register/", handlers.SubmitRegister)
		web.GET("/logout/", handlers.LogoutPage)

		profile := web.Group("/profile", middleware.WebAuthRequired())
		{
			profile.GET("/", handlers.ProfilePage)
			profile.POST("/", handlers.SubmitProfile)
			profile.POST("/password/", handlers.SubmitPasswordChange)
			profile.POST("/bookings/:id/cancel/", handlers.CancelBookingWeb)
		}
	}
}
