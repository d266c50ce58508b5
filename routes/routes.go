package routes

import (
	"github.com/gin-gonic/gin"

	controllers "github.com/phillip/culture-events-go/controllers"
)

func SetupRoutes(r *gin.Engine, env *controllers.Env) {
	// public
	r.GET("/health", controllers.Health(env))
	r.GET("/stats", controllers.SiteStats(env))

	events := r.Group("/events")
	{
		events.GET("", controllers.ListEvents(env))
		events.GET("/:slug", controllers.GetEvent(env))
	}

	testimonials := r.Group("/testimonials")
	{
		testimonials.GET("", controllers.ListTestimonials(env))
		testimonials.POST("", controllers.CreateTestimonial(env))
	}

	r.GET("/team", controllers.ListTeam(env))
	r.GET("/brands", controllers.ListBrands(env))

	gallery := r.Group("/gallery")
	{
		gallery.GET("", controllers.ListGallery(env))
		gallery.GET("/themes", controllers.ListThemes(env))
		gallery.GET("/themes/:slug", controllers.GetTheme(env))
	}

	r.POST("/newsletter", controllers.Subscribe(env))
	r.POST("/newsletter/unsubscribe", controllers.Unsubscribe(env))
	r.POST("/contact", controllers.SubmitContact(env))
	r.POST("/partners", controllers.SubmitPartner(env))

	orders := r.Group("/orders")
	{
		orders.POST("", controllers.CreateOrder(env))
		orders.POST("/confirm", controllers.ConfirmOrder(env))
		orders.GET("/lookup", controllers.LookupOrder(env))
		orders.GET("/tickets.pdf", controllers.OrderTicketsPDF(env))
	}

	// session login sits outside the gate
	r.POST("/admin/session", controllers.CreateSession(env))

	// protected
	requireAdmin := env.Admin.RequireAdmin()

	r.POST("/upload", requireAdmin, controllers.UploadImage(env))

	admin := r.Group("/admin")
	admin.Use(requireAdmin)
	{
		admin.GET("/events", controllers.AdminListEvents(env))
		admin.POST("/events", controllers.CreateEvent(env))
		admin.POST("/events/seed", controllers.SeedEvents(env))
		admin.PUT("/events/:id", controllers.UpdateEvent(env))
		admin.DELETE("/events/:id", controllers.DeleteEvent(env))
		admin.GET("/events/:id/stats", controllers.EventStats(env))

		admin.GET("/check-in", controllers.CheckInLookup(env))
		admin.POST("/check-in/confirm", controllers.CheckInConfirm(env))

		admin.GET("/orders", controllers.AdminListOrders(env))

		admin.GET("/team", controllers.AdminListTeam(env))
		admin.POST("/team", controllers.CreateTeamMember(env))
		admin.POST("/team/seed", controllers.SeedTeam(env))
		admin.PUT("/team/:id", controllers.UpdateTeamMember(env))
		admin.DELETE("/team/:id", controllers.DeleteTeamMember(env))

		admin.GET("/testimonials", controllers.AdminListTestimonials(env))
		admin.GET("/testimonials/distribution", controllers.TestimonialDistribution(env))
		admin.POST("/testimonials/:id/approve", controllers.ApproveTestimonial(env))
		admin.DELETE("/testimonials/:id", controllers.DeleteTestimonial(env))

		admin.GET("/partners", controllers.AdminListPartners(env))
		admin.PATCH("/partners/:id", controllers.MarkPartner(env))
		admin.DELETE("/partners/:id", controllers.DeletePartner(env))

		admin.GET("/contacts", controllers.AdminListContacts(env))
		admin.PATCH("/contacts/:id", controllers.MarkContact(env))
		admin.DELETE("/contacts/:id", controllers.DeleteContact(env))

		admin.GET("/brands", controllers.AdminListBrands(env))
		admin.POST("/brands", controllers.CreateBrand(env))
		admin.PUT("/brands/:id", controllers.UpdateBrand(env))
		admin.DELETE("/brands/:id", controllers.DeleteBrand(env))

		admin.GET("/gallery", controllers.AdminListGallery(env))
		admin.POST("/gallery", controllers.CreateGalleryPhoto(env))
		admin.PUT("/gallery/:id", controllers.UpdateGalleryPhoto(env))
		admin.DELETE("/gallery/:id", controllers.DeleteGalleryPhoto(env))

		admin.GET("/gallery/themes", controllers.AdminListThemes(env))
		admin.POST("/gallery/themes", controllers.CreateTheme(env))
		admin.PUT("/gallery/themes/:id", controllers.UpdateTheme(env))
		admin.DELETE("/gallery/themes/:id", controllers.DeleteTheme(env))
		admin.GET("/gallery/themes/:id/photos", controllers.ListThemePhotos(env))
		admin.POST("/gallery/themes/:id/photos", controllers.AddThemePhotos(env))
		admin.POST("/gallery/themes/:id/photos/reorder", controllers.ReorderThemePhotos(env))
		admin.POST("/gallery/photos/:id/cover", controllers.SetThemeCover(env))
		admin.DELETE("/gallery/photos/:id", controllers.DeleteThemePhoto(env))

		admin.GET("/newsletter", controllers.AdminListSubscribers(env))

		admin.GET("/settings", controllers.GetSettings(env))
		admin.PUT("/settings", controllers.UpdateSettings(env))
	}
}
