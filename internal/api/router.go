package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/access"
	"github.com/GabeValerio/famodular/internal/ai"
	"github.com/GabeValerio/famodular/internal/app"
	iauth "github.com/GabeValerio/famodular/internal/auth"
	"github.com/GabeValerio/famodular/internal/handlers"
	"github.com/GabeValerio/famodular/internal/middleware"
	"github.com/GabeValerio/famodular/internal/services"
	"github.com/GabeValerio/famodular/internal/storage"
	"github.com/GabeValerio/famodular/pkg/mail"
)

// NewRouter builds the Gin engine, wires middleware and registers all module
// routes. The AI client may be nil, which disables AI-backed endpoints with a
// service unavailable response.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, aiClient ai.Client, store storage.Store, mailer mail.Mailer) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if store == nil {
		return nil, fmt.Errorf("media store must be provided")
	}

	gateway, err := access.NewGateway(db)
	if err != nil {
		return nil, err
	}

	auditSvc, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	userSvc, err := services.NewUserService(db, auditSvc)
	if err != nil {
		return nil, err
	}
	groupSvc, err := services.NewGroupService(db, gateway, auditSvc)
	if err != nil {
		return nil, err
	}
	invitationSvc, err := services.NewInvitationService(db, gateway, auditSvc, mailer, services.InvitationOptions{
		TTL:     cfg.Invites.TTL,
		BaseURL: cfg.Server.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	calendarSvc, err := services.NewCalendarService(db, gateway, auditSvc)
	if err != nil {
		return nil, err
	}
	todoSvc, err := services.NewTodoService(db, gateway)
	if err != nil {
		return nil, err
	}
	checkInSvc, err := services.NewCheckInService(db, gateway)
	if err != nil {
		return nil, err
	}
	goalSvc, err := services.NewGoalService(db, gateway)
	if err != nil {
		return nil, err
	}
	noteSvc, err := services.NewNoteService(db, gateway)
	if err != nil {
		return nil, err
	}
	wishlistSvc, err := services.NewWishlistService(db, gateway)
	if err != nil {
		return nil, err
	}
	chatSvc, err := services.NewChatService(db, gateway)
	if err != nil {
		return nil, err
	}
	plantSvc, err := services.NewPlantService(db, gateway, aiClient)
	if err != nil {
		return nil, err
	}
	kitchenSvc, err := services.NewKitchenService(db, gateway, aiClient)
	if err != nil {
		return nil, err
	}
	mediaSvc, err := services.NewMediaService(db, gateway, store)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health(db))
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}
	if cfg.Storage.Backend == "local" && cfg.Storage.Local.Directory != "" {
		r.Static("/media", cfg.Storage.Local.Directory)
	}

	authHandler := handlers.NewAuthHandler(userSvc, jwt)
	profileHandler := handlers.NewProfileHandler(userSvc)
	groupHandler := handlers.NewGroupHandler(groupSvc)
	invitationHandler := handlers.NewInvitationHandler(invitationSvc)
	calendarHandler := handlers.NewCalendarHandler(calendarSvc)
	todoHandler := handlers.NewTodoHandler(todoSvc)
	checkInHandler := handlers.NewCheckInHandler(checkInSvc)
	goalHandler := handlers.NewGoalHandler(goalSvc)
	noteHandler := handlers.NewNoteHandler(noteSvc)
	wishlistHandler := handlers.NewWishlistHandler(wishlistSvc)
	chatHandler := handlers.NewChatHandler(chatSvc)
	plantHandler := handlers.NewPlantHandler(plantSvc)
	kitchenHandler := handlers.NewKitchenHandler(kitchenSvc)
	mediaHandler := handlers.NewMediaHandler(mediaSvc)
	auditHandler := handlers.NewAuditHandler(auditSvc, gateway)

	// Public routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}
	r.GET("/api/invitations/:code", invitationHandler.Resolve)

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	api.GET("/auth/me", authHandler.Me)

	profile := api.Group("/profile")
	{
		profile.GET("", profileHandler.Get)
		profile.PATCH("", profileHandler.Update)
		profile.GET("/modules", profileHandler.GetModules)
		profile.PUT("/modules", profileHandler.UpdateModules)
	}

	api.POST("/invitations/accept", invitationHandler.Accept)

	groups := api.Group("/groups")
	{
		groups.POST("", groupHandler.Create)
		groups.GET("", groupHandler.List)
		groups.GET("/:groupID", groupHandler.Get)
		groups.PATCH("/:groupID", groupHandler.Update)
		groups.GET("/:groupID/modules", groupHandler.Modules)
		groups.GET("/:groupID/members", groupHandler.Members)
		groups.PATCH("/:groupID/members/:userID", groupHandler.UpdateMember)
		groups.POST("/:groupID/leave", groupHandler.Leave)

		groups.POST("/:groupID/invitations", invitationHandler.Create)
		groups.GET("/:groupID/invitations", invitationHandler.ListForGroup)
		groups.DELETE("/:groupID/invitations/:invitationID", invitationHandler.Revoke)

		groups.GET("/:groupID/checkins", checkInHandler.List)
		groups.POST("/:groupID/chat", chatHandler.Post)
		groups.GET("/:groupID/chat", chatHandler.List)
		groups.GET("/:groupID/audit", auditHandler.ListForGroup)
	}

	events := api.Group("/events")
	{
		events.POST("", calendarHandler.Create)
		events.GET("", calendarHandler.List)
		events.GET("/:eventID", calendarHandler.Get)
		events.PATCH("/:eventID", calendarHandler.Update)
		events.DELETE("/:eventID", calendarHandler.Delete)
	}

	todos := api.Group("/todos")
	{
		todos.POST("", todoHandler.Create)
		todos.GET("", todoHandler.List)
		todos.PATCH("/:todoID", todoHandler.Update)
		todos.POST("/:todoID/toggle", todoHandler.Toggle)
		todos.DELETE("/:todoID", todoHandler.Delete)
	}

	checkIns := api.Group("/checkins")
	{
		checkIns.POST("", checkInHandler.Create)
		checkIns.DELETE("/:checkInID", checkInHandler.Delete)
	}

	goals := api.Group("/goals")
	{
		goals.POST("", goalHandler.Create)
		goals.GET("", goalHandler.List)
		goals.GET("/:goalID", goalHandler.Get)
		goals.PATCH("/:goalID", goalHandler.Update)
		goals.DELETE("/:goalID", goalHandler.Delete)
	}

	notes := api.Group("/notes")
	{
		notes.POST("", noteHandler.Create)
		notes.GET("", noteHandler.List)
		notes.GET("/:noteID", noteHandler.Get)
		notes.PATCH("/:noteID", noteHandler.Update)
		notes.DELETE("/:noteID", noteHandler.Delete)
	}

	wishlist := api.Group("/wishlist")
	{
		wishlist.POST("", wishlistHandler.Create)
		wishlist.GET("", wishlistHandler.List)
		wishlist.PATCH("/:itemID", wishlistHandler.Update)
		wishlist.DELETE("/:itemID", wishlistHandler.Delete)
	}

	api.DELETE("/chat/:messageID", chatHandler.Delete)

	plants := api.Group("/plants")
	{
		plants.POST("", plantHandler.Create)
		plants.GET("", plantHandler.List)
		plants.GET("/:plantID", plantHandler.Get)
		plants.PATCH("/:plantID", plantHandler.Update)
		plants.POST("/:plantID/water", plantHandler.Water)
		plants.POST("/:plantID/identify", plantHandler.Identify)
		plants.DELETE("/:plantID", plantHandler.Delete)
	}

	kitchen := api.Group("/kitchen")
	{
		kitchen.POST("/inventory", kitchenHandler.AddInventoryItem)
		kitchen.GET("/inventory", kitchenHandler.ListInventory)
		kitchen.PATCH("/inventory/:itemID", kitchenHandler.UpdateInventoryItem)
		kitchen.DELETE("/inventory/:itemID", kitchenHandler.DeleteInventoryItem)
		kitchen.POST("/inventory/analyze", kitchenHandler.AnalyzeInventoryPhotos)

		kitchen.POST("/groceries", kitchenHandler.AddGroceryItem)
		kitchen.GET("/groceries", kitchenHandler.ListGroceries)
		kitchen.POST("/groceries/:itemID/toggle", kitchenHandler.ToggleGroceryItem)
		kitchen.DELETE("/groceries/:itemID", kitchenHandler.DeleteGroceryItem)

		kitchen.POST("/recipes", kitchenHandler.CreateRecipe)
		kitchen.GET("/recipes", kitchenHandler.ListRecipes)
		kitchen.POST("/recipes/generate", kitchenHandler.GenerateRecipe)
		kitchen.GET("/recipes/:recipeID", kitchenHandler.GetRecipe)
		kitchen.DELETE("/recipes/:recipeID", kitchenHandler.DeleteRecipe)

		kitchen.POST("/mealplans", kitchenHandler.CreateMealPlan)
		kitchen.GET("/mealplans", kitchenHandler.ListMealPlans)
		kitchen.POST("/mealplans/generate", kitchenHandler.GenerateMealPlan)
	}

	media := api.Group("/media")
	{
		media.POST("", mediaHandler.Upload)
		media.GET("", mediaHandler.List)
		media.GET("/:mediaID", mediaHandler.Get)
		media.DELETE("/:mediaID", mediaHandler.Delete)
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
