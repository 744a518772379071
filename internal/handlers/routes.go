package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stridehq/challenge-api/internal/auth"
)

func RegisterRoutes(r *chi.Mux, authHandler *auth.AuthHandler, activityHandler *ActivityHandler, challengeHandler *ChallengeHandler, importHandler *ImportHandler, adminHandler *AdminHandler) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig("Challenge API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: "auth_token",
		},
	}
	api := humachi.New(r, config)

	withAuth := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}}
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Auth routes
	r.Get("/auth/discord/login", authHandler.HandleLogin)
	r.Get("/auth/discord/callback", authHandler.HandleCallback)

	huma.Get(api, "/me", authHandler.HandleMe, withAuth)

	// Challenge routes
	huma.Post(api, "/challenges/{challengeID}/join", challengeHandler.HandleJoin, withAuth)
	huma.Get(api, "/challenges/{challengeID}/leaderboard", challengeHandler.HandleLeaderboard)
	huma.Get(api, "/challenges/{challengeID}/me", challengeHandler.HandleMyParticipation, withAuth)

	// Activity routes
	huma.Post(api, "/challenges/{challengeID}/activities", activityHandler.HandleLogActivity, withAuth)
	huma.Patch(api, "/activities/{activityID}", activityHandler.HandleEditActivity, withAuth)
	huma.Delete(api, "/activities/{activityID}", activityHandler.HandleDeleteActivity, withAuth)

	// Third-party sync integration
	huma.Post(api, "/import/activities", importHandler.HandleImportActivity, withAuth)
	huma.Delete(api, "/import/activities/{externalID}", importHandler.HandleImportDelete, withAuth)

	// Admin routes
	huma.Post(api, "/admin/challenges", adminHandler.HandleCreateChallenge, withAuth)
	huma.Post(api, "/admin/challenges/{challengeID}/activity-types", adminHandler.HandleCreateActivityType, withAuth)
	huma.Post(api, "/admin/challenges/{challengeID}/achievements", adminHandler.HandleCreateAchievement, withAuth)
	huma.Delete(api, "/admin/achievements/{achievementID}", adminHandler.HandleDeleteAchievement, withAuth)
	huma.Patch(api, "/admin/activities/{activityID}", adminHandler.HandleOverridePoints, withAuth)
	huma.Post(api, "/admin/challenges/{challengeID}/bonuses", adminHandler.HandleInjectBonus, withAuth)
	huma.Post(api, "/admin/rebuild", adminHandler.HandleRebuild, withAuth)
	huma.Post(api, "/admin/payments", adminHandler.HandleMarkPaid, withAuth)
}
