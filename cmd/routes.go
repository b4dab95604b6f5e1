package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"fakhiuBack/internal/handlers"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.authenticate)
	submitMiddleware := standardMiddleware.Append(app.identify, app.limitSubmissions)
	authSubmitMiddleware := authMiddleware.Append(app.limitSubmissions)

	mux := pat.New()

	mux.Get("/healthz", standardMiddleware.ThenFunc(handlers.Health))

	// Listings
	mux.Get("/marketplace/listings", authMiddleware.ThenFunc(app.marketplaceHandler.GetListings))
	mux.Post("/marketplace/refresh", authMiddleware.ThenFunc(app.marketplaceHandler.Refresh))
	mux.Del("/marketplace/snapshot", authMiddleware.ThenFunc(app.marketplaceHandler.Forget))

	// Sessions
	mux.Post("/marketplace/sessions", authMiddleware.ThenFunc(app.sessionHandler.CreateSession))
	mux.Get("/marketplace/sessions/:id/ws", alice.New(app.recoverPanic, app.logRequest).ThenFunc(app.SessionSocket))
	mux.Get("/marketplace/sessions/:id", authMiddleware.ThenFunc(app.sessionHandler.GetSession))
	mux.Del("/marketplace/sessions/:id", authMiddleware.ThenFunc(app.sessionHandler.DeleteSession))
	mux.Put("/marketplace/sessions/:id/tab", authMiddleware.ThenFunc(app.sessionHandler.SelectTab))
	mux.Put("/marketplace/sessions/:id/filters", authMiddleware.ThenFunc(app.sessionHandler.SetFilters))
	mux.Del("/marketplace/sessions/:id/filters", authMiddleware.ThenFunc(app.sessionHandler.ClearFilters))
	mux.Put("/marketplace/sessions/:id/sort", authMiddleware.ThenFunc(app.sessionHandler.SetSort))
	mux.Post("/marketplace/sessions/:id/next", authMiddleware.ThenFunc(app.sessionHandler.NextPage))
	mux.Post("/marketplace/sessions/:id/prev", authMiddleware.ThenFunc(app.sessionHandler.PrevPage))
	mux.Put("/marketplace/sessions/:id/open", authMiddleware.ThenFunc(app.sessionHandler.OpenItem))
	mux.Del("/marketplace/sessions/:id/open", authMiddleware.ThenFunc(app.sessionHandler.CloseItem))
	mux.Put("/marketplace/sessions/:id/form", authMiddleware.ThenFunc(app.sessionHandler.SetForm))
	mux.Post("/marketplace/sessions/:id/submit", authSubmitMiddleware.ThenFunc(app.sessionHandler.Submit))

	// Requests
	mux.Post("/marketplace/requests", submitMiddleware.ThenFunc(app.requestHandler.CreateRequest))

	// Bookmarks
	mux.Get("/marketplace/bookmarks", authMiddleware.ThenFunc(app.bookmarkHandler.GetBookmarks))
	mux.Post("/marketplace/bookmarks", authMiddleware.ThenFunc(app.bookmarkHandler.ToggleBookmark))

	return mux
}
