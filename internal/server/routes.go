package server

import (
	"net/http"

	"github.com/funnytourism/tourism-api/internal/admin"
	"github.com/funnytourism/tourism-api/internal/agent"
	"github.com/funnytourism/tourism-api/internal/auth"
	"github.com/funnytourism/tourism-api/internal/booking"
	"github.com/funnytourism/tourism-api/internal/catalog"
	"github.com/funnytourism/tourism-api/internal/config"
	"github.com/funnytourism/tourism-api/internal/inquiry"
	"github.com/funnytourism/tourism-api/internal/itinerary"
	"github.com/funnytourism/tourism-api/internal/ledger"
	"github.com/funnytourism/tourism-api/internal/middleware"
	"github.com/funnytourism/tourism-api/internal/notify"
	"github.com/funnytourism/tourism-api/internal/ratelimit"
	"github.com/funnytourism/tourism-api/internal/user"
	"github.com/funnytourism/tourism-api/internal/utils"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

// Deps are the shared services the routes are built from.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Sessions *auth.Sessions
	Limiter  ratelimit.Limiter
	Notifier *notify.Service
	// Itinerary overrides the client built from Config.TQA.
	Itinerary *itinerary.Client
}

// NewRouter wires every handler and wraps the router with CORS, access
// logging and panic recovery.
func NewRouter(d Deps) http.Handler {
	agents := agent.NewRepository(d.DB)
	bookings := booking.NewRepository(d.DB)

	adminH := admin.NewHandler(admin.NewRepository(d.DB), d.Sessions)
	users := user.NewRepository(d.DB)
	userH := user.NewHandler(users, d.Sessions)
	agentH := agent.NewHandler(agents, d.Sessions, d.Notifier, bookings)
	bookingH := booking.NewHandler(bookings, agents, d.Notifier)
	ledgerH := ledger.NewHandler(ledger.New(d.DB), ledger.NewRepository(d.DB), booking.LedgerTargets())
	catalogRepo := catalog.NewRepository(d.DB)
	catalogH := catalog.NewHandler(catalogRepo)
	wishlistH := user.NewWishlistHandler(users, catalogRepo)
	inquiryH := inquiry.NewHandler(inquiry.NewRepository(d.DB), d.Notifier)

	client := d.Itinerary
	if client == nil {
		client = itinerary.NewClient(d.Config.TQA)
	}
	itineraryH := itinerary.NewHandler(client, d.Notifier, d.Config.TQA.Timeout)

	r := mux.NewRouter()
	r.HandleFunc("/api/health", health(d.DB)).Methods(http.MethodGet)

	// public catalog
	r.HandleFunc("/api/packages", catalogH.ListPackages).Methods(http.MethodGet)
	r.HandleFunc("/api/packages/{id}", catalogH.GetPackage).Methods(http.MethodGet)
	r.HandleFunc("/api/daily-tours", catalogH.ListDailyTours).Methods(http.MethodGet)
	r.HandleFunc("/api/transfers", catalogH.ListTransfers).Methods(http.MethodGet)
	r.HandleFunc("/api/destinations", catalogH.ListDestinations).Methods(http.MethodGet)
	r.HandleFunc("/api/destinations/{slug}", catalogH.GetDestination).Methods(http.MethodGet)
	r.HandleFunc("/api/blog", catalogH.ListPosts).Methods(http.MethodGet)
	r.HandleFunc("/api/blog/{slug}", catalogH.GetPost).Methods(http.MethodGet)

	// public bookings
	r.HandleFunc("/api/bookings", bookingH.Create(ledger.BookingPackage)).Methods(http.MethodPost)
	r.HandleFunc("/api/daily-tours/book", bookingH.Create(ledger.BookingDailyTour)).Methods(http.MethodPost)
	r.HandleFunc("/api/transfers/book", bookingH.Create(ledger.BookingTransfer)).Methods(http.MethodPost)

	contactLimit := ratelimit.Middleware(d.Limiter, "contact")
	r.Handle("/api/contact", contactLimit(http.HandlerFunc(inquiryH.Submit))).Methods(http.MethodPost)
	newsletterLimit := ratelimit.Middleware(d.Limiter, "newsletter")
	r.Handle("/api/newsletter/subscribe", newsletterLimit(http.HandlerFunc(inquiryH.Subscribe))).Methods(http.MethodPost)

	r.HandleFunc("/api/tqa/generate-itinerary", itineraryH.Generate).Methods(http.MethodPost)
	r.HandleFunc("/api/itinerary/{uuid}", itineraryH.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/itinerary/{uuid}/request-booking", itineraryH.RequestBooking).Methods(http.MethodPost)

	// end users
	r.HandleFunc("/api/auth/register", userH.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", userH.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", userH.Logout).Methods(http.MethodPost)
	userOnly := d.Sessions.Require(auth.RoleUser, nil)
	r.Handle("/api/auth/me", userOnly(http.HandlerFunc(userH.Me))).Methods(http.MethodGet)
	r.Handle("/api/wishlist", userOnly(http.HandlerFunc(wishlistH.List))).Methods(http.MethodGet)
	r.Handle("/api/wishlist", userOnly(http.HandlerFunc(wishlistH.Add))).Methods(http.MethodPost)
	r.Handle("/api/wishlist", userOnly(http.HandlerFunc(wishlistH.Remove))).Methods(http.MethodDelete)

	// agent portal
	r.HandleFunc("/api/agent/register", agentH.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/agent/login", agentH.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/agent/logout", agentH.Logout).Methods(http.MethodPost)
	ag := r.PathPrefix("/api/agent").Subrouter()
	ag.Use(d.Sessions.Require(auth.RoleAgent, agents))
	ag.HandleFunc("/me", agentH.Me).Methods(http.MethodGet)
	ag.HandleFunc("/change-password", agentH.ChangePassword).Methods(http.MethodPost)
	ag.HandleFunc("/bookings", bookingH.ListForAgent).Methods(http.MethodGet)
	ag.HandleFunc("/bookings", bookingH.CreateForAgent(ledger.BookingPackage)).Methods(http.MethodPost)
	ag.HandleFunc("/daily-tours/book", bookingH.CreateForAgent(ledger.BookingDailyTour)).Methods(http.MethodPost)
	ag.HandleFunc("/transfers/book", bookingH.CreateForAgent(ledger.BookingTransfer)).Methods(http.MethodPost)

	// back office
	r.HandleFunc("/api/admin/login", adminH.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/logout", adminH.Logout).Methods(http.MethodPost)
	ad := r.PathPrefix("/api/admin").Subrouter()
	ad.Use(d.Sessions.Require(auth.RoleAdmin, nil))
	ad.HandleFunc("/me", adminH.Me).Methods(http.MethodGet)
	adminBookings(ad, bookingH, ledgerH)
	adminAgents(ad, agentH)
	adminCatalog(ad, d.DB)
	ad.HandleFunc("/inquiries", inquiryH.List).Methods(http.MethodGet)
	ad.HandleFunc("/inquiries/{id:[0-9]+}", inquiryH.Update).Methods(http.MethodPatch)
	ad.HandleFunc("/inquiries/{id:[0-9]+}", inquiryH.Delete).Methods(http.MethodDelete)
	ad.HandleFunc("/newsletter/subscribers", inquiryH.Subscribers).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteError(w, http.StatusNotFound, "Not found")
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   d.Config.Server.Origins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return middleware.Logger(middleware.Recover(c.Handler(r)))
}

func adminBookings(ad *mux.Router, h *booking.Handler, lh *ledger.Handler) {
	ad.HandleFunc("/bookings", h.List).Methods(http.MethodGet)
	ad.HandleFunc("/commissions/summary", h.Summary).Methods(http.MethodGet)
	ad.HandleFunc("/commission-payments", lh.ListPayments).Methods(http.MethodGet)

	for _, t := range []struct {
		prefix string
		bt     ledger.BookingType
	}{
		{"/bookings", ledger.BookingPackage},
		{"/bookings/daily-tours", ledger.BookingDailyTour},
		{"/bookings/transfers", ledger.BookingTransfer},
	} {
		ad.HandleFunc(t.prefix+"/{id:[0-9]+}", h.Get(t.bt)).Methods(http.MethodGet)
		ad.HandleFunc(t.prefix+"/{id:[0-9]+}", h.UpdateStatus(t.bt)).Methods(http.MethodPatch)
	}

	for _, t := range []struct {
		prefix string
		bt     ledger.BookingType
	}{
		{"/bookings", ledger.BookingPackage},
		{"/daily-tours", ledger.BookingDailyTour},
		{"/transfers", ledger.BookingTransfer},
	} {
		ad.HandleFunc(t.prefix+"/mark-paid", lh.RecordPayment(t.bt, ledger.DirectionCommission)).Methods(http.MethodPost)
		ad.HandleFunc(t.prefix+"/record-agent-payment", lh.RecordPayment(t.bt, ledger.DirectionAgentBalance)).Methods(http.MethodPost)
	}
}

func adminAgents(ad *mux.Router, h *agent.Handler) {
	ad.HandleFunc("/agents", h.List).Methods(http.MethodGet)
	ad.HandleFunc("/agents/create", h.Create).Methods(http.MethodPost)
	ad.HandleFunc("/agents/{id:[0-9]+}", h.Get).Methods(http.MethodGet)
	ad.HandleFunc("/agents/{id:[0-9]+}", h.Update).Methods(http.MethodPatch)
	ad.HandleFunc("/agents/{id:[0-9]+}", h.Delete).Methods(http.MethodDelete)
}

// crud is the method set shared by the catalog admin resources.
type crud interface {
	List(http.ResponseWriter, *http.Request)
	Get(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
}

func adminCatalog(ad *mux.Router, db *gorm.DB) {
	for path, res := range map[string]crud{
		"/packages":           catalog.NewPackages(db),
		"/daily-tours":        catalog.NewDailyTours(db),
		"/transfer-locations": catalog.NewTransferLocations(db),
		"/transfers":          catalog.NewTransfers(db),
		"/destinations":       catalog.NewDestinations(db),
		"/blog":               catalog.NewBlogPosts(db),
	} {
		ad.HandleFunc(path, res.List).Methods(http.MethodGet)
		ad.HandleFunc(path, res.Create).Methods(http.MethodPost)
		ad.HandleFunc(path+"/{id:[0-9]+}", res.Get).Methods(http.MethodGet)
		ad.HandleFunc(path+"/{id:[0-9]+}", res.Update).Methods(http.MethodPut)
		ad.HandleFunc(path+"/{id:[0-9]+}", res.Delete).Methods(http.MethodDelete)
	}
}

func health(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			utils.InternalError(w, r, err, "Database unavailable")
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
