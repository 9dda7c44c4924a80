package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/funnytourism/tourism-api/internal/utils/db"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, *mux.Router) {
	t.Helper()
	database, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(database))

	h := NewHandler(NewRepository(database))
	r := mux.NewRouter()
	r.HandleFunc("/api/packages", h.ListPackages).Methods(http.MethodGet)
	r.HandleFunc("/api/packages/{id}", h.GetPackage).Methods(http.MethodGet)
	r.HandleFunc("/api/daily-tours", h.ListDailyTours).Methods(http.MethodGet)
	r.HandleFunc("/api/transfers", h.ListTransfers).Methods(http.MethodGet)
	r.HandleFunc("/api/destinations", h.ListDestinations).Methods(http.MethodGet)
	r.HandleFunc("/api/destinations/{slug}", h.GetDestination).Methods(http.MethodGet)
	r.HandleFunc("/api/blog", h.ListPosts).Methods(http.MethodGet)
	r.HandleFunc("/api/blog/{slug}", h.GetPost).Methods(http.MethodGet)

	pkgs := NewPackages(database)
	r.HandleFunc("/api/admin/packages", pkgs.List).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/packages", pkgs.Create).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/packages/{id:[0-9]+}", pkgs.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/packages/{id:[0-9]+}", pkgs.Update).Methods(http.MethodPut)
	r.HandleFunc("/api/admin/packages/{id:[0-9]+}", pkgs.Delete).Methods(http.MethodDelete)
	locs := NewTransferLocations(database)
	r.HandleFunc("/api/admin/transfer-locations", locs.Create).Methods(http.MethodPost)
	transfers := NewTransfers(database)
	r.HandleFunc("/api/admin/transfers", transfers.Create).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/transfers", transfers.List).Methods(http.MethodGet)
	dests := NewDestinations(database)
	r.HandleFunc("/api/admin/destinations", dests.Create).Methods(http.MethodPost)
	posts := NewBlogPosts(database)
	r.HandleFunc("/api/admin/blog", posts.List).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/blog", posts.Create).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/blog/{id:[0-9]+}", posts.Update).Methods(http.MethodPut)
	return database, r
}

func call(r *mux.Router, method, path, body string, headers ...string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var out map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func seedPackage(t *testing.T, database *gorm.DB) *Package {
	t.Helper()
	p := &Package{
		PackageID:    "peru-classic",
		PackageType:  "CULTURAL",
		Title:        "Classic Peru",
		TitleEs:      "Perú Clásico",
		Description:  "Ten days",
		Destinations: "Lima, Cusco ,, Puno",
		Highlights:   `["Machu Picchu"]`,
		HighlightsEs: `["Machu Picchu al amanecer"]`,
		Itinerary:    `[{"day":1}]`,
		ItineraryEs:  `{broken`,
		Pricing:      `{"double": 1500}`,
		IsActive:     true,
	}
	require.NoError(t, database.Create(p).Error)
	require.NoError(t, database.Create(&Package{PackageID: "hidden", Title: "Hidden"}).Error)
	return p
}

func TestPackageListLocalized(t *testing.T) {
	database, r := setup(t)
	seedPackage(t, database)

	rec, out := call(r, http.MethodGet, "/api/packages?locale=es-MX", "")
	require.Equal(t, http.StatusOK, rec.Code)
	pkgs := out["packages"].([]interface{})
	require.Len(t, pkgs, 1)
	p := pkgs[0].(map[string]interface{})
	assert.Equal(t, "Perú Clásico", p["title"])
	// empty Spanish description falls back to English
	assert.Equal(t, "Ten days", p["description"])
	assert.Equal(t, []interface{}{"Lima", "Cusco", "Puno"}, p["destinations"])
	assert.Equal(t, []interface{}{"Machu Picchu al amanecer"}, p["highlights"])

	_, out = call(r, http.MethodGet, "/api/packages", "", "Accept-Language", "fr-FR,fr;q=0.9")
	p = out["packages"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Classic Peru", p["title"])

	_, out = call(r, http.MethodGet, "/api/packages?type=ADVENTURE", "")
	assert.Empty(t, out["packages"])
}

func TestPackageDetailAbsorbsMalformedJSON(t *testing.T) {
	database, r := setup(t)
	seedPackage(t, database)

	rec, out := call(r, http.MethodGet, "/api/packages/peru-classic?locale=es", "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := out["package"].(map[string]interface{})
	// the Spanish itinerary is non-empty but malformed, so it decodes to []
	assert.Equal(t, []interface{}{}, p["itinerary"])
	assert.Equal(t, []interface{}{}, p["included"])
	assert.Equal(t, map[string]interface{}{}, p["hotels"])
	assert.Equal(t, 1500.0, p["pricing"].(map[string]interface{})["double"])

	rec, _ = call(r, http.MethodGet, "/api/packages/hidden", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDailyToursLocalized(t *testing.T) {
	database, r := setup(t)
	require.NoError(t, database.Create(&DailyTour{TourCode: "B1", Title: "City tour", TitleEs: "Tour por la ciudad", SicPrice: 40, IsActive: true}).Error)
	require.NoError(t, database.Create(&DailyTour{TourCode: "A1", Title: "Boat", Notes: "Bring a hat", IsActive: true}).Error)

	_, out := call(r, http.MethodGet, "/api/daily-tours?locale=es", "")
	tours := out["tours"].([]interface{})
	require.Len(t, tours, 2)
	first := tours[0].(map[string]interface{})
	assert.Equal(t, "A1", first["tourCode"])
	assert.Equal(t, "Bring a hat", first["notes"])
	assert.Equal(t, "DAILY_TOUR", first["category"])
	assert.Equal(t, "Tour por la ciudad", tours[1].(map[string]interface{})["title"])
}

func TestAdminPackageCRUD(t *testing.T) {
	_, r := setup(t)

	rec, out := call(r, http.MethodPost, "/api/admin/packages",
		`{"packageId":"galapagos","title":"Galapagos","highlights":["Tortoises"],"isActive":false}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := out["package"].(map[string]interface{})
	assert.Equal(t, false, created["isActive"])
	assert.Equal(t, []interface{}{"Tortoises"}, created["highlights"])
	id := int(created["id"].(float64))
	path := "/api/admin/packages/" + strconv.Itoa(id)

	rec, _ = call(r, http.MethodPost, "/api/admin/packages", `{"packageId":"galapagos","title":"Again"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, out = call(r, http.MethodPost, "/api/admin/packages", `{"title":"No id"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "packageId is required", out["error"])

	rec, out = call(r, http.MethodPut, path, `{"titleEs":"Galápagos","isActive":true,"id":999}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := out["package"].(map[string]interface{})
	assert.Equal(t, float64(id), updated["id"])
	assert.Equal(t, "Galapagos", updated["title"])
	assert.Equal(t, "Galápagos", updated["titleEs"])

	_, out = call(r, http.MethodGet, "/api/packages/galapagos?locale=es", "")
	assert.Equal(t, "Galápagos", out["package"].(map[string]interface{})["title"])

	rec, _ = call(r, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec, out = call(r, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Package not found", out["error"])
}

func TestTransfersMatchEitherDirection(t *testing.T) {
	_, r := setup(t)
	for _, body := range []string{
		`{"code":"IST","name":"Istanbul Airport","region":"Istanbul"}`,
		`{"code":"SUL","name":"Sultanahmet","region":"Istanbul"}`,
		`{"code":"GOR","name":"Goreme","region":"Cappadocia"}`,
	} {
		rec, _ := call(r, http.MethodPost, "/api/admin/transfer-locations", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec, _ := call(r, http.MethodPost, "/api/admin/transfers", `{"fromLocationId":1,"toLocationId":2,"price1to2Pax":45}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec, _ = call(r, http.MethodPost, "/api/admin/transfers", `{"fromLocationId":3,"toLocationId":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out := call(r, http.MethodGet, "/api/transfers?fromLocationId=2&toLocationId=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	transfers := out["transfers"].([]interface{})
	require.Len(t, transfers, 1)
	tr := transfers[0].(map[string]interface{})
	assert.Equal(t, "IST", tr["fromLocation"].(map[string]interface{})["code"])
	assert.Equal(t, "Sedan", tr["vehicleType1to2"])
	assert.Equal(t, []interface{}{"Cappadocia", "Istanbul"}, out["regions"])
	assert.Len(t, out["locations"], 3)

	_, out = call(r, http.MethodGet, "/api/transfers?region=Cappadocia", "")
	assert.Empty(t, out["transfers"])
	_, out = call(r, http.MethodGet, "/api/transfers?fromLocationId=2", "")
	assert.Len(t, out["transfers"], 1)

	rec, _ = call(r, http.MethodGet, "/api/transfers?fromLocationId=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDestinationsLocalized(t *testing.T) {
	_, r := setup(t)

	rec, out := call(r, http.MethodPost, "/api/admin/destinations", `{"slug":"cappadocia","name":"Cappadocia"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "description is required", out["error"])

	body := `{"slug":"cappadocia","name":"Cappadocia","nameEs":"Capadocia","description":"Fairy chimneys",
		"category":"NATURE","region":"Central Anatolia","heroImage":"/img/cap.jpg",
		"attractions":["Goreme"],"attractionsEs":["Göreme"],"experiencesEs":"{oops"}`
	rec, out = call(r, http.MethodPost, "/api/admin/destinations", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := out["destination"].(map[string]interface{})
	assert.Equal(t, "from-blue-500 to-blue-700", created["gradient"])
	assert.Equal(t, true, created["isActive"])

	rec, _ = call(r, http.MethodPost, "/api/admin/destinations", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, out = call(r, http.MethodGet, "/api/destinations/cappadocia", "", "Accept-Language", "fr-FR, es;q=0.9")
	require.Equal(t, http.StatusOK, rec.Code)
	d := out["destination"].(map[string]interface{})
	assert.Equal(t, "Capadocia", d["name"])
	assert.Equal(t, "Fairy chimneys", d["description"])
	assert.Equal(t, []interface{}{"Göreme"}, d["attractions"])
	assert.Equal(t, []interface{}{}, d["experiences"])

	_, out = call(r, http.MethodGet, "/api/destinations?region=Aegean", "")
	assert.Empty(t, out["destinations"])
	_, out = call(r, http.MethodGet, "/api/destinations", "")
	assert.Equal(t, "Cappadocia", out["destinations"].([]interface{})[0].(map[string]interface{})["name"])

	rec, _ = call(r, http.MethodGet, "/api/destinations/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBlogPublishing(t *testing.T) {
	database, r := setup(t)

	rec, out := call(r, http.MethodPost, "/api/admin/blog",
		`{"title":"Cappadocia in 3 Days!","titleEs":"Capadocia en 3 días","excerpt":"Balloons","content":"Day one","contentEs":"Día uno","tags":["turkey"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	post := out["post"].(map[string]interface{})
	assert.Equal(t, "cappadocia-in-3-days", post["slug"])
	assert.Equal(t, "DRAFT", post["status"])
	assert.Nil(t, post["publishedAt"])
	path := "/api/admin/blog/" + strconv.Itoa(int(post["id"].(float64)))

	// drafts are not public
	rec, _ = call(r, http.MethodGet, "/api/blog/cappadocia-in-3-days", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, out = call(r, http.MethodPut, path, `{"status":"PUBLISHED"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	published, err := time.Parse(time.RFC3339Nano, out["post"].(map[string]interface{})["publishedAt"].(string))
	require.NoError(t, err)

	// republishing keeps the first publication time
	rec, out = call(r, http.MethodPut, path, `{"status":"PUBLISHED","excerptEs":"Globos"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	again, err := time.Parse(time.RFC3339Nano, out["post"].(map[string]interface{})["publishedAt"].(string))
	require.NoError(t, err)
	assert.True(t, published.Equal(again), "%v != %v", published, again)

	rec, out = call(r, http.MethodGet, "/api/blog/cappadocia-in-3-days?locale=es", "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := out["post"].(map[string]interface{})
	assert.Equal(t, "Capadocia en 3 días", p["title"])
	assert.Equal(t, "Globos", p["excerpt"])
	assert.Equal(t, "Día uno", p["content"])
	assert.Equal(t, []interface{}{"turkey"}, p["tags"])
	assert.Equal(t, 1.0, p["views"])

	call(r, http.MethodGet, "/api/blog/cappadocia-in-3-days", "")
	var stored BlogPost
	require.NoError(t, database.First(&stored).Error)
	assert.Equal(t, 2, stored.Views)

	_, out = call(r, http.MethodGet, "/api/blog?limit=5", "")
	posts := out["posts"].([]interface{})
	require.Len(t, posts, 1)
	assert.NotContains(t, posts[0], "content")

	rec, _ = call(r, http.MethodGet, "/api/blog?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = call(r, http.MethodPost, "/api/admin/blog", `{"title":"¡¡!!"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "slug is required", out["error"])

	rec, _ = call(r, http.MethodPost, "/api/admin/blog", `{"title":"Other","status":"LIVE"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "cappadocia-in-3-days", Slugify("  Cappadocia in 3 Days! "))
	assert.Equal(t, "istanbul-s-best-food", Slugify("Istanbul's Best Food"))
	assert.Equal(t, "", Slugify("¡¡!!"))
}
