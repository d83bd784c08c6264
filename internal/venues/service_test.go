package venues

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"ticketly/internal/shared/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	mu     sync.Mutex
	venues map[uuid.UUID]Venue
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{venues: make(map[uuid.UUID]Venue)}
}

func (r *memoryRepository) Create(_ context.Context, venue *Venue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.venues[venue.ID] = *venue
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.venues[id]
	if !ok {
		return nil, apperrors.NotFound("venue %s not found", id)
	}
	return &v, nil
}

func goldLayout() SeatingLayout {
	return SeatingLayout{{Name: "Gold", SectionCapacity: 10, Rows: []Row{{Label: "A"}, {Label: "B"}}}}
}

func TestCreateAndGetVenue(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil)
	ctx := context.Background()

	venue, err := svc.CreateVenue(ctx, CreateVenueRequest{Name: "Hall", Capacity: 10, SeatingLayout: goldLayout()}, "org-1")
	require.NoError(t, err)
	assert.Equal(t, "org-1", venue.CreatedBy)

	got, err := svc.GetVenue(ctx, venue.ID.String())
	require.NoError(t, err)
	assert.Equal(t, venue.SeatingLayout, got.SeatingLayout)
}

func TestCreateVenueRejectsDuplicateSeats(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil)
	layout := SeatingLayout{{Name: "Gold", Rows: []Row{{Label: "A", Seats: []string{"A1", "A1"}}}}}

	_, err := svc.CreateVenue(context.Background(), CreateVenueRequest{Name: "Hall", Capacity: 2, SeatingLayout: layout}, "org-1")
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestCreateVenueRejectsLayoutWithoutSeats(t *testing.T) {
	repo := newMemoryRepository()
	svc := NewService(repo, nil)
	layout := SeatingLayout{{Name: "Gold", SectionCapacity: 10}}

	_, err := svc.CreateVenue(context.Background(), CreateVenueRequest{Name: "Hall", Capacity: 10, SeatingLayout: layout}, "org-1")
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	assert.Empty(t, repo.venues)
}

func TestGetVenueErrors(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil)

	_, err := svc.GetVenue(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)

	_, err = svc.GetVenue(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSeatingLayoutScanValue(t *testing.T) {
	layout := goldLayout()
	v, err := layout.Value()
	require.NoError(t, err)

	var back SeatingLayout
	require.NoError(t, back.Scan([]byte(v.(string))))
	assert.Equal(t, layout, back)

	assert.Error(t, back.Scan(42))
}

func TestVenueHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	controller := NewController(NewService(newMemoryRepository(), nil))
	r := gin.New()
	r.POST("/venues", controller.CreateVenue)
	r.GET("/venues/:id", controller.GetVenue)

	body := `{"name":"Hall","capacity":10,"location":{"lat":1,"lng":2,"address":"Main St"},
		"seatingLayout":[{"name":"Gold","sectionCapacity":10,"rows":[{"label":"A"},{"label":"B"}]}]}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/venues", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data Venue `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Main St", created.Data.Location.Address)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/venues/"+created.Data.ID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/venues/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/venues", strings.NewReader(`{"name":"Hall","capacity":1}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
