package venues

type CreateVenueRequest struct {
	Name          string        `json:"name" binding:"required,min=2,max=255"`
	Capacity      int           `json:"capacity" binding:"required,min=1"`
	Location      Location      `json:"location"`
	SeatingLayout SeatingLayout `json:"seatingLayout" binding:"required,min=1,dive"`
}
