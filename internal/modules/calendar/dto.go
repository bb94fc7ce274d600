package calendar

type CalendarDay struct {
	Date               string `json:"date" example:"2025-03-10"`
	Price              int64  `json:"price" example:"150000"`
	Available          bool   `json:"available"`
	IsPeakSeason       bool   `json:"is_peak_season"`
	NonAvailableReason string `json:"non_available_reason,omitempty"`
}

type MonthCalendar struct {
	RoomID    int64         `json:"room_id"`
	BasePrice int64         `json:"base_price"`
	Stock     int           `json:"stock"`
	Month     string        `json:"month" example:"2025-03"`
	Days      []CalendarDay `json:"days"`
}

type CompareRequest struct {
	RoomIDs   []int64 `json:"room_ids" binding:"required,min=1,dive,gt=0"`
	StartDate string  `json:"start_date" binding:"required" validate:"day" example:"2025-03-01"`
	EndDate   string  `json:"end_date" binding:"required" validate:"day" example:"2025-03-31"`
}

type RoomPriceComparison struct {
	RoomID       int64            `json:"room_id"`
	Name         string           `json:"name"`
	Type         string           `json:"type"`
	PropertyID   int64            `json:"property_id"`
	BasePrice    int64            `json:"base_price"`
	MinimumPrice int64            `json:"minimum_price"`
	MaximumPrice int64            `json:"maximum_price"`
	AveragePrice int64            `json:"average_price"`
	DailyPrices  map[string]int64 `json:"daily_prices"`
}

type PropertyComparison struct {
	PropertyID int64                 `json:"property_id"`
	Month      string                `json:"month" example:"2025-03"`
	Data       []RoomPriceComparison `json:"data"`
}

type ErrorResponse struct {
	Success bool `json:"success" example:"false"`
	Error   struct {
		Code    string `json:"code" example:"NOT_FOUND"`
		Message string `json:"message" example:"room not found"`
	} `json:"error"`
}
