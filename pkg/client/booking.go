package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"schoolbook/pkg/model"
)

type Metadata struct {
	TotalCount int64
	Limit      int
	Offset     int64
}

func (r *Response) ToString() string {
	return fmt.Sprintf("status=%d body=%s", r.StatusCode, string(r.Body))
}

// BookingClient calls the bookings API as a single user.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl, userID string) *BookingClient {
	httpClient := NewHttpClient(baseUrl)
	httpClient.UserID = userID
	return &BookingClient{
		httpClient: httpClient,
	}
}

func (c *BookingClient) As(userID string) *BookingClient {
	httpClient := *c.httpClient
	httpClient.UserID = userID
	return &BookingClient{httpClient: &httpClient}
}

func (c *BookingClient) ListEvents() (*Response, error) {
	return c.httpClient.GET("/api/v1/events")
}

func (c *BookingClient) AvailableSlots(eventID string) (*Response, error) {
	return c.httpClient.GET("/api/v1/events/" + url.PathEscape(eventID) + "/slots")
}

func (c *BookingClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/bookings", body, nil)
}

func (c *BookingClient) CreateWithKey(body any, idempotencyKey string) (*Response, error) {
	return c.httpClient.POST("/api/v1/bookings", body, http.Header{"Idempotency-Key": {idempotencyKey}})
}

// CreateRaw posts rawBody unchanged, for exercising request decoding.
func (c *BookingClient) CreateRaw(rawBody []byte) (*Response, error) {
	return c.httpClient.send(http.MethodPost, "/api/v1/bookings", rawBody, nil)
}

// MyBookings lists the caller's bookings; a zero date lists all of them.
func (c *BookingClient) MyBookings(date time.Time) (*Response, error) {
	path := "/api/v1/me/bookings"
	if !date.IsZero() {
		path += "?date=" + date.Format(time.DateOnly)
	}
	return c.httpClient.GET(path)
}

func (c *BookingClient) MyCalendar() (*Response, error) {
	return c.httpClient.GET("/api/v1/me/bookings.ics")
}

func (c *BookingClient) TeacherBookings(teacherID string) (*Response, error) {
	return c.httpClient.GET("/api/v1/teachers/" + url.PathEscape(teacherID) + "/bookings")
}

func (c *BookingClient) GetAll(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/admin/bookings?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *BookingClient) Stats() (*Response, error) {
	return c.httpClient.GET("/api/v1/admin/stats")
}

func (c *BookingClient) Summary() (*Response, error) {
	return c.httpClient.POST("/api/v1/admin/summary", nil, nil)
}

func (c *BookingClient) WaitForHealthy(maxWait time.Duration) error {
	return c.httpClient.WaitForHealthy(maxWait)
}

func (c *BookingClient) DecodeBooking(resp *Response) (*model.Booking, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode booking wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var booking model.Booking
	if err := json.Unmarshal(wrapper.Data, &booking); err != nil {
		return nil, fmt.Errorf("could not decode booking json:\n%+v\n%s", resp.ToString(), err)
	}

	return &booking, nil
}

func (c *BookingClient) DecodeBookings(resp *Response) ([]*model.Booking, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%+v\n%s", resp.ToString(), err)
	}

	var bookings []*model.Booking
	if err := json.Unmarshal(wrapper.Data, &bookings); err != nil {
		return nil, nil, fmt.Errorf("could not decode booking list:\n%+v\n%s", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return bookings, metadata, nil
}

func (c *BookingClient) DecodeSlots(resp *Response) ([]model.TimeSlot, error) {
	var wrapper struct {
		Data []model.TimeSlot `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode slots:\n%+v\n%s", resp.ToString(), err)
	}
	return wrapper.Data, nil
}
